package apperrors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_IsMatchesCodeAndDomain(t *testing.T) {
	withDetails := ErrProjectPublishedElsewhere.WithDetails(map[string]string{"current": "team:t1"})
	assert.True(t, errors.Is(withDetails, ErrProjectPublishedElsewhere))
	assert.False(t, errors.Is(withDetails, ErrProjectCancelled))
	assert.False(t, errors.Is(ErrInvalidStatus("project", "nope"), ErrProjectCancelled))

	// the predefined value is never mutated by the With* helpers
	assert.Nil(t, ErrProjectPublishedElsewhere.Details)

	cause := errors.New("boom")
	wrapped := ErrTransientStore(cause, "project")
	assert.ErrorIs(t, wrapped, cause)
	assert.True(t, wrapped.Retryable())
	assert.True(t, HasCode(wrapped, CodeTransientStoreError))
}

func render(t *testing.T, err error) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

	HandleError(c, err)

	var body map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body["error"]
}

func TestHandleError_Rendering(t *testing.T) {
	w, body := render(t, ErrNoDraftExists)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, string(CodeNoDraftExists), body["code"])

	w, body = render(t, ErrTransientStore(errors.New("deadlock"), "project"))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Equal(t, string(CodeTransientStoreError), body["code"])

	w, body = render(t, ErrInvariantViolation.WithDetails(map[string]string{"row": "secret"}))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Nil(t, body["details"])

	w, body = render(t, errors.New("plain"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, string(CodeInternalError), body["code"])
}
