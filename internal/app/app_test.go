package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"finley_backend/internal/auth"
	"finley_backend/internal/config"
	"finley_backend/internal/events"
	"finley_backend/internal/metrics"
	"finley_backend/internal/models"
	"finley_backend/internal/storage"
	"finley_backend/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

type apiClient struct {
	t      *testing.T
	router *gin.Engine
	db     *gorm.DB
}

func newAPIClient(t *testing.T) *apiClient {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var cfg config.Config
	cfg.Server.Env = "test"
	cfg.JWT.Secret = testSecret
	cfg.Storage.UploadTTLSeconds = 300

	db := testutil.NewDB(t)
	router := SetupRouter(&cfg, db, &Infrastructure{
		Publisher: events.NopPublisher{},
		Metrics:   metrics.New(),
		Signer:    storage.NewLocalSigner("http://files.test"),
	})
	return &apiClient{t: t, router: router, db: db}
}

func (a *apiClient) token(user *models.User) string {
	a.t.Helper()
	tok, err := auth.GenerateToken(testSecret, "finley", user.ID, user.Role, time.Hour)
	require.NoError(a.t, err)
	return tok
}

func (a *apiClient) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	body := decode(t, w)
	errBody, ok := body["error"].(map[string]interface{})
	require.True(t, ok, w.Body.String())
	return errBody["code"].(string)
}

func TestHealthAndMetrics(t *testing.T) {
	api := newAPIClient(t)

	w := api.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["healthy"])

	w = api.do(http.MethodGet, "/api/v1/categories", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "finley_http_requests_total")
}

func TestAuthAndRoles(t *testing.T) {
	api := newAPIClient(t)
	client := testutil.CreateUser(t, api.db, models.UserRoleClient, "client@example.com")
	talent := testutil.CreateUser(t, api.db, models.UserRoleTalent, "talent@example.com")

	w := api.do(http.MethodPost, "/api/v1/projects", "", map[string]string{"name": "Shoot"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(http.MethodGet, "/api/v1/requests", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_TOKEN", errorCode(t, w))

	w = api.do(http.MethodGet, "/api/v1/admin/projects", api.token(client), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodPost, "/api/v1/projects", api.token(talent), map[string]string{"name": "Shoot"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodPost, "/api/v1/projects", api.token(client), map[string]string{"name": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, w))
}

func TestProjectFlowOverHTTP(t *testing.T) {
	api := newAPIClient(t)
	admin := testutil.CreateUser(t, api.db, models.UserRoleAdmin, "admin@example.com")
	client := testutil.CreateUser(t, api.db, models.UserRoleClient, "client@example.com")
	leader := testutil.CreateUser(t, api.db, models.UserRoleTalent, "leader@example.com")
	stranger := testutil.CreateUser(t, api.db, models.UserRoleTalent, "stranger@example.com")
	team := testutil.CreateTeam(t, api.db, "Crew", leader)

	adminTok, clientTok, leaderTok := api.token(admin), api.token(client), api.token(leader)

	// intake
	w := api.do(http.MethodPost, "/api/v1/projects", clientTok, map[string]interface{}{
		"name":    "Launch video",
		"answers": map[string]string{"budget": "$10k"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	projectID := decode(t, w)["id"].(string)
	base := "/api/v1/admin/projects/" + projectID

	// finalize before any draft
	w = api.do(http.MethodPost, base+"/finalize", adminTok, map[string]interface{}{
		"assignment": map[string]string{"team": team.ID},
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "NO_DRAFT_EXISTS", errorCode(t, w))

	w = api.do(http.MethodPost, base+"/sow", adminTok, map[string]string{"body": "v1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// both targets
	w = api.do(http.MethodPost, base+"/finalize", adminTok, map[string]interface{}{
		"assignment": map[string]string{"team": team.ID, "individual": leader.ID},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ASSIGNMENT_TARGET", errorCode(t, w))

	for i := 0; i < 2; i++ {
		w = api.do(http.MethodPost, base+"/finalize", adminTok, map[string]interface{}{
			"assignment": map[string]string{"team": team.ID},
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	finalized := decode(t, w)
	project := finalized["project"].(map[string]interface{})
	assert.Equal(t, "SENT", project["status"])
	assert.Equal(t, "TEAM", project["assignment"].(map[string]interface{})["type"])
	assert.Equal(t, "PUBLISHED", finalized["sow"].(map[string]interface{})["status"])
	assert.NotEmpty(t, finalized["notification_id"])

	// the leader sees the work and exactly one notification
	w = api.do(http.MethodGet, "/api/v1/requests", leaderTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["total"])

	w = api.do(http.MethodGet, "/api/v1/notifications?unread_only=true", leaderTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	inbox := decode(t, w)
	assert.EqualValues(t, 1, inbox["unread_count"])
	assert.EqualValues(t, 1, inbox["total"])

	w = api.do(http.MethodPut, "/api/v1/notifications/read-all", leaderTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["count"])

	w = api.do(http.MethodGet, "/api/v1/projects/"+projectID, api.token(stranger), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(http.MethodGet, "/api/v1/projects/"+projectID, leaderTok, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// attachments
	w = api.do(http.MethodPost, base+"/attachments", adminTok, map[string]string{
		"file_name": "brief v2.pdf", "content_type": "application/pdf",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	upload := decode(t, w)
	assert.True(t, strings.HasPrefix(upload["upload_url"].(string), "http://files.test/projects/"+projectID+"/"))
	assert.True(t, strings.HasSuffix(upload["storage_key"].(string), "-briefv2.pdf"))
	attachmentID := upload["attachment_id"].(string)

	w = api.do(http.MethodGet, "/api/v1/attachments/"+attachmentID+"/url", leaderTok, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = api.do(http.MethodGet, "/api/v1/attachments/"+attachmentID+"/url", api.token(stranger), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// publish, then cancel is refused
	w = api.do(http.MethodPost, base+"/publish", adminTok, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "PUBLISHED", decode(t, w)["status"])

	w = api.do(http.MethodPost, base+"/cancel", adminTok, map[string]string{"reason": "late"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = api.do(http.MethodPost, base+"/finalize", adminTok, map[string]interface{}{
		"assignment": map[string]string{"individual": stranger.ID},
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "PUBLISHED_ELSEWHERE", errorCode(t, w))
}

func TestSeedFirstAdmin(t *testing.T) {
	db := testutil.NewDB(t)
	var cfg config.Config

	require.NoError(t, seedFirstAdmin(db, &cfg), "no email configured is a no-op")

	cfg.FirstAdmin.Email = "root@example.com"
	cfg.FirstAdmin.Name = "Root"
	require.NoError(t, seedFirstAdmin(db, &cfg))
	require.NoError(t, seedFirstAdmin(db, &cfg))

	var admins []models.User
	require.NoError(t, db.Where("role = ?", models.UserRoleAdmin).Find(&admins).Error)
	require.Len(t, admins, 1)
	assert.Equal(t, "Root", admins[0].FirstName)
}

func TestNewDeliveryProvider(t *testing.T) {
	var cfg config.Config

	cfg.Relay.Mode = "log"
	p, err := NewDeliveryProvider(&cfg)
	require.NoError(t, err)
	assert.Equal(t, "log", p.Name())

	cfg.Relay.Mode = "webhook"
	cfg.Relay.WebhookURL = "https://hooks.example.com"
	p, err = NewDeliveryProvider(&cfg)
	require.NoError(t, err)
	assert.Equal(t, "webhook", p.Name())

	cfg.Relay.Mode = "email"
	_, err = NewDeliveryProvider(&cfg)
	assert.Error(t, err, "smtp host is required")

	cfg.Relay.Mode = "fax"
	_, err = NewDeliveryProvider(&cfg)
	assert.Error(t, err)
}

func TestTalentAndResubmitOverHTTP(t *testing.T) {
	api := newAPIClient(t)
	admin := testutil.CreateUser(t, api.db, models.UserRoleAdmin, "admin@example.com")
	client := testutil.CreateUser(t, api.db, models.UserRoleClient, "client@example.com")
	talent := testutil.CreateUser(t, api.db, models.UserRoleTalent, "talent@example.com")
	adminTok, clientTok := api.token(admin), api.token(client)

	w := api.do(http.MethodGet, "/api/v1/talent", clientTok, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodGet, "/api/v1/talent", adminTok, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	listed := decode(t, w)["talent"].([]interface{})
	require.Len(t, listed, 1)
	assert.Equal(t, talent.ID, listed[0].(map[string]interface{})["id"])

	w = api.do(http.MethodPost, "/api/v1/projects", clientTok, map[string]string{"name": "Launch video"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	projectID := decode(t, w)["id"].(string)

	w = api.do(http.MethodPut, "/api/v1/admin/projects/"+projectID+"/assignment", adminTok,
		map[string]string{"individual": client.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_OPERATION", errorCode(t, w))

	w = api.do(http.MethodPost, "/api/v1/admin/projects/"+projectID+"/review", adminTok,
		map[string]string{"decision": "CHANGES_REQUESTED", "comments": "Rename it"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = api.do(http.MethodPost, "/api/v1/projects/"+projectID+"/resubmit", clientTok, map[string]interface{}{"name": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, w))

	w = api.do(http.MethodPost, "/api/v1/projects/"+projectID+"/resubmit", clientTok, map[string]interface{}{
		"name":    "Launch video, director's cut",
		"answers": map[string]string{"budget": "$40k"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resubmitted := decode(t, w)
	assert.Equal(t, "SUBMITTED", resubmitted["status"])
	assert.Equal(t, "Launch video, director's cut", resubmitted["name"])
	assert.Equal(t, "$40k", resubmitted["answers"].(map[string]interface{})["budget"])
}
