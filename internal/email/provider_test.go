package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookProvider_PostsPayload(t *testing.T) {
	var got webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewWebhookProvider(srv.URL, srv.Client())
	err := p.Send(context.Background(), &Message{
		Type:     "PROJECT_UPDATE",
		To:       "lead@example.com",
		Subject:  "New project assigned",
		Body:     "Project X has been sent to your team",
		Metadata: json.RawMessage(`{"project_id":"p1"}`),
	})
	require.NoError(t, err)

	assert.Equal(t, "PROJECT_UPDATE", got.Type)
	assert.Equal(t, "lead@example.com", got.Email)
	assert.Equal(t, "New project assigned", got.Title)
	assert.JSONEq(t, `{"project_id":"p1"}`, string(got.Metadata))
	assert.NotEmpty(t, got.Timestamp)
}

func TestWebhookProvider_Non2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewWebhookProvider(srv.URL, nil).Send(context.Background(), &Message{To: "a@b.c"})
	assert.Error(t, err)
}

func TestSMTPConfig_Validate(t *testing.T) {
	_, err := NewSMTPProvider(SMTPConfig{Port: 587, FromEmail: "noreply@example.com"})
	assert.Error(t, err, "host is required")

	p, err := NewSMTPProvider(SMTPConfig{Host: "smtp.example.com", Port: 587, FromEmail: "noreply@example.com", FromName: "Finley"})
	require.NoError(t, err)

	m, err := p.build(&Message{To: "x@example.com", Subject: "Hi", Body: "Body <b>"})
	require.NoError(t, err)
	assert.Equal(t, []string{"x@example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"Hi"}, m.GetHeader("Subject"))
}
