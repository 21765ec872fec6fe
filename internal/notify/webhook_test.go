package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookPostDeliversJSON(t *testing.T) {
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.Header.Get("Content-Type"), "application/json")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &received)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	hook := NewWebhook(srv.URL)
	require.NotNil(t, hook)
	require.NoError(t, hook.Post(context.Background(), map[string]any{"type": "ticket_created", "ticket_id": 4}))
	assert.Equal(t, "ticket_created", received["type"])
	assert.EqualValues(t, 4, received["ticket_id"])
}

func TestWebhookPostRejectsServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := NewWebhook(srv.URL).Post(context.Background(), map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}
