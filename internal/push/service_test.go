// File: internal/push/service_test.go
package push

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"sipaling_preloved_client/internal/config"
	"sipaling_preloved_client/internal/platform/localdb"
	"sipaling_preloved_client/internal/session"
	"sipaling_preloved_client/internal/transport"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseMessage(t *testing.T) {
	msg := ParseMessage(map[string]string{
		"title":      "Komentar baru",
		"message":    "Budi: masih ada?",
		"product_id": "42",
	})
	assert.Equal(t, "Komentar baru", msg.Title)
	assert.Equal(t, "Budi: masih ada?", msg.Body)
	assert.Equal(t, 42, msg.ProductID)

	// Body under the alternate key, bad product id ignored.
	alt := ParseMessage(map[string]string{"body": "halo", "product_id": "abc"})
	assert.Equal(t, "halo", alt.Body)
	assert.Equal(t, 0, alt.ProductID)
}

type pushTestEnv struct {
	service  *Service
	sessions *session.Store
	tokens   chan string
	requests *int64
}

func setupPushTest(t *testing.T, status int) *pushTestEnv {
	t.Helper()

	tokens := make(chan string, 8)
	var requests int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&requests, 1)
		var body tokenRequest
		json.NewDecoder(r.Body).Decode(&body)
		tokens <- body.FCMToken
		w.WriteHeader(status)
		if status == http.StatusOK {
			w.Write([]byte(`{"success":true}`))
		} else {
			w.Write([]byte(`{"success":false,"message":"gagal"}`))
		}
	}))
	t.Cleanup(server.Close)

	db, err := localdb.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { localdb.Close(db) })
	sessions, err := session.NewStore(db, zap.NewNop())
	require.NoError(t, err)

	cfg := &config.Config{APIBaseURL: server.URL, HTTPTimeout: 5 * time.Second}
	client := transport.New(cfg, zap.NewNop())

	return &pushTestEnv{
		service:  NewService(client, sessions, zap.NewNop()),
		sessions: sessions,
		tokens:   tokens,
		requests: &requests,
	}
}

func TestService_TokenWhileLoggedOutIsDeferred(t *testing.T) {
	env := setupPushTest(t, http.StatusOK)

	env.service.OnTokenRefresh(context.Background(), "fcm-aaa")

	assert.EqualValues(t, 0, atomic.LoadInt64(env.requests), "no session means no forward")

	// Login happens, the hook flushes the stored token.
	require.NoError(t, env.sessions.Save("tok", 7, "Budi", "budi@example.com"))
	env.service.OnLogin(context.Background())

	select {
	case forwarded := <-env.tokens:
		assert.Equal(t, "fcm-aaa", forwarded)
	default:
		t.Fatal("expected the pending token to be forwarded on login")
	}

	// Flushed means gone: a second login forwards nothing.
	env.service.OnLogin(context.Background())
	assert.EqualValues(t, 1, atomic.LoadInt64(env.requests))
}

func TestService_TokenWithSessionForwardsImmediately(t *testing.T) {
	env := setupPushTest(t, http.StatusOK)
	require.NoError(t, env.sessions.Save("tok", 7, "Budi", "budi@example.com"))

	env.service.OnTokenRefresh(context.Background(), "fcm-bbb")

	assert.Equal(t, "fcm-bbb", <-env.tokens)
}

func TestService_EmptyTokenIgnored(t *testing.T) {
	env := setupPushTest(t, http.StatusOK)
	require.NoError(t, env.sessions.Save("tok", 7, "Budi", "budi@example.com"))

	env.service.OnTokenRefresh(context.Background(), "")

	assert.EqualValues(t, 0, atomic.LoadInt64(env.requests))
}

func TestService_RetryableFailureRequeuesToken(t *testing.T) {
	// No listener at all: connection refused, which is retryable.
	db, err := localdb.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { localdb.Close(db) })
	sessions, err := session.NewStore(db, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, sessions.Save("tok", 7, "Budi", "budi@example.com"))

	cfg := &config.Config{APIBaseURL: "http://127.0.0.1:1", HTTPTimeout: time.Second}
	service := NewService(transport.New(cfg, zap.NewNop()), sessions, zap.NewNop())

	service.OnTokenRefresh(context.Background(), "fcm-ccc")

	pending, ok := sessions.TakePendingPushToken()
	assert.True(t, ok, "a retryable failure re-queues the token")
	assert.Equal(t, "fcm-ccc", pending)
}
