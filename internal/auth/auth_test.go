package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-hive-go/internal/testkit"
)

var secret = []byte("test-secret")

func TestServerTokens(t *testing.T) {
	now := time.Now()
	tok, err := IssueServerToken(secret, "chernarus-1", 0, now)
	require.NoError(t, err)
	server, err := ParseServerToken(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "chernarus-1", server)

	expired, err := IssueServerToken(secret, "chernarus-1", time.Minute, now.Add(-time.Hour))
	require.NoError(t, err)
	_, err = ParseServerToken(secret, expired)
	assert.Error(t, err)

	_, err = ParseServerToken([]byte("other"), tok)
	assert.Error(t, err)

	_, err = IssueServerToken(nil, "x", 0, now)
	assert.Error(t, err)
}

func TestMiddlewareAttachesServer(t *testing.T) {
	logger, _ := testkit.ObservedLogger()
	var got string
	var seen bool
	h := Middleware(secret, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, seen = ServerFromContext(r.Context())
	}))

	tok, err := IssueServerToken(secret, "namalsk-2", time.Hour, time.Now())
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, seen)
	assert.Equal(t, "namalsk-2", got)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServerFromContext(t *testing.T) {
	_, ok := ServerFromContext(context.Background())
	assert.False(t, ok)

	server, ok := ServerFromContext(WithServer(context.Background(), "takistan-3"))
	assert.True(t, ok)
	assert.Equal(t, "takistan-3", server)
}
