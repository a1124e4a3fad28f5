package graph

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/uthapjhojho/graphmail/internal/config"
)

func TestAccessTokenCachedUntilExpiry(t *testing.T) {
	var tokenCalls atomic.Int32
	tokenSrv := testTokenServer(&tokenCalls)
	defer tokenSrv.Close()

	c, clock := newTestClient("http://unused.invalid", tokenSrv.URL)
	ctx := context.Background()

	require.Equal(t, "token-1", c.accessToken(ctx))
	require.Equal(t, int32(1), tokenCalls.Load())

	// still before the buffered expiry: no second exchange
	clock.advance(30 * time.Minute)
	require.Equal(t, "token-1", c.accessToken(ctx))
	require.Equal(t, int32(1), tokenCalls.Load())

	// expires_in 3600 minus the 5-minute buffer: 55 minutes total
	clock.advance(26 * time.Minute)
	require.Equal(t, "token-2", c.accessToken(ctx))
	require.Equal(t, int32(2), tokenCalls.Load())
}

func TestAccessTokenRefreshesBeforeReportedExpiry(t *testing.T) {
	var tokenCalls atomic.Int32
	tokenSrv := testTokenServer(&tokenCalls)
	defer tokenSrv.Close()

	c, clock := newTestClient("http://unused.invalid", tokenSrv.URL)
	ctx := context.Background()

	c.accessToken(ctx)

	// 56 minutes in, the token is good for 4 more by the server's clock but
	// already past ours
	clock.advance(56 * time.Minute)
	c.accessToken(ctx)
	require.Equal(t, int32(2), tokenCalls.Load())
}

func TestAccessTokenNotConfigured(t *testing.T) {
	c := NewClient(&config.Config{}, zap.NewNop().Sugar())
	c.cache = &TokenCache{}

	require.Equal(t, "", c.accessToken(context.Background()))
}

func TestAccessTokenEndpointRejection(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer tokenSrv.Close()

	c, _ := newTestClient("http://unused.invalid", tokenSrv.URL)
	require.Equal(t, "", c.accessToken(context.Background()))
}

func TestAuthHeaders(t *testing.T) {
	var tokenCalls atomic.Int32
	tokenSrv := testTokenServer(&tokenCalls)
	defer tokenSrv.Close()

	c, _ := newTestClient("http://unused.invalid", tokenSrv.URL)

	headers, err := c.authHeaders(context.Background())
	require.Nil(t, err)
	require.Equal(t, "Bearer token-1", headers.Get("Authorization"))
	require.Equal(t, "application/json", headers.Get("Content-Type"))
}

func TestAuthHeadersUnavailable(t *testing.T) {
	c := NewClient(&config.Config{}, zap.NewNop().Sugar())
	c.cache = &TokenCache{}

	_, err := c.authHeaders(context.Background())
	require.ErrorIs(t, err, ErrAuthUnavailable)
}

func TestSharedCacheAcrossClients(t *testing.T) {
	var tokenCalls atomic.Int32
	tokenSrv := testTokenServer(&tokenCalls)
	defer tokenSrv.Close()

	cache := &TokenCache{}
	ctx := context.Background()

	first, _ := newTestClient("http://unused.invalid", tokenSrv.URL)
	first.cache = cache
	second, _ := newTestClient("http://unused.invalid", tokenSrv.URL)
	second.cache = cache

	require.Equal(t, "token-1", first.accessToken(ctx))
	require.Equal(t, "token-1", second.accessToken(ctx))
	require.Equal(t, int32(1), tokenCalls.Load())
}
