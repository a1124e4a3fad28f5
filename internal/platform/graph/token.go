package graph

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/singleflight"
)

// ErrAuthUnavailable is returned when no usable access token can be
// obtained. It is the only failure mail operations escalate to the caller;
// everything else degrades to an empty result.
var ErrAuthUnavailable = errors.New("graph: no usable access token")

// Tokens are refreshed this long before the server-reported expiry.
const tokenExpiryBuffer = 5 * time.Minute

// TokenCache is a single-slot credential cache. The zero value is ready to
// use. Concurrent check-refresh-store sequences are deduplicated through a
// singleflight group so multiple callers share one token request.
type TokenCache struct {
	mu    sync.Mutex
	group singleflight.Group

	accessToken string
	expiresAt   time.Time
}

// sharedCache is the process-wide slot every Client uses by default, so
// instantiating several clients still performs at most one refresh.
var sharedCache = &TokenCache{}

func (tc *TokenCache) get(now time.Time) (string, bool) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	if tc.accessToken != "" && now.Before(tc.expiresAt) {
		return tc.accessToken, true
	}
	return "", false
}

func (tc *TokenCache) set(token string, expiresAt time.Time) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	tc.accessToken = token
	tc.expiresAt = expiresAt
}

// accessToken returns a valid bearer token, refreshing through the token
// endpoint when the cached one is absent or past its buffered expiry.
// Returns "" when no token can be obtained; the cause is logged but never
// the token material itself.
func (c *Client) accessToken(ctx context.Context) string {
	if token, ok := c.cache.get(c.now()); ok {
		return token
	}

	if !c.cfg.IsConfigured() {
		c.logger.Error("graph: not configured, check MS_GRAPH_* environment")
		return ""
	}

	token, err, _ := c.cache.group.Do("token", func() (any, error) {
		// another caller may have refreshed while we waited on the group
		if token, ok := c.cache.get(c.now()); ok {
			return token, nil
		}
		return c.refreshAccessToken(ctx)
	})
	if err != nil {
		return ""
	}
	return token.(string)
}

// refreshAccessToken performs the public-client refresh-token exchange. No
// client secret is involved. Failures are logged by status or class only;
// the response body and error text can embed token material.
func (c *Client) refreshAccessToken(ctx context.Context) (string, error) {
	form := url.Values{
		"client_id":     {c.cfg.ClientID},
		"refresh_token": {c.cfg.RefreshToken},
		"grant_type":    {"refresh_token"},
		"scope":         {tokenScopes},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", errors.Wrap(ErrAuthUnavailable, "building token request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Errorw("graph: token request failed", "class", errClass(err))
		return "", ErrAuthUnavailable
	}
	defer drainClose(resp)

	if resp.StatusCode != http.StatusOK {
		c.logger.Errorw("graph: token request rejected", "status", resp.StatusCode)
		return "", ErrAuthUnavailable
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil || tr.AccessToken == "" {
		c.logger.Error("graph: malformed token response")
		return "", ErrAuthUnavailable
	}

	expiresIn := tr.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = 3600
	}
	expiresAt := c.now().Add(time.Duration(expiresIn)*time.Second - tokenExpiryBuffer)
	c.cache.set(tr.AccessToken, expiresAt)

	c.logger.Infow("graph: access token refreshed", "expires_at", expiresAt)
	return tr.AccessToken, nil
}

// authHeaders builds the authenticated request headers. Unlike accessToken
// it fails hard: without a token no downstream operation can proceed.
func (c *Client) authHeaders(ctx context.Context) (http.Header, error) {
	token := c.accessToken(ctx)
	if token == "" {
		return nil, ErrAuthUnavailable
	}

	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+token)
	headers.Set("Content-Type", "application/json")
	return headers, nil
}
