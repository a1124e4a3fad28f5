package graph

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/uthapjhojho/graphmail/internal/config"
)

// testTokenServer fakes the token endpoint and counts exchanges.
func testTokenServer(calls *atomic.Int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if r.PostForm.Get("grant_type") != "refresh_token" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		n := calls.Load()
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": fmt.Sprintf("token-%d", n),
			"expires_in":   3600,
		})
	}))
}

// newTestClient wires a client against the given fake endpoints with its own
// cache slot, a fake clock and a recorded sleep.
func newTestClient(graphURL, tokenURL string) (*Client, *fakeClock) {
	cfg := &config.Config{ClientID: "client", TenantID: "tenant", RefreshToken: "refresh"}
	c := NewClient(cfg, zap.NewNop().Sugar())
	c.cache = &TokenCache{}
	c.baseURL = graphURL
	c.tokenURL = tokenURL

	clock := &fakeClock{base: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)}
	c.now = clock.now
	c.sleep = clock.sleep
	return c, clock
}

type fakeClock struct {
	base   time.Time
	offset time.Duration
	sleeps []time.Duration
}

func (fc *fakeClock) now() time.Time { return fc.base.Add(fc.offset) }

func (fc *fakeClock) sleep(d time.Duration) { fc.sleeps = append(fc.sleeps, d) }

func (fc *fakeClock) advance(d time.Duration) { fc.offset += d }
