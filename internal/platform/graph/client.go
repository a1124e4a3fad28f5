// Package graph is the Microsoft Graph mail client: token management over a
// refresh-token exchange, an IPv4-only transport with rate-limit retry, and
// the single-mailbox message and folder operations built on top of them.
package graph

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/uthapjhojho/graphmail/internal/config"
)

// Graph API constants
const (
	BaseURL          = "https://graph.microsoft.com/v1.0"
	tokenURLTemplate = "https://login.microsoftonline.com/%s/oauth2/v2.0/token"

	requestTimeout = 30 * time.Second

	tokenScopes = "https://graph.microsoft.com/Mail.Read " +
		"https://graph.microsoft.com/Mail.ReadWrite " +
		"https://graph.microsoft.com/Mail.Send"
)

// Client talks to the Graph mail endpoints for a single mailbox. One
// instance holds one long-lived HTTP connection pool; the credential cache
// is process-wide and shared between instances.
type Client struct {
	cfg    *config.Config
	logger *zap.SugaredLogger

	httpClient *http.Client
	cache      *TokenCache

	baseURL  string
	tokenURL string

	now   func() time.Time
	sleep func(time.Duration)
}

// NewClient creates a Graph client using the process-wide token cache. A nil
// logger disables logging.
func NewClient(cfg *config.Config, logger *zap.SugaredLogger) *Client {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &Client{
		cfg:        cfg,
		logger:     logger,
		httpClient: newHTTPClient(),
		cache:      sharedCache,
		baseURL:    BaseURL,
		tokenURL:   fmt.Sprintf(tokenURLTemplate, cfg.TenantID),
		now:        time.Now,
		sleep:      time.Sleep,
	}
}
