package graph

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

const defaultRetryAfter = 5 * time.Second

// newHTTPClient builds the long-lived HTTP client shared by every call.
// Connections are forced onto IPv4: the deployment network's IPv6 path is
// unreliable.
func newHTTPClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	return &http.Client{
		Timeout: requestTimeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				return dialer.DialContext(ctx, "tcp4", addr)
			},
			MaxIdleConns:        10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
}

// newRequest builds a request carrying the given headers plus a fresh
// client-request-id for correlation on the Graph side.
func (c *Client) newRequest(ctx context.Context, method, url string, headers http.Header, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}

	for key, values := range headers {
		for _, value := range values {
			req.Header.Set(key, value)
		}
	}
	req.Header.Set("client-request-id", uuid.NewString())

	return req, nil
}

// send issues the request produced by build, retrying exactly once after a
// 429: wait the server's Retry-After (5s when absent), reissue, and accept
// the second outcome as final. Other statuses and transport errors are not
// retried. build must produce a fresh request each call since a consumed
// body cannot be resent.
func (c *Client) send(op string, build func() (*http.Request, error)) (*http.Response, error) {
	req, err := build()
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusTooManyRequests {
		return resp, nil
	}

	wait := retryAfter(resp)
	drainClose(resp)
	c.logger.Warnw("graph: rate limited", "op", op, "wait", wait)
	c.sleep(wait)

	req, err = build()
	if err != nil {
		return nil, err
	}
	return c.httpClient.Do(req)
}

// retryAfter reads the Retry-After header in seconds.
func retryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultRetryAfter
}

// drainClose discards any unread body so the connection can be reused.
func drainClose(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

// errClass reduces a transport error to a loggable category. Error text is
// deliberately dropped: URLs and form bodies inside it may carry secrets.
func errClass(err error) string {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return "dns"
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return "connection"
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	return fmt.Sprintf("%T", errors.UnwrapAll(err))
}
