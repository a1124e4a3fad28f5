package graph

import (
	"context"
	"encoding/json"
	"iter"
	"net/http"
	"net/url"
)

type rawPage struct {
	Value    []json.RawMessage `json:"value"`
	NextLink string            `json:"@odata.nextLink"`
}

// Paginate returns a lazy sequence over every item of a paginated Graph
// collection, following @odata.nextLink until a page carries none. Each pull
// may block on network I/O; no page is fetched before it is needed. params
// apply to the first request only, since the next link re-encodes them.
//
// On a non-200 status or transport error the sequence simply ends; the
// failure is logged, not surfaced. 429 responses are waited out and retried
// without a cap, trusting the server-provided Retry-After, so a persistently
// rate-limiting remote stalls the sequence rather than truncating it.
func (c *Client) Paginate(ctx context.Context, rawURL string, params url.Values) iter.Seq[json.RawMessage] {
	return func(yield func(json.RawMessage) bool) {
		headers, err := c.authHeaders(ctx)
		if err != nil {
			c.logger.Errorw("graph: pagination aborted", "class", errClass(err))
			return
		}

		next := rawURL
		if len(params) > 0 {
			next += "?" + params.Encode()
		}

		for next != "" {
			req, err := c.newRequest(ctx, http.MethodGet, next, headers, nil)
			if err != nil {
				c.logger.Errorw("graph: pagination request failed", "class", errClass(err))
				return
			}

			resp, err := c.httpClient.Do(req)
			if err != nil {
				c.logger.Errorw("graph: pagination request failed", "class", errClass(err))
				return
			}

			if resp.StatusCode == http.StatusTooManyRequests {
				wait := retryAfter(resp)
				drainClose(resp)
				c.logger.Warnw("graph: rate limited during pagination", "wait", wait)
				c.sleep(wait)
				continue
			}

			if resp.StatusCode != http.StatusOK {
				c.logger.Errorw("graph: pagination rejected", "status", resp.StatusCode)
				drainClose(resp)
				return
			}

			var page rawPage
			err = json.NewDecoder(resp.Body).Decode(&page)
			drainClose(resp)
			if err != nil {
				c.logger.Error("graph: malformed pagination response")
				return
			}

			for _, item := range page.Value {
				if !yield(item) {
					return
				}
			}

			next = page.NextLink
		}
	}
}
