package graph

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// ListFolders returns the mailbox's folders with their message counters.
// Remote and transport failures are logged and yield an empty slice.
func (c *Client) ListFolders(ctx context.Context) ([]Folder, error) {
	headers, err := c.authHeaders(ctx)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("$select", "id,displayName,totalItemCount,unreadItemCount")
	u := c.baseURL + "/me/mailFolders?" + params.Encode()

	resp, err := c.send("folders", func() (*http.Request, error) {
		return c.newRequest(ctx, http.MethodGet, u, headers, nil)
	})
	if err != nil {
		c.logger.Errorw("graph: request failed", "op", "folders", "class", errClass(err))
		return []Folder{}, nil
	}
	defer drainClose(resp)

	if resp.StatusCode != http.StatusOK {
		c.logger.Errorw("graph: request rejected", "op", "folders", "status", resp.StatusCode)
		return []Folder{}, nil
	}

	var page folderPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		c.logger.Errorw("graph: malformed response", "op", "folders")
		return []Folder{}, nil
	}
	if page.Value == nil {
		return []Folder{}, nil
	}
	return page.Value, nil
}
