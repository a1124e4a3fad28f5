package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/uthapjhojho/graphmail/internal/validate"
)

var (
	defaultListFields   = []string{"id", "subject", "from", "receivedDateTime", "isRead", "bodyPreview"}
	defaultSearchFields = []string{"id", "subject", "from", "receivedDateTime", "isRead"}
)

// ListOptions controls ListEmails.
type ListOptions struct {
	Folder     string   // well-known name or folder ID; defaults to inbox
	Top        int      // page size; defaults to 20
	Filter     string   // optional OData filter, ANDed with the unread filter
	UnreadOnly bool     // restrict to isRead eq false
	Select     []string // fields to fetch; defaults to defaultListFields
}

// ListEmails fetches messages from one folder, newest first. Remote and
// transport failures are logged and yield an empty slice; the only error
// returned is ErrAuthUnavailable.
func (c *Client) ListEmails(ctx context.Context, opts ListOptions) ([]Message, error) {
	headers, err := c.authHeaders(ctx)
	if err != nil {
		return nil, err
	}

	folder := opts.Folder
	if folder == "" {
		folder = "inbox"
	}
	top := opts.Top
	if top <= 0 {
		top = 20
	}
	fields := opts.Select
	if len(fields) == 0 {
		fields = defaultListFields
	}

	params := url.Values{}
	params.Set("$top", strconv.Itoa(top))
	params.Set("$select", strings.Join(fields, ","))
	params.Set("$orderby", "receivedDateTime desc")

	var filters []string
	if opts.Filter != "" {
		filters = append(filters, opts.Filter)
	}
	if opts.UnreadOnly {
		filters = append(filters, "isRead eq false")
	}
	if len(filters) > 0 {
		params.Set("$filter", strings.Join(filters, " and "))
	}

	u := fmt.Sprintf("%s/me/mailFolders/%s/messages?%s", c.baseURL, url.PathEscape(folder), params.Encode())
	return c.fetchMessages(ctx, "list", u, headers), nil
}

// SearchEmails runs an OData filter across all messages, newest first.
func (c *Client) SearchEmails(ctx context.Context, filter string, top int, fields []string) ([]Message, error) {
	headers, err := c.authHeaders(ctx)
	if err != nil {
		return nil, err
	}

	if top <= 0 {
		top = 20
	}
	if len(fields) == 0 {
		fields = defaultSearchFields
	}

	params := url.Values{}
	params.Set("$filter", filter)
	params.Set("$top", strconv.Itoa(top))
	params.Set("$select", strings.Join(fields, ","))
	params.Set("$orderby", "receivedDateTime desc")

	u := fmt.Sprintf("%s/me/messages?%s", c.baseURL, params.Encode())
	return c.fetchMessages(ctx, "search", u, headers), nil
}

func (c *Client) fetchMessages(ctx context.Context, op, u string, headers http.Header) []Message {
	resp, err := c.send(op, func() (*http.Request, error) {
		return c.newRequest(ctx, http.MethodGet, u, headers, nil)
	})
	if err != nil {
		c.logger.Errorw("graph: request failed", "op", op, "class", errClass(err))
		return []Message{}
	}
	defer drainClose(resp)

	if resp.StatusCode != http.StatusOK {
		c.logger.Errorw("graph: request rejected", "op", op, "status", resp.StatusCode)
		return []Message{}
	}

	var page messagePage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		c.logger.Errorw("graph: malformed response", "op", op)
		return []Message{}
	}
	if page.Value == nil {
		return []Message{}
	}
	return page.Value
}

// GetEmail fetches one message, including its full body. Returns nil both
// when the remote reports not-found and on any other failure; the log
// carries the distinction.
func (c *Client) GetEmail(ctx context.Context, id string) (*Message, error) {
	headers, err := c.authHeaders(ctx)
	if err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/me/messages/%s", c.baseURL, url.PathEscape(id))
	resp, err := c.send("get", func() (*http.Request, error) {
		return c.newRequest(ctx, http.MethodGet, u, headers, nil)
	})
	if err != nil {
		c.logger.Errorw("graph: request failed", "op", "get", "class", errClass(err))
		return nil, nil
	}
	defer drainClose(resp)

	if resp.StatusCode != http.StatusOK {
		c.logger.Errorw("graph: request rejected", "op", "get", "status", resp.StatusCode)
		return nil, nil
	}

	var msg Message
	if err := json.NewDecoder(resp.Body).Decode(&msg); err != nil {
		c.logger.Errorw("graph: malformed response", "op", "get")
		return nil, nil
	}
	return &msg, nil
}

// SendEmail sends a message, always saving a copy to Sent Items. Recipient
// entries are split on commas and addresses failing syntax validation are
// silently dropped; when no valid To address remains the send fails without
// touching the network. Success means the remote accepted the message for
// delivery (202).
func (c *Client) SendEmail(ctx context.Context, draft Draft) (bool, error) {
	headers, err := c.authHeaders(ctx)
	if err != nil {
		return false, err
	}

	to := toRecipients(draft.To)
	if len(to) == 0 {
		c.logger.Error("graph: send with no valid recipients")
		return false, nil
	}

	contentType := "Text"
	if draft.HTML {
		contentType = "HTML"
	}

	payload := sendMailPayload{
		Message: sendMailMessage{
			Subject:       draft.Subject,
			Body:          ItemBody{ContentType: contentType, Content: draft.Body},
			ToRecipients:  to,
			CcRecipients:  toRecipients(draft.Cc),
			BccRecipients: toRecipients(draft.Bcc),
		},
		SaveToSentItems: true,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		c.logger.Errorw("graph: marshaling send payload", "class", errClass(err))
		return false, nil
	}

	u := c.baseURL + "/me/sendMail"
	resp, err := c.send("send", func() (*http.Request, error) {
		return c.newRequest(ctx, http.MethodPost, u, headers, bytes.NewReader(body))
	})
	if err != nil {
		c.logger.Errorw("graph: request failed", "op", "send", "class", errClass(err))
		return false, nil
	}
	defer drainClose(resp)

	if resp.StatusCode != http.StatusAccepted {
		c.logger.Errorw("graph: request rejected", "op", "send", "status", resp.StatusCode)
		return false, nil
	}

	c.logger.Infow("graph: message sent", "recipients", len(to))
	return true, nil
}

// toRecipients normalizes recipient values into Graph recipient objects.
// Each value may be a comma-joined list. Invalid addresses are dropped.
func toRecipients(values []string) []Recipient {
	var out []Recipient
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			addr := strings.TrimSpace(part)
			if addr == "" || !validate.IsValidEmailAddress(addr) {
				continue
			}
			out = append(out, Recipient{EmailAddress: EmailAddress{Address: addr}})
		}
	}
	return out
}

// MarkAsRead flips the read flag on.
func (c *Client) MarkAsRead(ctx context.Context, id string) (bool, error) {
	return c.patchIsRead(ctx, id, true)
}

// MarkAsUnread flips the read flag off.
func (c *Client) MarkAsUnread(ctx context.Context, id string) (bool, error) {
	return c.patchIsRead(ctx, id, false)
}

func (c *Client) patchIsRead(ctx context.Context, id string, read bool) (bool, error) {
	headers, err := c.authHeaders(ctx)
	if err != nil {
		return false, err
	}

	body, _ := json.Marshal(map[string]bool{"isRead": read})
	u := fmt.Sprintf("%s/me/messages/%s", c.baseURL, url.PathEscape(id))

	resp, err := c.send("mark", func() (*http.Request, error) {
		return c.newRequest(ctx, http.MethodPatch, u, headers, bytes.NewReader(body))
	})
	if err != nil {
		c.logger.Errorw("graph: request failed", "op", "mark", "class", errClass(err))
		return false, nil
	}
	defer drainClose(resp)

	if resp.StatusCode != http.StatusOK {
		c.logger.Errorw("graph: request rejected", "op", "mark", "status", resp.StatusCode)
		return false, nil
	}
	return true, nil
}

// DeleteEmail permanently deletes one message. Success is the remote's 204.
func (c *Client) DeleteEmail(ctx context.Context, id string) (bool, error) {
	headers, err := c.authHeaders(ctx)
	if err != nil {
		return false, err
	}

	u := fmt.Sprintf("%s/me/messages/%s", c.baseURL, url.PathEscape(id))
	resp, err := c.send("delete", func() (*http.Request, error) {
		return c.newRequest(ctx, http.MethodDelete, u, headers, nil)
	})
	if err != nil {
		c.logger.Errorw("graph: request failed", "op", "delete", "class", errClass(err))
		return false, nil
	}
	defer drainClose(resp)

	if resp.StatusCode != http.StatusNoContent {
		c.logger.Errorw("graph: request rejected", "op", "delete", "status", resp.StatusCode)
		return false, nil
	}

	c.logger.Infow("graph: message deleted", "id_suffix", idSuffix(id))
	return true, nil
}

// DeleteEmails deletes each ID independently and returns how many deletions
// succeeded. There is no rollback: a partial failure leaves the mailbox
// partially deleted.
func (c *Client) DeleteEmails(ctx context.Context, ids []string) (int, error) {
	deleted := 0
	for _, id := range ids {
		ok, err := c.DeleteEmail(ctx, id)
		if err != nil {
			return deleted, err
		}
		if ok {
			deleted++
		}
	}
	return deleted, nil
}

// DeleteByFilter searches by OData filter and deletes every match, up to
// maxDelete. Returns 0 without deleting anything when the search comes back
// empty. reporter may be nil.
func (c *Client) DeleteByFilter(ctx context.Context, filter string, maxDelete int, reporter ProgressReporter) (int, error) {
	if maxDelete <= 0 {
		maxDelete = 50
	}

	matches, err := c.SearchEmails(ctx, filter, maxDelete, nil)
	if err != nil {
		return 0, err
	}
	if len(matches) == 0 {
		c.logger.Info("graph: delete-by-filter matched nothing")
		return 0, nil
	}

	c.logger.Infow("graph: delete-by-filter", "matched", len(matches))
	if reporter != nil {
		reporter.Report(ProgressReport{Step: StepInit, Total: len(matches)})
	}

	deleted := 0
	for i, msg := range matches {
		ok, err := c.DeleteEmail(ctx, msg.ID)
		if err != nil {
			return deleted, err
		}
		if ok {
			deleted++
		}
		if reporter != nil {
			reporter.Report(ProgressReport{Step: StepDelete, Current: i + 1, Total: len(matches)})
		}
	}
	return deleted, nil
}

// idSuffix keeps log lines short; full IDs run to hundreds of characters.
func idSuffix(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[len(id)-8:]
}
