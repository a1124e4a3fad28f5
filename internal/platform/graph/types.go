package graph

import (
	"strings"
	"time"
)

// EmailAddress is the address/name pair Graph nests inside recipients.
type EmailAddress struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address"`
}

// Recipient wraps an EmailAddress the way Graph message payloads expect.
type Recipient struct {
	EmailAddress EmailAddress `json:"emailAddress"`
}

// ItemBody is a message body with its content type ("Text" or "HTML").
type ItemBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

// Message is a mail message as returned by Graph. Only the fields this
// client consumes are mapped; ID is an opaque token and is never parsed.
type Message struct {
	ID               string     `json:"id"`
	Subject          string     `json:"subject"`
	From             *Recipient `json:"from,omitempty"`
	ReceivedDateTime time.Time  `json:"receivedDateTime"`
	IsRead           bool       `json:"isRead"`
	BodyPreview      string     `json:"bodyPreview,omitempty"`
	Body             *ItemBody  `json:"body,omitempty"`
}

// FromAddress returns the sender address, lower-cased, or "".
func (m *Message) FromAddress() string {
	if m.From == nil {
		return ""
	}
	return strings.ToLower(m.From.EmailAddress.Address)
}

// FromName returns the sender display name, lower-cased, or "".
func (m *Message) FromName() string {
	if m.From == nil {
		return ""
	}
	return strings.ToLower(m.From.EmailAddress.Name)
}

// Folder is a mail folder with its message counters.
type Folder struct {
	ID              string `json:"id"`
	DisplayName     string `json:"displayName"`
	TotalItemCount  int    `json:"totalItemCount"`
	UnreadItemCount int    `json:"unreadItemCount"`
}

// Draft describes an outgoing message. Each recipient slice entry may itself
// be a comma-joined list; entries are split, trimmed and validated before
// sending.
type Draft struct {
	To      []string
	Cc      []string
	Bcc     []string
	Subject string
	Body    string
	HTML    bool
}

type sendMailMessage struct {
	Subject       string      `json:"subject"`
	Body          ItemBody    `json:"body"`
	ToRecipients  []Recipient `json:"toRecipients"`
	CcRecipients  []Recipient `json:"ccRecipients,omitempty"`
	BccRecipients []Recipient `json:"bccRecipients,omitempty"`
}

type sendMailPayload struct {
	Message         sendMailMessage `json:"message"`
	SaveToSentItems bool            `json:"saveToSentItems"`
}

type messagePage struct {
	Value    []Message `json:"value"`
	NextLink string    `json:"@odata.nextLink,omitempty"`
}

type folderPage struct {
	Value []Folder `json:"value"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}
