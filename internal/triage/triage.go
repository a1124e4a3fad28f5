package triage

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/uthapjhojho/graphmail/internal/platform/graph"
)

const previewLimit = 100

// Mailbox is the slice of the Graph client the workflow needs.
type Mailbox interface {
	ListEmails(ctx context.Context, opts graph.ListOptions) ([]graph.Message, error)
	MarkAsRead(ctx context.Context, id string) (bool, error)
}

// Item is one human-relevant message, reduced to what a notification needs.
type Item struct {
	From       string    `json:"from"`
	Subject    string    `json:"subject"`
	Preview    string    `json:"preview"`
	ReceivedAt time.Time `json:"receivedAt,omitzero"`
}

// Report is the check-inbox result. RealCount == 0 means nothing worth
// notifying about.
type Report struct {
	RealCount int    `json:"real_count"`
	Emails    []Item `json:"emails"`
}

// Workflow fetches unread mail, marks it seen, and keeps only the non-noise
// subset.
type Workflow struct {
	mailbox    Mailbox
	classifier *Classifier
	logger     *zap.SugaredLogger
}

// NewWorkflow builds the check-inbox workflow. A nil logger disables
// logging.
func NewWorkflow(mailbox Mailbox, classifier *Classifier, logger *zap.SugaredLogger) *Workflow {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Workflow{mailbox: mailbox, classifier: classifier, logger: logger}
}

// CheckInbox fetches up to top unread inbox messages, marks every one of
// them read before classification, noise included, so no message is
// reported twice across runs, then returns only the non-noise subset. A
// failed mark is logged and the batch continues; that message may resurface
// on the next run. The only error returned is the client's
// ErrAuthUnavailable.
func (w *Workflow) CheckInbox(ctx context.Context, top int) (*Report, error) {
	if top <= 0 {
		top = 10
	}

	unread, err := w.mailbox.ListEmails(ctx, graph.ListOptions{
		Folder:     "inbox",
		Top:        top,
		UnreadOnly: true,
	})
	if err != nil {
		return nil, err
	}

	report := &Report{Emails: []Item{}}
	for i := range unread {
		msg := &unread[i]
		if msg.ID == "" {
			continue
		}

		if ok, err := w.mailbox.MarkAsRead(ctx, msg.ID); err != nil {
			return nil, err
		} else if !ok {
			w.logger.Warnw("triage: mark-as-read failed, message may resurface", "subject", msg.Subject)
		}

		if w.classifier.IsNoise(msg) {
			continue
		}

		report.Emails = append(report.Emails, Item{
			From:       formatSender(msg),
			Subject:    subjectOrPlaceholder(msg.Subject),
			Preview:    truncate(msg.BodyPreview, previewLimit),
			ReceivedAt: msg.ReceivedDateTime,
		})
	}

	report.RealCount = len(report.Emails)
	w.logger.Infow("triage: inbox checked", "fetched", len(unread), "real", report.RealCount)
	return report, nil
}

func formatSender(msg *graph.Message) string {
	addr := msg.FromAddress()
	if name := msg.FromName(); name != "" {
		return fmt.Sprintf("%s <%s>", name, addr)
	}
	return addr
}

func subjectOrPlaceholder(subject string) string {
	if subject == "" {
		return "(no subject)"
	}
	return subject
}

// truncate limits s to at most limit characters, never splitting a rune.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
