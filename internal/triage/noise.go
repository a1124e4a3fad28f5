// Package triage separates human correspondence from automated noise and
// implements the check-inbox workflow on top of the Graph client.
package triage

import (
	"strings"

	"github.com/uthapjhojho/graphmail/internal/platform/graph"
)

// Static pattern tables. Matching is plain case-insensitive substring
// containment: no tokenization, no word boundaries. A match inside an
// unrelated word still counts, an accepted false-positive tradeoff.

var noiseSenderSubstrings = []string{
	"noreply", "no-reply", "donotreply", "do-not-reply",
	"notifications@", "notification@", "newsletter",
	"mailer-daemon", "postmaster", "automated",
	"bounce@", "alerts@", "admin@",
	"support@microsoft", "teams@", "calendar@",
	"mail@linkedin", "info@linkedin",
	"noreply@email.teams.microsoft.com",
}

var noiseSubjectSubstrings = []string{
	"undeliverable", "delivery status notification",
	"automatic reply", "auto:", "out of office", "ndr:",
	"newsletter", "subscription", "unsubscribe",
	"marketing", "digest", "weekly update", "monthly update",
}

var noiseSenderNames = []string{
	"microsoft teams", "microsoft outlook",
	"linkedin", "mailchimp", "constant contact", "sendgrid",
	"mailer daemon",
}

// Classifier decides whether a message is automated noise. ownerAddress, when
// set, suppresses self-sent mail (replies the owner CCs to themselves loop
// back through the inbox otherwise).
type Classifier struct {
	ownerAddress string
}

// NewClassifier builds a classifier for the given mailbox owner address.
// An empty address disables the self-sent check.
func NewClassifier(ownerAddress string) *Classifier {
	return &Classifier{ownerAddress: strings.ToLower(strings.TrimSpace(ownerAddress))}
}

// IsNoise reports whether msg matches any noise pattern: the owner's own
// address as sender, a known automated sender address or display name, or an
// automated-sounding subject.
func (cl *Classifier) IsNoise(msg *graph.Message) bool {
	fromAddr := msg.FromAddress()
	fromName := msg.FromName()
	subject := strings.ToLower(msg.Subject)

	if cl.ownerAddress != "" && strings.Contains(fromAddr, cl.ownerAddress) {
		return true
	}

	for _, pattern := range noiseSenderSubstrings {
		if strings.Contains(fromAddr, pattern) {
			return true
		}
	}

	for _, pattern := range noiseSenderNames {
		if strings.Contains(fromName, pattern) {
			return true
		}
	}

	for _, pattern := range noiseSubjectSubstrings {
		if strings.Contains(subject, pattern) {
			return true
		}
	}

	return false
}
