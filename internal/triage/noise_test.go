package triage

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/uthapjhojho/graphmail/internal/platform/graph"
)

func msgFrom(addr, name, subject string) *graph.Message {
	return &graph.Message{
		Subject: subject,
		From: &graph.Recipient{
			EmailAddress: graph.EmailAddress{Name: name, Address: addr},
		},
	}
}

func TestIsNoise(t *testing.T) {
	cl := NewClassifier("owner@example.com")

	noisy := []*graph.Message{
		msgFrom("noreply@shop.example", "", "Your order"),
		msgFrom("no-reply@bank.example", "", "Statement ready"),
		msgFrom("mailer-daemon@mx.example", "", "returned mail"),
		msgFrom("bounce@lists.example", "", "hello"),
		msgFrom("owner@example.com", "Owner", "fwd: note to self"),
		msgFrom("colleague@corp.example", "", "Out of Office: back Monday"),
		msgFrom("colleague@corp.example", "", "Undeliverable: weekly sync"),
		msgFrom("friend@example.org", "", "our newsletter grows"),
		msgFrom("updates@svc.example", "Microsoft Teams", "missed activity"),
		msgFrom("jobs@svc.example", "LinkedIn", "5 new jobs for you"),
	}
	for _, msg := range noisy {
		require.True(t, cl.IsNoise(msg), "from=%s subject=%q", msg.FromAddress(), msg.Subject)
	}

	human := []*graph.Message{
		msgFrom("alice@partner.example", "Alice Chen", "Contract question"),
		msgFrom("bob@client.example", "", "Re: meeting tomorrow"),
		msgFrom("carol@example.org", "Carol", ""),
	}
	for _, msg := range human {
		require.False(t, cl.IsNoise(msg), "from=%s subject=%q", msg.FromAddress(), msg.Subject)
	}
}

func TestIsNoiseCaseInsensitive(t *testing.T) {
	cl := NewClassifier("")

	require.True(t, cl.IsNoise(msgFrom("NoReply@Shop.Example", "", "hi")))
	require.True(t, cl.IsNoise(msgFrom("a@b.example", "MAILCHIMP", "hi")))
	require.True(t, cl.IsNoise(msgFrom("a@b.example", "", "OUT OF OFFICE")))
}

func TestIsNoiseSubstringMatchHasNoWordBoundary(t *testing.T) {
	cl := NewClassifier("")

	// "digest" inside an unrelated word still matches; accepted tradeoff
	require.True(t, cl.IsNoise(msgFrom("a@b.example", "", "antidigestant compounds")))
}

func TestIsNoiseWithoutOwnerAddress(t *testing.T) {
	cl := NewClassifier("")

	require.False(t, cl.IsNoise(msgFrom("owner@example.com", "Owner", "plain subject")))
}

func TestIsNoiseHandlesMissingFrom(t *testing.T) {
	cl := NewClassifier("owner@example.com")

	require.False(t, cl.IsNoise(&graph.Message{Subject: "plain subject"}))
	require.True(t, cl.IsNoise(&graph.Message{Subject: "unsubscribe now"}))
}
