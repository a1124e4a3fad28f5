package validate

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestNormalizeFolder(t *testing.T) {
	aliases := map[string]string{
		"sent":          "sentitems",
		"Sent Items":    "sentitems",
		"junk":          "junkemail",
		"Junk Email":    "junkemail",
		"deleted":       "deleteditems",
		"Deleted Items": "deleteditems",
		"INBOX":         "inbox",
		"drafts":        "drafts",
		"outbox":        "outbox",
		"archive":       "archive",
	}
	for in, want := range aliases {
		got, err := Folder(NormalizeFolder(in))
		require.Nil(t, err)
		require.Equal(t, want, got)
	}

	// unknown names pass through untouched
	require.Equal(t, "CustomFolder", NormalizeFolder("CustomFolder"))
}

func TestFolder(t *testing.T) {
	_, err := Folder("inbox")
	require.Nil(t, err)
	_, err = Folder("My Folder-2")
	require.Nil(t, err)

	for _, bad := range []string{
		"",
		"folder/with/slash",
		"folder.with.dots",
		"folder;drop",
		strings.Repeat("a", 65),
		"名前",
	} {
		_, err := Folder(bad)
		require.True(t, errors.Is(err, ErrInvalidFolder), "folder %q", bad)
	}
}

func TestMessageID(t *testing.T) {
	_, err := MessageID("AAMkAGI2TG93AAA=")
	require.Nil(t, err)
	_, err = MessageID(strings.Repeat("a", 800))
	require.Nil(t, err)

	for _, bad := range []string{
		"",
		"abc/def",
		"../../etc",
		"id with space",
		strings.Repeat("a", 801),
	} {
		_, err := MessageID(bad)
		require.True(t, errors.Is(err, ErrInvalidID), "id %q", bad)
	}
}

func TestFilter(t *testing.T) {
	_, err := Filter("contains(subject,'invoice')")
	require.Nil(t, err)
	_, err = Filter("isRead eq false and receivedDateTime ge 2026-01-01")
	require.Nil(t, err)

	for _, bad := range []string{
		"a; b",
		"x -- y",
		"/* comment */",
		"JAVASCRIPT:alert(1)",
		"Data:text/html",
		"%00",
		strings.Repeat("x", 501),
	} {
		_, err := Filter(bad)
		require.True(t, errors.Is(err, ErrInvalidFilter), "filter %q", bad)
	}
}

func TestRecipients(t *testing.T) {
	_, err := Recipients("a@example.com", "--to")
	require.Nil(t, err)
	_, err = Recipients("a@example.com, b@example.com", "--to")
	require.Nil(t, err)

	// one bad address fails the whole call and names it
	_, err = Recipients("a@example.com, not-an-address", "--cc")
	require.True(t, errors.Is(err, ErrInvalidRecipients))
	require.Contains(t, err.Error(), "not-an-address")
	require.Contains(t, err.Error(), "--cc")

	_, err = Recipients("", "--to")
	require.True(t, errors.Is(err, ErrEmptyRecipients))
	_, err = Recipients(" , ,", "--to")
	require.True(t, errors.Is(err, ErrEmptyRecipients))
}

func TestIsValidEmailAddress(t *testing.T) {
	valid := []string{
		"user@example.com",
		"a1@example.co",
		"user.name+tag@sub.example.org",
		" padded@example.com ",
	}
	for _, addr := range valid {
		require.True(t, IsValidEmailAddress(addr), "address %q", addr)
	}

	invalid := []string{
		"",
		"user..name@example.com", // double dot
		".user@example.com",      // leading dot violates leading-alphanumeric rule
		"user.@example.com",      // dot before @
		"user@.example.com",      // dot after @
		"a@b",                    // no valid TLD
		"user@example.c",         // TLD too short
		"@example.com",
		"user@",
		"user example.com",
		strings.Repeat("a", 64) + "x@example.com", // local part too long
		"u@" + strings.Repeat("a", 250) + ".com",  // over 254 total
	}
	for _, addr := range invalid {
		require.False(t, IsValidEmailAddress(addr), "address %q", addr)
	}
}
