// Package validate checks user-supplied folder names, message IDs, OData
// filter expressions and recipient addresses before they reach the network
// layer.
package validate

import (
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
)

var (
	ErrInvalidFolder     = errors.New("invalid folder name")
	ErrInvalidID         = errors.New("invalid message ID")
	ErrInvalidFilter     = errors.New("invalid filter expression")
	ErrInvalidRecipients = errors.New("invalid recipient address")
	ErrEmptyRecipients   = errors.New("no recipient addresses given")
)

var (
	folderRe = regexp.MustCompile(`^[a-zA-Z0-9_\- ]{1,64}$`)
	// Graph message IDs are base64url encoded. "/" is excluded so an ID can
	// never be read as an extra URL path segment.
	messageIDRe = regexp.MustCompile(`^[A-Za-z0-9\-_=]{1,800}$`)

	emailRe = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._%+\-]{0,63}@[a-zA-Z0-9][a-zA-Z0-9.\-]{0,253}\.[a-zA-Z]{2,}$`)
)

// folderAliases maps human-readable folder names to Graph well-known names.
var folderAliases = map[string]string{
	"sent items":    "sentitems",
	"sent":          "sentitems",
	"deleted items": "deleteditems",
	"deleted":       "deleteditems",
	"junk email":    "junkemail",
	"junk":          "junkemail",
	"inbox":         "inbox",
	"drafts":        "drafts",
	"outbox":        "outbox",
	"archive":       "archive",
}

// filter substrings that have no place in a Graph OData filter
var filterDenylist = []string{";", "--", "/*", "*/", "%00", "javascript:", "data:"}

const maxFilterLen = 500

// NormalizeFolder maps human-readable folder names to Graph well-known
// names. Unknown names pass through unchanged.
func NormalizeFolder(name string) string {
	if canonical, ok := folderAliases[strings.ToLower(name)]; ok {
		return canonical
	}
	return name
}

// Folder validates a folder name: 1-64 characters, letters, digits,
// underscore, hyphen and space only.
func Folder(name string) (string, error) {
	if !folderRe.MatchString(name) {
		return "", errors.Wrapf(ErrInvalidFolder, "%q", name)
	}
	return name, nil
}

// MessageID validates a Graph message ID.
func MessageID(id string) (string, error) {
	if !messageIDRe.MatchString(id) {
		return "", ErrInvalidID
	}
	return id, nil
}

// Filter rejects filter expressions that are too long or contain obviously
// dangerous tokens. It is a defense-in-depth guard, not an OData parser:
// a well-shaped but syntactically broken filter still passes.
func Filter(expr string) (string, error) {
	if len(expr) > maxFilterLen {
		return "", errors.Wrapf(ErrInvalidFilter, "longer than %d characters", maxFilterLen)
	}
	lower := strings.ToLower(expr)
	for _, pat := range filterDenylist {
		if strings.Contains(lower, pat) {
			return "", ErrInvalidFilter
		}
	}
	return expr, nil
}

// Recipients validates a comma-separated address list. Every address must
// pass IsValidEmailAddress and at least one address must be present. The
// returned error names all offending addresses.
func Recipients(value, field string) (string, error) {
	var addresses, invalid []string
	for _, part := range strings.Split(value, ",") {
		addr := strings.TrimSpace(part)
		if addr == "" {
			continue
		}
		addresses = append(addresses, addr)
		if !IsValidEmailAddress(addr) {
			invalid = append(invalid, addr)
		}
	}
	if len(invalid) > 0 {
		return "", errors.Wrapf(ErrInvalidRecipients, "%s: %s", field, strings.Join(invalid, ", "))
	}
	if len(addresses) == 0 {
		return "", errors.Wrapf(ErrEmptyRecipients, "%s", field)
	}
	return value, nil
}

// IsValidEmailAddress reports whether address is a syntactically acceptable
// email address. RFC 5321 length limit enforced; consecutive dots and dots
// adjacent to "@" are rejected.
func IsValidEmailAddress(address string) bool {
	address = strings.TrimSpace(address)
	if address == "" || len(address) > 254 {
		return false
	}
	if !emailRe.MatchString(address) {
		return false
	}
	for _, forbidden := range []string{"..", ".@", "@."} {
		if strings.Contains(address, forbidden) {
			return false
		}
	}
	return true
}
