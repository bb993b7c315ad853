// Package meet generates joinable virtual-consultation links. The format is
// cosmetic; nothing downstream parses it.
package meet

import (
	"crypto/rand"
	"encoding/base32"
	"strings"
)

const DefaultBaseURL = "https://meet.pawcare.app"

var tokenEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewLink returns a fresh meeting URL under baseURL. Assigned once at
// appointment confirmation and never regenerated.
func NewLink(baseURL string) string {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	var b [10]byte
	_, _ = rand.Read(b[:])
	return base + "/" + strings.ToLower(tokenEncoding.EncodeToString(b[:]))
}
