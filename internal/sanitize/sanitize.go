package sanitize

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const (
	// MaxIdentifierLength matches the limit on IDs carried in log context.
	MaxIdentifierLength = 128

	// hashSuffixLength is the length of "_<8 hex chars>".
	hashSuffixLength = 9

	// DefaultIdentifier is used when sanitization leaves nothing.
	DefaultIdentifier = "unknown"
)

// Identifier rewrites s into the log-safe ID alphabet [A-Za-z0-9_.:-].
// Other runs of characters collapse to a single underscore. Results longer
// than MaxIdentifierLength are truncated with a hash suffix so distinct
// inputs stay distinct.
//
//	"sess-7"               -> "sess-7"
//	"my session/../x"      -> "my_session_.._x"
//	"" or "!!!"            -> "unknown"
func Identifier(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastUnderscore := false
	for _, r := range s {
		if isIDRune(r) {
			b.WriteRune(r)
			lastUnderscore = r == '_'
			continue
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}

	out := strings.Trim(b.String(), "_")
	if out == "" {
		return DefaultIdentifier
	}
	if len(out) > MaxIdentifierLength {
		out = truncateWithHash(out)
	}
	return out
}

func isIDRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_', r == '.', r == ':', r == '-':
		return true
	}
	return false
}

// truncateWithHash shortens s to MaxIdentifierLength as <prefix>_<hash8>.
func truncateWithHash(s string) string {
	hash := sha256.Sum256([]byte(s))
	suffix := "_" + hex.EncodeToString(hash[:])[:8]
	return strings.TrimRight(s[:MaxIdentifierLength-hashSuffixLength], "_") + suffix
}
