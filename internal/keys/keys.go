// Package keys implements the physical key scheme: a logical key followed by
// the namespace token.
package keys

import (
	"strings"

	"github.com/unkn0wn-root/nsmap/internal/glob"
)

// Physical returns the store key for a logical key in the given namespace.
func Physical(logical, token string) string {
	return logical + token
}

// Logical strips exactly one trailing token. ok is false when the key does
// not belong to the namespace.
func Logical(physical, token string) (string, bool) {
	if !strings.HasSuffix(physical, token) {
		return "", false
	}
	return physical[:len(physical)-len(token)], true
}

// Pattern returns the scan pattern matching every key of a namespace.
// Metacharacters inside the token are escaped.
func Pattern(token string) string {
	return "*" + glob.Escape(token)
}
