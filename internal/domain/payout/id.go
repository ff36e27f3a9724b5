package payout

import (
	"strings"

	"github.com/google/uuid"
)

// IDPrefix starts every payout id
const IDPrefix = "PY-"

// NewID generates a payout id of the form PY-XXXXXXXX with uppercase hex digits
func NewID() string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return IDPrefix + strings.ToUpper(hex[:8])
}

// IsValidID reports whether s has the payout id shape
func IsValidID(s string) bool {
	if len(s) != len(IDPrefix)+8 || !strings.HasPrefix(s, IDPrefix) {
		return false
	}
	for _, r := range s[len(IDPrefix):] {
		if !(r >= '0' && r <= '9' || r >= 'A' && r <= 'F') {
			return false
		}
	}
	return true
}
