/*
identity.go - Identifier normalization and booking id generation

PURPOSE:
  Older records persisted center ids and phone numbers as either numeric
  or text. This file owns the single coercion step that turns whatever
  the store hands back into one canonical text form, so the ambiguity
  never leaks into lookup or aggregation logic.

BOOKING IDS:
  Historically ids were "BKG" + unix seconds, which collides when two
  bookings land in the same second. Ids keep the human-readable prefix
  but append a random fragment to make concurrent creation safe.
*/
package booking

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CanonicalID normalizes a legacy identifier value (numeric or text) to
// its canonical text form. Integral floats lose their fraction marker:
// 7, 7.0, "7" and " 7 " all canonicalize to "7".
func CanonicalID(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case []byte:
		return strings.TrimSpace(string(x))
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

// CanonicalPhone normalizes a phone number for exact-match lookup.
func CanonicalPhone(s string) string {
	return strings.TrimSpace(s)
}

// IsDigits reports whether s is a non-empty run of ASCII digits, i.e.
// whether a legacy numeric representation of s could exist.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// NewID generates a booking identifier: readable creation time plus a
// random fragment so same-second creations cannot collide.
func NewID(now time.Time) string {
	return fmt.Sprintf("BKG%d-%s", now.Unix(), uuid.NewString()[:8])
}
