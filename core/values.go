package core

import (
	"errors"
	"math"
	"strings"

	"github.com/oklog/ulid/v2"
)

const (
	// MaxRoomNameLength is the number of visible characters kept from a room
	// name before it is truncated with an ellipsis marker.
	MaxRoomNameLength = 20

	// MaxVersion is the largest value a room version can take before it wraps
	// back to 1. Kept at 32 bits so version payloads stay exact for JSON
	// consumers.
	MaxVersion = math.MaxInt32
)

// NewRoomID returns a fresh server-generated room identifier. Clients treat
// room ids as opaque strings.
func NewRoomID() string {
	return ulid.Make().String()
}

// ParseRoomID trims and validates a client-supplied room identifier. It
// reports false for blank input; unknown and unparsable ids are handled
// uniformly as "room not found" by callers.
func ParseRoomID(value string) (string, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", false
	}
	return trimmed, true
}

// NormalizeRoomName trims a display name for a room and truncates it to
// MaxRoomNameLength visible characters, appending "..." when longer.
func NormalizeRoomName(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", errors.New("room name is required")
	}
	runes := []rune(trimmed)
	if len(runes) > MaxRoomNameLength {
		trimmed = string(runes[:MaxRoomNameLength]) + "..."
	}
	return trimmed, nil
}

// NormalizeLanguage lower-cases and trims a language tag. Membership in the
// configured allow-list is checked separately by a LanguageValidator.
func NormalizeLanguage(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// NormalizeDisplayName trims a participant display name.
func NormalizeDisplayName(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", errors.New("display name is required")
	}
	return trimmed, nil
}

// NextVersion advances a room version by one, wrapping from MaxVersion back
// to 1 so the counter never becomes zero or negative.
func NextVersion(version int) int {
	if version >= MaxVersion {
		return 1
	}
	return version + 1
}
