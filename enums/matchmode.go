package enums

import (
	"fmt"
	"strings"
)

type MatchMode string

const (
	MatchModeInvalid MatchMode = ""

	// MatchModeBroad allows partial matches within words.
	// For example, the keyword "cat" will match "cat", "catalog", and "concatenate".
	MatchModeBroad MatchMode = "broad"

	// MatchModeExact requires an exact match of the whole word.
	// For example, the keyword "cat" will match "cat" but not "catalog" or "concatenate".
	MatchModeExact MatchMode = "exact"
)

func ParseMatchMode(s string) (MatchMode, error) {
	switch MatchMode(strings.ToLower(strings.TrimSpace(s))) {
	case MatchModeBroad:
		return MatchModeBroad, nil
	case MatchModeExact:
		return MatchModeExact, nil
	}
	return MatchModeInvalid, fmt.Errorf("invalid match mode: %q", s)
}
