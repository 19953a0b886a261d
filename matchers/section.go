package matchers

import (
	"errors"
	"regexp"
	"strings"
)

var sectionPattern = regexp.MustCompile(`^[A-Za-z0-9_]{2,21}$`)

var ErrInvalidSection = errors.New("section must be 2-21 characters of letters, digits or underscores")

// NormalizeSection strips whitespace and a leading "r/" or "/r/" from a section name.
func NormalizeSection(name string) (string, error) {
	name = strings.TrimSpace(name)
	name = strings.TrimPrefix(name, "/")
	if len(name) > 2 && strings.EqualFold(name[:2], "r/") {
		name = name[2:]
	}

	if !sectionPattern.MatchString(name) {
		return "", ErrInvalidSection
	}
	return name, nil
}

// SameSection compares section names the way Reddit does, ignoring case.
func SameSection(a, b string) bool {
	return strings.EqualFold(a, b)
}

// NormalizeSections normalizes every name and drops case-insensitive
// duplicates, keeping the first spelling. Names that fail validation are
// returned in invalid, trimmed, in input order.
func NormalizeSections(names []string) (valid, invalid []string) {
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		normalized, err := NormalizeSection(name)
		if err != nil {
			invalid = append(invalid, strings.TrimSpace(name))
			continue
		}
		key := strings.ToLower(normalized)
		if seen[key] {
			continue
		}
		seen[key] = true
		valid = append(valid, normalized)
	}
	return valid, invalid
}
