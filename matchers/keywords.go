package matchers

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kova98/redditscope.api/enums"
)

// MatchesWholeWord returns true if the keyword appears as a complete word in the text.
// Word boundaries are defined by non-alphanumeric characters or start/end of string.
func MatchesWholeWord(text, keyword string) bool {
	if keyword == "" {
		return false
	}

	idx := 0
	for idx <= len(text) {
		pos := strings.Index(text[idx:], keyword)
		if pos == -1 {
			return false
		}
		pos += idx

		before, _ := utf8.DecodeLastRuneInString(text[:pos])
		leftOk := pos == 0 || !isWordChar(before)

		end := pos + len(keyword)
		after, _ := utf8.DecodeRuneInString(text[end:])
		rightOk := end == len(text) || !isWordChar(after)

		if leftOk && rightOk {
			return true
		}

		_, size := utf8.DecodeRuneInString(text[pos:])
		idx = pos + size
	}
	return false
}

func isWordChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func MatchesPartially(text, keyword string) bool {
	return strings.Contains(text, keyword)
}

// MatchKeywords returns the keywords found in text, in the order they were given
// and with their original casing. Matching is case-insensitive.
func MatchKeywords(text string, keywords []string, mode enums.MatchMode) []string {
	lower := strings.ToLower(text)

	var matched []string
	for _, keyword := range keywords {
		kw := strings.ToLower(strings.TrimSpace(keyword))
		if kw == "" {
			continue
		}

		var ok bool
		switch mode {
		case enums.MatchModeExact:
			ok = MatchesWholeWord(lower, kw)
		default:
			ok = MatchesPartially(lower, kw)
		}
		if ok {
			matched = append(matched, keyword)
		}
	}
	return matched
}

// Normalize trims terms, drops blanks and removes case-insensitive duplicates.
// The first occurrence of a term keeps its position.
func Normalize(terms []string) []string {
	seen := make(map[string]bool, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}
