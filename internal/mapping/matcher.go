package mapping

import (
	"regexp"
	"strconv"
	"strings"
)

// Rule configures how an office-location attribute is turned into a desk
// number. When Regex is set it owns the decision entirely; Prefix is only
// consulted when no regex is configured.
type Rule struct {
	Prefix string
	Regex  string
}

// DefaultPrefix is the mapping prefix used when nothing is configured.
const DefaultPrefix = "Desk-"

// strategy attempts to derive a desk number from a trimmed location text.
// applicable reports whether the strategy owns the decision for this rule
// and text; when it does, later strategies are not consulted even if the
// strategy itself found no number.
type strategy interface {
	match(text string, rule Rule) (number int, ok bool, applicable bool)
}

// matchOrder is the fixed precedence: explicit regex, then prefix, then a
// bare numeric extraction over the whole text.
var matchOrder = []strategy{
	regexStrategy{},
	prefixStrategy{},
	numericStrategy{},
}

// MatchDeskNumber resolves a free-text office location to a desk number.
// It returns ok=false when the location is empty or no strategy yields a
// number. A configured regex that matches text without digits also
// resolves to no desk: an explicit rule that produced nothing numeric is
// an operator-visible configuration mismatch, not a cue to guess with a
// weaker rule.
func MatchDeskNumber(locationText string, rule Rule) (int, bool) {
	text := strings.TrimSpace(locationText)
	if text == "" {
		return 0, false
	}

	for _, s := range matchOrder {
		if n, ok, applicable := s.match(text, rule); applicable {
			return n, ok
		}
	}
	return 0, false
}

type regexStrategy struct{}

func (regexStrategy) match(text string, rule Rule) (int, bool, bool) {
	if rule.Regex == "" {
		return 0, false, false
	}
	re, err := regexp.Compile("(?i)" + rule.Regex)
	if err != nil {
		// A broken pattern leaves every user unmapped rather than
		// silently falling back to another rule.
		return 0, false, true
	}
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0, false, true
	}
	candidate := m[0]
	if len(m) > 1 && m[1] != "" {
		candidate = m[1]
	}
	n, ok := parseDigits(candidate)
	return n, ok, true
}

type prefixStrategy struct{}

func (prefixStrategy) match(text string, rule Rule) (int, bool, bool) {
	if rule.Prefix == "" || len(text) < len(rule.Prefix) {
		return 0, false, false
	}
	if !strings.EqualFold(text[:len(rule.Prefix)], rule.Prefix) {
		return 0, false, false
	}
	n, ok := parseDigits(text[len(rule.Prefix):])
	return n, ok, true
}

type numericStrategy struct{}

func (numericStrategy) match(text string, _ Rule) (int, bool, bool) {
	n, ok := parseDigits(text)
	return n, ok, true
}

// parseDigits strips every non-digit rune and parses the remainder. Zero
// digits means no match; sign characters never survive the strip, so the
// result is always non-negative.
func parseDigits(s string) (int, bool) {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(b.String())
	if err != nil {
		return 0, false
	}
	return n, true
}
