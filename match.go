package telango

import "regexp"

// Match captures one regular expression match produced while routing an update.
// Handlers attach matches to the context so callbacks can read captured groups
// without running the pattern again.
type Match struct {
	Pattern *regexp.Regexp // Pattern is the expression that produced the match.
	Groups  []string       // Groups holds the whole match followed by the captured groups.
}

// NewMatch runs the pattern against the text and captures the first match.
//
// Args:
//   - pattern: The compiled expression to run.
//   - text: The text to match against.
//
// Returns:
//   - *Match: The captured match, or nil when the text does not match.
func NewMatch(pattern *regexp.Regexp, text string) *Match {
	groups := pattern.FindStringSubmatch(text)
	if groups == nil {
		return nil
	}

	return &Match{Pattern: pattern, Groups: groups}
}

// FindMatches captures every non-overlapping match of the pattern in the text.
//
// Args:
//   - pattern: The compiled expression to run.
//   - text: The text to match against.
//
// Returns:
//   - []*Match: The captured matches in order of occurrence, nil when none.
func FindMatches(pattern *regexp.Regexp, text string) (matches []*Match) {
	for _, groups := range pattern.FindAllStringSubmatch(text, -1) {
		matches = append(matches, &Match{Pattern: pattern, Groups: groups})
	}

	return
}

// Group returns the captured group with the given index.
// Index 0 is the whole match.
//
// Args:
//   - index: The index of the group to return.
//
// Returns:
//   - string: The captured group, empty when the index is out of range.
func (m *Match) Group(index int) string {
	if index < 0 || index >= len(m.Groups) {
		return ""
	}

	return m.Groups[index]
}

// Named returns the group captured under the given name.
//
// Args:
//   - name: The name of the group to return.
//
// Returns:
//   - string: The captured group, empty when the pattern has no such name.
func (m *Match) Named(name string) string {
	if m.Pattern == nil {
		return ""
	}

	return m.Group(m.Pattern.SubexpIndex(name))
}

// String returns the whole matched text.
func (m *Match) String() string {
	return m.Group(0)
}
