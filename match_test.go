package telango

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMatch(t *testing.T) {
	pattern := regexp.MustCompile(`(?P<user>\w+)@(\w+)`)

	// Match a text containing the pattern
	match := NewMatch(pattern, "alice@wonderland rest")

	// Assert that the match carries the full match and the groups
	assert.NotNil(t, match)
	assert.Equal(t, "alice@wonderland", match.Group(0))
	assert.Equal(t, "alice", match.Group(1))
	assert.Equal(t, "wonderland", match.Group(2))
	assert.Equal(t, "alice", match.Named("user"))

	// Match a text not containing the pattern
	match = NewMatch(pattern, "no separator here")

	// Assert that there is no match
	assert.Nil(t, match, "NewMatch should return nil when the pattern does not match")
}

func TestMatch_GroupOutOfRange(t *testing.T) {
	pattern := regexp.MustCompile(`\d+`)
	match := NewMatch(pattern, "order 66")

	// Ask for groups that do not exist
	assert.Equal(t, "66", match.Group(0))
	assert.Equal(t, "", match.Group(1), "an out of range group should be empty")
	assert.Equal(t, "", match.Group(-1), "a negative group should be empty")
	assert.Equal(t, "", match.Named("nope"), "an unknown name should be empty")
}

func TestFindMatches(t *testing.T) {
	pattern := regexp.MustCompile(`(\w+)=(\w+)`)

	// Collect every match of the pattern
	matches := FindMatches(pattern, "a=1 b=2 c=3")

	// Assert that all matches were found in order
	assert.Len(t, matches, 3)
	assert.Equal(t, "a", matches[0].Group(1))
	assert.Equal(t, "2", matches[1].Group(2))
	assert.Equal(t, "c=3", matches[2].Group(0))

	// Collect matches from a text without any
	matches = FindMatches(pattern, "nothing to see")

	// Assert that none were found
	assert.Empty(t, matches)
}
