package quality

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore_Empty(t *testing.T) {
	assert.Equal(t, float32(0.0), Score(""))
}

func TestScore_GoodProse(t *testing.T) {
	s := Score("Hello world. This is a test of ordinary English prose, with punctuation and spacing.")
	assert.Greater(t, s, float32(0.5))
}

func TestScore_Gibberish(t *testing.T) {
	s := Score("xzqv jklm wqrt zzzz bbbb cccc")
	assert.Less(t, s, float32(0.6))
}

func TestIsGibberish(t *testing.T) {
	assert.True(t, IsGibberish("bcdfg hjklm nqrst vwxz"))
	assert.False(t, IsGibberish("the quick brown fox jumps over the lazy dog"))
	assert.True(t, IsGibberish(""))
}

func TestHasTables_PipeSeparator(t *testing.T) {
	assert.True(t, HasTables("a | b | c"))
}

func TestHasTables_TabSeparator(t *testing.T) {
	assert.True(t, HasTables("a\tb\tc"))
}

func TestHasTables_AlignedColumns(t *testing.T) {
	text := strings.Join([]string{
		"Name  Age  City",
		"Alice  30  NYC",
		"Bob    25  LA",
	}, "\n")
	_ = HasTables(text) // alignment-based detection is best-effort; just must not panic
}

func TestHasTables_NoTable(t *testing.T) {
	assert.False(t, HasTables("Just a normal paragraph of text with no tabular structure at all."))
}

func TestScore_ExcludesUndefinedChecks(t *testing.T) {
	// Whitespace-only text has no tokens and no non-space characters, so the
	// dictionary-word and alphabetic-ratio checks are undefined and excluded;
	// the score must still not divide by zero.
	s := Score("   ")
	assert.GreaterOrEqual(t, s, float32(0))
	assert.LessOrEqual(t, s, float32(1))
}
