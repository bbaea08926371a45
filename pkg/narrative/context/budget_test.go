package context

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCharBudgetFor(t *testing.T) {
	assert.Equal(t, int(8000*RecentTurnsBudgetRatio*CharsPerToken), charBudgetFor(8000))
}

func TestTruncateToBudget_DropsOlderTurnsFirst(t *testing.T) {
	turns := []string{"first turn", "second turn", "third"}
	// "third" (5) + newline (1) = 6, plus "second turn" (11) + newline = 18 fits in 20;
	// adding "first turn" would exceed it, so only the newest two are kept.
	kept := truncateToBudget(turns, 20)
	assert.Equal(t, []string{"second turn", "third"}, kept)
}

func TestTruncateToBudget_TruncatesNewestTurnWhenItAloneExceedsBudget(t *testing.T) {
	turns := []string{"first turn", "second turn", "third turn, the longest of them by far"}
	kept := truncateToBudget(turns, 20)
	assert.Len(t, kept, 1)
	assert.LessOrEqual(t, len(kept[0]), 20)
	assert.True(t, strings.HasPrefix(turns[2], kept[0]))
}

func TestTruncateToBudget_KeepsAllWhenBudgetIsGenerous(t *testing.T) {
	turns := []string{"a", "b", "c"}
	kept := truncateToBudget(turns, 1000)
	assert.Equal(t, turns, kept)
}

func TestTruncateToBudget_TruncatesLoneOversizedTurn(t *testing.T) {
	turns := []string{strings.Repeat("x", 50)}
	kept := truncateToBudget(turns, 10)
	assert.Len(t, kept, 1)
	assert.Len(t, kept[0], 10)
}

func TestTruncateToBudget_ZeroBudgetReturnsNothing(t *testing.T) {
	assert.Nil(t, truncateToBudget([]string{"a", "b"}, 0))
}

func TestDefaultTokenEstimator(t *testing.T) {
	assert.Equal(t, 3, defaultTokenEstimator("twelve characs"))
}
