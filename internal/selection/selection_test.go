package selection

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/core"
)

func ranked(times ...int) []core.Article {
	out := make([]core.Article, len(times))
	for i, rt := range times {
		out[i] = core.Article{ID: fmt.Sprintf("a%d", i), ReadingTime: rt}
	}
	return out
}

func ids(articles []core.Article) []string {
	out := make([]string, len(articles))
	for i, a := range articles {
		out[i] = a.ID
	}
	return out
}

func defaults() Options {
	return Options{MaxArticles: 5, MinArticles: 3, TargetReadingTime: 15}
}

func TestEstimatedReadingTime(t *testing.T) {
	assert.Equal(t, 5, EstimatedReadingTime(core.Article{}))
	assert.Equal(t, 3, EstimatedReadingTime(core.Article{ReadingTime: 1}))
	assert.Equal(t, 8, EstimatedReadingTime(core.Article{ReadingTime: 8}))
}

func TestSelectTwentyFiveMinuteArticles(t *testing.T) {
	in := make([]int, 20)
	for i := range in {
		in[i] = 5
	}

	out := Select(ranked(in...), defaults())
	// 4 x 5 = 20 fits the 15 + 5 buffer exactly; the fifth would reach 25.
	assert.Equal(t, []string{"a0", "a1", "a2", "a3"}, ids(out))
}

func TestSelectRespectsMax(t *testing.T) {
	out := Select(ranked(3, 3, 3, 3, 3, 3, 3), defaults())
	assert.Len(t, out, 5)
}

func TestSelectSkipsOverBudgetUntilMinimum(t *testing.T) {
	// a0 fits, a1 is too long and skipped, a2 and a3 fit.
	out := Select(ranked(10, 15, 4, 4, 4), defaults())
	assert.Equal(t, []string{"a0", "a2", "a3"}, ids(out))
}

func TestSelectStopsAtFirstOverBudgetOnceMinimumMet(t *testing.T) {
	// a3 breaks the budget after three are selected; a4 would fit but is never reached.
	out := Select(ranked(5, 5, 5, 10, 3), defaults())
	assert.Equal(t, []string{"a0", "a1", "a2"}, ids(out))
}

func TestSelectBackfillsIgnoringBudget(t *testing.T) {
	out := Select(ranked(12, 30, 40, 50), defaults())
	require.Len(t, out, 3)
	assert.Equal(t, []string{"a0", "a1", "a2"}, ids(out), "backfill follows rank order")
	assert.Greater(t, TotalReadingTime(out), defaults().TargetReadingTime+BufferMinutes)
}

func TestSelectFewerCandidatesThanMinimumReturnsAll(t *testing.T) {
	out := Select(ranked(30, 2), defaults())
	assert.ElementsMatch(t, []string{"a0", "a1"}, ids(out))
}

func TestSelectCountBounds(t *testing.T) {
	cases := [][]int{
		{1, 1, 1, 1, 1, 1, 1, 1},
		{20, 20, 20, 20},
		{5, 25, 5, 25, 5, 25},
		{0, 0, 0, 0, 0, 0},
		{7, 7, 7},
	}
	opts := defaults()
	for i, times := range cases {
		out := Select(ranked(times...), opts)
		assert.GreaterOrEqualf(t, len(out), opts.MinArticles, "case %d", i)
		assert.LessOrEqualf(t, len(out), opts.MaxArticles, "case %d", i)
	}
}
