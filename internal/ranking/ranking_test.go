package ranking

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/core"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/logger"
)

var fixedNow = time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC)

func newPipeline() *Pipeline {
	return New(func() time.Time { return fixedNow }, logger.Nop())
}

func article(id string, relevance, quality float64, ageDays int) core.Article {
	return core.Article{
		ID:             id,
		SourceID:       id,
		Title:          "Paper " + id,
		RelevanceScore: relevance,
		QualityScore:   quality,
		PublishedAt:    fixedNow.AddDate(0, 0, -ageDays),
		VenueType:      core.VenueJournal,
	}
}

func ids(articles []core.Article) []string {
	out := make([]string, len(articles))
	for i, a := range articles {
		out[i] = a.ID
	}
	return out
}

func TestFilterAndRankStages(t *testing.T) {
	old := article("old", 95, 90, 30)
	preprint := article("pre", 90, 90, 1)
	preprint.VenueType = core.VenuePreprint
	weak := article("weak", 40, 99, 1)
	dupLow := article("a", 80, 50, 2)
	dupHigh := article("a", 85, 70, 2)

	in := []core.Article{
		old, preprint, weak,
		article("b", 70, 60, 3),
		dupLow,
		article("c", 80, 90, 4),
		dupHigh,
	}

	out, stats := newPipeline().FilterAndRankWithStats(in, Options{
		MaxTotal:             10,
		MinRelevanceScore:    60,
		ExcludeOlderThanDays: 14,
		IncludePreprints:     false,
	})

	assert.Equal(t, []string{"a", "c", "b"}, ids(out))
	assert.Equal(t, 85.0, out[0].RelevanceScore, "higher quality duplicate fields win")
	assert.Equal(t, 1, stats.Duplicates)
	assert.Equal(t, 1, stats.TooOld)
	assert.Equal(t, 1, stats.Preprints)
	assert.Equal(t, 1, stats.LowRelevance)
	assert.Equal(t, 3, stats.Output)
}

func TestFilterAndRankKeepsPreprintsWhenAllowed(t *testing.T) {
	p := article("pre", 90, 90, 1)
	p.VenueType = core.VenuePreprint

	out := newPipeline().FilterAndRank([]core.Article{p}, Options{MaxTotal: 5, ExcludeOlderThanDays: 14, IncludePreprints: true})
	assert.Len(t, out, 1)
}

func TestFilterAndRankTruncates(t *testing.T) {
	var in []core.Article
	for i := 0; i < 10; i++ {
		in = append(in, article(fmt.Sprintf("p%d", i), float64(60+i), 50, 1))
	}

	out := newPipeline().FilterAndRank(in, Options{MaxTotal: 4, MinRelevanceScore: 0, ExcludeOlderThanDays: 14, IncludePreprints: true})
	require.Len(t, out, 4)
	assert.Equal(t, []string{"p9", "p8", "p7", "p6"}, ids(out))
}

func TestSortByScoreTieBreaks(t *testing.T) {
	in := []core.Article{
		article("older", 80, 70, 5),
		article("newer", 80, 70, 1),
		article("better", 80, 75, 9),
		article("tie1", 50, 50, 3),
		article("tie2", 50, 50, 3),
	}

	SortByScore(in)
	assert.Equal(t, []string{"better", "newer", "older", "tie1", "tie2"}, ids(in))
}

func TestFilterAndRankOutputIsSorted(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	var in []core.Article
	for i := 0; i < 200; i++ {
		in = append(in, article(fmt.Sprintf("r%d", i), float64(rng.Intn(5)*20), float64(rng.Intn(4)*25), rng.Intn(20)))
	}

	out := newPipeline().FilterAndRank(in, Options{MaxTotal: 100, MinRelevanceScore: 20, ExcludeOlderThanDays: 14, IncludePreprints: true})
	for i := 1; i < len(out); i++ {
		a, b := out[i-1], out[i]
		ok := a.RelevanceScore > b.RelevanceScore ||
			(a.RelevanceScore == b.RelevanceScore && a.QualityScore >= b.QualityScore)
		require.Truef(t, ok, "pair %d out of order: %+v then %+v", i, a, b)
	}
}

func TestFilterAndRankDoesNotMutateInput(t *testing.T) {
	in := []core.Article{article("x", 10, 10, 1), article("y", 90, 10, 1)}
	newPipeline().FilterAndRank(in, Options{MaxTotal: 5, ExcludeOlderThanDays: 14, IncludePreprints: true})
	assert.Equal(t, []string{"x", "y"}, ids(in))
}

func TestDiversityScore(t *testing.T) {
	assert.Equal(t, 0.0, DiversityScore(nil))

	one := []core.Article{{Subfield: "genomics", Venue: "Nature", Topics: []string{"crispr"}}}
	assert.Equal(t, 20.0+10.0+2.0, DiversityScore(one))

	var many []core.Article
	for i := 0; i < 6; i++ {
		many = append(many, core.Article{
			Subfield: fmt.Sprintf("sf%d", i),
			Venue:    fmt.Sprintf("v%d", i),
			Topics:   []string{fmt.Sprintf("t%d", i), fmt.Sprintf("u%d", i), fmt.Sprintf("w%d", i)},
		})
	}
	assert.Equal(t, 100.0, DiversityScore(many), "every term is capped")
}

func TestDistinctIgnoresCaseAndBlanks(t *testing.T) {
	in := []core.Article{
		{Subfield: "Genomics", Venue: "Nature", Topics: []string{"CRISPR", " "}},
		{Subfield: "genomics", Venue: "", Topics: []string{"crispr", "editing"}},
	}
	sf, vn, tp := Distinct(in)
	assert.Equal(t, 1, sf)
	assert.Equal(t, 1, vn)
	assert.Equal(t, 2, tp)
}
