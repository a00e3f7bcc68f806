package dedup

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/core"
)

func keys(articles []core.Article) map[string]bool {
	out := make(map[string]bool, len(articles))
	for _, a := range articles {
		out[a.IdentityKey()] = true
	}
	return out
}

func TestDedupeMergesByDOI(t *testing.T) {
	fetched := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	first := core.Article{
		ID: "a1", DOI: "10.1/abc", Title: "Original", QualityScore: 50,
		Tags: []string{"x"}, Topics: []string{"t1"}, RelatedArticles: []string{"r1"},
		FetchedAt: fetched, ProcessingStatus: core.StatusFetched,
	}
	better := core.Article{
		ID: "b1", DOI: "10.1/ABC", Title: "Better copy", QualityScore: 80,
		Tags: []string{"y", "x"}, Topics: []string{"t2"}, RelatedArticles: []string{"r2"},
		FetchedAt: fetched.Add(time.Hour), ProcessingStatus: core.StatusScored,
	}

	out, stats := New().DedupeWithStats([]core.Article{first, better})
	require.Len(t, out, 1)

	got := out[0]
	assert.Equal(t, "Better copy", got.Title, "higher quality duplicate should win fields")
	assert.Equal(t, 80.0, got.QualityScore)
	assert.Equal(t, "a1", got.ID, "original id is preserved")
	assert.Equal(t, fetched, got.FetchedAt, "fetch timestamp is preserved")
	assert.Equal(t, core.StatusFetched, got.ProcessingStatus, "processing status is preserved")
	assert.Equal(t, []string{"x", "y"}, got.Tags)
	assert.Equal(t, []string{"t1", "t2"}, got.Topics)
	assert.Equal(t, []string{"r1", "r2"}, got.RelatedArticles)
	assert.Equal(t, 1, stats.Merged)
	assert.Equal(t, 1, stats.Replaced)
}

func TestDedupeKeepsFirstOnEqualQuality(t *testing.T) {
	a := core.Article{ID: "a", SourceID: "2401.1", Title: "First", QualityScore: 70, Tags: []string{"a"}}
	b := core.Article{ID: "b", SourceID: "2401.1", Title: "Second", QualityScore: 70, Tags: []string{"b"}}

	out := New().Dedupe([]core.Article{a, b})
	require.Len(t, out, 1)
	assert.Equal(t, "First", out[0].Title)
	assert.Equal(t, []string{"a", "b"}, out[0].Tags)
}

func TestDedupeTitleFallbackMergesIdenticalTitles(t *testing.T) {
	a := core.Article{ID: "a", Title: "Attention Is All You Need", Venue: "NeurIPS"}
	b := core.Article{ID: "b", Title: "attention is all you need!", Venue: "Some Workshop"}

	out := New().Dedupe([]core.Article{a, b})
	assert.Len(t, out, 1, "title-only identity merges across venues")
}

func TestDedupeDoesNotMutateInput(t *testing.T) {
	a := core.Article{ID: "a", DOI: "10.1/x", Tags: []string{"a"}}
	b := core.Article{ID: "b", DOI: "10.1/x", Tags: []string{"b"}}
	in := []core.Article{a, b}

	New().Dedupe(in)
	assert.Equal(t, []string{"a"}, in[0].Tags)
}

func TestDedupeProperties(t *testing.T) {
	var in []core.Article
	for i := 0; i < 30; i++ {
		a := core.Article{ID: fmt.Sprintf("id-%d", i), Title: fmt.Sprintf("Paper %d", i%11), QualityScore: float64(i)}
		switch i % 3 {
		case 0:
			a.DOI = fmt.Sprintf("10.5/%d", i%7)
		case 1:
			a.SourceID = fmt.Sprintf("src-%d", i%5)
		}
		in = append(in, a)
	}

	d := New()
	once := d.Dedupe(in)
	twice := d.Dedupe(once)

	assert.LessOrEqual(t, len(once), len(in))
	assert.Equal(t, keys(once), keys(twice), "dedupe is idempotent")
	assert.Equal(t, len(once), len(twice))
	assert.Equal(t, keys(in), keys(once), "every identity key survives")
}

func TestScenarioTwoSourcesWithDOIDuplicates(t *testing.T) {
	var sourceA, sourceB []core.Article
	for i := 0; i < 5; i++ {
		sourceA = append(sourceA, core.Article{ID: fmt.Sprintf("a%d", i), DOI: fmt.Sprintf("10.9/%d", i), Source: "arxiv"})
	}
	// three of source B's records share DOIs with source A
	for i := 2; i < 7; i++ {
		sourceB = append(sourceB, core.Article{ID: fmt.Sprintf("b%d", i), DOI: fmt.Sprintf("10.9/%d", i), Source: "crossref"})
	}

	out := New().Dedupe(append(sourceA, sourceB...))
	assert.Len(t, out, 7)
}
