// Package ranking filters deduplicated candidates and orders them by desirability.
package ranking

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/core"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/dedup"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/logger"
)

// Options configures one FilterAndRank pass.
type Options struct {
	MaxTotal             int
	MinRelevanceScore    float64
	ExcludeOlderThanDays int
	IncludePreprints     bool
}

// Stats counts how many articles each stage removed.
type Stats struct {
	Input        int `json:"input"`
	Duplicates   int `json:"duplicates"`
	TooOld       int `json:"too_old"`
	Preprints    int `json:"preprints"`
	LowRelevance int `json:"low_relevance"`
	Truncated    int `json:"truncated"`
	Output       int `json:"output"`
}

// Pipeline runs dedup, date, venue and relevance filters, then sorts and truncates.
type Pipeline struct {
	dedup *dedup.Deduplicator
	now   func() time.Time
	log   logger.Logger
}

// New creates a Pipeline. A nil clock means time.Now.
func New(now func() time.Time, log logger.Logger) *Pipeline {
	if now == nil {
		now = time.Now
	}
	return &Pipeline{dedup: dedup.New(), now: now, log: log}
}

// FilterAndRank is FilterAndRankWithStats without the counters.
func (p *Pipeline) FilterAndRank(articles []core.Article, opts Options) []core.Article {
	out, _ := p.FilterAndRankWithStats(articles, opts)
	return out
}

// FilterAndRankWithStats applies the stages strictly in order, each on the
// previous stage's output.
func (p *Pipeline) FilterAndRankWithStats(articles []core.Article, opts Options) ([]core.Article, Stats) {
	stats := Stats{Input: len(articles)}

	current := p.dedup.Dedupe(articles)
	stats.Duplicates = len(articles) - len(current)

	if opts.ExcludeOlderThanDays > 0 {
		cutoff := p.now().AddDate(0, 0, -opts.ExcludeOlderThanDays)
		before := len(current)
		current = keep(current, func(a core.Article) bool { return !a.PublishedAt.Before(cutoff) })
		stats.TooOld = before - len(current)
	}

	if !opts.IncludePreprints {
		before := len(current)
		current = keep(current, func(a core.Article) bool { return a.VenueType != core.VenuePreprint })
		stats.Preprints = before - len(current)
	}

	before := len(current)
	current = keep(current, func(a core.Article) bool { return a.RelevanceScore >= opts.MinRelevanceScore })
	stats.LowRelevance = before - len(current)

	SortByScore(current)

	if opts.MaxTotal > 0 && len(current) > opts.MaxTotal {
		stats.Truncated = len(current) - opts.MaxTotal
		current = current[:opts.MaxTotal]
	}
	stats.Output = len(current)

	p.log.Debug("Filtered and ranked candidates",
		"input", stats.Input,
		"duplicates", stats.Duplicates,
		"too_old", stats.TooOld,
		"preprints", stats.Preprints,
		"low_relevance", stats.LowRelevance,
		"output", stats.Output)

	return current, stats
}

// SortByScore orders articles by relevance, then quality, then recency, all
// descending. Full ties keep their input order.
func SortByScore(articles []core.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		a, b := articles[i], articles[j]
		if a.RelevanceScore != b.RelevanceScore {
			return a.RelevanceScore > b.RelevanceScore
		}
		if a.QualityScore != b.QualityScore {
			return a.QualityScore > b.QualityScore
		}
		return a.PublishedAt.After(b.PublishedAt)
	})
}

func keep(articles []core.Article, pred func(core.Article) bool) []core.Article {
	out := articles[:0:0]
	for _, a := range articles {
		if pred(a) {
			out = append(out, a)
		}
	}
	return out
}

// DiversityScore rewards spread across subfields, venues and topics:
// min(subfields*20, 40) + min(venues*10, 30) + min(topics*2, 30).
// The empty set scores 0.
func DiversityScore(articles []core.Article) float64 {
	subfields, venues, topics := Distinct(articles)
	score := math.Min(float64(subfields)*20, 40) +
		math.Min(float64(venues)*10, 30) +
		math.Min(float64(topics)*2, 30)
	return score
}

// Distinct counts distinct non-empty subfields, venues and topics,
// case-insensitively.
func Distinct(articles []core.Article) (subfields, venues, topics int) {
	sf := make(map[string]struct{})
	vn := make(map[string]struct{})
	tp := make(map[string]struct{})
	for _, a := range articles {
		addKey(sf, a.Subfield)
		addKey(vn, a.Venue)
		for _, t := range a.Topics {
			addKey(tp, t)
		}
	}
	return len(sf), len(vn), len(tp)
}

func addKey(set map[string]struct{}, raw string) {
	k := strings.ToLower(strings.TrimSpace(raw))
	if k != "" {
		set[k] = struct{}{}
	}
}
