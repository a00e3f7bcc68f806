// Package selection picks the featured subset of ranked articles under a
// reading-time budget.
package selection

import (
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/core"
)

const (
	// BufferMinutes is how far the running reading time may exceed the target.
	BufferMinutes = 5
	// DefaultReadingTime is assumed for articles that carry none.
	DefaultReadingTime = 5
	// MinReadingTime is the floor applied to every estimate.
	MinReadingTime = 3
)

// Options bound the selection.
type Options struct {
	MaxArticles       int
	MinArticles       int
	TargetReadingTime int // minutes
}

// EstimatedReadingTime is the reading time charged against the budget.
func EstimatedReadingTime(a core.Article) int {
	rt := a.ReadingTime
	if rt <= 0 {
		rt = DefaultReadingTime
	}
	if rt < MinReadingTime {
		return MinReadingTime
	}
	return rt
}

// Select walks ranked (best first) and greedily admits articles while the
// count stays under MaxArticles and the estimated reading time stays within
// TargetReadingTime plus BufferMinutes. Once MinArticles is met, the first
// candidate that would break the budget ends selection. If fewer than
// MinArticles were admitted, the best remaining candidates are appended in
// rank order regardless of budget.
func Select(ranked []core.Article, opts Options) []core.Article {
	limit := opts.TargetReadingTime + BufferMinutes
	selected := make([]core.Article, 0, opts.MaxArticles)
	taken := make([]bool, len(ranked))
	sum := 0

	for i, a := range ranked {
		if len(selected) >= opts.MaxArticles {
			break
		}
		est := EstimatedReadingTime(a)
		if sum+est <= limit {
			selected = append(selected, a)
			taken[i] = true
			sum += est
			continue
		}
		if len(selected) >= opts.MinArticles {
			break
		}
	}

	for i := 0; i < len(ranked) && len(selected) < opts.MinArticles; i++ {
		if taken[i] {
			continue
		}
		selected = append(selected, ranked[i])
		taken[i] = true
	}

	return selected
}

// TotalReadingTime sums EstimatedReadingTime over articles.
func TotalReadingTime(articles []core.Article) int {
	total := 0
	for _, a := range articles {
		total += EstimatedReadingTime(a)
	}
	return total
}
