package summarize

import (
	"context"

	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/core"
)

// Options shape the generated prose for one digest.
type Options struct {
	AudienceLevel           core.AudienceLevel
	IncludeTechnicalDetails bool
	EmphasizeApplications   bool
}

// Result is the digest-specific content generated for one article.
type Result struct {
	Summary        string
	WhyThisMatters string
	KeyFindings    []string
	ReadingTime    int // minutes, at least 1
}

// Summarizer produces a Result for one article. Implementations may call
// external services and fail per article; failures are returned as
// *core.SummarizationError.
type Summarizer interface {
	Summarize(ctx context.Context, article core.Article, opts Options) (Result, error)
}

// ReadingTime is the article's own reading time, or an estimate from its
// abstract plus the generated summary.
func ReadingTime(article core.Article, summary string) int {
	if article.ReadingTime > 0 {
		return article.ReadingTime
	}
	return core.EstimateReadingTime(article.Abstract + " " + summary)
}

func failed(article core.Article, err error) error {
	return &core.SummarizationError{ArticleID: article.ID, Err: err}
}
