// Package composer turns ranked candidates into a finished weekly digest.
package composer

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/config"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/core"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/fields"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/logger"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/narrative"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/ranking"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/selection"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/summarize"
)

// Options controls digest shape and prose.
type Options struct {
	MaxArticles             int
	MinArticles             int
	TargetReadingTime       int
	AudienceLevel           core.AudienceLevel
	IncludeTechnicalDetails bool
	EmphasizeApplications   bool
	EditorialStyle          core.EditorialStyle
}

// DefaultOptions matches the content configuration defaults.
func DefaultOptions() Options {
	return FromContentConfig(config.DefaultContentConfig())
}

// FromContentConfig maps content configuration onto composition options.
func FromContentConfig(c config.ContentConfig) Options {
	return Options{
		MaxArticles:             c.MaxArticlesPerDigest,
		MinArticles:             c.MinArticlesPerDigest,
		TargetReadingTime:       c.TargetReadingTime,
		AudienceLevel:           c.AudienceLevel,
		IncludeTechnicalDetails: c.IncludeTechnicalDetails,
		EmphasizeApplications:   c.EmphasizeApplications,
		EditorialStyle:          c.EditorialStyle,
	}
}

func (o Options) validate() error {
	switch {
	case o.MinArticles < 1:
		return &core.ConfigurationError{Field: "min_articles", Message: "must be at least 1"}
	case o.MaxArticles < o.MinArticles:
		return &core.ConfigurationError{Field: "max_articles", Message: "must be at least min_articles"}
	case o.TargetReadingTime < 1:
		return &core.ConfigurationError{Field: "target_reading_time", Message: "must be at least 1"}
	}
	switch o.EditorialStyle {
	case core.StyleAcademic, core.StyleConversational, core.StyleProfessional:
	default:
		return &core.ConfigurationError{Field: "editorial_style", Message: fmt.Sprintf("unknown style %q", o.EditorialStyle)}
	}
	switch o.AudienceLevel {
	case core.AudienceBeginner, core.AudienceIntermediate, core.AudienceAdvanced:
	default:
		return &core.ConfigurationError{Field: "audience_level", Message: fmt.Sprintf("unknown audience level %q", o.AudienceLevel)}
	}
	return nil
}

// Result is a composed digest plus what went wrong along the way.
type Result struct {
	Digest   *core.ComposedDigest
	Selected int
	Failures []error // per-article summarization failures
	Warnings []string
}

// Composer orchestrates selection, summarization, narrative and metrics.
type Composer struct {
	summarizer  summarize.Summarizer
	narrative   *narrative.Generator
	registry    *fields.Registry
	log         logger.Logger
	now         func() time.Time
	concurrency int
}

// Option configures a Composer.
type Option func(*Composer)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Composer) { c.now = now }
}

// WithConcurrency bounds parallel summarization calls. Zero or less means unbounded.
func WithConcurrency(n int) Option {
	return func(c *Composer) { c.concurrency = n }
}

// New creates a Composer.
func New(s summarize.Summarizer, gen *narrative.Generator, registry *fields.Registry, log logger.Logger, opts ...Option) *Composer {
	c := &Composer{
		summarizer: s,
		narrative:  gen,
		registry:   registry,
		log:        log,
		now:        time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Compose builds the digest for field from ranked articles.
//
// Summarization runs in parallel and waits for every article; an article
// whose summarization fails is logged and left out. Compose fails with a
// *core.CompositionError only when no article survives.
func (c *Composer) Compose(ctx context.Context, articles []core.Article, field core.FieldID, opts Options) (*Result, error) {
	start := c.now()

	profile, err := c.registry.Get(field)
	if err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	selected := selection.Select(articles, selection.Options{
		MaxArticles:       opts.MaxArticles,
		MinArticles:       opts.MinArticles,
		TargetReadingTime: opts.TargetReadingTime,
	})
	if len(selected) == 0 {
		return nil, &core.CompositionError{Field: field, Reason: "no candidate articles to select from"}
	}

	composed, failures := c.summarizeAll(ctx, selected, summarize.Options{
		AudienceLevel:           opts.AudienceLevel,
		IncludeTechnicalDetails: opts.IncludeTechnicalDetails,
		EmphasizeApplications:   opts.EmphasizeApplications,
	})
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("compose digest for %s: %w", field, err)
	}
	if len(composed) == 0 {
		return nil, &core.CompositionError{
			Field:  field,
			Reason: fmt.Sprintf("all %d selected articles failed summarization", len(selected)),
		}
	}

	for i := range composed {
		composed[i].Position = i + 1
		if i < len(composed)-1 {
			composed[i].Transition = c.narrative.Transition(composed[i].Article, composed[i+1].Article)
		}
	}

	composedAt := c.now()
	year, week := composedAt.ISOWeek()
	nc := narrative.Context{
		Field:      profile,
		Articles:   composed,
		Style:      opts.EditorialStyle,
		WeekNumber: week,
		Year:       year,
	}

	digest := &core.ComposedDigest{
		ID:               core.DigestID(field, year, week),
		Field:            field,
		WeekNumber:       week,
		Year:             year,
		Introduction:     c.narrative.Introduction(nc),
		FeaturedArticles: composed,
		Methodology:      c.narrative.Methodology(nc),
		Conclusion:       c.narrative.Conclusion(nc),
		TotalReadingTime: totalReadingTime(composed),
		QualityMetrics:   Metrics(composed),
		ComposedAt:       composedAt,
	}
	digest.CompositionTime = c.now().Sub(start)

	result := &Result{Digest: digest, Selected: len(selected), Failures: failures}
	if len(failures) > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%d of %d selected articles failed summarization", len(failures), len(selected)))
	}
	if len(composed) < opts.MinArticles {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("digest has %d articles, below the minimum of %d", len(composed), opts.MinArticles))
	}

	c.log.Info("Composed digest",
		"digest_id", digest.ID,
		"articles", len(composed),
		"failed", len(failures),
		"reading_time", digest.TotalReadingTime,
		"diversity", digest.QualityMetrics.DiversityScore)

	return result, nil
}

type outcome struct {
	article core.ComposedArticle
	err     error
}

// summarizeAll runs one task per article and collects every outcome. Results
// keep selection order regardless of completion order.
func (c *Composer) summarizeAll(ctx context.Context, selected []core.Article, opts summarize.Options) ([]core.ComposedArticle, []error) {
	outcomes := make([]outcome, len(selected))

	var g errgroup.Group
	if c.concurrency > 0 {
		g.SetLimit(c.concurrency)
	}
	for i, a := range selected {
		g.Go(func() error {
			outcomes[i] = c.summarizeOne(ctx, a, opts)
			return nil
		})
	}
	_ = g.Wait()

	var (
		composed []core.ComposedArticle
		failures []error
	)
	for i, o := range outcomes {
		if o.err != nil {
			c.log.Warn("Excluding article after summarization failure",
				"article_id", selected[i].ID,
				"title", selected[i].Title,
				"error", o.err)
			failures = append(failures, o.err)
			continue
		}
		composed = append(composed, o.article)
	}
	return composed, failures
}

func (c *Composer) summarizeOne(ctx context.Context, a core.Article, opts summarize.Options) outcome {
	if err := ctx.Err(); err != nil {
		return outcome{err: &core.SummarizationError{ArticleID: a.ID, Err: err}}
	}

	res, err := c.summarizer.Summarize(ctx, a, opts)
	if err != nil {
		if !core.IsSummarizationError(err) {
			err = &core.SummarizationError{ArticleID: a.ID, Err: err}
		}
		return outcome{err: err}
	}

	rt := res.ReadingTime
	if rt < 1 {
		rt = summarize.ReadingTime(a, res.Summary)
	}

	article := a.Clone()
	article.Summary = res.Summary
	article.WhyThisMatters = res.WhyThisMatters
	article.KeyFindings = append([]string(nil), res.KeyFindings...)
	article.ReadingTime = rt
	article.ProcessingStatus = core.StatusSummarized

	return outcome{article: core.ComposedArticle{
		Article:        article,
		Summary:        res.Summary,
		WhyThisMatters: res.WhyThisMatters,
		KeyFindings:    append([]string(nil), res.KeyFindings...),
		ReadingTime:    rt,
	}}
}

func totalReadingTime(articles []core.ComposedArticle) int {
	total := 0
	for _, a := range articles {
		total += a.ReadingTime
	}
	return total
}

// Metrics derives the quality metrics of a set of composed articles.
func Metrics(articles []core.ComposedArticle) core.QualityMetrics {
	if len(articles) == 0 {
		return core.QualityMetrics{}
	}

	plain := make([]core.Article, len(articles))
	var relevance, quality, novelty float64
	rt := core.ReadingTimeStats{Min: math.MaxInt, Max: 0}
	for i, ca := range articles {
		plain[i] = ca.Article
		relevance += ca.Article.RelevanceScore
		quality += ca.Article.QualityScore
		novelty += ca.Article.NoveltyScore
		rt.Min = min(rt.Min, ca.ReadingTime)
		rt.Max = max(rt.Max, ca.ReadingTime)
	}

	n := float64(len(articles))
	rt.Mean = float64(totalReadingTime(articles)) / n
	_, venues, topics := ranking.Distinct(plain)

	return core.QualityMetrics{
		AverageRelevance: relevance / n,
		AverageQuality:   quality / n,
		AverageNovelty:   novelty / n,
		ReadingTime:      rt,
		VenueDiversity:   venues,
		TopicDiversity:   topics,
		DiversityScore:   ranking.DiversityScore(plain),
	}
}
