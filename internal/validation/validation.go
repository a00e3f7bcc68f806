// Package validation checks articles, digests and subscribers against content
// and structural rules.
//
// Every check runs independently and findings accumulate. A result is valid
// iff it has no errors; warnings only lower the score.
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/sourcegraph/conc/iter"

	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/config"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/core"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/ranking"
)

// Severity of an error finding.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityError    Severity = "error"
)

// Score penalties.
const (
	criticalPenalty = 30
	errorPenalty    = 15
	warningPenalty  = 5
)

// Thresholds that are not configurable.
const (
	MinTitleLength        = 10
	MinAbstractLength     = 50
	MinSummaryLength      = 100
	MinIntroductionLength = 50
	MinConclusionLength   = 30
	MinVenueDiversity     = 0.7
	MinAverageRelevance   = 70
)

// Error is a finding that makes the subject invalid.
type Error struct {
	Code     string   `json:"code"`
	Field    string   `json:"field"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// Warning is a finding that only lowers the score.
type Warning struct {
	Code    string `json:"code"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result is the outcome of one validation.
type Result struct {
	Valid    bool      `json:"valid"`
	Errors   []Error   `json:"errors"`
	Warnings []Warning `json:"warnings"`
	Score    float64   `json:"score"`
}

// HasCode reports whether any error or warning carries code.
func (r Result) HasCode(code string) bool {
	for _, e := range r.Errors {
		if e.Code == code {
			return true
		}
	}
	for _, w := range r.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}

type builder struct {
	errors   []Error
	warnings []Warning
}

func (b *builder) critical(code, field, format string, args ...any) {
	b.errors = append(b.errors, Error{Code: code, Field: field, Message: fmt.Sprintf(format, args...), Severity: SeverityCritical})
}

func (b *builder) fail(code, field, format string, args ...any) {
	b.errors = append(b.errors, Error{Code: code, Field: field, Message: fmt.Sprintf(format, args...), Severity: SeverityError})
}

func (b *builder) warn(code, field, format string, args ...any) {
	b.warnings = append(b.warnings, Warning{Code: code, Field: field, Message: fmt.Sprintf(format, args...)})
}

func (b *builder) result() Result {
	score := 100.0
	for _, e := range b.errors {
		if e.Severity == SeverityCritical {
			score -= criticalPenalty
		} else {
			score -= errorPenalty
		}
	}
	score -= float64(len(b.warnings) * warningPenalty)
	score = max(0, min(100, score))

	r := Result{
		Valid:    len(b.errors) == 0,
		Errors:   b.errors,
		Warnings: b.warnings,
		Score:    score,
	}
	if r.Errors == nil {
		r.Errors = []Error{}
	}
	if r.Warnings == nil {
		r.Warnings = []Warning{}
	}
	return r
}

// Rules carries the configurable thresholds.
type Rules struct {
	MinRelevanceScore  float64
	MinQualityScore    float64
	MinArticles        int
	MaxArticles        int
	MinSubfieldVariety int
	TargetReadingTime  int
}

// RulesFromConfig maps content configuration onto validation rules.
func RulesFromConfig(c config.ContentConfig) Rules {
	return Rules{
		MinRelevanceScore:  c.MinRelevanceScore,
		MinQualityScore:    c.MinQualityScore,
		MinArticles:        c.MinArticlesPerDigest,
		MaxArticles:        c.MaxArticlesPerDigest,
		MinSubfieldVariety: c.MinSubfieldVariety,
		TargetReadingTime:  c.TargetReadingTime,
	}
}

// DefaultRules uses the default content configuration.
func DefaultRules() Rules {
	return RulesFromConfig(config.DefaultContentConfig())
}

// Engine validates against a fixed set of rules. It holds no mutable state
// and is safe for concurrent use.
type Engine struct {
	rules    Rules
	validate *validator.Validate
}

// NewEngine creates an Engine.
func NewEngine(rules Rules) *Engine {
	return &Engine{rules: rules, validate: validator.New()}
}

// Rules returns the engine's thresholds.
func (e *Engine) Rules() Rules {
	return e.rules
}

// ValidateArticle checks one article.
func (e *Engine) ValidateArticle(a core.Article) Result {
	var b builder

	if n := charCount(a.Title); n < MinTitleLength {
		b.critical("TITLE_TOO_SHORT", "title", "title has %d characters, need at least %d", n, MinTitleLength)
	}
	if n := charCount(a.Abstract); n < MinAbstractLength {
		b.critical("ABSTRACT_TOO_SHORT", "abstract", "abstract has %d characters, need at least %d", n, MinAbstractLength)
	}
	if !hasAuthor(a.Authors) {
		b.fail("MISSING_AUTHORS", "authors", "at least one author is required")
	}
	if a.RelevanceScore < e.rules.MinRelevanceScore {
		b.warn("LOW_RELEVANCE", "relevance_score", "relevance %.1f is below %.1f", a.RelevanceScore, e.rules.MinRelevanceScore)
	}
	if a.QualityScore < e.rules.MinQualityScore {
		b.warn("LOW_QUALITY", "quality_score", "quality %.1f is below %.1f", a.QualityScore, e.rules.MinQualityScore)
	}
	if n := charCount(a.Summary); n < MinSummaryLength {
		b.warn("SUMMARY_TOO_SHORT", "summary", "summary has %d characters, recommended at least %d", n, MinSummaryLength)
	}
	if strings.TrimSpace(a.WhyThisMatters) == "" {
		b.warn("MISSING_WHY_THIS_MATTERS", "why_this_matters", "why-this-matters note is missing")
	}
	if err := e.validate.Var(a.URL, "required,url"); err != nil {
		b.fail("INVALID_URL", "url", "url %q is not a well-formed URL", a.URL)
	}

	return b.result()
}

// ValidateDigest checks a composed digest. Subfield, venue and relevance
// statistics come from articles when given, otherwise from the digest's own
// featured articles.
func (e *Engine) ValidateDigest(d *core.ComposedDigest, articles []core.Article) Result {
	var b builder
	if d == nil {
		b.critical("MISSING_DIGEST", "digest", "digest is nil")
		return b.result()
	}

	if len(articles) == 0 {
		articles = d.Articles()
	}

	n := len(d.FeaturedArticles)
	switch {
	case n < e.rules.MinArticles:
		b.critical("TOO_FEW_ARTICLES", "featured_articles", "digest has %d articles, minimum is %d", n, e.rules.MinArticles)
	case n > e.rules.MaxArticles:
		b.fail("TOO_MANY_ARTICLES", "featured_articles", "digest has %d articles, maximum is %d", n, e.rules.MaxArticles)
	}

	subfields, venues, _ := ranking.Distinct(articles)
	if len(articles) > 0 {
		if ratio := float64(venues) / float64(len(articles)); ratio < MinVenueDiversity {
			b.warn("LOW_VENUE_DIVERSITY", "featured_articles", "%d distinct venues across %d articles (%.0f%%), recommended at least %.0f%%",
				venues, len(articles), ratio*100, MinVenueDiversity*100)
		}
	}
	if subfields < e.rules.MinSubfieldVariety {
		b.warn("LOW_SUBFIELD_VARIETY", "featured_articles", "%d distinct subfields, recommended at least %d", subfields, e.rules.MinSubfieldVariety)
	}

	if d.TotalReadingTime > e.rules.TargetReadingTime {
		b.warn("READING_TIME_EXCEEDED", "total_reading_time", "total reading time %d minutes exceeds target %d", d.TotalReadingTime, e.rules.TargetReadingTime)
	}

	if avg := averageRelevance(articles); len(articles) > 0 && avg < MinAverageRelevance {
		b.warn("LOW_AVERAGE_RELEVANCE", "quality_metrics", "average relevance %.1f is below %d", avg, MinAverageRelevance)
	}

	if l := charCount(d.Introduction); l < MinIntroductionLength {
		b.fail("INTRODUCTION_TOO_SHORT", "introduction", "introduction has %d characters, need at least %d", l, MinIntroductionLength)
	}
	if l := charCount(d.Conclusion); l < MinConclusionLength {
		b.warn("CONCLUSION_TOO_SHORT", "conclusion", "conclusion has %d characters, recommended at least %d", l, MinConclusionLength)
	}

	missing := 0
	for i, ca := range d.FeaturedArticles {
		if i < n-1 && strings.TrimSpace(ca.Transition) == "" {
			missing++
		}
	}
	if missing > 0 {
		b.warn("MISSING_TRANSITIONS", "featured_articles", "%d of %d articles lack a transition to the next article", missing, n-1)
	}

	return b.result()
}

// ValidateUser checks a subscriber profile.
func (e *Engine) ValidateUser(u core.User) Result {
	var b builder

	if err := e.validate.Var(u.Email, "required,email"); err != nil {
		b.critical("INVALID_EMAIL", "email", "email %q is not a valid address", u.Email)
	}
	if len(u.Fields) == 0 {
		b.fail("NO_FIELDS", "fields", "at least one academic field is required")
	}
	for _, f := range u.Fields {
		if _, err := core.ParseField(string(f)); err != nil {
			b.fail("UNKNOWN_FIELD", "fields", "unknown academic field %q", f)
		}
	}
	if strings.TrimSpace(u.Name) == "" {
		b.warn("MISSING_NAME", "name", "name is missing")
	}
	if len(u.Channels) == 0 {
		b.warn("NO_DELIVERY_CHANNEL", "channels", "no delivery channel selected")
	}
	switch u.AudienceLevel {
	case "", core.AudienceBeginner, core.AudienceIntermediate, core.AudienceAdvanced:
	default:
		b.warn("INVALID_AUDIENCE_LEVEL", "audience_level", "audience level %q is not recognised", u.AudienceLevel)
	}

	return b.result()
}

// BatchSummary aggregates a batch validation.
type BatchSummary struct {
	Total    int     `json:"total"`
	Valid    int     `json:"valid"`
	Invalid  int     `json:"invalid"`
	AvgScore float64 `json:"avg_score"`
}

// BatchResult maps article ids to their results.
type BatchResult struct {
	Results map[string]Result `json:"results"`
	Summary BatchSummary      `json:"summary"`
}

// BatchValidateArticles validates articles in parallel. Articles without an id
// are keyed by their index as "#<n>"; a repeated id is keyed as "<id>#<n>" so
// every article keeps its result.
func (e *Engine) BatchValidateArticles(articles []core.Article) BatchResult {
	results := iter.Map(articles, func(a *core.Article) Result {
		return e.ValidateArticle(*a)
	})

	out := BatchResult{Results: make(map[string]Result, len(articles))}
	total := 0.0
	for i, r := range results {
		key := articles[i].ID
		if _, taken := out.Results[key]; key == "" || taken {
			key = fmt.Sprintf("%s#%d", key, i)
		}
		out.Results[key] = r
		if r.Valid {
			out.Summary.Valid++
		} else {
			out.Summary.Invalid++
		}
		total += r.Score
	}
	out.Summary.Total = len(articles)
	if len(articles) > 0 {
		out.Summary.AvgScore = total / float64(len(articles))
	}
	return out
}

func hasAuthor(authors []string) bool {
	for _, a := range authors {
		if strings.TrimSpace(a) != "" {
			return true
		}
	}
	return false
}

func averageRelevance(articles []core.Article) float64 {
	if len(articles) == 0 {
		return 0
	}
	sum := 0.0
	for _, a := range articles {
		sum += a.RelevanceScore
	}
	return sum / float64(len(articles))
}

// charCount counts the characters of s after trimming surrounding space.
func charCount(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}
