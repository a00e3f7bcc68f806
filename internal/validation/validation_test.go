package validation

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/core"
)

func goodArticle() core.Article {
	return core.Article{
		ID:             "good",
		URL:            "https://arxiv.org/abs/2605.01234",
		Title:          "Scaling laws for sparse mixture-of-experts models",
		Abstract:       "We measure how loss scales with expert count and token budget across forty training runs.",
		Authors:        []string{"R. Okafor"},
		RelevanceScore: 85,
		QualityScore:   80,
		Summary:        strings.Repeat("A clear and well formed summary sentence. ", 4),
		WhyThisMatters: "It guides compute budgeting.",
	}
}

func composed(n int) *core.ComposedDigest {
	d := &core.ComposedDigest{
		ID:           "ai-computing-2026-w21",
		Field:        core.FieldAIComputing,
		Introduction: strings.Repeat("Intro text. ", 6),
		Conclusion:   strings.Repeat("Closing. ", 5),
	}
	for i := 0; i < n; i++ {
		a := goodArticle()
		a.ID = fmt.Sprintf("a%d", i)
		a.Venue = fmt.Sprintf("Venue %d", i)
		a.Subfield = fmt.Sprintf("subfield %d", i%2)
		ca := core.ComposedArticle{Article: a, ReadingTime: 4, Position: i + 1}
		if i < n-1 {
			ca.Transition = "Next up."
		}
		d.FeaturedArticles = append(d.FeaturedArticles, ca)
		d.TotalReadingTime += ca.ReadingTime
	}
	return d
}

func engine() *Engine {
	return NewEngine(DefaultRules())
}

func TestValidateArticleClean(t *testing.T) {
	r := engine().ValidateArticle(goodArticle())
	assert.True(t, r.Valid)
	assert.Empty(t, r.Errors)
	assert.Empty(t, r.Warnings)
	assert.Equal(t, 100.0, r.Score)
}

func TestValidateArticleShortTitle(t *testing.T) {
	a := goodArticle()
	a.Title = "Tiny ttl"
	require.Len(t, a.Title, 8)

	r := engine().ValidateArticle(a)
	assert.False(t, r.Valid)
	require.Len(t, r.Errors, 1)
	assert.Equal(t, "TITLE_TOO_SHORT", r.Errors[0].Code)
	assert.Equal(t, SeverityCritical, r.Errors[0].Severity)
	assert.LessOrEqual(t, r.Score, 70.0)
}

func TestValidateArticleCountsCharactersNotBytes(t *testing.T) {
	a := goodArticle()
	a.Title = "Ökoßäüé"
	require.Greater(t, len(a.Title), MinTitleLength)

	r := engine().ValidateArticle(a)
	assert.False(t, r.Valid)
	assert.True(t, r.HasCode("TITLE_TOO_SHORT"))

	a.Title = "Ökosystemé"
	assert.False(t, engine().ValidateArticle(a).HasCode("TITLE_TOO_SHORT"))

	d := composed(5)
	d.Conclusion = strings.Repeat("é", MinConclusionLength-1)
	require.GreaterOrEqual(t, len(d.Conclusion), MinConclusionLength)
	assert.True(t, engine().ValidateDigest(d, nil).HasCode("CONCLUSION_TOO_SHORT"))
}

func TestValidateArticleAccumulatesFindings(t *testing.T) {
	a := core.Article{Title: "short", URL: "not a url"}
	r := engine().ValidateArticle(a)

	for _, code := range []string{
		"TITLE_TOO_SHORT", "ABSTRACT_TOO_SHORT", "MISSING_AUTHORS", "INVALID_URL",
		"LOW_RELEVANCE", "LOW_QUALITY", "SUMMARY_TOO_SHORT", "MISSING_WHY_THIS_MATTERS",
	} {
		assert.Truef(t, r.HasCode(code), "expected %s", code)
	}
	assert.Len(t, r.Errors, 4)
	assert.Len(t, r.Warnings, 4)
	assert.Equal(t, 0.0, r.Score, "score is clamped at zero")
	assert.False(t, r.Valid)
}

func TestValidateArticleWarningsKeepValidity(t *testing.T) {
	a := goodArticle()
	a.RelevanceScore = 10
	a.WhyThisMatters = ""

	r := engine().ValidateArticle(a)
	assert.True(t, r.Valid)
	assert.Len(t, r.Warnings, 2)
	assert.Equal(t, 90.0, r.Score)
}

func TestValidateDigestClean(t *testing.T) {
	d := composed(3)
	r := engine().ValidateDigest(d, nil)
	assert.True(t, r.Valid, "%+v", r)
	assert.Empty(t, r.Warnings)
	assert.Equal(t, 100.0, r.Score)
}

func TestValidateDigestTooFewArticles(t *testing.T) {
	d := composed(2)
	r := engine().ValidateDigest(d, d.Articles())
	assert.False(t, r.Valid)
	require.True(t, r.HasCode("TOO_FEW_ARTICLES"))
	assert.Equal(t, SeverityCritical, r.Errors[0].Severity)
}

func TestValidateDigestTooManyArticles(t *testing.T) {
	d := composed(6)
	r := engine().ValidateDigest(d, nil)
	assert.False(t, r.Valid)
	require.Len(t, r.Errors, 1)
	assert.Equal(t, "TOO_MANY_ARTICLES", r.Errors[0].Code)
	assert.Equal(t, SeverityError, r.Errors[0].Severity)
	assert.True(t, r.HasCode("READING_TIME_EXCEEDED"), "24 minutes exceeds the 15 minute target")
}

func TestValidateDigestReadingTimeHasNoBuffer(t *testing.T) {
	d := composed(3)
	d.TotalReadingTime = 16
	r := engine().ValidateDigest(d, nil)
	assert.True(t, r.HasCode("READING_TIME_EXCEEDED"))
	assert.True(t, r.Valid, "reading time is a warning only")
}

func TestValidateDigestDiversityAndProse(t *testing.T) {
	d := composed(4)
	for i := range d.FeaturedArticles {
		d.FeaturedArticles[i].Article.Venue = "Same Venue"
		d.FeaturedArticles[i].Article.Subfield = "same"
		d.FeaturedArticles[i].Article.RelevanceScore = 50
	}
	d.FeaturedArticles[0].Transition = ""
	d.FeaturedArticles[1].Transition = ""
	d.Introduction = "Too short."
	d.Conclusion = "Bye."

	r := engine().ValidateDigest(d, nil)
	for _, code := range []string{
		"LOW_VENUE_DIVERSITY", "LOW_SUBFIELD_VARIETY", "LOW_AVERAGE_RELEVANCE",
		"INTRODUCTION_TOO_SHORT", "CONCLUSION_TOO_SHORT", "MISSING_TRANSITIONS",
	} {
		assert.Truef(t, r.HasCode(code), "expected %s", code)
	}

	transitions := 0
	for _, w := range r.Warnings {
		if w.Code == "MISSING_TRANSITIONS" {
			transitions++
		}
	}
	assert.Equal(t, 1, transitions, "missing transitions are reported once")
	assert.False(t, r.Valid)
}

func TestValidateDigestUsesProvidedArticles(t *testing.T) {
	d := composed(3)
	external := d.Articles()
	for i := range external {
		external[i].Venue = "Shared"
	}

	r := engine().ValidateDigest(d, external)
	assert.True(t, r.HasCode("LOW_VENUE_DIVERSITY"))
}

func TestValidateUser(t *testing.T) {
	good := core.User{
		Email:    "ada@example.org",
		Name:     "Ada",
		Fields:   []core.FieldID{core.FieldLifeSciences},
		Channels: []core.DeliveryChannel{core.ChannelEmail},
	}
	r := engine().ValidateUser(good)
	assert.True(t, r.Valid)
	assert.Equal(t, 100.0, r.Score)

	bad := core.User{
		Email:         "not-an-email",
		Fields:        []core.FieldID{"astrology"},
		AudienceLevel: "expert",
	}
	r = engine().ValidateUser(bad)
	assert.False(t, r.Valid)
	for _, code := range []string{"INVALID_EMAIL", "UNKNOWN_FIELD", "MISSING_NAME", "NO_DELIVERY_CHANNEL", "INVALID_AUDIENCE_LEVEL"} {
		assert.Truef(t, r.HasCode(code), "expected %s", code)
	}

	r = engine().ValidateUser(core.User{Email: "x@example.org", Name: "X", Channels: []core.DeliveryChannel{core.ChannelPodcast}})
	assert.True(t, r.HasCode("NO_FIELDS"))
}

func TestScoreBoundsAndValidity(t *testing.T) {
	e := engine()
	inputs := []core.Article{{}, goodArticle(), {Title: strings.Repeat("x", 200)}}
	for _, a := range inputs {
		r := e.ValidateArticle(a)
		assert.GreaterOrEqual(t, r.Score, 0.0)
		assert.LessOrEqual(t, r.Score, 100.0)
		assert.Equal(t, len(r.Errors) == 0, r.Valid)
	}

	for n := 0; n < 8; n++ {
		r := e.ValidateDigest(composed(n), nil)
		assert.GreaterOrEqual(t, r.Score, 0.0)
		assert.LessOrEqual(t, r.Score, 100.0)
		assert.Equal(t, len(r.Errors) == 0, r.Valid)
	}
}

func TestBatchValidateArticles(t *testing.T) {
	bad := goodArticle()
	bad.ID = "bad"
	bad.Title = "short"
	unnamed := goodArticle()
	unnamed.ID = ""

	res := engine().BatchValidateArticles([]core.Article{goodArticle(), bad, unnamed})
	assert.Equal(t, 3, res.Summary.Total)
	assert.Equal(t, 2, res.Summary.Valid)
	assert.Equal(t, 1, res.Summary.Invalid)
	assert.InDelta(t, (100.0+70.0+100.0)/3, res.Summary.AvgScore, 1e-9)
	assert.Contains(t, res.Results, "good")
	assert.Contains(t, res.Results, "#2")
	assert.False(t, res.Results["bad"].Valid)

	empty := engine().BatchValidateArticles(nil)
	assert.Equal(t, 0, empty.Summary.Total)
	assert.Equal(t, 0.0, empty.Summary.AvgScore)
}

func TestBatchValidateArticlesKeepsRepeatedIDs(t *testing.T) {
	valid := goodArticle()
	valid.ID = "dup"
	invalid := goodArticle()
	invalid.ID = "dup"
	invalid.Title = "short"

	res := engine().BatchValidateArticles([]core.Article{valid, invalid})
	require.Len(t, res.Results, res.Summary.Total)
	assert.True(t, res.Results["dup"].Valid)
	assert.False(t, res.Results["dup#1"].Valid)
	assert.Equal(t, 1, res.Summary.Valid)
	assert.Equal(t, 1, res.Summary.Invalid)
}
