package relevance

import (
	"math"
	"regexp"
	"strings"

	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/core"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/fields"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/logger"
)

// Weights controls how each factor contributes to the final relevance score.
type Weights struct {
	Title    float64
	Abstract float64
	Subfield float64
	Tags     float64
}

// DefaultWeights returns the standard factor weights (they sum to 1).
func DefaultWeights() Weights {
	return Weights{
		Title:    0.35,
		Abstract: 0.30,
		Subfield: 0.20,
		Tags:     0.15,
	}
}

// Score is the relevance of one article to one field, on a 0-100 scale.
type Score struct {
	Value     float64
	Factors   map[string]float64
	Reasoning string
}

// KeywordScorer scores articles against a field's keywords and subfields.
type KeywordScorer struct {
	registry  *fields.Registry
	weights   Weights
	stopWords map[string]bool
	log       logger.Logger
}

// NewKeywordScorer creates a scorer backed by the field registry
func NewKeywordScorer(registry *fields.Registry, log logger.Logger) *KeywordScorer {
	return &KeywordScorer{
		registry:  registry,
		weights:   DefaultWeights(),
		stopWords: commonStopWords(),
		log:       log,
	}
}

// WithWeights returns a copy of the scorer using the given weights.
func (ks *KeywordScorer) WithWeights(w Weights) *KeywordScorer {
	c := *ks
	c.weights = w
	return &c
}

// ScoreArticles returns copies of articles with RelevanceScore populated for
// the target field. The input slice is not modified.
func (ks *KeywordScorer) ScoreArticles(field core.FieldID, articles []core.Article) ([]core.Article, error) {
	profile, err := ks.registry.Get(field)
	if err != nil {
		return nil, err
	}

	keywords := ks.profileKeywords(profile)
	out := make([]core.Article, len(articles))
	for i, a := range articles {
		s := ks.score(profile, keywords, a)
		c := a.Clone()
		c.RelevanceScore = s.Value
		if c.ProcessingStatus == "" || c.ProcessingStatus == core.StatusFetched {
			c.ProcessingStatus = core.StatusScored
		}
		out[i] = c
	}

	ks.log.Debug("Scored articles for relevance", "field", field, "count", len(out), "keywords", len(keywords))
	return out, nil
}

// Score calculates the relevance of a single article to a field.
func (ks *KeywordScorer) Score(field core.FieldID, a core.Article) (Score, error) {
	profile, err := ks.registry.Get(field)
	if err != nil {
		return Score{}, err
	}
	return ks.score(profile, ks.profileKeywords(profile), a), nil
}

func (ks *KeywordScorer) score(profile fields.Field, keywords []string, a core.Article) Score {
	factors := map[string]float64{
		"title":    ks.textRelevance(normalizeText(a.Title), keywords),
		"abstract": ks.textRelevance(normalizeText(a.Abstract), keywords),
		"subfield": subfieldMatch(profile, a.Subfield, keywords),
		"tags":     tagOverlap(append(append([]string{}, a.Tags...), a.Topics...), keywords),
	}

	value := factors["title"]*ks.weights.Title +
		factors["abstract"]*ks.weights.Abstract +
		factors["subfield"]*ks.weights.Subfield +
		factors["tags"]*ks.weights.Tags

	// Articles filed under another field keep half their score.
	if a.Field != "" && a.Field != profile.ID {
		value *= 0.5
		factors["field_mismatch"] = 1
	}

	value = math.Max(0, math.Min(1, value)) * 100
	return Score{
		Value:     math.Round(value*100) / 100,
		Factors:   factors,
		Reasoning: reasoning(factors),
	}
}

// textRelevance combines keyword coverage with a damped match frequency.
func (ks *KeywordScorer) textRelevance(text string, keywords []string) float64 {
	if text == "" || len(keywords) == 0 {
		return 0
	}

	totalMatches := 0
	uniqueMatches := 0
	for _, keyword := range keywords {
		matches := strings.Count(text, keyword)
		if matches > 0 {
			uniqueMatches++
			totalMatches += matches
		}
	}
	if uniqueMatches == 0 {
		return 0
	}

	coverage := float64(uniqueMatches) / float64(len(keywords))
	frequency := math.Log(float64(totalMatches)+1) / math.Log(float64(len(keywords)*3)+1)

	// Coverage saturates quickly: a title rarely contains more than a few keywords.
	coverage = math.Min(1, coverage*3)
	return math.Min(1, coverage*0.7+frequency*0.3)
}

func subfieldMatch(profile fields.Field, subfield string, keywords []string) float64 {
	subfield = normalizeText(subfield)
	if subfield == "" {
		return 0
	}
	if profile.HasSubfield(subfield) {
		return 1
	}
	for _, k := range keywords {
		if strings.Contains(subfield, k) {
			return 0.5
		}
	}
	return 0
}

func tagOverlap(tags []string, keywords []string) float64 {
	if len(tags) == 0 {
		return 0
	}
	hits := 0
	for _, tag := range tags {
		tag = normalizeText(tag)
		for _, k := range keywords {
			if strings.Contains(tag, k) {
				hits++
				break
			}
		}
	}
	return math.Min(1, float64(hits)/math.Min(3, float64(len(tags))))
}

// profileKeywords merges the field's keywords with the words of its subfields.
func (ks *KeywordScorer) profileKeywords(profile fields.Field) []string {
	raw := append([]string{}, profile.Keywords...)
	for _, sf := range profile.Subfields {
		raw = append(raw, wordPattern.Split(sf, -1)...)
	}
	return ks.cleanKeywords(raw)
}

// cleanKeywords removes duplicates, short words and stop words
func (ks *KeywordScorer) cleanKeywords(keywords []string) []string {
	seen := make(map[string]bool)
	var clean []string

	for _, keyword := range keywords {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if len(keyword) > 2 && !ks.stopWords[keyword] && !seen[keyword] {
			seen[keyword] = true
			clean = append(clean, keyword)
		}
	}

	return clean
}

func reasoning(factors map[string]float64) string {
	var reasons []string

	if factors["title"] > 0.6 {
		reasons = append(reasons, "Relevant title")
	}
	if factors["abstract"] > 0.6 {
		reasons = append(reasons, "Strong keyword matches in abstract")
	} else if factors["abstract"] < 0.3 {
		reasons = append(reasons, "Weak keyword matches in abstract")
	}
	if factors["subfield"] == 1 {
		reasons = append(reasons, "Known subfield")
	}
	if factors["field_mismatch"] > 0 {
		reasons = append(reasons, "Filed under another field")
	}

	if len(reasons) == 0 {
		reasons = append(reasons, "Mixed relevance indicators")
	}
	return strings.Join(reasons, "; ")
}

var (
	wordPattern  = regexp.MustCompile(`[^\w]+`)
	spacePattern = regexp.MustCompile(`\s+`)
)

func normalizeText(text string) string {
	text = strings.ToLower(text)
	text = spacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

func commonStopWords() map[string]bool {
	stopWords := []string{
		"a", "an", "and", "are", "as", "at", "be", "by", "for", "from",
		"has", "in", "is", "it", "its", "of", "on", "that", "the",
		"to", "was", "were", "will", "with", "this", "but", "they",
		"have", "had", "what", "which", "how", "their", "if", "into",
		"these", "some", "new", "using", "via", "based",
	}

	m := make(map[string]bool, len(stopWords))
	for _, w := range stopWords {
		m[w] = true
	}
	return m
}
