package core

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// FieldID identifies one of the five top-level academic fields.
type FieldID string

const (
	FieldAIComputing        FieldID = "ai-computing"
	FieldLifeSciences       FieldID = "life-sciences"
	FieldClimateEnvironment FieldID = "climate-environment"
	FieldSocialSciences     FieldID = "social-sciences"
	FieldPhysicsEngineering FieldID = "physics-engineering"
)

// AllFields lists every supported field in display order.
func AllFields() []FieldID {
	return []FieldID{
		FieldAIComputing,
		FieldLifeSciences,
		FieldClimateEnvironment,
		FieldSocialSciences,
		FieldPhysicsEngineering,
	}
}

// ParseField validates a raw field identifier.
func ParseField(raw string) (FieldID, error) {
	id := FieldID(strings.ToLower(strings.TrimSpace(raw)))
	for _, f := range AllFields() {
		if f == id {
			return id, nil
		}
	}
	return "", &ConfigurationError{Field: "field", Message: fmt.Sprintf("unknown academic field %q", raw)}
}

// VenueType classifies the publication outlet of an article.
type VenueType string

const (
	VenueJournal    VenueType = "journal"
	VenueConference VenueType = "conference"
	VenuePreprint   VenueType = "preprint"
	VenueBook       VenueType = "book"
	VenueThesis     VenueType = "thesis"
)

// Valid reports whether v is one of the enumerated venue types.
func (v VenueType) Valid() bool {
	switch v {
	case VenueJournal, VenueConference, VenuePreprint, VenueBook, VenueThesis:
		return true
	}
	return false
}

// ProcessingStatus tracks where an article is in the ingestion pipeline.
type ProcessingStatus string

const (
	StatusFetched    ProcessingStatus = "fetched"
	StatusScored     ProcessingStatus = "scored"
	StatusSummarized ProcessingStatus = "summarized"
	StatusPublished  ProcessingStatus = "published"
)

// Article is a candidate research item produced by a source adapter.
type Article struct {
	ID       string `json:"id"`
	DOI      string `json:"doi,omitempty"`
	SourceID string `json:"source_id,omitempty"` // source-native id, e.g. an arXiv id
	Source   string `json:"source"`
	URL      string `json:"url"`

	Title       string    `json:"title"`
	Abstract    string    `json:"abstract"`
	Authors     []string  `json:"authors"`
	Venue       string    `json:"venue"`
	VenueType   VenueType `json:"venue_type"`
	PublishedAt time.Time `json:"published_at"`
	Field       FieldID   `json:"field"`
	Subfield    string    `json:"subfield"`
	Tags        []string  `json:"tags,omitempty"`
	Topics      []string  `json:"topics,omitempty"`

	RelatedArticles []string `json:"related_articles,omitempty"`

	// Scores are in [0,100]. RelevanceScore starts at 0 and is set by relevance scoring.
	RelevanceScore float64 `json:"relevance_score"`
	QualityScore   float64 `json:"quality_score"`
	NoveltyScore   float64 `json:"novelty_score"`
	ImpactScore    float64 `json:"impact_score"`

	Summary        string   `json:"summary,omitempty"`
	WhyThisMatters string   `json:"why_this_matters,omitempty"`
	KeyFindings    []string `json:"key_findings,omitempty"`
	Methodology    string   `json:"methodology,omitempty"`
	Limitations    string   `json:"limitations,omitempty"`
	ReadingTime    int      `json:"reading_time"` // minutes

	FetchedAt        time.Time        `json:"fetched_at"`
	ProcessingStatus ProcessingStatus `json:"processing_status"`
}

var (
	punctuation = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	whitespace  = regexp.MustCompile(`\s+`)
)

// NormalizeTitle lowercases a title, strips punctuation and collapses whitespace.
func NormalizeTitle(title string) string {
	t := strings.ToLower(title)
	t = punctuation.ReplaceAllString(t, " ")
	t = whitespace.ReplaceAllString(t, " ")
	return strings.TrimSpace(t)
}

// IdentityKey returns the strongest identity available for the article:
// DOI, then source-native id, then normalized title. It returns "" when none
// can be derived.
func (a Article) IdentityKey() string {
	if doi := strings.TrimSpace(a.DOI); doi != "" {
		return "doi:" + strings.ToLower(doi)
	}
	if sid := strings.TrimSpace(a.SourceID); sid != "" {
		return "src:" + strings.ToLower(sid)
	}
	if t := NormalizeTitle(a.Title); t != "" {
		return "title:" + t
	}
	return ""
}

// Clone returns a deep copy so callers can mutate slices freely.
func (a Article) Clone() Article {
	c := a
	c.Authors = cloneStrings(a.Authors)
	c.Tags = cloneStrings(a.Tags)
	c.Topics = cloneStrings(a.Topics)
	c.RelatedArticles = cloneStrings(a.RelatedArticles)
	c.KeyFindings = cloneStrings(a.KeyFindings)
	return c
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// WordsPerMinute is the reading speed behind reading time estimates.
const WordsPerMinute = 200

// EstimateReadingTime returns the minutes needed to read text, at least 1.
func EstimateReadingTime(text string) int {
	words := len(strings.Fields(text))
	minutes := (words + WordsPerMinute - 1) / WordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}

// ComposedArticle is an article placed in a specific digest.
type ComposedArticle struct {
	Article        Article  `json:"article"`
	Summary        string   `json:"summary"`
	WhyThisMatters string   `json:"why_this_matters"`
	KeyFindings    []string `json:"key_findings"`
	ReadingTime    int      `json:"reading_time"`
	Position       int      `json:"position"` // 1-based
	Transition     string   `json:"transition,omitempty"`
}

// ReadingTimeStats describes the distribution of reading times in a digest.
type ReadingTimeStats struct {
	Min  int     `json:"min"`
	Max  int     `json:"max"`
	Mean float64 `json:"mean"`
}

// QualityMetrics are derived once per digest and never modified afterwards.
type QualityMetrics struct {
	AverageRelevance float64          `json:"average_relevance"`
	AverageQuality   float64          `json:"average_quality"`
	AverageNovelty   float64          `json:"average_novelty"`
	ReadingTime      ReadingTimeStats `json:"reading_time"`
	VenueDiversity   int              `json:"venue_diversity"`
	TopicDiversity   int              `json:"topic_diversity"`
	DiversityScore   float64          `json:"diversity_score"`
}

// ComposedDigest is the unit of delivery for one field in one ISO week.
type ComposedDigest struct {
	ID               string            `json:"id"`
	Field            FieldID           `json:"field"`
	WeekNumber       int               `json:"week_number"`
	Year             int               `json:"year"`
	Introduction     string            `json:"introduction"`
	FeaturedArticles []ComposedArticle `json:"featured_articles"`
	Methodology      string            `json:"methodology"`
	Conclusion       string            `json:"conclusion"`
	TotalReadingTime int               `json:"total_reading_time"`
	QualityMetrics   QualityMetrics    `json:"quality_metrics"`
	ComposedAt       time.Time         `json:"composed_at"`
	CompositionTime  time.Duration     `json:"composition_time"`
}

// DigestID derives the deterministic digest identity for a field and ISO week.
func DigestID(field FieldID, year, week int) string {
	return fmt.Sprintf("%s-%d-w%02d", field, year, week)
}

// DigestIDFor derives the digest identity for the ISO week containing t.
func DigestIDFor(field FieldID, t time.Time) string {
	year, week := t.ISOWeek()
	return DigestID(field, year, week)
}

// Articles returns the embedded article copies in position order.
func (d *ComposedDigest) Articles() []Article {
	out := make([]Article, 0, len(d.FeaturedArticles))
	for _, ca := range d.FeaturedArticles {
		out = append(out, ca.Article)
	}
	return out
}

// AudienceLevel controls the depth of generated prose.
type AudienceLevel string

const (
	AudienceBeginner     AudienceLevel = "beginner"
	AudienceIntermediate AudienceLevel = "intermediate"
	AudienceAdvanced     AudienceLevel = "advanced"
)

// EditorialStyle selects one of the fixed narrative templates.
type EditorialStyle string

const (
	StyleAcademic       EditorialStyle = "academic"
	StyleConversational EditorialStyle = "conversational"
	StyleProfessional   EditorialStyle = "professional"
)

// DeliveryChannel is how a subscriber receives digests.
type DeliveryChannel string

const (
	ChannelEmail   DeliveryChannel = "email"
	ChannelPodcast DeliveryChannel = "podcast"
)

// User is a digest subscriber.
type User struct {
	ID            string            `json:"id"`
	Email         string            `json:"email"`
	Name          string            `json:"name"`
	Fields        []FieldID         `json:"fields"`
	AudienceLevel AudienceLevel     `json:"audience_level,omitempty"`
	Channels      []DeliveryChannel `json:"channels,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}
