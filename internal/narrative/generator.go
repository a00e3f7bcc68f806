package narrative

import (
	"fmt"
	"strings"

	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/core"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/fields"
)

// Generator writes the prose sections of a digest from fixed per-style templates.
type Generator struct {
	rng Rand
}

// NewGenerator creates a new narrative generator. A nil rng uses a time-seeded source.
func NewGenerator(rng Rand) *Generator {
	if rng == nil {
		rng = NewRand(0)
	}
	return &Generator{rng: rng}
}

// Context is everything the narrative sections are derived from.
type Context struct {
	Field      fields.Field
	Articles   []core.ComposedArticle
	Style      core.EditorialStyle
	WeekNumber int
	Year       int
}

func (c Context) readingTime() int {
	total := 0
	for _, a := range c.Articles {
		total += a.ReadingTime
	}
	return total
}

func (c Context) subfields() []string {
	return distinct(c.Articles, func(a core.ComposedArticle) string { return a.Article.Subfield })
}

func (c Context) venues() []string {
	return distinct(c.Articles, func(a core.ComposedArticle) string { return a.Article.Venue })
}

func (c Context) sources() []string {
	return distinct(c.Articles, func(a core.ComposedArticle) string { return a.Article.Source })
}

// Introduction opens the digest.
func (g *Generator) Introduction(c Context) string {
	n := len(c.Articles)
	topics := joinWithAnd(lower(c.subfields()))
	if topics == "" {
		topics = strings.ToLower(c.Field.Name)
	}

	switch c.Style {
	case core.StyleAcademic:
		return fmt.Sprintf(
			"This review of %s research for week %d of %d examines %s spanning %s. "+
				"The selected work appeared in %s and was chosen for methodological rigor and relevance to ongoing questions in the field.",
			c.Field.Name, c.WeekNumber, c.Year, plural(n, "recent contribution"), topics, venueList(c.venues()))
	case core.StyleConversational:
		opener := Pick(g.rng, []string{"Welcome back!", "Hello again!", "Good to see you!"})
		return fmt.Sprintf(
			"%s This week in %s we picked %s worth your time, covering %s. "+
				"Grab a coffee: the whole digest takes about %d minutes to read.",
			opener, c.Field.Name, plural(n, "paper"), topics, c.readingTime())
	default:
		return fmt.Sprintf(
			"This week's %s digest brings together %s on %s. "+
				"Each summary highlights the key findings and why they matter, in about %d minutes of reading.",
			c.Field.Name, plural(n, "study", "studies"), topics, c.readingTime())
	}
}

// Methodology explains how the articles were chosen.
func (g *Generator) Methodology(c Context) string {
	from := joinWithAnd(c.sources())
	if from == "" {
		from = "our academic sources"
	}

	body := fmt.Sprintf(
		"Candidates were collected from %s, deduplicated, filtered for recency and relevance to %s, "+
			"ranked by relevance, quality and publication date, then selected to fit a reading budget.",
		from, c.Field.Name)

	switch c.Style {
	case core.StyleAcademic:
		return "Selection procedure. " + body
	case core.StyleConversational:
		return "How we picked these: " + lowerFirst(body)
	default:
		return "Methodology: " + lowerFirst(body)
	}
}

// Conclusion closes the digest.
func (g *Generator) Conclusion(c Context) string {
	lead := ""
	if sf := c.subfields(); len(sf) > 0 {
		lead = strings.ToLower(sf[0])
	} else {
		lead = strings.ToLower(c.Field.Name)
	}

	switch c.Style {
	case core.StyleAcademic:
		return fmt.Sprintf(
			"Taken together, this week's selection indicates continued momentum in %s. "+
				"Readers are encouraged to consult the original publications for full methodological detail.",
			lead)
	case core.StyleConversational:
		return fmt.Sprintf(
			"That's a wrap for this week! %s See you next week with more from %s.",
			Pick(g.rng, []string{"Thanks for reading.", "Hope something here sparked an idea.", "Happy reading."}),
			c.Field.Name)
	default:
		return fmt.Sprintf(
			"These findings point to steady progress in %s. We will keep tracking developments in %s and report back next week.",
			lead, c.Field.Name)
	}
}

// Transition links current to next based on their subfields.
func (g *Generator) Transition(current, next core.Article) string {
	from := strings.ToLower(strings.TrimSpace(current.Subfield))
	to := strings.ToLower(strings.TrimSpace(next.Subfield))

	switch {
	case to == "":
		return Pick(g.rng, []string{
			"Next up, another paper worth your attention.",
			"The following study takes a different angle.",
		})
	case from == to:
		return fmt.Sprintf(Pick(g.rng, []string{
			"Staying with %s, the next paper builds on similar questions.",
			"Continuing in %s, here is another result worth noting.",
			"Another %s study follows.",
		}), to)
	case from == "":
		return fmt.Sprintf("Next, we turn to %s.", to)
	default:
		return fmt.Sprintf(Pick(g.rng, []string{
			"Shifting from %s to %s, the next study looks at a different problem.",
			"From %s we turn to %s.",
			"Next, a change of pace from %s to %s.",
		}), from, to)
	}
}

// Helper functions

func distinct(articles []core.ComposedArticle, key func(core.ComposedArticle) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, a := range articles {
		v := strings.TrimSpace(key(a))
		if v == "" || seen[strings.ToLower(v)] {
			continue
		}
		seen[strings.ToLower(v)] = true
		out = append(out, v)
	}
	return out
}

func venueList(venues []string) string {
	if len(venues) == 0 {
		return "a range of venues"
	}
	if len(venues) > 3 {
		return strings.Join(venues[:3], ", ") + " and other venues"
	}
	return joinWithAnd(venues)
}

func plural(n int, singular string, pluralForm ...string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	if len(pluralForm) > 0 {
		return fmt.Sprintf("%d %s", n, pluralForm[0])
	}
	return fmt.Sprintf("%d %ss", n, singular)
}

func lower(items []string) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = strings.ToLower(s)
	}
	return out
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func truncateText(text string, maxLength int) string {
	if len(text) <= maxLength {
		return text
	}

	truncated := text[:maxLength]
	lastSpace := strings.LastIndex(truncated, " ")
	if lastSpace > 0 {
		truncated = truncated[:lastSpace]
	}

	return truncated + "..."
}

// FirstSentence returns the first sentence of text, or a truncated prefix
// when no sentence ending is found.
func FirstSentence(text string) string {
	text = strings.TrimSpace(text)
	for i, char := range text {
		if char == '.' || char == '!' || char == '?' {
			return strings.TrimSpace(text[:i+1])
		}
	}

	if len(text) > 100 {
		return truncateText(text, 100)
	}
	return text
}

func joinWithAnd(items []string) string {
	if len(items) == 0 {
		return ""
	}
	if len(items) == 1 {
		return items[0]
	}
	if len(items) == 2 {
		return items[0] + " and " + items[1]
	}

	allButLast := strings.Join(items[:len(items)-1], ", ")
	return allButLast + ", and " + items[len(items)-1]
}
