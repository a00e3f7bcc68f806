package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/core"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/narrative"
)

const maxKeyFindings = 3

// TemplateSummarizer builds summaries from the article's own abstract without
// calling a model.
type TemplateSummarizer struct {
	rng narrative.Rand
}

// NewTemplateSummarizer creates a TemplateSummarizer. A nil rng uses a
// time-seeded source.
func NewTemplateSummarizer(rng narrative.Rand) *TemplateSummarizer {
	if rng == nil {
		rng = narrative.NewRand(0)
	}
	return &TemplateSummarizer{rng: rng}
}

// Summarize implements Summarizer.
func (s *TemplateSummarizer) Summarize(ctx context.Context, article core.Article, opts Options) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, failed(article, err)
	}

	sentences := splitSentences(article.Abstract)
	if len(sentences) == 0 {
		return Result{}, failed(article, errors.New("article has no abstract to summarize"))
	}

	summary := s.summary(article, sentences, opts)
	return Result{
		Summary:        summary,
		WhyThisMatters: s.whyThisMatters(article, opts),
		KeyFindings:    keyFindings(sentences),
		ReadingTime:    ReadingTime(article, summary),
	}, nil
}

func (s *TemplateSummarizer) summary(article core.Article, sentences []string, opts Options) string {
	var b strings.Builder

	switch opts.AudienceLevel {
	case core.AudienceBeginner:
		b.WriteString(narrative.Pick(s.rng, []string{"In plain terms, ", "Put simply, "}))
		b.WriteString(lowerFirst(sentences[0]))
	case core.AudienceAdvanced:
		b.WriteString(strings.Join(sentences[:min(2, len(sentences))], " "))
	default:
		b.WriteString(sentences[0])
	}

	if len(article.Authors) > 0 {
		fmt.Fprintf(&b, " The work by %s", authorLine(article.Authors))
		if article.Venue != "" {
			fmt.Fprintf(&b, " appears in %s.", article.Venue)
		} else {
			b.WriteString(" was published this week.")
		}
	}

	if opts.IncludeTechnicalDetails {
		if article.Methodology != "" {
			fmt.Fprintf(&b, " Methodologically, %s", lowerFirst(ensurePeriod(article.Methodology)))
		} else if len(sentences) > 2 && opts.AudienceLevel != core.AudienceAdvanced {
			b.WriteString(" " + sentences[1])
		}
	}

	return strings.TrimSpace(b.String())
}

func (s *TemplateSummarizer) whyThisMatters(article core.Article, opts Options) string {
	area := strings.ToLower(strings.TrimSpace(article.Subfield))
	if area == "" {
		area = "this area"
	}

	if opts.EmphasizeApplications {
		return fmt.Sprintf(narrative.Pick(s.rng, []string{
			"These results could shape how practitioners in %s approach similar problems.",
			"This points to practical applications for teams working in %s.",
		}), area)
	}
	return fmt.Sprintf(narrative.Pick(s.rng, []string{
		"This adds evidence to an open research question in %s.",
		"Researchers in %s will want to compare these findings with prior work.",
	}), area)
}

func keyFindings(sentences []string) []string {
	rest := sentences
	if len(rest) > 1 {
		rest = rest[1:]
	}
	if len(rest) > maxKeyFindings {
		rest = rest[:maxKeyFindings]
	}
	out := make([]string, len(rest))
	copy(out, rest)
	return out
}

func splitSentences(text string) []string {
	text = strings.Join(strings.Fields(text), " ")
	var out []string
	start := 0
	for i, r := range text {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		// Only split when followed by a space or the end, so decimals stay intact.
		if i+1 < len(text) && text[i+1] != ' ' {
			continue
		}
		if s := strings.TrimSpace(text[start : i+1]); s != "" {
			out = append(out, s)
		}
		start = i + 1
	}
	if tail := strings.TrimSpace(text[start:]); tail != "" {
		out = append(out, ensurePeriod(tail))
	}
	return out
}

func authorLine(authors []string) string {
	switch len(authors) {
	case 1:
		return authors[0]
	case 2:
		return authors[0] + " and " + authors[1]
	default:
		return authors[0] + " and colleagues"
	}
}

func ensurePeriod(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasSuffix(s, ".") || strings.HasSuffix(s, "!") || strings.HasSuffix(s, "?") {
		return s
	}
	return s + "."
}

// lowerFirst lowercases the first letter unless the word looks like an acronym.
func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	if len(s) > 1 && strings.ToUpper(s[1:2]) == s[1:2] && strings.ToLower(s[1:2]) != s[1:2] {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
