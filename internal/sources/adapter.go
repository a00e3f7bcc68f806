// Package sources fetches candidate articles for a field from one or more
// adapters and merges them into a deduplicated candidate set.
package sources

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/core"
)

// Adapter fetches raw candidate records for a field from one source.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context, field core.FieldID, maxResults int) ([]core.Article, error)
}

// StaticAdapter serves a fixed set of records. Records with an empty field
// are served for every field.
type StaticAdapter struct {
	name     string
	articles []core.Article
}

// NewStaticAdapter creates a StaticAdapter.
func NewStaticAdapter(name string, articles []core.Article) *StaticAdapter {
	return &StaticAdapter{name: name, articles: articles}
}

func (s *StaticAdapter) Name() string { return s.name }

func (s *StaticAdapter) Fetch(ctx context.Context, field core.FieldID, maxResults int) ([]core.Article, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []core.Article
	for _, a := range s.articles {
		if a.Field != "" && a.Field != field {
			continue
		}
		if maxResults > 0 && len(out) >= maxResults {
			break
		}
		out = append(out, a.Clone())
	}
	return out, nil
}

// CleanMarkup strips HTML from feed and catalog text and collapses whitespace.
func CleanMarkup(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return collapse(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return collapse(s)
	}
	doc.Find("script, style").Remove()
	return collapse(doc.Text())
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// baselineQuality is used when a source reports no quality signal.
func baselineQuality(t core.VenueType) float64 {
	switch t {
	case core.VenueJournal:
		return 70
	case core.VenueConference:
		return 65
	case core.VenuePreprint:
		return 55
	default:
		return 50
	}
}
