package sources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/core"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/fields"
)

// FeedAdapter reads an RSS or Atom feed bound to one field, such as a journal
// table-of-contents feed or an arXiv listing.
type FeedAdapter struct {
	name     string
	url      string
	field    core.FieldID
	registry *fields.Registry
	parser   *gofeed.Parser
}

// NewFeedAdapter creates a FeedAdapter for url.
func NewFeedAdapter(name, url string, field core.FieldID, registry *fields.Registry) *FeedAdapter {
	parser := gofeed.NewParser()
	parser.UserAgent = "scholarly/1.0 (+weekly research digests)"
	return &FeedAdapter{name: name, url: url, field: field, registry: registry, parser: parser}
}

func (f *FeedAdapter) Name() string { return f.name }

// Fetch returns nothing for fields other than the one the feed is bound to.
func (f *FeedAdapter) Fetch(ctx context.Context, field core.FieldID, maxResults int) ([]core.Article, error) {
	if field != f.field {
		return nil, nil
	}

	feed, err := f.parser.ParseURLWithContext(f.url, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", f.url, err)
	}

	profile, _ := f.registry.Get(field)
	venue := strings.TrimSpace(feed.Title)
	venueType, ok := profile.VenueType(venue)
	if !ok {
		venueType = guessVenueType(f.url, venue)
	}

	out := make([]core.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		if maxResults > 0 && len(out) >= maxResults {
			break
		}
		out = append(out, f.toArticle(item, field, venue, venueType))
	}
	return out, nil
}

func (f *FeedAdapter) toArticle(item *gofeed.Item, field core.FieldID, venue string, venueType core.VenueType) core.Article {
	abstract := item.Description
	if strings.TrimSpace(abstract) == "" {
		abstract = item.Content
	}

	var authors []string
	for _, p := range item.Authors {
		if p != nil && strings.TrimSpace(p.Name) != "" {
			authors = append(authors, strings.TrimSpace(p.Name))
		}
	}

	published := time.Time{}
	switch {
	case item.PublishedParsed != nil:
		published = item.PublishedParsed.UTC()
	case item.UpdatedParsed != nil:
		published = item.UpdatedParsed.UTC()
	}

	return core.Article{
		DOI:          itemDOI(item),
		SourceID:     item.GUID,
		Source:       f.name,
		URL:          item.Link,
		Title:        CleanMarkup(item.Title),
		Abstract:     abstract,
		Authors:      authors,
		Venue:        venue,
		VenueType:    venueType,
		PublishedAt:  published,
		Field:        field,
		Tags:         append([]string(nil), item.Categories...),
		QualityScore: baselineQuality(venueType),
	}
}

// itemDOI looks for a DOI in Dublin Core identifiers, then in the link.
func itemDOI(item *gofeed.Item) string {
	if item.DublinCoreExt != nil {
		for _, id := range item.DublinCoreExt.Identifier {
			id = strings.TrimSpace(id)
			if rest, ok := strings.CutPrefix(strings.ToLower(id), "doi:"); ok {
				return strings.TrimSpace(rest)
			}
			if strings.HasPrefix(id, "10.") {
				return id
			}
		}
	}
	if _, rest, ok := strings.Cut(item.Link, "doi.org/"); ok {
		return rest
	}
	return ""
}

func guessVenueType(url, title string) core.VenueType {
	s := strings.ToLower(url + " " + title)
	switch {
	case strings.Contains(s, "arxiv"), strings.Contains(s, "rxiv"), strings.Contains(s, "preprint"):
		return core.VenuePreprint
	case strings.Contains(s, "proceedings"), strings.Contains(s, "conference"):
		return core.VenueConference
	default:
		return core.VenueJournal
	}
}
