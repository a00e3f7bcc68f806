// Package dedup merges candidate articles that share an identity key.
//
// The key is DOI, then source-native id, then normalized title. Title-only
// keys can merge unrelated papers that happen to share a title; that
// approximation is kept on purpose until identity strength is revisited.
package dedup

import (
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/core"
)

// Stats describes one deduplication pass.
type Stats struct {
	Input    int
	Unique   int
	Merged   int
	Replaced int // duplicates whose fields won because of higher quality
	Unkeyed  int // articles with no derivable identity, kept as-is
}

// Deduplicator merges duplicates instead of dropping them.
type Deduplicator struct{}

// New creates a Deduplicator.
func New() *Deduplicator {
	return &Deduplicator{}
}

// Dedupe returns one article per identity key, in first-seen order.
func (d *Deduplicator) Dedupe(articles []core.Article) []core.Article {
	out, _ := d.DedupeWithStats(articles)
	return out
}

// DedupeWithStats is Dedupe plus counters for logging.
//
// On a repeat key the kept record is replaced by the incoming one only when the
// incoming qualityScore is strictly higher; the id, fetch timestamp and
// processing status of the kept record always survive. Tags, topics and
// related articles are unioned regardless.
func (d *Deduplicator) DedupeWithStats(articles []core.Article) ([]core.Article, Stats) {
	stats := Stats{Input: len(articles)}
	index := make(map[string]int, len(articles))
	out := make([]core.Article, 0, len(articles))

	for _, incoming := range articles {
		key := incoming.IdentityKey()
		if key == "" {
			stats.Unkeyed++
			out = append(out, incoming.Clone())
			continue
		}

		pos, seen := index[key]
		if !seen {
			index[key] = len(out)
			out = append(out, incoming.Clone())
			continue
		}

		stats.Merged++
		kept := out[pos]
		merged := kept
		if incoming.QualityScore > kept.QualityScore {
			merged = incoming.Clone()
			merged.ID = kept.ID
			merged.FetchedAt = kept.FetchedAt
			merged.ProcessingStatus = kept.ProcessingStatus
			stats.Replaced++
		}
		merged.Tags = union(kept.Tags, incoming.Tags)
		merged.Topics = union(kept.Topics, incoming.Topics)
		merged.RelatedArticles = union(kept.RelatedArticles, incoming.RelatedArticles)
		out[pos] = merged
	}

	stats.Unique = len(out)
	return out, stats
}

// union preserves the order of a followed by new entries of b.
func union(a, b []string) []string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, s := range list {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}
