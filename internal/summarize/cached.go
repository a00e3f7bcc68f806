package summarize

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/core"
)

// CachedSummarizer remembers successful results per article and options.
// Failures are never cached.
type CachedSummarizer struct {
	next  Summarizer
	cache *cache.Cache
}

// NewCachedSummarizer wraps next with an in-memory cache whose entries expire after ttl.
func NewCachedSummarizer(next Summarizer, ttl time.Duration) *CachedSummarizer {
	return &CachedSummarizer{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

// Summarize implements Summarizer.
func (s *CachedSummarizer) Summarize(ctx context.Context, article core.Article, opts Options) (Result, error) {
	key := cacheKey(article, opts)
	if key != "" {
		if v, ok := s.cache.Get(key); ok {
			return cloneResult(v.(Result)), nil
		}
	}

	res, err := s.next.Summarize(ctx, article, opts)
	if err != nil {
		return Result{}, err
	}

	if key != "" {
		s.cache.Set(key, cloneResult(res), cache.DefaultExpiration)
	}
	return res, nil
}

// Len reports the number of cached results.
func (s *CachedSummarizer) Len() int {
	return s.cache.ItemCount()
}

func cacheKey(article core.Article, opts Options) string {
	id := article.IdentityKey()
	if id == "" {
		return ""
	}
	return fmt.Sprintf("%s|%s|%t|%t", id, opts.AudienceLevel, opts.IncludeTechnicalDetails, opts.EmphasizeApplications)
}

func cloneResult(r Result) Result {
	if r.KeyFindings != nil {
		r.KeyFindings = append([]string(nil), r.KeyFindings...)
	}
	return r
}
