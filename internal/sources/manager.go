package sources

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/config"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/core"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/dedup"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/logger"
)

// Options configures ingestion.
type Options struct {
	MaxResultsPerSource int           // Limit per adapter call (0 = adapter default)
	RetryAttempts       int           // Attempts per adapter, including the first
	RetryBaseDelay      time.Duration // Delay before the second attempt; doubles after each failure
	Timeout             time.Duration // Per-attempt timeout (0 = none)
	RateLimit           float64       // Adapter calls per second across all sources (0 = unlimited)
	Concurrency         int           // Adapters fetched at once
}

// DefaultOptions returns sensible defaults
func DefaultOptions() Options {
	return Options{
		MaxResultsPerSource: 25,
		RetryAttempts:       3,
		RetryBaseDelay:      2 * time.Second,
		Timeout:             30 * time.Second,
		RateLimit:           5,
		Concurrency:         4,
	}
}

// OptionsFromConfig maps source configuration onto ingestion options.
func OptionsFromConfig(c config.Sources) Options {
	return Options{
		MaxResultsPerSource: c.MaxResultsPerSource,
		RetryAttempts:       c.RetryAttempts,
		RetryBaseDelay:      c.RetryBaseDelay,
		Timeout:             c.Timeout,
		RateLimit:           c.RateLimitPerSecond,
		Concurrency:         c.Concurrency,
	}
}

// IngestResult contains ingestion output and statistics
type IngestResult struct {
	Field        core.FieldID
	Articles     []core.Article // deduplicated
	Raw          int            // records returned by all adapters before deduplication
	Duplicates   int
	SourcesOK    int
	SourceErrors []error // one *core.SourceError per failed adapter
}

// Ingestor fans out to every adapter and merges what comes back.
type Ingestor struct {
	adapters []Adapter
	dedup    *dedup.Deduplicator
	limiter  *rate.Limiter
	opts     Options
	log      logger.Logger
	now      func() time.Time
}

// NewIngestor creates an Ingestor. The rate limiter is shared by all adapters
// and all Ingest calls.
func NewIngestor(adapters []Adapter, opts Options, log logger.Logger) *Ingestor {
	if opts.RetryAttempts < 1 {
		opts.RetryAttempts = 1
	}
	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	return &Ingestor{
		adapters: adapters,
		dedup:    dedup.New(),
		limiter:  rate.NewLimiter(limit, max(1, int(opts.RateLimit))),
		opts:     opts,
		log:      log,
		now:      time.Now,
	}
}

// Sources returns the adapter names in fetch order.
func (in *Ingestor) Sources() []string {
	names := make([]string, len(in.adapters))
	for i, a := range in.adapters {
		names[i] = a.Name()
	}
	return names
}

// Ingest fetches candidates for field from every adapter concurrently. A
// failing adapter contributes no articles and one entry in SourceErrors; it
// never fails the ingestion. Ingest returns an error only for an unknown field
// or when ctx ends.
func (in *Ingestor) Ingest(ctx context.Context, field core.FieldID) (*IngestResult, error) {
	if _, err := core.ParseField(string(field)); err != nil {
		return nil, err
	}

	in.log.Info("Starting ingestion", "field", field, "sources", len(in.adapters), "max_concurrency", in.opts.Concurrency)

	batches := make([][]core.Article, len(in.adapters))
	result := &IngestResult{Field: field}
	var mu sync.Mutex

	var g errgroup.Group
	if in.opts.Concurrency > 0 {
		g.SetLimit(in.opts.Concurrency)
	}
	for i, adapter := range in.adapters {
		g.Go(func() error {
			articles, err := in.fetchWithRetry(ctx, adapter, field)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				in.log.Error("Source failed", err, "source", adapter.Name(), "field", field)
				result.SourceErrors = append(result.SourceErrors, err)
				return nil
			}
			result.SourcesOK++
			batches[i] = articles
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("ingest %s: %w", field, err)
	}

	fetchedAt := in.now().UTC()
	var raw []core.Article
	for i, batch := range batches {
		for _, a := range batch {
			raw = append(raw, normalize(a, in.adapters[i].Name(), field, fetchedAt))
		}
	}

	articles, stats := in.dedup.DedupeWithStats(raw)
	result.Articles = articles
	result.Raw = len(raw)
	result.Duplicates = stats.Merged

	in.log.Info("Ingestion completed",
		"field", field,
		"sources_ok", result.SourcesOK,
		"sources_failed", len(result.SourceErrors),
		"raw", result.Raw,
		"unique", len(articles),
		"duplicates", stats.Merged,
	)
	return result, nil
}

// fetchWithRetry calls one adapter with bounded retry and exponential backoff.
func (in *Ingestor) fetchWithRetry(ctx context.Context, adapter Adapter, field core.FieldID) ([]core.Article, error) {
	var lastErr error
	delay := in.opts.RetryBaseDelay

	for attempt := 1; attempt <= in.opts.RetryAttempts; attempt++ {
		if err := in.limiter.Wait(ctx); err != nil {
			return nil, &core.SourceError{Source: adapter.Name(), Field: field, Err: err}
		}

		articles, err := in.fetchOnce(ctx, adapter, field)
		if err == nil {
			return articles, nil
		}
		lastErr = err

		if attempt == in.opts.RetryAttempts {
			break
		}
		in.log.Warn("Source fetch failed, retrying",
			"source", adapter.Name(), "attempt", attempt, "delay", delay, "error", err)

		select {
		case <-ctx.Done():
			return nil, &core.SourceError{Source: adapter.Name(), Field: field, Err: ctx.Err()}
		case <-time.After(delay):
		}
		delay *= 2
	}

	return nil, &core.SourceError{
		Source: adapter.Name(),
		Field:  field,
		Err:    fmt.Errorf("giving up after %d attempts: %w", in.opts.RetryAttempts, lastErr),
	}
}

func (in *Ingestor) fetchOnce(ctx context.Context, adapter Adapter, field core.FieldID) ([]core.Article, error) {
	if in.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, in.opts.Timeout)
		defer cancel()
	}
	return adapter.Fetch(ctx, field, in.opts.MaxResultsPerSource)
}

// normalize fills what adapters commonly leave out.
func normalize(a core.Article, source string, field core.FieldID, fetchedAt time.Time) core.Article {
	a = a.Clone()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Source == "" {
		a.Source = source
	}
	if a.Field == "" {
		a.Field = field
	}
	a.Title = strings.TrimSpace(a.Title)
	a.Abstract = CleanMarkup(a.Abstract)
	if a.ReadingTime < 1 {
		a.ReadingTime = 2 + core.EstimateReadingTime(a.Abstract)
	}
	if a.FetchedAt.IsZero() {
		a.FetchedAt = fetchedAt
	}
	if a.ProcessingStatus == "" {
		a.ProcessingStatus = core.StatusFetched
	}
	return a
}
