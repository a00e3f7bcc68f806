package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/composer"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/config"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/core"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/fields"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/logger"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/narrative"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/ranking"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/relevance"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/sources"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/summarize"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/validation"
)

// Builder helps construct a fully configured Runner
type Builder struct {
	cfg        *config.Config
	registry   *fields.Registry
	log        logger.Logger
	now        func() time.Time
	adapters   []sources.Adapter
	summarizer summarize.Summarizer
	store      DigestStore
	skipRender bool
}

// NewBuilder creates a new runner builder from configuration
func NewBuilder(cfg *config.Config) *Builder {
	return &Builder{
		cfg:      cfg,
		registry: fields.Default(),
		log:      logger.Nop(),
		now:      time.Now,
	}
}

// WithLogger sets the logger
func (b *Builder) WithLogger(log logger.Logger) *Builder {
	b.log = log
	return b
}

// WithRegistry replaces the embedded field registry
func (b *Builder) WithRegistry(registry *fields.Registry) *Builder {
	b.registry = registry
	return b
}

// WithClock sets the clock used for recency filters and digest ids
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// WithAdapters replaces the configured catalogs and feeds
func (b *Builder) WithAdapters(adapters ...sources.Adapter) *Builder {
	b.adapters = adapters
	return b
}

// WithSummarizer replaces the configured summarizer
func (b *Builder) WithSummarizer(s summarize.Summarizer) *Builder {
	b.summarizer = s
	return b
}

// WithStore enables persistence and the idempotency check
func (b *Builder) WithStore(s DigestStore) *Builder {
	b.store = s
	return b
}

// WithoutRender disables markdown artifacts
func (b *Builder) WithoutRender() *Builder {
	b.skipRender = true
	return b
}

// Build constructs a fully configured Runner
func (b *Builder) Build(ctx context.Context) (*Runner, error) {
	if b.cfg == nil {
		return nil, &core.ConfigurationError{Field: "config", Message: "configuration is required"}
	}

	adapters := b.adapters
	if adapters == nil {
		var err error
		adapters, err = Adapters(b.cfg.Sources, b.registry, b.now)
		if err != nil {
			return nil, err
		}
	}

	s := b.summarizer
	if s == nil {
		var err error
		s, err = Summarizer(ctx, b.cfg.Summarizer)
		if err != nil {
			return nil, err
		}
	}

	concurrency := b.cfg.Summarizer.Concurrency
	comp := composer.New(s, narrative.NewGenerator(narrative.NewRand(b.cfg.Summarizer.Seed)), b.registry,
		b.log.With("component", "composer"),
		composer.WithClock(b.now),
		composer.WithConcurrency(concurrency))

	var renderer DigestRenderer
	if !b.skipRender {
		renderer = NewRendererAdapter(b.cfg.Output.Directory, b.registry)
	}

	runner := NewRunner(
		sources.NewIngestor(adapters, sources.OptionsFromConfig(b.cfg.Sources), b.log.With("component", "sources")),
		relevance.NewKeywordScorer(b.registry, b.log.With("component", "relevance")),
		ranking.New(b.now, b.log.With("component", "ranking")),
		comp,
		validation.NewEngine(validation.RulesFromConfig(b.cfg.Content)),
		b.store,
		renderer,
		b.cfg.Content,
		b.log,
	)
	return runner.WithClock(b.now), nil
}

// Adapters creates the catalog and feed adapters named in configuration.
func Adapters(cfg config.Sources, registry *fields.Registry, now func() time.Time) ([]sources.Adapter, error) {
	var adapters []sources.Adapter
	for _, name := range cfg.Catalogs {
		a, err := sources.NewCatalogAdapter(name, registry, cfg.Seed, now)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, a)
	}
	for _, feed := range cfg.Feeds {
		field, err := core.ParseField(feed.Field)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, sources.NewFeedAdapter(feed.Name, feed.URL, field, registry))
	}
	if len(adapters) == 0 {
		return nil, &core.ConfigurationError{Field: "sources", Message: "no catalogs or feeds configured"}
	}
	return adapters, nil
}

// Summarizer creates the configured summarizer, wrapped in a result cache
// when cache_ttl is positive.
func Summarizer(ctx context.Context, cfg config.Summarizer) (summarize.Summarizer, error) {
	var s summarize.Summarizer
	switch cfg.Provider {
	case "", "template":
		s = summarize.NewTemplateSummarizer(narrative.NewRand(cfg.Seed))
	case "gemini":
		client, err := summarize.NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		s = summarize.NewLLMSummarizer(client, cfg.Timeout)
	default:
		return nil, &core.ConfigurationError{Field: "summarizer.provider", Message: fmt.Sprintf("unknown provider %q", cfg.Provider)}
	}

	if cfg.CacheTTL > 0 {
		s = summarize.NewCachedSummarizer(s, cfg.CacheTTL)
	}
	return s, nil
}
