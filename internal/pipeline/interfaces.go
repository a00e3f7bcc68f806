package pipeline

import (
	"context"

	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/composer"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/core"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/ranking"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/sources"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/store"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/validation"
)

// Ingester gathers deduplicated candidates for a field
type Ingester interface {
	// Ingest fetches from every source; failing sources degrade the result
	// instead of failing it
	Ingest(ctx context.Context, field core.FieldID) (*sources.IngestResult, error)
}

// RelevanceScorer populates relevance scores against a field profile
type RelevanceScorer interface {
	ScoreArticles(field core.FieldID, articles []core.Article) ([]core.Article, error)
}

// Ranker filters and orders scored candidates
type Ranker interface {
	FilterAndRankWithStats(articles []core.Article, opts ranking.Options) ([]core.Article, ranking.Stats)
}

// DigestComposer turns ranked candidates into a digest
type DigestComposer interface {
	Compose(ctx context.Context, articles []core.Article, field core.FieldID, opts composer.Options) (*composer.Result, error)
}

// DigestValidator checks a composed digest
type DigestValidator interface {
	ValidateDigest(d *core.ComposedDigest, articles []core.Article) validation.Result
}

// DigestStore persists digests and answers the idempotency check
type DigestStore interface {
	DigestExists(ctx context.Context, id string) (bool, error)
	SaveDigest(ctx context.Context, rec store.Record) error
}

// DigestRenderer writes a delivery artifact and returns its path
type DigestRenderer interface {
	RenderDigest(ctx context.Context, d *core.ComposedDigest) (string, error)
}
