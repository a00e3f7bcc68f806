// Package pipeline runs the weekly digest job: ingest, score, filter and rank,
// compose, validate, then render and persist.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/composer"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/config"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/core"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/logger"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/ranking"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/store"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/validation"
)

// JobOptions is what a job trigger accepts. An empty Field runs every field.
// Force bypasses the "digest already exists for this week" check; DryRun
// composes without rendering or persisting anything.
type JobOptions struct {
	Field  core.FieldID `json:"field,omitempty"`
	Force  bool         `json:"force"`
	DryRun bool         `json:"dry_run"`
}

// FieldStatus is the outcome for one field.
type FieldStatus string

const (
	StatusComposed FieldStatus = "composed"
	StatusSkipped  FieldStatus = "skipped"
	StatusFailed   FieldStatus = "failed"
)

// FieldReport describes one field's run.
type FieldReport struct {
	Field        core.FieldID         `json:"field"`
	DigestID     string               `json:"digest_id"`
	Status       FieldStatus          `json:"status"`
	Ingested     int                  `json:"ingested"`
	Ranked       int                  `json:"ranked"`
	Articles     int                  `json:"articles"`
	ReadingTime  int                  `json:"reading_time"`
	Ranking      ranking.Stats        `json:"ranking"`
	Validation   *validation.Result   `json:"validation,omitempty"`
	Digest       *core.ComposedDigest `json:"-"`
	MarkdownPath string               `json:"markdown_path,omitempty"`
	Persisted    bool                 `json:"persisted"`
	Warnings     []string             `json:"warnings,omitempty"`
	Error        string               `json:"error,omitempty"`
	Duration     time.Duration        `json:"duration"`
}

// JobReport is the overall result of a run. Success is false only when some
// field hit a terminal error; degraded fields still count as success and
// surface their problems as warnings.
type JobReport struct {
	RunID      string        `json:"run_id"`
	Success    bool          `json:"success"`
	DryRun     bool          `json:"dry_run"`
	Fields     []FieldReport `json:"fields"`
	Warnings   []string      `json:"warnings"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
}

// Runner wires the stages together.
type Runner struct {
	ingester  Ingester
	scorer    RelevanceScorer
	ranker    Ranker
	composer  DigestComposer
	validator DigestValidator
	store     DigestStore    // nil disables persistence and the idempotency check
	renderer  DigestRenderer // nil disables markdown artifacts
	content   config.ContentConfig
	log       logger.Logger
	now       func() time.Time
}

// NewRunner creates a Runner. Use Builder to assemble one from configuration.
func NewRunner(
	ingester Ingester,
	scorer RelevanceScorer,
	ranker Ranker,
	composer DigestComposer,
	validator DigestValidator,
	store DigestStore,
	renderer DigestRenderer,
	content config.ContentConfig,
	log logger.Logger,
) *Runner {
	return &Runner{
		ingester:  ingester,
		scorer:    scorer,
		ranker:    ranker,
		composer:  composer,
		validator: validator,
		store:     store,
		renderer:  renderer,
		content:   content,
		log:       log,
		now:       time.Now,
	}
}

// WithClock overrides time.Now, which decides the ISO week of the digest id.
func (r *Runner) WithClock(now func() time.Time) *Runner {
	r.now = now
	return r
}

// Run executes the job for one field or all of them. It returns an error only
// for invalid options or cancellation; per-field failures are in the report.
func (r *Runner) Run(ctx context.Context, opts JobOptions) (*JobReport, error) {
	targets := core.AllFields()
	if opts.Field != "" {
		field, err := core.ParseField(string(opts.Field))
		if err != nil {
			return nil, err
		}
		targets = []core.FieldID{field}
	}

	report := &JobReport{
		RunID:     uuid.NewString(),
		Success:   true,
		DryRun:    opts.DryRun,
		Warnings:  []string{},
		StartedAt: r.now(),
	}
	log := r.log.With("run_id", report.RunID)
	log.Info("Starting digest job", "fields", len(targets), "force", opts.Force, "dry_run", opts.DryRun)

	for _, field := range targets {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("digest job %s: %w", report.RunID, err)
		}

		start := time.Now()
		fr := r.runField(ctx, field, opts, log.With("field", field))
		fr.Duration = time.Since(start)
		if fr.Status == StatusFailed {
			report.Success = false
		}
		for _, w := range fr.Warnings {
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s: %s", field, w))
		}
		report.Fields = append(report.Fields, fr)
	}

	report.FinishedAt = r.now()
	log.Info("Digest job finished", "success", report.Success, "warnings", len(report.Warnings),
		"duration", report.FinishedAt.Sub(report.StartedAt))
	return report, nil
}

func (r *Runner) runField(ctx context.Context, field core.FieldID, opts JobOptions, log logger.Logger) FieldReport {
	fr := FieldReport{Field: field, DigestID: core.DigestIDFor(field, r.now())}

	fail := func(stage string, err error) FieldReport {
		log.Error("Digest job stage failed", err, "stage", stage)
		fr.Status = StatusFailed
		fr.Error = fmt.Sprintf("%s: %v", stage, err)
		return fr
	}

	if r.store != nil && !opts.Force {
		exists, err := r.store.DigestExists(ctx, fr.DigestID)
		if err != nil {
			return fail("idempotency check", err)
		}
		if exists {
			log.Info("Digest already exists, skipping", "digest_id", fr.DigestID)
			fr.Status = StatusSkipped
			fr.Warnings = append(fr.Warnings, fmt.Sprintf("%v: %s (use force to regenerate)", core.ErrDigestExists, fr.DigestID))
			return fr
		}
	}

	ingested, err := r.ingester.Ingest(ctx, field)
	if err != nil {
		return fail("ingest", err)
	}
	fr.Ingested = len(ingested.Articles)
	for _, e := range ingested.SourceErrors {
		fr.Warnings = append(fr.Warnings, e.Error())
	}

	scored, err := r.scorer.ScoreArticles(field, ingested.Articles)
	if err != nil {
		return fail("score", err)
	}

	ranked, stats := r.ranker.FilterAndRankWithStats(scored, ranking.Options{
		MaxTotal:             r.content.MaxCandidates,
		MinRelevanceScore:    r.content.MinRelevanceScore,
		ExcludeOlderThanDays: r.content.ExcludeOlderThanDays,
		IncludePreprints:     r.content.IncludePreprints,
	})
	fr.Ranked = len(ranked)
	fr.Ranking = stats
	log.Info("Ranked candidates", "ingested", fr.Ingested, "ranked", fr.Ranked,
		"too_old", stats.TooOld, "low_relevance", stats.LowRelevance)

	result, err := r.composer.Compose(ctx, ranked, field, composer.FromContentConfig(r.content))
	if err != nil {
		return fail("compose", err)
	}
	d := result.Digest
	fr.Digest = d
	fr.DigestID = d.ID
	fr.Articles = len(d.FeaturedArticles)
	fr.ReadingTime = d.TotalReadingTime
	fr.Warnings = append(fr.Warnings, result.Warnings...)

	vr := r.validator.ValidateDigest(d, d.Articles())
	fr.Validation = &vr
	if !vr.Valid {
		fr.Warnings = append(fr.Warnings, fmt.Sprintf("digest failed validation with %d errors (score %.0f)", len(vr.Errors), vr.Score))
	}
	for _, e := range vr.Errors {
		fr.Warnings = append(fr.Warnings, fmt.Sprintf("validation %s %s: %s", e.Severity, e.Code, e.Message))
	}
	for _, w := range vr.Warnings {
		fr.Warnings = append(fr.Warnings, fmt.Sprintf("validation warning %s: %s", w.Code, w.Message))
	}

	if opts.DryRun {
		fr.Status = StatusComposed
		log.Info("Dry run, skipping render and persistence", "digest_id", d.ID)
		return fr
	}

	artifacts := map[string]string{}
	if r.renderer != nil {
		path, err := r.renderer.RenderDigest(ctx, d)
		if err != nil {
			fr.Warnings = append(fr.Warnings, fmt.Sprintf("render markdown: %v", err))
		} else {
			fr.MarkdownPath = path
			artifacts["markdown"] = path
		}
	}

	if r.store != nil {
		rec := store.Record{Digest: d, Articles: d.Articles(), Validation: &vr, Artifacts: artifacts}
		if err := r.store.SaveDigest(ctx, rec); err != nil {
			return fail("persist", err)
		}
		fr.Persisted = true
	}

	fr.Status = StatusComposed
	log.Info("Digest ready", "digest_id", d.ID, "articles", fr.Articles, "valid", vr.Valid, "score", vr.Score)
	return fr
}
