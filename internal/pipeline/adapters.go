package pipeline

import (
	"context"

	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/core"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/fields"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/render"
)

// RendererAdapter implements DigestRenderer with markdown files
type RendererAdapter struct {
	outputDir string
	registry  *fields.Registry
}

// NewRendererAdapter creates a renderer writing into outputDir
func NewRendererAdapter(outputDir string, registry *fields.Registry) *RendererAdapter {
	return &RendererAdapter{outputDir: outputDir, registry: registry}
}

func (r *RendererAdapter) RenderDigest(ctx context.Context, d *core.ComposedDigest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := string(d.Field)
	if f, err := r.registry.Get(d.Field); err == nil {
		name = f.Name
	}
	return render.WriteDigest(d, name, r.outputDir)
}
