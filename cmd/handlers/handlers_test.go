package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/core"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/pipeline"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/store"
)

// writeConfig points the store and output directory at a temp dir.
func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfg := "logging:\n  level: error\n" +
		"database:\n  driver: sqlite\n  data_dir: " + filepath.Join(dir, "data") + "\n" +
		"output:\n  directory: " + filepath.Join(dir, "out") + "\n" +
		"sources:\n  seed: 42\n  retry_base_delay: 1ms\n"
	path := filepath.Join(dir, "scholarly.yaml")
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "input.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFieldsCommand(t *testing.T) {
	out, err := execute(t, "fields")
	if err != nil {
		t.Fatalf("fields: %v", err)
	}
	for _, f := range core.AllFields() {
		if !strings.Contains(out, string(f)) {
			t.Errorf("output missing field %s", f)
		}
	}
}

func TestValidateUserCommand(t *testing.T) {
	cfg := writeConfig(t)

	good := writeJSON(t, core.User{
		Email:    "ada@example.org",
		Name:     "Ada",
		Fields:   []core.FieldID{core.FieldLifeSciences},
		Channels: []core.DeliveryChannel{core.ChannelEmail},
	})
	out, err := execute(t, "--config", cfg, "validate", "user", good)
	if err != nil {
		t.Fatalf("validate good user: %v\n%s", err, out)
	}
	if !strings.Contains(out, "valid") {
		t.Errorf("expected valid status in output:\n%s", out)
	}

	bad := writeJSON(t, core.User{Email: "nope"})
	out, err = execute(t, "--config", cfg, "validate", "user", bad)
	if !errors.Is(err, errValidationFailed) {
		t.Fatalf("expected validation failure, got %v", err)
	}
	if !strings.Contains(out, "INVALID_EMAIL") || !strings.Contains(out, "NO_FIELDS") {
		t.Errorf("expected error codes in output:\n%s", out)
	}
}

func TestValidateArticlesCommand(t *testing.T) {
	cfg := writeConfig(t)

	path := writeJSON(t, []core.Article{
		{
			ID:             "good",
			URL:            "https://arxiv.org/abs/2605.01234",
			Title:          "Scaling laws for sparse mixture-of-experts models",
			Abstract:       "We measure how loss scales with expert count and token budget across forty training runs.",
			Authors:        []string{"R. Okafor"},
			RelevanceScore: 85,
			QualityScore:   80,
		},
		{ID: "bad", Title: "Short"},
	})

	out, err := execute(t, "--config", cfg, "validate", "articles", "--json", path)
	if !errors.Is(err, errValidationFailed) {
		t.Fatalf("expected validation failure for the batch, got %v", err)
	}

	var batch struct {
		Results map[string]struct {
			Valid bool `json:"valid"`
		} `json:"results"`
		Summary struct {
			Total   int `json:"total"`
			Invalid int `json:"invalid"`
		} `json:"summary"`
	}
	if err := json.Unmarshal([]byte(out), &batch); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if batch.Summary.Total != 2 || batch.Summary.Invalid != 1 {
		t.Errorf("unexpected summary %+v", batch.Summary)
	}
	if !batch.Results["good"].Valid || batch.Results["bad"].Valid {
		t.Errorf("unexpected results %+v", batch.Results)
	}
}

func TestDigestListEmptyStore(t *testing.T) {
	cfg := writeConfig(t)

	out, err := execute(t, "--config", cfg, "digest", "list")
	if err != nil {
		t.Fatalf("digest list: %v", err)
	}
	if !strings.Contains(out, "No digests found") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestDigestShowMissing(t *testing.T) {
	cfg := writeConfig(t)

	_, err := execute(t, "--config", cfg, "digest", "show", "life-sciences-2020-w01")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestDigestRunDryRunJSON(t *testing.T) {
	cfg := writeConfig(t)

	out, _ := execute(t, "--config", cfg, "digest", "run", "--field", "life-sciences", "--dry-run", "--no-store", "--json")

	var report pipeline.JobReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode report: %v\n%s", err, out)
	}
	if !report.DryRun {
		t.Error("expected a dry-run report")
	}
	if len(report.Fields) != 1 || report.Fields[0].Field != core.FieldLifeSciences {
		t.Fatalf("unexpected fields %+v", report.Fields)
	}
	if report.Fields[0].Persisted || report.Fields[0].MarkdownPath != "" {
		t.Error("dry run must not render or persist")
	}
}

func TestDigestRunRejectsUnknownField(t *testing.T) {
	cfg := writeConfig(t)

	_, err := execute(t, "--config", cfg, "digest", "run", "--field", "astrology", "--no-store")
	if !core.IsConfigurationError(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestDigestDelete(t *testing.T) {
	cfg := writeConfig(t)

	st, err := store.NewSQLite(filepath.Join(filepath.Dir(cfg), "data"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	d := &core.ComposedDigest{
		ID:               core.DigestID(core.FieldLifeSciences, 2026, 20),
		Field:            core.FieldLifeSciences,
		Year:             2026,
		WeekNumber:       20,
		TotalReadingTime: 6,
		FeaturedArticles: []core.ComposedArticle{{Article: core.Article{ID: "a1", Title: "A featured article"}, ReadingTime: 6, Position: 1}},
	}
	if err := st.SaveDigest(context.Background(), store.Record{Digest: d, Articles: d.Articles()}); err != nil {
		t.Fatalf("save digest: %v", err)
	}
	_ = st.Close()

	out, err := execute(t, "--config", cfg, "digest", "delete", d.ID)
	if err != nil {
		t.Fatalf("digest delete: %v\n%s", err, out)
	}
	if !strings.Contains(out, d.ID) {
		t.Errorf("expected deleted id in output:\n%s", out)
	}

	if _, err := execute(t, "--config", cfg, "digest", "show", d.ID); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected deleted digest to be gone, got %v", err)
	}
	if _, err := execute(t, "--config", cfg, "digest", "delete", d.ID); err == nil {
		t.Error("expected deleting a missing digest to fail")
	}
}
