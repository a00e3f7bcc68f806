package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/core"
)

func testDigest() *core.ComposedDigest {
	return &core.ComposedDigest{
		ID:           "life-sciences-2026-w21",
		Field:        core.FieldLifeSciences,
		WeekNumber:   21,
		Year:         2026,
		Introduction: "This week brings two studies on memory and sleep.",
		FeaturedArticles: []core.ComposedArticle{
			{
				Article: core.Article{
					Title:       "Sleep spindles coordinate memory replay",
					Authors:     []string{"A. Rivera", "B. Chen", "C. Osei"},
					Venue:       "Neuron",
					PublishedAt: time.Date(2026, 5, 18, 0, 0, 0, 0, time.UTC),
					URL:         "https://example.org/spindles",
				},
				Summary:        "Spindles precede replay.",
				WhyThisMatters: "Timing matters for therapy.",
				KeyFindings:    []string{"200 ms lead", "18% recall drop"},
				ReadingTime:    4,
				Position:       1,
				Transition:     "From sleep to waking memory.",
			},
			{
				Article:     core.Article{Title: "Glial pruning in aging cortex", Authors: []string{"D. Novak"}, DOI: "10.1/glia"},
				Summary:     "Astrocytes prune synapses.",
				ReadingTime: 3,
				Position:    2,
			},
		},
		Methodology:      "Selected from 40 candidates.",
		Conclusion:       "See you next week.",
		TotalReadingTime: 7,
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(testDigest(), "Life Sciences")

	expected := []string{
		"# Life Sciences Weekly Digest: Week 21, 2026",
		"*2 articles, about 7 minutes of reading*",
		"This week brings two studies",
		"## 1. Sleep spindles coordinate memory replay",
		"A. Rivera et al. · *Neuron* · 18 May 2026 · 4 min read",
		"**Why this matters:** Timing matters for therapy.",
		"- 200 ms lead",
		"[Read the paper](https://example.org/spindles)",
		"> From sleep to waking memory.",
		"## 2. Glial pruning in aging cortex",
		"[Read the paper](https://doi.org/10.1/glia)",
		"## How we chose these articles",
		"See you next week.",
	}
	for _, want := range expected {
		if !strings.Contains(md, want) {
			t.Errorf("Markdown should contain %q\n%s", want, md)
		}
	}

	if strings.Index(md, "## 1.") > strings.Index(md, "## 2.") {
		t.Error("Articles should appear in position order")
	}
}

func TestMarkdownEmptyDigest(t *testing.T) {
	md := Markdown(&core.ComposedDigest{Field: core.FieldAIComputing, WeekNumber: 3, Year: 2026}, "")
	if !strings.Contains(md, "# ai-computing Weekly Digest") {
		t.Errorf("Expected field id as fallback title: %s", md)
	}
	if !strings.Contains(md, "No articles were selected") {
		t.Error("Expected empty digest notice")
	}
}

func TestWriteDigest(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	path, err := WriteDigest(testDigest(), "Life Sciences", dir)
	if err != nil {
		t.Fatalf("WriteDigest failed: %v", err)
	}
	if filepath.Base(path) != "life-sciences-2026-w21.md" {
		t.Errorf("Unexpected file name %s", path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read digest file: %v", err)
	}
	if !strings.HasPrefix(string(content), "# Life Sciences Weekly Digest") {
		t.Error("File should contain rendered markdown")
	}
}

func TestWriteDigestToFile_InvalidDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file.txt")
	_ = os.WriteFile(file, []byte("x"), 0644)

	if _, err := WriteDigestToFile("content", file, "digest.md"); err == nil {
		t.Error("Expected error when output directory is a file")
	}
}
