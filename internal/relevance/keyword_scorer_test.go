package relevance

import (
	"testing"

	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/core"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/fields"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/logger"
)

func newScorer() *KeywordScorer {
	return NewKeywordScorer(fields.Default(), logger.Nop())
}

func relevantArticle() core.Article {
	return core.Article{
		ID:       "ml-1",
		Title:    "Transformer language models for efficient inference",
		Abstract: "We study transformer language models and show that a learning algorithm trained on a new dataset reduces inference cost for natural language processing.",
		Field:    core.FieldAIComputing,
		Subfield: "Machine Learning",
		Tags:     []string{"transformer"},
	}
}

func unrelatedArticle() core.Article {
	return core.Article{
		ID:       "reef-1",
		Title:    "Coral reef bleaching under marine heatwaves",
		Abstract: "Field surveys of coral colonies across three reefs show widespread bleaching after repeated marine heatwaves.",
		Field:    core.FieldClimateEnvironment,
		Subfield: "oceanography",
		Tags:     []string{"coral"},
	}
}

func TestNewKeywordScorer(t *testing.T) {
	if newScorer() == nil {
		t.Fatal("Expected NewKeywordScorer to return a non-nil scorer")
	}
}

func TestScoreRanksRelevantAboveUnrelated(t *testing.T) {
	scorer := newScorer()

	relevant, err := scorer.Score(core.FieldAIComputing, relevantArticle())
	if err != nil {
		t.Fatalf("Failed to score: %v", err)
	}
	unrelated, err := scorer.Score(core.FieldAIComputing, unrelatedArticle())
	if err != nil {
		t.Fatalf("Failed to score: %v", err)
	}

	if relevant.Value < 50 {
		t.Errorf("Expected relevant article to score at least 50, got %.2f", relevant.Value)
	}
	if unrelated.Value != 0 {
		t.Errorf("Expected unrelated article to score 0, got %.2f", unrelated.Value)
	}
	if relevant.Factors["subfield"] != 1 {
		t.Errorf("Expected known subfield factor 1, got %.2f", relevant.Factors["subfield"])
	}
	if relevant.Reasoning == "" {
		t.Error("Expected reasoning to be populated")
	}
}

func TestScoreHalvesForeignFieldArticles(t *testing.T) {
	scorer := newScorer()

	home := relevantArticle()
	foreign := relevantArticle()
	foreign.Field = core.FieldSocialSciences

	h, _ := scorer.Score(core.FieldAIComputing, home)
	f, _ := scorer.Score(core.FieldAIComputing, foreign)

	if f.Value >= h.Value {
		t.Errorf("Expected foreign-field article (%.2f) to score below home article (%.2f)", f.Value, h.Value)
	}
}

func TestScoreArticlesPopulatesScoresWithoutMutatingInput(t *testing.T) {
	scorer := newScorer()
	in := []core.Article{relevantArticle(), unrelatedArticle()}

	out, err := scorer.ScoreArticles(core.FieldAIComputing, in)
	if err != nil {
		t.Fatalf("ScoreArticles failed: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("Expected %d articles, got %d", len(in), len(out))
	}

	for i, a := range out {
		if a.RelevanceScore < 0 || a.RelevanceScore > 100 {
			t.Errorf("Article %d score %.2f out of range", i, a.RelevanceScore)
		}
		if a.ProcessingStatus != core.StatusScored {
			t.Errorf("Article %d expected status scored, got %q", i, a.ProcessingStatus)
		}
		if in[i].RelevanceScore != 0 {
			t.Errorf("Input article %d was mutated", i)
		}
	}
	if out[0].RelevanceScore <= out[1].RelevanceScore {
		t.Errorf("Expected first article to outrank second: %.2f vs %.2f", out[0].RelevanceScore, out[1].RelevanceScore)
	}
}

func TestScoreArticlesRejectsUnknownField(t *testing.T) {
	_, err := newScorer().ScoreArticles(core.FieldID("alchemy"), []core.Article{relevantArticle()})
	if !core.IsConfigurationError(err) {
		t.Fatalf("Expected ConfigurationError, got %v", err)
	}
}

func TestCleanKeywords(t *testing.T) {
	got := newScorer().cleanKeywords([]string{"The", "Neural", "neural", "of", "ai", "vision"})
	want := []string{"neural", "vision"}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected %s at %d, got %s", want[i], i, got[i])
		}
	}
}
