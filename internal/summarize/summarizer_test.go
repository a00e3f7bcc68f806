package summarize

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/core"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/narrative"
)

// MockLLMClient implements LLMClient for testing
type MockLLMClient struct {
	response   string
	callCount  int
	shouldFail bool
	lastPrompt string
}

func (m *MockLLMClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	m.callCount++
	m.lastPrompt = prompt
	if m.shouldFail {
		return "", errors.New("mock LLM error")
	}
	return m.response, nil
}

// countingSummarizer counts calls and returns a fixed result.
type countingSummarizer struct {
	calls atomic.Int32
	fail  bool
}

func (c *countingSummarizer) Summarize(ctx context.Context, article core.Article, opts Options) (Result, error) {
	c.calls.Add(1)
	if c.fail {
		return Result{}, &core.SummarizationError{ArticleID: article.ID, Err: errors.New("boom")}
	}
	return Result{Summary: "summary of " + article.ID, KeyFindings: []string{"f1"}, ReadingTime: 4}, nil
}

func testArticle() core.Article {
	return core.Article{
		ID:       "a1",
		DOI:      "10.1000/test",
		Title:    "Sleep spindles coordinate memory replay in humans",
		Abstract: "We recorded intracranial activity in 24 patients during sleep. Spindle bursts preceded hippocampal replay events by 200 ms. Disrupting spindles reduced next-day recall by 18%. These results link spindle timing to memory consolidation.",
		Authors:  []string{"A. Rivera", "B. Chen", "C. Osei"},
		Venue:    "Neuron",
		Subfield: "Neuroscience",
	}
}

func TestTemplateSummarizerProducesAllSections(t *testing.T) {
	s := NewTemplateSummarizer(narrative.NewRand(1))
	opts := Options{AudienceLevel: core.AudienceIntermediate, IncludeTechnicalDetails: true, EmphasizeApplications: true}

	res, err := s.Summarize(context.Background(), testArticle(), opts)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	if len(res.Summary) < 100 {
		t.Errorf("Expected summary of at least 100 chars, got %d: %q", len(res.Summary), res.Summary)
	}
	if !strings.Contains(res.Summary, "A. Rivera and colleagues") {
		t.Errorf("Expected author line in summary: %q", res.Summary)
	}
	if !strings.Contains(res.WhyThisMatters, "neuroscience") {
		t.Errorf("Expected subfield in why-this-matters: %q", res.WhyThisMatters)
	}
	if len(res.KeyFindings) != 3 {
		t.Errorf("Expected 3 key findings, got %d: %v", len(res.KeyFindings), res.KeyFindings)
	}
	if res.ReadingTime < 1 {
		t.Errorf("Expected reading time >= 1, got %d", res.ReadingTime)
	}
}

func TestTemplateSummarizerAudienceLevels(t *testing.T) {
	s := NewTemplateSummarizer(narrative.NewRand(1))
	a := testArticle()

	beginner, _ := s.Summarize(context.Background(), a, Options{AudienceLevel: core.AudienceBeginner})
	advanced, _ := s.Summarize(context.Background(), a, Options{AudienceLevel: core.AudienceAdvanced})

	if !strings.HasPrefix(beginner.Summary, "In plain terms") && !strings.HasPrefix(beginner.Summary, "Put simply") {
		t.Errorf("Expected plain-language opener for beginners: %q", beginner.Summary)
	}
	if !strings.Contains(advanced.Summary, "200 ms") {
		t.Errorf("Expected advanced summary to include the second sentence: %q", advanced.Summary)
	}
}

func TestTemplateSummarizerKeepsArticleReadingTime(t *testing.T) {
	a := testArticle()
	a.ReadingTime = 7
	res, err := NewTemplateSummarizer(narrative.NewRand(1)).Summarize(context.Background(), a, Options{})
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if res.ReadingTime != 7 {
		t.Errorf("Expected article reading time 7, got %d", res.ReadingTime)
	}
}

func TestTemplateSummarizerFailsWithoutAbstract(t *testing.T) {
	a := testArticle()
	a.Abstract = "   "
	_, err := NewTemplateSummarizer(nil).Summarize(context.Background(), a, Options{})
	if !core.IsSummarizationError(err) {
		t.Fatalf("Expected SummarizationError, got %v", err)
	}
}

func TestLLMSummarizerParsesResponse(t *testing.T) {
	mock := &MockLLMClient{response: `**SUMMARY:**
Spindle bursts in sleep precede hippocampal replay,
and disrupting them impairs recall.

WHY IT MATTERS:
Timing-targeted stimulation could support memory therapies.

KEY FINDINGS:
- Spindles lead replay by 200 ms
2. Disruption cut recall by 18%
* Effect seen in 24 patients`}

	s := NewLLMSummarizer(mock, time.Second)
	res, err := s.Summarize(context.Background(), testArticle(), Options{AudienceLevel: core.AudienceBeginner, EmphasizeApplications: true})
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	if res.Summary != "Spindle bursts in sleep precede hippocampal replay, and disrupting them impairs recall." {
		t.Errorf("Unexpected summary: %q", res.Summary)
	}
	if res.WhyThisMatters != "Timing-targeted stimulation could support memory therapies." {
		t.Errorf("Unexpected why-this-matters: %q", res.WhyThisMatters)
	}
	want := []string{"Spindles lead replay by 200 ms", "Disruption cut recall by 18%", "Effect seen in 24 patients"}
	if len(res.KeyFindings) != len(want) {
		t.Fatalf("Expected %d findings, got %v", len(want), res.KeyFindings)
	}
	for i := range want {
		if res.KeyFindings[i] != want[i] {
			t.Errorf("Finding %d: expected %q, got %q", i, want[i], res.KeyFindings[i])
		}
	}

	if !strings.Contains(mock.lastPrompt, "curious non-specialists") {
		t.Error("Expected beginner instructions in prompt")
	}
	if !strings.Contains(mock.lastPrompt, "practical applications") {
		t.Error("Expected applications instructions in prompt")
	}
}

func TestLLMSummarizerWrapsFailures(t *testing.T) {
	s := NewLLMSummarizer(&MockLLMClient{shouldFail: true}, 0)
	_, err := s.Summarize(context.Background(), testArticle(), Options{})
	if !core.IsSummarizationError(err) {
		t.Fatalf("Expected SummarizationError, got %v", err)
	}

	s = NewLLMSummarizer(&MockLLMClient{response: "no sections here"}, 0)
	_, err = s.Summarize(context.Background(), testArticle(), Options{})
	if !core.IsSummarizationError(err) {
		t.Fatalf("Expected SummarizationError for unparseable response, got %v", err)
	}
}

func TestCachedSummarizer(t *testing.T) {
	next := &countingSummarizer{}
	s := NewCachedSummarizer(next, time.Minute)
	ctx := context.Background()
	a := testArticle()
	opts := Options{AudienceLevel: core.AudienceIntermediate}

	first, err := s.Summarize(ctx, a, opts)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	first.KeyFindings[0] = "mutated"

	second, _ := s.Summarize(ctx, a, opts)
	if next.calls.Load() != 1 {
		t.Errorf("Expected 1 underlying call, got %d", next.calls.Load())
	}
	if second.KeyFindings[0] != "f1" {
		t.Error("Cached result should not share slices with callers")
	}

	_, _ = s.Summarize(ctx, a, Options{AudienceLevel: core.AudienceAdvanced})
	if next.calls.Load() != 2 {
		t.Errorf("Different options should miss the cache, got %d calls", next.calls.Load())
	}
	if s.Len() != 2 {
		t.Errorf("Expected 2 cached entries, got %d", s.Len())
	}
}

func TestCachedSummarizerDoesNotCacheFailures(t *testing.T) {
	next := &countingSummarizer{fail: true}
	s := NewCachedSummarizer(next, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := s.Summarize(context.Background(), testArticle(), Options{}); err == nil {
			t.Fatal("Expected error")
		}
	}
	if next.calls.Load() != 2 {
		t.Errorf("Expected failures to reach the underlying summarizer each time, got %d", next.calls.Load())
	}
}
