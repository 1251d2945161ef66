// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package summarize turns detected sections into bullet summaries and runs
// the research-question analysis over the combined summary.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pdiddy/research-assistant/internal/llm"
	"github.com/pdiddy/research-assistant/internal/sections"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// ErrEmptyQuestion is returned by Analyze when the question is blank.
var ErrEmptyQuestion = errors.New("research question is empty")

// Settings are the sampling parameters for one kind of call.
type Settings struct {
	Temperature float64
	MaxTokens   int
}

var (
	// SectionSettings apply to per-section summaries.
	SectionSettings = Settings{Temperature: 0.4, MaxTokens: 600}

	// AnalysisSettings apply to the research-question analysis.
	AnalysisSettings = Settings{Temperature: 0.3, MaxTokens: 1000}
)

// Summarizer holds the model client and prompt limits.
type Summarizer struct {
	client          llm.Client
	model           string
	maxSectionChars int
}

// New returns a Summarizer. A maxSectionChars of zero leaves section bodies
// untruncated.
func New(client llm.Client, model string, maxSectionChars int) *Summarizer {
	return &Summarizer{client: client, model: model, maxSectionChars: maxSectionChars}
}

// SummarizeSection asks the model for a 4–6 bullet summary of one section.
func (s *Summarizer) SummarizeSection(ctx context.Context, title, content string) (string, error) {
	prompt, err := render(sectionPromptTmpl, struct{ Title, Content string }{
		Title:   title,
		Content: sections.Truncate(content, s.maxSectionChars),
	})
	if err != nil {
		return "", fmt.Errorf("rendering section prompt: %w", err)
	}

	out, err := s.client.Complete(ctx, llm.Request{
		Model:       s.model,
		Prompt:      prompt,
		Temperature: SectionSettings.Temperature,
		MaxTokens:   SectionSettings.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("summarizing %q: %w", title, err)
	}
	return out, nil
}

// SummarizeAll summarizes secs one at a time in order and stops at the
// first failure. Progress lines are written to w.
func (s *Summarizer) SummarizeAll(ctx context.Context, secs []types.Section, w io.Writer) ([]types.SectionSummary, error) {
	out := make([]types.SectionSummary, 0, len(secs))
	for i, sec := range secs {
		summary, err := s.SummarizeSection(ctx, sec.Title, sec.Body)
		if err != nil {
			fmt.Fprintf(w, "failed     %s: %v\n", sec.Title, err)
			return nil, err
		}
		fmt.Fprintf(w, "summarized %s (%d/%d)\n", sec.Title, i+1, len(secs))
		out = append(out, types.SectionSummary{Title: sec.Title, Summary: summary})
	}
	return out, nil
}

// CombineSummaries joins summaries as "Title:\nsummary" blocks separated by
// a blank line, capitalizing each title.
func CombineSummaries(sums []types.SectionSummary) string {
	blocks := make([]string, len(sums))
	for i, s := range sums {
		blocks[i] = Capitalize(s.Title) + ":\n" + s.Summary
	}
	return strings.Join(blocks, "\n\n")
}

// Analyze asks the model for limitations, gaps, and a proposed study for
// question, given the combined summary. A blank question makes no call.
func (s *Summarizer) Analyze(ctx context.Context, combined, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}

	prompt, err := render(analysisPromptTmpl, struct{ Summary, Question string }{
		Summary:  combined,
		Question: question,
	})
	if err != nil {
		return "", fmt.Errorf("rendering analysis prompt: %w", err)
	}

	out, err := s.client.Complete(ctx, llm.Request{
		Model:       s.model,
		Prompt:      prompt,
		Temperature: AnalysisSettings.Temperature,
		MaxTokens:   AnalysisSettings.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("analyzing research question: %w", err)
	}
	return out, nil
}

// Capitalize upper-cases the first rune of s and lower-cases the rest.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
