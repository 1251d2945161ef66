// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package review builds a literature review from up to five papers. Each
// paper is extracted, summarized, and given an author-year citation; the
// summaries are then synthesized into one review by the model.
package review

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/convert"
	"github.com/pdiddy/research-assistant/internal/llm"
	"github.com/pdiddy/research-assistant/internal/sections"
	"github.com/pdiddy/research-assistant/internal/summarize"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// MaxDocuments is the largest number of papers accepted in one review.
const MaxDocuments = 5

var (
	// ErrNoDocuments is returned when no files were uploaded.
	ErrNoDocuments = errors.New("no documents uploaded")

	// ErrTooManyDocuments is returned when more than MaxDocuments files
	// were uploaded. No file is processed.
	ErrTooManyDocuments = fmt.Errorf("more than %d documents uploaded", MaxDocuments)
)

var (
	// DocumentSettings apply to per-document summaries.
	DocumentSettings = summarize.Settings{Temperature: 0.4, MaxTokens: 700}

	// SynthesisSettings apply to the final review.
	SynthesisSettings = summarize.Settings{Temperature: 0.5, MaxTokens: 1500}
)

// Upload is one uploaded file.
type Upload struct {
	Name string
	Data []byte
}

// Result is the outcome of a full review run.
type Result struct {
	Documents []types.DocumentSummary
	Review    string
}

// Reviewer runs the multi-document pipeline.
type Reviewer struct {
	extractor   convert.Extractor
	client      llm.Client
	model       string
	maxDocChars int
	lookup      MetadataLookup
	log         *zap.Logger
}

// Option configures a Reviewer.
type Option func(*Reviewer)

// WithLookup enables metadata enrichment through l.
func WithLookup(l MetadataLookup) Option {
	return func(r *Reviewer) { r.lookup = l }
}

// WithLogger sets the logger used for lookup failures.
func WithLogger(l *zap.Logger) Option {
	return func(r *Reviewer) { r.log = l }
}

// New returns a Reviewer. A maxDocChars of zero sends whole documents.
func New(ex convert.Extractor, client llm.Client, model string, maxDocChars int, opts ...Option) *Reviewer {
	r := &Reviewer{
		extractor:   ex,
		client:      client,
		model:       model,
		maxDocChars: maxDocChars,
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CheckCount validates the number of uploaded files.
func CheckCount(n int) error {
	switch {
	case n == 0:
		return ErrNoDocuments
	case n > MaxDocuments:
		return fmt.Errorf("%d files: %w", n, ErrTooManyDocuments)
	}
	return nil
}

// Run summarizes every upload in order and synthesizes the review.
func (r *Reviewer) Run(ctx context.Context, uploads []Upload, topic string, w io.Writer) (Result, error) {
	docs, err := r.SummarizeDocuments(ctx, uploads, w)
	if err != nil {
		return Result{}, err
	}

	text, err := r.Synthesize(ctx, docs, topic)
	if err != nil {
		return Result{Documents: docs}, err
	}
	fmt.Fprintf(w, "synthesized review of %d documents\n", len(docs))
	return Result{Documents: docs, Review: text}, nil
}

// SummarizeDocuments processes uploads one at a time and stops at the first
// failure. The count is checked before any file is touched.
func (r *Reviewer) SummarizeDocuments(ctx context.Context, uploads []Upload, w io.Writer) ([]types.DocumentSummary, error) {
	if err := CheckCount(len(uploads)); err != nil {
		return nil, err
	}

	docs := make([]types.DocumentSummary, 0, len(uploads))
	for i, up := range uploads {
		doc, err := r.SummarizeDocument(ctx, up)
		if err != nil {
			fmt.Fprintf(w, "failed     %s: %v\n", up.Name, err)
			return nil, err
		}
		fmt.Fprintf(w, "summarized %s as (%s) (%d/%d)\n", up.Name, doc.Citation, i+1, len(uploads))
		docs = append(docs, doc)
	}
	return docs, nil
}

// SummarizeDocument extracts one upload, summarizes it, and infers its
// citation.
func (r *Reviewer) SummarizeDocument(ctx context.Context, up Upload) (types.DocumentSummary, error) {
	doc, err := r.extractor.Extract(ctx, up.Name, up.Data)
	if err != nil {
		return types.DocumentSummary{}, fmt.Errorf("extracting %s: %w", up.Name, err)
	}

	prompt, err := render(documentPromptTmpl, struct{ Name, Text string }{
		Name: up.Name,
		Text: sections.Truncate(doc.Text, r.maxDocChars),
	})
	if err != nil {
		return types.DocumentSummary{}, fmt.Errorf("rendering document prompt: %w", err)
	}

	summary, err := r.client.Complete(ctx, llm.Request{
		Model:       r.model,
		Prompt:      prompt,
		Temperature: DocumentSettings.Temperature,
		MaxTokens:   DocumentSettings.MaxTokens,
	})
	if err != nil {
		return types.DocumentSummary{}, fmt.Errorf("summarizing %s: %w", up.Name, err)
	}

	inf := InferCitation(doc.Text)
	out := types.DocumentSummary{
		FileName: up.Name,
		Title:    inf.Title,
		Authors:  inf.Authors,
		Year:     inf.Year,
		Summary:  summary,
	}
	r.enrich(ctx, &out)

	if out.Title == "" {
		out.Title = fileStem(up.Name)
	}
	out.Citation = FormatCitation(out.Authors, out.Year, up.Name)
	return out, nil
}

// enrich replaces heuristic metadata with a lookup match. Lookup failures
// are logged and ignored.
func (r *Reviewer) enrich(ctx context.Context, d *types.DocumentSummary) {
	if r.lookup == nil || d.Title == "" {
		return
	}

	work, err := r.lookup.LookupTitle(ctx, d.Title)
	if err != nil {
		r.log.Warn("metadata lookup failed", zap.String("file", d.FileName), zap.Error(err))
		return
	}
	if work == nil {
		r.log.Debug("no metadata match", zap.String("file", d.FileName), zap.String("title", d.Title))
		return
	}

	d.Title = work.Title
	if len(work.Authors) > 0 {
		d.Authors = work.Authors
	}
	if work.Year > 0 {
		d.Year = strconv.Itoa(work.Year)
	}
	d.DOI = work.DOI
}

// Synthesize asks the model for a thematic literature review citing each
// document by its citation string. A blank topic is omitted from the prompt.
func (r *Reviewer) Synthesize(ctx context.Context, docs []types.DocumentSummary, topic string) (string, error) {
	if len(docs) == 0 {
		return "", ErrNoDocuments
	}

	prompt, err := render(synthesisPromptTmpl, struct {
		Topic     string
		Documents []types.DocumentSummary
	}{
		Topic:     strings.TrimSpace(topic),
		Documents: docs,
	})
	if err != nil {
		return "", fmt.Errorf("rendering synthesis prompt: %w", err)
	}

	out, err := r.client.Complete(ctx, llm.Request{
		Model:       r.model,
		Prompt:      prompt,
		Temperature: SynthesisSettings.Temperature,
		MaxTokens:   SynthesisSettings.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("synthesizing review: %w", err)
	}
	return out, nil
}
