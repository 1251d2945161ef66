// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package review

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/research-assistant/internal/convert"
	"github.com/pdiddy/research-assistant/internal/llm"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// fakeExtractor returns the text stored under the upload name, or err.
type fakeExtractor struct {
	texts map[string]string
	errs  map[string]error
	calls []string
}

func (f *fakeExtractor) Extract(_ context.Context, name string, _ []byte) (types.Document, error) {
	f.calls = append(f.calls, name)
	if err := f.errs[name]; err != nil {
		return types.Document{}, err
	}
	return types.Document{Name: name, Pages: 1, Text: f.texts[name]}, nil
}

// fakeClient numbers its replies so tests can tell calls apart.
type fakeClient struct {
	reqs []llm.Request
	err  error
}

func (f *fakeClient) Complete(_ context.Context, req llm.Request) (string, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("reply %d", len(f.reqs)), nil
}

type fakeLookup struct {
	work *Work
	err  error
}

func (f fakeLookup) LookupTitle(context.Context, string) (*Work, error) { return f.work, f.err }

func uploads(names ...string) []Upload {
	out := make([]Upload, len(names))
	for i, n := range names {
		out[i] = Upload{Name: n, Data: []byte("%PDF")}
	}
	return out
}

func TestCheckCount(t *testing.T) {
	assert.ErrorIs(t, CheckCount(0), ErrNoDocuments)
	assert.NoError(t, CheckCount(1))
	assert.NoError(t, CheckCount(MaxDocuments))
	assert.ErrorIs(t, CheckCount(MaxDocuments+1), ErrTooManyDocuments)
}

func TestSummarizeDocuments_TooManyProcessesNothing(t *testing.T) {
	ex := &fakeExtractor{}
	fc := &fakeClient{}
	r := New(ex, fc, "gpt-4", 0)

	_, err := r.SummarizeDocuments(context.Background(), uploads("1.pdf", "2.pdf", "3.pdf", "4.pdf", "5.pdf", "6.pdf"), &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrTooManyDocuments)
	assert.Empty(t, ex.calls)
	assert.Empty(t, fc.reqs)
}

func TestRun(t *testing.T) {
	ex := &fakeExtractor{texts: map[string]string{
		"a.pdf": samplePaper,
		"b.pdf": "scan 42",
	}}
	fc := &fakeClient{}
	var progress bytes.Buffer

	res, err := New(ex, fc, "gpt-4", 20).Run(context.Background(), uploads("a.pdf", "b.pdf"), "summarization", &progress)
	require.NoError(t, err)

	require.Len(t, res.Documents, 2)
	assert.Equal(t, "Smith et al., 2021", res.Documents[0].Citation)
	assert.Equal(t, "reply 1", res.Documents[0].Summary)
	assert.Equal(t, "b, n.d.", res.Documents[1].Citation)
	assert.Equal(t, "b", res.Documents[1].Title)
	assert.Equal(t, "reply 3", res.Review)

	require.Len(t, fc.reqs, 3)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, ex.calls)

	docReq := fc.reqs[0]
	assert.InDelta(t, 0.4, docReq.Temperature, 1e-9)
	assert.Equal(t, 700, docReq.MaxTokens)
	assert.Contains(t, docReq.Prompt, "('a.pdf')")
	assert.Contains(t, docReq.Prompt, `"""arXiv:2101.00001v1 ["""`)

	synth := fc.reqs[2]
	assert.InDelta(t, 0.5, synth.Temperature, 1e-9)
	assert.Equal(t, 1500, synth.MaxTokens)
	assert.Contains(t, synth.Prompt, "focus on this topic:\n\"summarization\"")
	assert.Contains(t, synth.Prompt, "[Smith et al., 2021] Attention Mechanisms")
	assert.Contains(t, synth.Prompt, "[b, n.d.] b\n\"\"\"reply 2\"\"\"")
	assert.Contains(t, synth.Prompt, "e.g. (Smith et al., 2021)")

	assert.Contains(t, progress.String(), "summarized a.pdf as (Smith et al., 2021) (1/2)")
	assert.Contains(t, progress.String(), "synthesized review of 2 documents")
}

func TestRun_StopsOnFirstFailure(t *testing.T) {
	ex := &fakeExtractor{
		texts: map[string]string{"a.pdf": "text"},
		errs:  map[string]error{"b.pdf": convert.ErrNoText},
	}
	fc := &fakeClient{}
	var progress bytes.Buffer

	_, err := New(ex, fc, "gpt-4", 0).Run(context.Background(), uploads("a.pdf", "b.pdf", "c.pdf"), "", &progress)
	require.Error(t, err)
	assert.ErrorIs(t, err, convert.ErrNoText)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, ex.calls)
	assert.Len(t, fc.reqs, 1)
	assert.Contains(t, progress.String(), "failed     b.pdf")
}

func TestSummarizeDocument_Enrichment(t *testing.T) {
	ex := &fakeExtractor{texts: map[string]string{"a.pdf": samplePaper}}

	t.Run("match replaces heuristics", func(t *testing.T) {
		lookup := fakeLookup{work: &Work{
			Title:   "Attention Mechanisms for Long-Document Summarization",
			Authors: []string{"Jane Smith"},
			Year:    2022,
			DOI:     "10.1/x",
		}}
		doc, err := New(ex, &fakeClient{}, "gpt-4", 0, WithLookup(lookup)).
			SummarizeDocument(context.Background(), Upload{Name: "a.pdf"})
		require.NoError(t, err)
		assert.Equal(t, "Smith, 2022", doc.Citation)
		assert.Equal(t, "10.1/x", doc.DOI)
		assert.Equal(t, "Attention Mechanisms for Long-Document Summarization", doc.Title)
	})

	t.Run("failure is logged and ignored", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		lookup := fakeLookup{err: errors.New("timeout")}

		doc, err := New(ex, &fakeClient{}, "gpt-4", 0, WithLookup(lookup), WithLogger(zap.New(core))).
			SummarizeDocument(context.Background(), Upload{Name: "a.pdf"})
		require.NoError(t, err)
		assert.Equal(t, "Smith et al., 2021", doc.Citation)
		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "metadata lookup failed", logs.All()[0].Message)
	})
}

func TestSynthesize(t *testing.T) {
	docs := []types.DocumentSummary{{FileName: "a.pdf", Title: "T", Citation: "Lee, 2019", Summary: "s"}}

	fc := &fakeClient{}
	_, err := New(&fakeExtractor{}, fc, "gpt-4", 0).Synthesize(context.Background(), docs, "  ")
	require.NoError(t, err)
	assert.False(t, strings.Contains(fc.reqs[0].Prompt, "focus on this topic"))
	assert.Contains(t, fc.reqs[0].Prompt, "summaries of 1 papers")

	_, err = New(&fakeExtractor{}, fc, "gpt-4", 0).Synthesize(context.Background(), nil, "x")
	assert.ErrorIs(t, err, ErrNoDocuments)

	failing := &fakeClient{err: llm.ErrEmptyResponse}
	_, err = New(&fakeExtractor{}, failing, "gpt-4", 0).Synthesize(context.Background(), docs, "")
	assert.ErrorIs(t, err, llm.ErrEmptyResponse)
}
