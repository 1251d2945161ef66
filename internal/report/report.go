// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders session results as downloadable PDF or plain
// text documents.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/research-assistant/internal/review"
	"github.com/pdiddy/research-assistant/internal/session"
	"github.com/pdiddy/research-assistant/internal/summarize"
)

// Block is one headed passage of a report.
type Block struct {
	Heading string
	Body    string
}

// Report is a titled list of blocks.
type Report struct {
	Title    string
	Subtitle string
	Blocks   []Block
}

// Empty reports whether r has no content blocks.
func (r Report) Empty() bool {
	return len(r.Blocks) == 0
}

// PaperReport collects the section summaries, question, and analysis of
// the single-paper mode.
func PaperReport(s *session.Session) Report {
	r := Report{Title: "Research Paper Summary", Subtitle: s.FileName}
	for _, sum := range s.Summaries {
		r.Blocks = append(r.Blocks, Block{Heading: summarize.Capitalize(sum.Title), Body: sum.Summary})
	}
	if s.Analysis != "" {
		r.Blocks = append(r.Blocks,
			Block{Heading: "Research Question", Body: s.Question},
			Block{Heading: "Research Assistant Analysis", Body: s.Analysis},
		)
	}
	return r
}

// ReviewReport collects the literature review, per-document summaries, and
// a reference list.
func ReviewReport(s *session.Session) Report {
	r := Report{Title: "Literature Review", Subtitle: s.Topic}
	if r.Subtitle == "" {
		r.Subtitle = fmt.Sprintf("%d documents", len(s.Documents))
	}
	if s.Review == "" {
		return r
	}

	r.Blocks = append(r.Blocks, Block{Heading: "Review", Body: s.Review})
	refs := make([]string, len(s.Documents))
	for i, d := range s.Documents {
		r.Blocks = append(r.Blocks, Block{
			Heading: fmt.Sprintf("(%s) %s", d.Citation, d.Title),
			Body:    d.Summary,
		})
		refs[i] = review.FormatReference(d)
	}
	r.Blocks = append(r.Blocks, Block{Heading: "References", Body: strings.Join(refs, "\n")})
	return r
}

// WriteText writes r as plain text with underlined headings.
func WriteText(w io.Writer, r Report) error {
	var b strings.Builder
	b.WriteString(r.Title + "\n")
	b.WriteString(strings.Repeat("=", len([]rune(r.Title))) + "\n")
	if r.Subtitle != "" {
		b.WriteString(r.Subtitle + "\n")
	}
	for _, blk := range r.Blocks {
		b.WriteString("\n" + blk.Heading + "\n")
		b.WriteString(strings.Repeat("-", len([]rune(blk.Heading))) + "\n")
		b.WriteString(strings.TrimSpace(blk.Body) + "\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}
