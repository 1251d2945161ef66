// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the research assistant:
// configuration, extracted documents, detected sections, and the per-document
// summaries used by the literature review.
package types

// Document is the text layer extracted from one uploaded PDF.
type Document struct {
	// Name is the uploaded file name.
	Name string `json:"name" yaml:"name"`

	// Pages is the page count reported by the PDF reader.
	Pages int `json:"pages" yaml:"pages"`

	// Text is the concatenated page text.
	Text string `json:"text" yaml:"text"`
}

// Section is a heading-delimited chunk of a paper.
type Section struct {
	// Title is the lowercased heading key (e.g. "introduction").
	Title string `json:"title" yaml:"title"`

	// Body is the trimmed text from the heading line to the next heading.
	Body string `json:"body" yaml:"body"`
}

// SectionSummary pairs a section title with its generated summary.
type SectionSummary struct {
	Title   string `json:"title" yaml:"title"`
	Summary string `json:"summary" yaml:"summary"`
}

// DocumentSummary is one entry of a multi-document literature review.
type DocumentSummary struct {
	// FileName is the uploaded file name.
	FileName string `json:"file_name" yaml:"file_name"`

	// Title is the inferred (or looked-up) paper title.
	Title string `json:"title" yaml:"title"`

	// Authors lists author names in source order. May be empty.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Year is the publication year, or empty when unknown.
	Year string `json:"year,omitempty" yaml:"year,omitempty"`

	// DOI is set when a metadata lookup found one.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// Citation is the in-text citation string (e.g. "Smith et al., 2020").
	Citation string `json:"citation" yaml:"citation"`

	// Summary is the generated document summary.
	Summary string `json:"summary" yaml:"summary"`
}
