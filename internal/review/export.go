// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package review

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// CSLItem is a bibliographic entry in CSL-YAML form, readable by Pandoc and
// reference managers.
type CSLItem struct {
	ID     string    `yaml:"id"`
	Type   string    `yaml:"type"`
	Title  string    `yaml:"title"`
	Author []CSLName `yaml:"author,omitempty"`
	Issued *CSLDate  `yaml:"issued,omitempty"`
	DOI    string    `yaml:"DOI,omitempty"`
	Note   string    `yaml:"note,omitempty"`
}

// CSLName is a person's name in CSL format.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// CSLDate is a date in CSL format using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// CitationKeys assigns a BibTeX/CSL key to each document: lowercase
// surname plus year, with a letter suffix on collisions (smith2020,
// smith2020a).
func CitationKeys(docs []types.DocumentSummary) []string {
	keys := make([]string, len(docs))
	seen := make(map[string]int)
	for i, d := range docs {
		base := keyBase(d)
		n := seen[base]
		seen[base] = n + 1
		if n == 0 {
			keys[i] = base
			continue
		}
		keys[i] = base + string(rune('a'+(n-1)%26))
	}
	return keys
}

func keyBase(d types.DocumentSummary) string {
	who := fileStem(d.FileName)
	if len(d.Authors) > 0 {
		who = Surname(d.Authors[0])
	}
	var b strings.Builder
	for _, r := range strings.ToLower(who) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		b.WriteString("doc")
	}
	if d.Year != "" {
		b.WriteString(d.Year)
	} else {
		b.WriteString("nd")
	}
	return b.String()
}

// GenerateBibTeX renders one @article entry per document.
func GenerateBibTeX(docs []types.DocumentSummary) string {
	keys := CitationKeys(docs)
	var b strings.Builder
	for i, d := range docs {
		fmt.Fprintf(&b, "@article{%s,\n", keys[i])
		fmt.Fprintf(&b, "  title = {%s},\n", bibEscape(titleOrFile(d)))
		if len(d.Authors) > 0 {
			fmt.Fprintf(&b, "  author = {%s},\n", bibEscape(strings.Join(d.Authors, " and ")))
		}
		if d.Year != "" {
			fmt.Fprintf(&b, "  year = {%s},\n", d.Year)
		}
		if d.DOI != "" {
			fmt.Fprintf(&b, "  doi = {%s},\n", d.DOI)
		}
		fmt.Fprintf(&b, "  note = {Source file: %s},\n", bibEscape(d.FileName))
		b.WriteString("}\n\n")
	}
	return b.String()
}

func bibEscape(s string) string {
	return strings.NewReplacer("{", `\{`, "}", `\}`, "&", `\&`, "%", `\%`).Replace(s)
}

func titleOrFile(d types.DocumentSummary) string {
	if d.Title != "" {
		return d.Title
	}
	return fileStem(d.FileName)
}

// WriteCSL writes the documents as a CSL-YAML list to w.
func WriteCSL(w io.Writer, docs []types.DocumentSummary) error {
	keys := CitationKeys(docs)
	items := make([]CSLItem, len(docs))
	for i, d := range docs {
		item := CSLItem{
			ID:    keys[i],
			Type:  "article-journal",
			Title: titleOrFile(d),
			DOI:   d.DOI,
			Note:  "Source file: " + d.FileName,
		}
		for _, a := range d.Authors {
			item.Author = append(item.Author, parseAuthorName(a))
		}
		if y, err := strconv.Atoi(d.Year); err == nil {
			item.Issued = &CSLDate{DateParts: [][]int{{y}}}
		}
		items[i] = item
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(items); err != nil {
		return fmt.Errorf("encoding CSL: %w", err)
	}
	return enc.Close()
}

// parseAuthorName splits a display name at the last space into given and
// family parts. Single-token names use the literal field.
func parseAuthorName(name string) CSLName {
	name = strings.TrimSpace(name)
	if i := strings.Index(name, ","); i > 0 {
		return CSLName{Family: strings.TrimSpace(name[:i]), Given: strings.TrimSpace(name[i+1:])}
	}
	i := strings.LastIndex(name, " ")
	if i < 0 {
		return CSLName{Literal: name}
	}
	return CSLName{Given: name[:i], Family: name[i+1:]}
}

// FormatReference renders one reference-list line:
// "Smith, J., Jones, K. (2020). Title." Unknown parts degrade to the file
// name and "n.d.".
func FormatReference(d types.DocumentSummary) string {
	year := d.Year
	if year == "" {
		year = "n.d."
	}
	who := fileStem(d.FileName)
	if len(d.Authors) > 0 {
		who = strings.Join(d.Authors, ", ")
	}
	ref := fmt.Sprintf("%s (%s). %s.", who, year, strings.TrimRight(titleOrFile(d), "."))
	if d.DOI != "" {
		ref += " https://doi.org/" + d.DOI
	}
	return ref
}
