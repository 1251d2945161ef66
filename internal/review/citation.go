// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package review

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// yearRe matches a 4-digit year.
var yearRe = regexp.MustCompile(`\b((?:19|20)\d{2})\b`)

// authorSplitRe separates names in an author line.
var authorSplitRe = regexp.MustCompile(`\s*(?:,|;|&|\band\b)\s*`)

// affiliationMarkRe strips superscript markers that follow author names.
var affiliationMarkRe = regexp.MustCompile(`[\d*†‡§¶∗]+`)

const (
	// headLines bounds how far into the text the heuristics look.
	headLines = 40

	minTitleChars = 12
	maxTitleChars = 250
)

// titleNoise are prefixes of front-matter lines that are never the title.
var titleNoise = []string{
	"arxiv", "doi", "http", "www.", "vol.", "volume", "journal of", "proceedings",
	"copyright", "©", "received", "accepted", "published", "preprint",
	"issn", "isbn", "page", "submitted", "licensed", "available online",
}

// nonNameWords mark a line as an affiliation or prose rather than names.
var nonNameWords = map[string]bool{
	"university": true, "department": true, "institute": true, "school": true,
	"college": true, "laboratory": true, "lab": true, "center": true, "centre": true,
	"abstract": true, "introduction": true, "the": true, "of": true, "for": true,
	"in": true, "on": true, "with": true, "email": true, "inc": true, "corporation": true,
}

// Inferred is the bibliographic metadata guessed from a paper's opening text.
type Inferred struct {
	Title   string
	Authors []string
	Year    string
}

// InferCitation guesses title, authors, and year from the first lines of
// text. Missing parts stay empty; FormatCitation supplies the fallbacks.
func InferCitation(text string) Inferred {
	lines := firstLines(text, headLines)

	var inf Inferred
	inf.Year = extractYear(strings.Join(lines, "\n"))

	for i, line := range lines {
		if !isTitleLine(line) {
			continue
		}
		inf.Title = line
		if i+1 < len(lines) {
			inf.Authors = parseAuthorLine(lines[i+1])
		}
		break
	}
	return inf
}

// FormatCitation renders an author-year in-text citation: "Smith, 2020",
// "Smith & Jones, 2020", or "Smith et al., 2020". Without authors the
// file name stem stands in; without a year "n.d." is used.
func FormatCitation(authors []string, year, fileName string) string {
	if year == "" {
		year = "n.d."
	}

	var who string
	switch len(authors) {
	case 0:
		who = fileStem(fileName)
	case 1:
		who = Surname(authors[0])
	case 2:
		who = Surname(authors[0]) + " & " + Surname(authors[1])
	default:
		who = Surname(authors[0]) + " et al."
	}
	return who + ", " + year
}

// Surname returns the family name of a display name. "Smith, John" and
// "John Smith" both yield "Smith".
func Surname(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.Index(name, ","); i > 0 {
		return strings.TrimSpace(name[:i])
	}
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return strings.Trim(fields[len(fields)-1], ".,;")
}

func extractYear(text string) string {
	if m := yearRe.FindStringSubmatch(text); len(m) >= 2 {
		return m[1]
	}
	return ""
}

func fileStem(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// firstLines returns up to n trimmed, non-empty lines of text.
func firstLines(text string, n int) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == n {
			break
		}
	}
	return out
}

func isTitleLine(line string) bool {
	if len(line) < minTitleChars || len(line) > maxTitleChars {
		return false
	}
	lower := strings.ToLower(line)
	for _, p := range titleNoise {
		if strings.HasPrefix(lower, p) {
			return false
		}
	}
	if strings.Contains(line, "@") {
		return false
	}
	if len(strings.Fields(line)) < 2 {
		return false
	}

	letters := 0
	for _, r := range line {
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return letters*2 >= utf8.RuneCountInString(line)
}

// parseAuthorLine splits a line into personal names. It returns nil unless
// every part looks like a name.
func parseAuthorLine(line string) []string {
	line = affiliationMarkRe.ReplaceAllString(line, "")
	var names []string
	for _, part := range authorSplitRe.Split(line, -1) {
		part = strings.Join(strings.Fields(part), " ")
		if part == "" {
			continue
		}
		if !looksLikeName(part) {
			return nil
		}
		names = append(names, part)
	}
	return names
}

func looksLikeName(s string) bool {
	words := strings.Fields(s)
	if len(words) < 2 || len(words) > 4 {
		return false
	}
	for _, w := range words {
		if nonNameWords[strings.ToLower(strings.Trim(w, ".,"))] {
			return false
		}
		r, _ := utf8.DecodeRuneInString(w)
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}
