// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sections splits extracted paper text into heading-delimited
// sections. Detection is a single pass over the lines of the text; no
// model is consulted.
package sections

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// Mode selects the heading heuristic.
type Mode string

const (
	// ModeKeywords matches lines that begin with a standard section name.
	ModeKeywords Mode = "keywords"

	// ModeCapitalization matches short ALL CAPS or numbered lines.
	ModeCapitalization Mode = "capitalization"

	// ModeAuto tries keywords and falls back to capitalization.
	ModeAuto Mode = "auto"
)

// ParseMode validates a mode name. An empty name selects ModeAuto.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeAuto, nil
	case ModeKeywords, ModeCapitalization, ModeAuto:
		return m, nil
	default:
		return "", fmt.Errorf("unknown section mode %q (want keywords, capitalization, or auto)", s)
	}
}

// Keywords are the standard section names recognized in ModeKeywords.
// Methodology precedes Methods so the longer name wins.
var Keywords = []string{
	"Abstract", "Introduction", "Background", "Methodology", "Methods",
	"Results", "Findings", "Discussion", "Conclusion", "References",
}

// NoSectionsMessage is shown when Detect finds nothing.
const NoSectionsMessage = "No standard sections (Abstract, Introduction, etc.) found in this PDF."

var keywordRe = regexp.MustCompile(`(?i)^(` + strings.Join(Keywords, "|") + `)\b`)

// numberedRe matches "1 Introduction", "2.3. Related Work", "IV. RESULTS".
var numberedRe = regexp.MustCompile(`^(?:\d{1,2}(?:\.\d{1,2})*\.?|[IVXLC]+\.)\s+(\p{L}.*)$`)

const (
	maxHeadingWords = 8
	maxHeadingChars = 80
)

// Detect splits text into sections using mode. Text before the first
// heading is discarded. A repeated title replaces the earlier body but keeps
// the earlier position. Each body starts at its heading line and is trimmed.
func Detect(text string, mode Mode) []types.Section {
	switch mode {
	case ModeKeywords:
		return split(text, keywordHeading)
	case ModeCapitalization:
		return split(text, capitalizedHeading)
	default:
		if found := split(text, keywordHeading); len(found) > 0 {
			return found
		}
		return split(text, capitalizedHeading)
	}
}

// headingFunc reports the section key for a trimmed line, or false when the
// line is not a heading.
type headingFunc func(trimmed string) (string, bool)

func split(text string, isHeading headingFunc) []types.Section {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	var out []types.Section
	index := make(map[string]int)
	currentKey := ""
	var bodyLines []string

	flush := func() {
		if currentKey == "" {
			bodyLines = nil
			return
		}
		body := strings.TrimSpace(strings.Join(bodyLines, "\n"))
		if i, ok := index[currentKey]; ok {
			out[i].Body = body
		} else {
			index[currentKey] = len(out)
			out = append(out, types.Section{Title: currentKey, Body: body})
		}
		bodyLines = nil
	}

	for _, line := range lines {
		if key, ok := isHeading(strings.TrimSpace(line)); ok {
			flush()
			currentKey = key
		}
		if currentKey != "" {
			bodyLines = append(bodyLines, line)
		}
	}

	flush()
	return out
}

func keywordHeading(trimmed string) (string, bool) {
	m := keywordRe.FindStringSubmatch(trimmed)
	if m == nil {
		return "", false
	}
	return strings.ToLower(m[1]), true
}

func capitalizedHeading(trimmed string) (string, bool) {
	if trimmed == "" || utf8.RuneCountInString(trimmed) > maxHeadingChars {
		return "", false
	}
	if len(strings.Fields(trimmed)) > maxHeadingWords {
		return "", false
	}

	if m := numberedRe.FindStringSubmatch(trimmed); m != nil {
		title := strings.TrimSpace(m[1])
		first, _ := utf8.DecodeRuneInString(title)
		if unicode.IsUpper(first) {
			return strings.ToLower(title), true
		}
		return "", false
	}

	if isAllCaps(trimmed) {
		return strings.ToLower(trimmed), true
	}
	return "", false
}

// isAllCaps reports whether s has at least two letters, none lowercase, and
// letters make up at least half of its non-space runes.
func isAllCaps(s string) bool {
	letters, other := 0, 0
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
		case unicode.IsLetter(r):
			if unicode.IsLower(r) {
				return false
			}
			letters++
		default:
			other++
		}
	}
	return letters >= 2 && letters >= other
}

// Truncate shortens s to at most max runes. A max of zero or less returns s
// unchanged.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}

// Titles returns the section titles in detection order.
func Titles(secs []types.Section) []string {
	titles := make([]string, len(secs))
	for i, s := range secs {
		titles[i] = s.Title
	}
	return titles
}
