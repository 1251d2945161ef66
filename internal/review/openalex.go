// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package review

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode"

	"github.com/pdiddy/research-assistant/internal/httputil"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// openAlexWorksBase is the OpenAlex Works endpoint. Declared as a var so
// tests can substitute an httptest server.
var openAlexWorksBase = "https://api.openalex.org/works"

// Work is bibliographic metadata found by a lookup.
type Work struct {
	Title   string
	Authors []string
	Year    int
	DOI     string
}

// MetadataLookup finds a published work by title. It returns nil and no
// error when nothing matches.
type MetadataLookup interface {
	LookupTitle(ctx context.Context, title string) (*Work, error)
}

// OpenAlexLookup queries the OpenAlex Works API by title.
type OpenAlexLookup struct {
	Client    *http.Client
	UserAgent string
	// Email is sent as mailto for polite pool access.
	Email string
}

// NewOpenAlexLookup builds a lookup from the review HTTP settings.
func NewOpenAlexLookup(cfg types.ReviewConfig) *OpenAlexLookup {
	return &OpenAlexLookup{
		Client:    &http.Client{Timeout: cfg.Timeout},
		UserAgent: cfg.UserAgent,
		Email:     cfg.OpenAlexEmail,
	}
}

// LookupTitle searches titles and accepts the first result whose
// normalized title matches the query.
func (o *OpenAlexLookup) LookupTitle(ctx context.Context, title string) (*Work, error) {
	if strings.TrimSpace(title) == "" {
		return nil, nil
	}

	params := url.Values{
		"filter":   {"title.search:" + strings.ReplaceAll(title, ",", " ")},
		"per_page": {"5"},
		"select":   {"id,title,doi,publication_year,authorships"},
	}
	if o.Email != "" {
		params.Set("mailto", o.Email)
	}

	var resp openAlexResponse
	if err := httputil.GetJSON(ctx, o.Client, openAlexWorksBase+"?"+params.Encode(), o.UserAgent, &resp); err != nil {
		return nil, fmt.Errorf("OpenAlex title lookup: %w", err)
	}

	want := normalizeTitle(title)
	for _, w := range resp.Results {
		if normalizeTitle(w.Title) != want {
			continue
		}
		work := &Work{
			Title: w.Title,
			Year:  w.PublicationYear,
			DOI:   strings.TrimPrefix(w.DOI, "https://doi.org/"),
		}
		for _, a := range w.Authorships {
			if a.Author.DisplayName != "" {
				work.Authors = append(work.Authors, a.Author.DisplayName)
			}
		}
		return work, nil
	}
	return nil, nil
}

// normalizeTitle lowercases s and keeps only letters and digits.
func normalizeTitle(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// OpenAlex API JSON structures.
type openAlexResponse struct {
	Results []openAlexWork `json:"results"`
}

type openAlexWork struct {
	ID              string               `json:"id"`
	Title           string               `json:"title"`
	DOI             string               `json:"doi"`
	PublicationYear int                  `json:"publication_year"`
	Authorships     []openAlexAuthorship `json:"authorships"`
}

type openAlexAuthorship struct {
	Author openAlexAuthor `json:"author"`
}

type openAlexAuthor struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}
