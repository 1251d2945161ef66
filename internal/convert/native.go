// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// NativeExtractor reads the embedded text layer with a pure-Go PDF parser.
// Scanned PDFs without a text layer yield ErrNoText.
type NativeExtractor struct {
	// MaxBytes rejects larger uploads. Zero disables the check.
	MaxBytes int64
}

// Extract validates data and returns the concatenated page text, one page
// per block separated by a newline.
func (e *NativeExtractor) Extract(ctx context.Context, name string, data []byte) (types.Document, error) {
	if err := checkSize(name, data, e.MaxBytes); err != nil {
		return types.Document{}, err
	}

	pages, err := Validate(data)
	if err != nil {
		return types.Document{}, fmt.Errorf("%s: %w", name, err)
	}

	text, err := readText(ctx, data)
	if err != nil {
		return types.Document{}, fmt.Errorf("%s: %w", name, err)
	}
	return finish(name, pages, text)
}

func readText(ctx context.Context, data []byte) (text string, err error) {
	// The parser panics on some malformed content streams.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: %v", ErrUnreadablePDF, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadablePDF, err)
	}

	fonts := make(map[string]*pdf.Font)
	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		for _, fontName := range p.Fonts() {
			if _, ok := fonts[fontName]; !ok {
				f := p.Font(fontName)
				fonts[fontName] = &f
			}
		}

		pageText, err := p.GetPlainText(fonts)
		if err != nil {
			return "", fmt.Errorf("reading page %d: %w", i, err)
		}
		b.WriteString(pageText)
		if !strings.HasSuffix(pageText, "\n") {
			b.WriteByte('\n')
		}
	}
	return b.String(), nil
}
