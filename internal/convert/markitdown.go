// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"

	"github.com/pdiddy/research-assistant/internal/container"
	"github.com/pdiddy/research-assistant/pkg/types"
)

const imageMarkitdown = "markitdown:latest"

// MarkitdownExtractor pipes PDFs through the markitdown container image.
// Its output is Markdown, so headings keep their original line structure
// better than the native parser for some layouts.
type MarkitdownExtractor struct {
	runtime  container.Runtime
	maxBytes int64
}

// NewMarkitdownExtractor verifies that the markitdown image exists locally
// in rt before returning.
func NewMarkitdownExtractor(rt container.Runtime, maxBytes int64) (*MarkitdownExtractor, error) {
	if err := rt.ImageExists(imageMarkitdown); err != nil {
		return nil, fmt.Errorf("markitdown image not available in %s: %w", rt.Name(), err)
	}
	return &MarkitdownExtractor{runtime: rt, maxBytes: maxBytes}, nil
}

// Extract validates data, runs the container, and returns its output.
func (m *MarkitdownExtractor) Extract(ctx context.Context, name string, data []byte) (types.Document, error) {
	if err := checkSize(name, data, m.maxBytes); err != nil {
		return types.Document{}, err
	}

	pages, err := Validate(data)
	if err != nil {
		return types.Document{}, fmt.Errorf("%s: %w", name, err)
	}

	var out bytes.Buffer
	if err := m.runtime.Run(ctx, imageMarkitdown, bytes.NewReader(data), &out); err != nil {
		return types.Document{}, fmt.Errorf("converting %s with markitdown: %w", name, err)
	}
	return finish(name, pages, out.String())
}
