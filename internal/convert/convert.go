// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert extracts the text layer from uploaded PDFs. Two backends
// implement Extractor: a pure-Go reader and the markitdown container image.
// Both validate the upload with pdfcpu before extracting.
package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/pdiddy/research-assistant/internal/container"
	"github.com/pdiddy/research-assistant/pkg/types"
)

var (
	// ErrUnreadablePDF is returned when the upload cannot be parsed as a PDF.
	ErrUnreadablePDF = errors.New("unreadable PDF")

	// ErrNoText is returned when a PDF has no extractable text layer
	// (scanned or image-only documents).
	ErrNoText = errors.New("no extractable text in PDF")

	// ErrTooLarge is returned when the upload exceeds the size limit.
	ErrTooLarge = errors.New("PDF exceeds upload size limit")
)

// Extractor turns the bytes of one PDF into a Document.
type Extractor interface {
	Extract(ctx context.Context, name string, data []byte) (types.Document, error)
}

func init() {
	// Keep pdfcpu from creating a configuration directory under $HOME.
	api.DisableConfigDir()
}

// New returns the extractor selected by cfg.Backend.
func New(cfg types.ExtractionConfig) (Extractor, error) {
	switch cfg.Backend {
	case "", types.BackendNative:
		return &NativeExtractor{MaxBytes: cfg.MaxUploadBytes}, nil
	case types.BackendMarkitdown:
		rt, err := container.DetectRuntime()
		if err != nil {
			return nil, err
		}
		return NewMarkitdownExtractor(rt, cfg.MaxUploadBytes)
	default:
		return nil, fmt.Errorf("unknown extraction backend %q", cfg.Backend)
	}
}

// Validate parses data with pdfcpu in relaxed mode and returns the page count.
func Validate(data []byte) (pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages, err = 0, fmt.Errorf("%w: %v", ErrUnreadablePDF, r)
		}
	}()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnreadablePDF, err)
	}
	return ctx.PageCount, nil
}

// checkSize enforces the upload limit. A limit of zero or less disables it.
func checkSize(name string, data []byte, max int64) error {
	if max > 0 && int64(len(data)) > max {
		return fmt.Errorf("%s is %d bytes (limit %d): %w", name, len(data), max, ErrTooLarge)
	}
	if len(data) == 0 {
		return fmt.Errorf("%s is empty: %w", name, ErrUnreadablePDF)
	}
	return nil
}

// ExtractFile reads the PDF at path and runs it through ex. The document
// name is the file's base name.
func ExtractFile(ctx context.Context, ex Extractor, path string) (types.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Document{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return ex.Extract(ctx, filepath.Base(path), data)
}

// finish applies the checks shared by every backend to extracted text.
func finish(name string, pages int, text string) (types.Document, error) {
	if strings.TrimSpace(text) == "" {
		return types.Document{}, fmt.Errorf("%s: %w", name, ErrNoText)
	}
	return types.Document{Name: name, Pages: pages, Text: text}, nil
}
