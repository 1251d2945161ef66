// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/convert"
	"github.com/pdiddy/research-assistant/internal/llm"
	"github.com/pdiddy/research-assistant/internal/logging"
	"github.com/pdiddy/research-assistant/internal/report"
	"github.com/pdiddy/research-assistant/internal/review"
	"github.com/pdiddy/research-assistant/internal/summarize"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// pipeline holds the components shared by every command that calls the
// model.
type pipeline struct {
	cfg        types.Config
	log        *zap.Logger
	extractor  convert.Extractor
	summarizer *summarize.Summarizer
	reviewer   *review.Reviewer
}

func newPipeline() (*pipeline, error) {
	cfg, err := loadConfig(viper.GetViper(), loadedSecrets)
	if err != nil {
		return nil, err
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	ex, err := convert.New(cfg.Extraction)
	if err != nil {
		return nil, err
	}

	client, err := llm.New(cfg.AI)
	if err != nil {
		return nil, fmt.Errorf("%w (set it in .secrets/, the environment, or ai.api_key)", err)
	}
	client = llm.WithLogging(client, log)

	opts := []review.Option{review.WithLogger(log)}
	if cfg.Review.OpenAlexLookup {
		opts = append(opts, review.WithLookup(review.NewOpenAlexLookup(cfg.Review)))
	}

	return &pipeline{
		cfg:        cfg,
		log:        log,
		extractor:  ex,
		summarizer: summarize.New(client, cfg.AI.Model, cfg.Sections.MaxSectionChars),
		reviewer:   review.New(ex, client, cfg.AI.Model, cfg.Review.MaxDocumentChars, opts...),
	}, nil
}

// writeReport writes r to path, as PDF when path ends in .pdf and as plain
// text otherwise. An empty path writes text to stdout.
func writeReport(path string, r report.Report, stdout io.Writer) error {
	if path == "" {
		return report.WriteText(stdout, r)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		err = report.WritePDF(f, r)
	} else {
		err = report.WriteText(f, r)
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
