// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-assistant/internal/report"
	"github.com/pdiddy/research-assistant/internal/review"
	"github.com/pdiddy/research-assistant/internal/session"
)

var reviewCmd = &cobra.Command{
	Use:   "review <pdf>...",
	Short: "Synthesize a literature review from up to five papers",
	Long: `Review summarizes each PDF in order, infers an author-year citation for
it, and asks the model for a synthesized literature review that cites the
papers. At most five files are accepted; with more, nothing is processed.

Set review.openalex_lookup to refine citations from OpenAlex metadata.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runReview,
}

func init() {
	reviewCmd.Flags().String("topic", "", "optional focus for the review")
	reviewCmd.Flags().String("output", "", "write the review to this file (.pdf or text)")
	reviewCmd.Flags().String("bibtex", "", "write BibTeX references to this file")
	reviewCmd.Flags().String("csl", "", "write CSL-YAML references to this file")

	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	if err := review.CheckCount(len(args)); err != nil {
		return err
	}

	p, err := newPipeline()
	if err != nil {
		return err
	}
	defer p.log.Sync()

	uploads := make([]review.Upload, 0, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		uploads = append(uploads, review.Upload{Name: filepath.Base(path), Data: data})
	}

	topic, _ := cmd.Flags().GetString("topic")
	res, err := p.reviewer.Run(cmd.Context(), uploads, topic, os.Stderr)
	if err != nil {
		return err
	}

	sess := &session.Session{Documents: res.Documents, Topic: topic, Review: res.Review}
	output, _ := cmd.Flags().GetString("output")
	if err := writeReport(output, report.ReviewReport(sess), os.Stdout); err != nil {
		return err
	}

	if path, _ := cmd.Flags().GetString("bibtex"); path != "" {
		if err := os.WriteFile(path, []byte(review.GenerateBibTeX(res.Documents)), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Fprintln(os.Stderr, "Wrote", path)
	}

	if path, _ := cmd.Flags().GetString("csl"); path != "" {
		if err := writeCSLFile(path, res); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "Wrote", path)
	}
	return nil
}

func writeCSLFile(path string, res review.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	if err := review.WriteCSL(f, res.Documents); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
