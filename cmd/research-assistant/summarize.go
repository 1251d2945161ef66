// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-assistant/internal/convert"
	"github.com/pdiddy/research-assistant/internal/report"
	"github.com/pdiddy/research-assistant/internal/sections"
	"github.com/pdiddy/research-assistant/internal/session"
	"github.com/pdiddy/research-assistant/internal/summarize"
	"github.com/pdiddy/research-assistant/pkg/types"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize <pdf>",
	Short: "Summarize each section of a paper",
	Long: `Summarize detects the sections of a PDF and asks the model for a short
summary of each, in order. With --question it also analyzes the research
question against the combined summaries: limitations, gaps, and a proposed
follow-up study.

The report goes to stdout unless --output names a file; a .pdf extension
writes a PDF.`,
	Args: cobra.ExactArgs(1),
	RunE: runSummarize,
}

func init() {
	summarizeCmd.Flags().String("question", "", "research question to analyze against the summaries")
	summarizeCmd.Flags().String("output", "", "write the report to this file (.pdf or text)")
	summarizeCmd.Flags().Bool("json", false, "print the result as JSON")

	rootCmd.AddCommand(summarizeCmd)
}

// paperResult is the JSON form of a summarize run.
type paperResult struct {
	File      string                 `json:"file"`
	Pages     int                    `json:"pages"`
	Sections  []string               `json:"sections"`
	Summaries []types.SectionSummary `json:"summaries"`
	Question  string                 `json:"question,omitempty"`
	Analysis  string                 `json:"analysis,omitempty"`
}

func runSummarize(cmd *cobra.Command, args []string) error {
	p, err := newPipeline()
	if err != nil {
		return err
	}
	defer p.log.Sync()

	mode, err := sections.ParseMode(p.cfg.Sections.Mode)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	doc, err := convert.ExtractFile(ctx, p.extractor, args[0])
	if err != nil {
		return err
	}

	secs := sections.Detect(doc.Text, mode)
	if len(secs) == 0 {
		fmt.Fprintln(os.Stderr, "warning:", sections.NoSectionsMessage)
		return nil
	}
	fmt.Fprintf(os.Stderr, "Detected %d sections in %s\n", len(secs), doc.Name)

	sums, err := p.summarizer.SummarizeAll(ctx, secs, os.Stderr)
	if err != nil {
		return err
	}

	sess := &session.Session{FileName: doc.Name, Pages: doc.Pages, Sections: secs, Summaries: sums}
	if question, _ := cmd.Flags().GetString("question"); question != "" {
		analysis, err := p.summarizer.Analyze(ctx, summarize.CombineSummaries(sums), question)
		if err != nil {
			return err
		}
		sess.Question, sess.Analysis = question, analysis
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(paperResult{
			File:      sess.FileName,
			Pages:     sess.Pages,
			Sections:  sections.Titles(secs),
			Summaries: sums,
			Question:  sess.Question,
			Analysis:  sess.Analysis,
		})
	}

	output, _ := cmd.Flags().GetString("output")
	if err := writeReport(output, report.PaperReport(sess), os.Stdout); err != nil {
		return err
	}
	if output != "" {
		fmt.Fprintln(os.Stderr, "Wrote", output)
	}
	return nil
}
