// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-assistant/internal/convert"
	"github.com/pdiddy/research-assistant/internal/sections"
)

var sectionsCmd = &cobra.Command{
	Use:   "sections <pdf>",
	Short: "List the sections detected in a PDF",
	Long: `Sections extracts the text of a PDF and prints the titles of the
sections found by heading detection, one per line. No model is called.`,
	Args: cobra.ExactArgs(1),
	RunE: runSections,
}

func init() {
	sectionsCmd.Flags().Bool("json", false, "print sections with their text as JSON")

	rootCmd.AddCommand(sectionsCmd)
}

func runSections(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper(), loadedSecrets)
	if err != nil {
		return err
	}
	mode, err := sections.ParseMode(cfg.Sections.Mode)
	if err != nil {
		return err
	}
	ex, err := convert.New(cfg.Extraction)
	if err != nil {
		return err
	}

	doc, err := convert.ExtractFile(cmd.Context(), ex, args[0])
	if err != nil {
		return err
	}
	secs := sections.Detect(doc.Text, mode)

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(secs)
	}

	if len(secs) == 0 {
		fmt.Fprintln(os.Stderr, "warning:", sections.NoSectionsMessage)
		return nil
	}
	for _, title := range sections.Titles(secs) {
		fmt.Println(title)
	}
	fmt.Fprintf(os.Stderr, "%d sections in %s (%d pages)\n", len(secs), doc.Name, doc.Pages)
	return nil
}
