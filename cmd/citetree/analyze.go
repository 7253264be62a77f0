// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citetree/internal/analyze"
	"github.com/pdiddy/citetree/internal/export"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze FILE",
	Short: "Summarize a previously exported citation tree",
	Long: `Analyze reads a JSON tree produced by "citetree build --json" and prints
a summary: papers per depth, the most cited papers, the most frequent
authors, and the publication year distribution.

With --yaml the summary is printed as a YAML document instead of the
human-readable report.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	doc, err := export.LoadDocument(args[0])
	if err != nil {
		return err
	}
	report := analyze.FromDocument(doc)
	if asYAML, _ := cmd.Flags().GetBool("yaml"); asYAML {
		return report.FormatYAML(os.Stdout)
	}
	report.Format(os.Stdout)
	return nil
}

func init() {
	analyzeCmd.Flags().Bool("yaml", false, "print the summary as YAML")
	rootCmd.AddCommand(analyzeCmd)
}
