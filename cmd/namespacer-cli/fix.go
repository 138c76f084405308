package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"namespacer/internal/analysis"
	"namespacer/internal/refactor"
	"namespacer/internal/settings"
	"namespacer/internal/version"

	solparser "namespacer/internal/parser"
)

// maxFixPasses bounds the apply-reanalyze loop so a fix that fails to
// converge cannot spin forever.
const maxFixPasses = 16

var fixCmd = &cobra.Command{
	Use:   "fix <file.sol> [more files...]",
	Short: "Apply quick fixes to Solidity files in place",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFix,
}

func init() {
	fixCmd.Flags().String("prefix", "", "namespace prefix (default: the file's folder name)")
	fixCmd.Flags().String("code", "", "only apply fixes for this diagnostic code")
	fixCmd.Flags().Bool("dry-run", false, "print the fixed source instead of writing it back")
	rootCmd.AddCommand(fixCmd)
}

func runFix(cmd *cobra.Command, args []string) error {
	prefix, err := cmd.Flags().GetString("prefix")
	if err != nil {
		return err
	}
	codeFilter, err := cmd.Flags().GetString("code")
	if err != nil {
		return err
	}
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return err
	}

	store := settings.NewStore()
	resolver := version.NewResolver()

	for _, path := range args {
		report, err := analyzeFile(cmd.Context(), store, resolver, path, prefix)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		fixed, applied := applyFixes(report, codeFilter)
		if applied == 0 {
			fmt.Printf("%s: nothing to fix\n", path)
			continue
		}

		if dryRun {
			fmt.Print(fixed)
			continue
		}

		info, statErr := os.Stat(path)
		mode := os.FileMode(0644)
		if statErr == nil {
			mode = info.Mode()
		}
		if err := os.WriteFile(path, []byte(fixed), mode); err != nil {
			return fmt.Errorf("%s: failed to write fixed source: %w", path, err)
		}
		color.Green("%s: applied %d fix(es)", path, applied)
	}
	return nil
}

// applyFixes repeatedly applies the first remaining fix and re-analyzes,
// since each migration reshapes the document under later diagnostics.
func applyFixes(report *fileReport, codeFilter string) (string, int) {
	content := report.content
	diags := report.diagnostics
	applied := 0

	for pass := 0; pass < maxFixPasses; pass++ {
		fixes := refactor.BuildQuickFixes(filterByCode(diags, codeFilter), content)
		if len(fixes) == 0 {
			break
		}

		next := refactor.Apply(content, fixes[0].Edits)
		if next == content {
			break
		}
		content = next
		applied++

		diags = reanalyze(report, content)
	}
	return content, applied
}

func reanalyze(report *fileReport, content string) []analysis.Diagnostic {
	tree := solparser.Parse(version.Latest(), content)
	return analysis.Analyze(tree, report.prefix)
}

func filterByCode(diags []analysis.Diagnostic, code string) []analysis.Diagnostic {
	if code == "" {
		return diags
	}
	var kept []analysis.Diagnostic
	for _, d := range diags {
		if string(d.Code) == code {
			kept = append(kept, d)
		}
	}
	return kept
}
