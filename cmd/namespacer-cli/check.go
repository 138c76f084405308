package main

import (
	"fmt"
	"runtime"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"namespacer/internal/settings"
	"namespacer/internal/version"
)

var checkCmd = &cobra.Command{
	Use:   "check <file.sol> [more files...]",
	Short: "Analyze Solidity files for unsafe storage layouts",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().String("prefix", "", "namespace prefix (default: the file's folder name)")
	checkCmd.Flags().Int("jobs", runtime.NumCPU(), "maximum number of files analyzed in parallel")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	prefix, err := cmd.Flags().GetString("prefix")
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	if jobs < 1 {
		jobs = 1
	}

	startTime := time.Now()
	store := settings.NewStore()
	resolver := version.NewResolver()

	reports := make([]*fileReport, len(args))
	g, gctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(min(jobs, len(args)))
	for i, path := range args {
		i, path := i, path
		g.Go(func() error {
			report, err := analyzeFile(gctx, store, resolver, path, prefix)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	problems := 0
	for _, report := range reports {
		fmt.Print(report.render())
		problems += report.problems()
	}

	duration := formatDuration(time.Since(startTime))
	if problems > 0 {
		color.Red("Found %d problem(s) in %d file(s) after %s", problems, len(args), duration)
		return fmt.Errorf("%d problem(s) found", problems)
	}
	color.Green("Successfully checked %d file(s) in %s", len(args), duration)
	return nil
}

func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Minute:
		return fmt.Sprintf("%.2fmin", d.Minutes())
	case d >= time.Second:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d >= time.Millisecond:
		return fmt.Sprintf("%.1fms", float64(d.Nanoseconds())/1000000.0)
	case d >= time.Microsecond:
		return fmt.Sprintf("%.1fμs", float64(d.Nanoseconds())/1000.0)
	default:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	}
}
