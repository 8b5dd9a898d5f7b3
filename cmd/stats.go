package cmd

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/gitcommits-go/internal/aggregation"
	"github.com/masmgr/gitcommits-go/internal/burst"
	"github.com/masmgr/gitcommits-go/internal/coupling"
	"github.com/masmgr/gitcommits-go/internal/git"
	"github.com/masmgr/gitcommits-go/internal/match"
	"github.com/masmgr/gitcommits-go/internal/output"
	"github.com/masmgr/gitcommits-go/internal/scoring"
)

// StatsCmd creates the stats command.
func StatsCmd() *cli.Command {
	return &cli.Command{
		Name:      "stats",
		Usage:     "Summarize file sizes, churn and co-change over the history",
		ArgsUsage: "[repository path]",
		Flags: append(append(commonFlags(), outputFlags()...),
			&cli.IntFlag{
				Name:  "top",
				Usage: "Number of files and commits to show",
			},
			&cli.StringFlag{
				Name:    "sort",
				Aliases: []string{"s"},
				Usage:   "Rank files by churn, size, peak, commits, growth or activity",
				Value:   string(aggregation.SortByChurn),
			},
			&cli.BoolFlag{
				Name:  "include-deleted",
				Usage: "Include files that no longer exist at the end of the range",
			},
			&cli.BoolFlag{
				Name:  "coupling",
				Usage: "Report pairs of files that are frequently changed together",
			},
			&cli.BoolFlag{
				Name:  "fixes",
				Usage: "Count bug-fix commits per file using the configured patterns",
			},
			&cli.IntFlag{
				Name:  "window-days",
				Usage: "Sliding window used to find bursts of activity",
			},
		),
		Action: statsAction,
	}
}

func statsAction(c *cli.Context) (err error) {
	cmdCtx, err := NewCommandContext(c)
	if err != nil {
		return err
	}
	sortKey, err := aggregation.ParseSortKey(c.String("sort"))
	if err != nil {
		return err
	}
	windowDays := cmdCtx.Config.Burst.WindowDays
	if c.IsSet("window-days") {
		windowDays = c.Int("window-days")
	}

	// Sizes are tracked forward in time, whatever order was requested.
	opts := cmdCtx.ReadOptions()
	if opts.Order != git.DefaultSortOrder {
		cmdCtx.Logger.Debug("stats reads oldest first", "requested", opts.Order.String())
		opts.Order = git.DefaultSortOrder
	}

	reader, err := cmdCtx.OpenReader(opts)
	if err != nil {
		return err
	}

	agg := aggregation.NewAggregator()
	consumers := []func(git.CommitChangeSet) error{agg.Add}

	var analyzer *coupling.Analyzer
	if c.Bool("coupling") {
		analyzer = coupling.NewAnalyzer(cmdCtx.Config.Coupling)
		consumers = append(consumers, analyzer.Add)
	}

	var fixes *match.Counter
	if c.Bool("fixes") {
		m, err := match.NewMatcher(cmdCtx.Config.Match.Patterns)
		if err != nil {
			return fmt.Errorf("invalid match pattern: %w", err)
		}
		fixes = match.NewCounter(m)
		consumers = append(consumers, fixes.Add)
	}

	err = reader.ReadChanges(c.Context, func(cs git.CommitChangeSet) error {
		for _, add := range consumers {
			if err := add(cs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	until := time.Now()
	if cmdCtx.Until != nil {
		until = *cmdCtx.Until
	}

	calc := burst.NewCalculator(windowDays)
	files := agg.Files()
	calc.Compute(files)
	commits := agg.Commits()

	var fixCounts map[string]int
	if fixes != nil {
		fixCounts = fixes.Files
	}
	scoring.NewScorer(cmdCtx.Config.Activity).Compute(files, fixCounts, until)

	top := cmdCtx.Config.Output.Top

	report := &output.StatsReport{
		RepoPath:    reader.Path(),
		Since:       cmdCtx.Since,
		Until:       until,
		GeneratedAt: time.Now(),
		Totals:      agg.Totals(),
		SortKey:     sortKey,
		Files:       aggregation.TopFiles(files, sortKey, top, c.Bool("include-deleted")),
		Commits:     aggregation.TopCommits(commits, top),
		Busiest:     calc.CommitWindow(commits),
	}
	if analyzer != nil {
		result := analyzer.Result()
		report.Coupling = &result
	}
	if fixes != nil {
		report.FixCounts = fixCounts
		report.FixTotal = fixes.Total
	}

	cmdCtx.Logger.Debug("history aggregated",
		"commits", len(commits),
		"files", len(files),
		"window_days", windowDays)

	out, closeOut, err := cmdCtx.OpenOutput(c)
	if err != nil {
		return err
	}
	defer closeOutput(closeOut, &err)

	return output.NewStatsReportWriter(cmdCtx.Format).Write(out, report, cmdCtx.OutputOptions(c))
}
