package cmd

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/gitcommits-go/internal/output"
)

// DiffCmd creates the diff command.
func DiffCmd() *cli.Command {
	return &cli.Command{
		Name:      "diff",
		Usage:     "Classify the file changes between two revisions",
		ArgsUsage: "<base..head | base...head> [repository path]",
		Flags: append(append(repoFlags(), outputFlags()...),
			&cli.StringFlag{
				Name:  "range",
				Usage: "Revision range to compare (base..head or base...head)",
			},
		),
		Action: diffAction,
	}
}

func diffAction(c *cli.Context) (err error) {
	spec := c.String("range")
	args := c.Args().Slice()
	if spec == "" {
		if len(args) == 0 {
			return fmt.Errorf("diff requires a revision range such as main..HEAD")
		}
		spec, args = args[0], args[1:]
	}

	cmdCtx, err := NewCommandContext(c)
	if err != nil {
		return err
	}
	if len(args) > 0 {
		cmdCtx.RepoPath = args[0]
	} else {
		cmdCtx.RepoPath = c.String("repo")
	}

	repo, err := cmdCtx.OpenRepository()
	if err != nil {
		return err
	}
	result, err := repo.ReadDiff(c.Context, spec)
	if err != nil {
		return fmt.Errorf("failed to diff %s: %w", spec, err)
	}

	out, closeOut, err := cmdCtx.OpenOutput(c)
	if err != nil {
		return err
	}
	defer closeOutput(closeOut, &err)

	report := &output.DiffReport{
		RepoPath:    repo.Path(),
		GeneratedAt: time.Now(),
		Result:      result,
	}
	return output.NewDiffReportWriter(cmdCtx.Format).Write(out, report, cmdCtx.OutputOptions(c))
}
