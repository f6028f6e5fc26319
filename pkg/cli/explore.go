/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/shlex"
	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"

	"github.com/NVIDIA/clint/pkg/explorer"
	"github.com/NVIDIA/clint/pkg/invoker"
	"github.com/NVIDIA/clint/pkg/model"
)

func exploreCmd() *cli.Command {
	return &cli.Command{
		Name:                  "explore",
		Aliases:               []string{"parse"},
		EnableShellCompletion: true,
		Usage:                 "Discover the command tree of a program from its help output",
		ArgsUsage:             "<program> [args...]",
		Description: `Runs the program with help arguments, parses every help page it prints
and follows the subcommands it lists until the depth or invocation budget
is exhausted. The result is a command tree with flags, usage grammar and
unclassified lines for every command.

Arguments that look like flags must come after "--" or be passed with
--args, which is split like a shell would:

  clint explore mytool --args "--config 'dev env.yaml'"
  clint explore -- mytool --config dev.yaml

# Output

Without --output the tree is written to out/<program>/<version>/parsed.json.
--tag replaces the version directory, also under an explicit --output.
Use "-o -" for stdout and "-o cm://namespace/name" for a ConfigMap.`,
		Flags: append(exploreFlags(),
			&cli.StringFlag{
				Name:  "tag",
				Usage: "Version directory to use in the output layout instead of the reported version",
			},
			outputFlag("Output file path, - for stdout, or cm://namespace/name (default: out/<program>/<version>/parsed.<ext>)"),
			formatFlag(),
			kubeconfigFlag(),
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}
			if cmd.NArg() < 1 {
				return fmt.Errorf("program is required: %s explore <program> [args...]", name)
			}

			tree, err := exploreProgram(ctx, cmd, cmd.Args().First(), cmd.Args().Tail())
			if err != nil {
				return err
			}

			target := treeOutputPath(cmd.String("output"), cmd.String("tag"), tree, outFormat)
			if err := ensureParentDir(target); err != nil {
				return err
			}
			if err := writeOutput(ctx, outFormat, target, cmd.String("kubeconfig"), tree); err != nil {
				return fmt.Errorf("failed to write command tree: %w", err)
			}

			slog.Info("command tree saved",
				slog.String("program", tree.Name),
				slog.String("version", tree.Version),
				slog.Int("commands", tree.Count()),
				slog.String("output", target))
			return nil
		},
	}
}

// exploreFlags are shared by every command that can explore a program.
func exploreFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "max-depth",
			Aliases: []string{"d"},
			Value:   explorer.DefaultMaxDepth,
			Usage:   "Deepest command level to explore",
			Sources: cli.EnvVars("CLINT_MAX_DEPTH"),
		},
		&cli.IntFlag{
			Name:    "budget",
			Value:   explorer.DefaultBudget,
			Usage:   "Maximum number of program invocations",
			Sources: cli.EnvVars("CLINT_BUDGET"),
		},
		&cli.IntFlag{
			Name:    "workers",
			Aliases: []string{"w"},
			Value:   explorer.DefaultWorkers,
			Usage:   "Maximum number of concurrent program invocations",
			Sources: cli.EnvVars("CLINT_WORKERS"),
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Value:   invoker.DefaultTimeout,
			Usage:   "Time limit for a single program invocation",
			Sources: cli.EnvVars("CLINT_TIMEOUT"),
		},
		&cli.IntFlag{
			Name:  "spawn-rate",
			Usage: "Maximum program starts per second (0 for unlimited)",
		},
		&cli.StringFlag{
			Name:  "args",
			Usage: "Extra arguments placed before every help request, split with shell quoting rules",
		},
		&cli.StringSliceFlag{
			Name:  "env",
			Usage: "Environment entry for the program (format: KEY=VALUE, can be repeated)",
		},
		&cli.StringSliceFlag{
			Name:  "exclude",
			Value: explorer.DefaultExclude,
			Usage: "Subcommand name patterns to skip (prefix*, *suffix, *contains*)",
		},
		&cli.BoolFlag{
			Name:  "no-version",
			Usage: "Do not ask the program for its version",
		},
	}
}

// exploreProgram builds the command tree of program using the shared
// explore flags of cmd.
func exploreProgram(ctx context.Context, cmd *cli.Command, program string, positional []string) (*model.CommandNode, error) {
	extra, err := shlex.Split(cmd.String("args"))
	if err != nil {
		return nil, fmt.Errorf("invalid --args value: %w", err)
	}
	args := append(append([]string{}, positional...), extra...)

	spawnRate := int(cmd.Int("spawn-rate"))
	inv := invoker.New(
		invoker.WithTimeout(cmd.Duration("timeout")),
		invoker.WithEnv(cmd.StringSlice("env")...),
		invoker.WithRateLimit(rate.Limit(spawnRate), spawnRate),
	)

	e := explorer.New(
		explorer.WithInvoker(inv),
		explorer.WithMaxDepth(int(cmd.Int("max-depth"))),
		explorer.WithBudget(int(cmd.Int("budget"))),
		explorer.WithWorkers(int(cmd.Int("workers"))),
		explorer.WithExclude(cmd.StringSlice("exclude")...),
		explorer.WithVersionProbe(!cmd.Bool("no-version")),
		explorer.WithVersion(version),
	)

	slog.Info("exploring program",
		slog.String("program", program),
		slog.Any("args", args),
		slog.Int("max_depth", int(cmd.Int("max-depth"))))

	start := time.Now()
	tree, err := e.Explore(ctx, program, args)
	if err != nil {
		return nil, fmt.Errorf("failed to explore %q: %w", program, err)
	}

	warnings := 0
	tree.Walk(func(n *model.CommandNode) bool {
		warnings += len(n.Warnings)
		return true
	})
	slog.Info("exploration complete",
		slog.String("program", tree.Name),
		slog.String("version", tree.Version),
		slog.Int("commands", tree.Count()),
		slog.Int("warnings", warnings),
		slog.Duration("duration", time.Since(start)))
	return tree, nil
}
