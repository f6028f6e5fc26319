/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/clint/pkg/logging"
)

const name = "clint"

var (
	// overridden during build with ldflags
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const (
	exitError     = 1
	exitCancelled = 2
	exitChanged   = 3
)

// errChangesFound is returned by compare when --fail-on-change is set and
// the trees differ.
var errChangesFound = stderrors.New("command trees differ")

// Execute runs the clint CLI and exits the process on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().Run(ctx, os.Args); err != nil {
		code := exitCode(err)
		if code != exitChanged {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		stop()
		os.Exit(code)
	}
}

func exitCode(err error) int {
	switch {
	case stderrors.Is(err, errChangesFound):
		return exitChanged
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return exitCancelled
	default:
		return exitError
	}
}

func newRootCmd() *cli.Command {
	return &cli.Command{
		Name:                  name,
		Usage:                 "Discover, compare and replicate the command structure of CLI programs",
		Version:               fmt.Sprintf("%s (commit: %s, date: %s)", version, commit, date),
		EnableShellCompletion: true,
		ShellComplete:         commandLister,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "Enable debug logging",
				Sources: cli.EnvVars("CLINT_DEBUG"),
			},
			&cli.BoolFlag{
				Name:  "log-json",
				Usage: "Output logs in JSON format",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			switch {
			case cmd.Bool("log-json") && cmd.Bool("debug"):
				slog.SetDefault(logging.NewStructuredLogger(os.Stderr, name, version, slog.LevelDebug))
			case cmd.Bool("log-json"):
				logging.SetDefaultStructuredLogger(name, version)
			default:
				logging.SetDefaultCLILogger(cmd.Bool("debug"))
			}
			return ctx, nil
		},
		Commands: []*cli.Command{
			exploreCmd(),
			replicateCmd(),
			compareCmd(),
			keywordsCmd(),
			serveCmd(),
		},
	}
}

// commandLister prints the visible subcommands for shell completion.
func commandLister(_ context.Context, cmd *cli.Command) {
	if cmd == nil || cmd.Root() == nil {
		return
	}
	for _, c := range cmd.Root().Commands {
		if c.Hidden {
			continue
		}
		fmt.Println(c.Name)
	}
}
