/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/clint/pkg/compare"
	"github.com/NVIDIA/clint/pkg/serializer"
)

func compareCmd() *cli.Command {
	format := formatFlag()
	format.Value = string(serializer.FormatTable)

	return &cli.Command{
		Name:                  "compare",
		Aliases:               []string{"diff"},
		EnableShellCompletion: true,
		Usage:                 "Report the differences between two command trees",
		Description: `Compares two command trees, usually two versions of the same program,
and reports added and removed commands and flags, changed descriptions
and changed flag types. Commands are matched by path below the root, so
a renamed program can still be compared.

The table format prints a readable report; json and yaml emit the report
document for further processing.

# Examples

  clint compare --from out/kubectl/v1.30.0/parsed.json --to out/kubectl/v1.31.0/parsed.json
  clint compare --from old.json --to new.json --help-diff
  clint compare --from cm://tools/kubectl-old --to cm://tools/kubectl --format yaml
  clint compare --from old.json --to new.json --fail-on-change  # exit code 3 on changes`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "from",
				Aliases:  []string{"f"},
				Required: true,
				Usage:    "Baseline command tree (file path or cm://namespace/name)",
			},
			&cli.StringFlag{
				Name:     "to",
				Required: true,
				Usage:    "Command tree to compare against the baseline (file path or cm://namespace/name)",
			},
			&cli.BoolFlag{
				Name:  "help-diff",
				Usage: "Include line diffs of changed help pages",
			},
			&cli.BoolFlag{
				Name:  "fail-on-change",
				Usage: "Exit with code 3 when the trees differ",
			},
			outputFlag("Output file path, - for stdout, or cm://namespace/name (default: stdout)"),
			format,
			kubeconfigFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			kubeconfig := cmd.String("kubeconfig")
			from, err := loadTree(cmd.String("from"), kubeconfig)
			if err != nil {
				return err
			}
			to, err := loadTree(cmd.String("to"), kubeconfig)
			if err != nil {
				return err
			}

			report := compare.Compare(from, to, compare.WithHelpDiff(cmd.Bool("help-diff")))

			slog.Debug("comparison complete",
				slog.String("from", report.From),
				slog.String("to", report.To),
				slog.Int("added", report.Summary.Added),
				slog.Int("removed", report.Summary.Removed),
				slog.Int("modified", report.Summary.Modified))

			if err := writeReport(ctx, outFormat, cmd.String("output"), kubeconfig, report); err != nil {
				return err
			}

			if cmd.Bool("fail-on-change") && report.HasChanges() {
				return errChangesFound
			}
			return nil
		},
	}
}

// writeReport prints the text report for the table format and serializes
// the report document otherwise.
func writeReport(ctx context.Context, format serializer.Format, target, kubeconfig string, report *compare.Report) error {
	if format != serializer.FormatTable || isConfigMapTarget(target) {
		return writeOutput(ctx, format, target, kubeconfig, report)
	}

	var w io.Writer = os.Stdout
	if target != "" && target != serializer.StdoutURI {
		f, err := os.Create(target)
		if err != nil {
			return fmt.Errorf("failed to create output file %q: %w", target, err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				slog.Warn("failed to close output file", "error", err)
			}
		}()
		w = f
	}
	return report.Write(w)
}
