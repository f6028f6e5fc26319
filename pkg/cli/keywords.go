/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/clint/pkg/model"
)

func keywordsCmd() *cli.Command {
	return &cli.Command{
		Name:                  "keywords",
		EnableShellCompletion: true,
		Usage:                 "List every command word and flag name of a command tree",
		Description: `Collects the vocabulary of an explored program: first-level commands,
deeper subcommands, short flags and long flags, each deduplicated and
sorted, together with unique and total counts.

# Examples

  clint keywords --tree out/kubectl/v1.31.0/parsed.json
  clint keywords -i tree.json --format table`,
		Flags: []cli.Flag{
			treeFlag(true),
			outputFlag("Output file path, - for stdout, or cm://namespace/name (default: stdout)"),
			formatFlag(),
			kubeconfigFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			kubeconfig := cmd.String("kubeconfig")
			tree, err := loadTree(cmd.String("tree"), kubeconfig)
			if err != nil {
				return err
			}

			kw := model.ExtractKeywords(tree)
			slog.Debug("keywords extracted",
				slog.String("program", kw.Program),
				slog.Int("unique", kw.Summary.UniqueKeywords))

			return writeOutput(ctx, outFormat, cmd.String("output"), kubeconfig, kw)
		},
	}
}
