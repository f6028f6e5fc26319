/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/clint/pkg/model"
	"github.com/NVIDIA/clint/pkg/serializer"
)

func outputFlag(usage string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   usage,
	}
}

func formatFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"t"},
		Value:   string(serializer.FormatJSON),
		Usage:   fmt.Sprintf("Output format (%s)", strings.Join(serializer.SupportedFormats(), ", ")),
	}
}

func kubeconfigFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "kubeconfig",
		Aliases: []string{"k"},
		Usage:   "Path to kubeconfig file, used for cm://namespace/name inputs and outputs",
		Sources: cli.EnvVars("KUBECONFIG"),
	}
}

func treeFlag(required bool) *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "tree",
		Aliases:  []string{"i"},
		Required: required,
		Usage:    "Command tree produced by explore (file path or cm://namespace/name)",
	}
}

// parseOutputFormat extracts and validates the output format from CLI flags.
func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	outFormat := serializer.Format(cmd.String("format"))
	if outFormat.IsUnknown() {
		return "", fmt.Errorf("unknown output format: %q, valid formats are: %s",
			outFormat, strings.Join(serializer.SupportedFormats(), ", "))
	}
	return outFormat, nil
}

// loadTree reads a command tree from a file or ConfigMap.
func loadTree(path, kubeconfig string) (*model.CommandNode, error) {
	tree, err := serializer.FromFileWithKubeconfig[model.CommandNode](path, kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to load command tree from %q: %w", path, err)
	}
	tree.Normalize()
	return tree, nil
}

// writeOutput serializes data to target: a file, a ConfigMap URI, or
// stdout when empty.
func writeOutput(ctx context.Context, format serializer.Format, target, kubeconfig string, data any) error {
	ser, err := serializer.NewFileWriterOrStdoutWithKubeconfig(format, target, kubeconfig)
	if err != nil {
		return err
	}
	if c, ok := ser.(serializer.Closer); ok {
		defer func() {
			if err := c.Close(); err != nil {
				slog.Warn("failed to close serializer", "error", err)
			}
		}()
	}
	return ser.Serialize(ctx, data)
}
