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
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/clint/pkg/model"
	"github.com/NVIDIA/clint/pkg/oci"
	"github.com/NVIDIA/clint/pkg/replica"
)

const replicaDirName = "replica"

func replicateCmd() *cli.Command {
	return &cli.Command{
		Name:                  "replicate",
		EnableShellCompletion: true,
		Usage:                 "Generate a Go program that reproduces a command tree",
		ArgsUsage:             "[program [args...]]",
		Description: `Generates the source of a Go program, built on urfave/cli, that declares
the same commands, flags and descriptions as the explored program. The
commands do nothing; the replica is meant for testing tools that drive
the original program.

The tree is read with --tree, or explored first when a program is given.

# Output

  - go.mod: module definition
  - main.go: entry point
  - commands.go: the command tree
  - README.md: how to build and run the replica
  - checksums.txt: SHA256 of every generated file

Without --output the replica is written to out/<program>/<version>/replica.

# Examples

Generate from a saved tree:
  clint replicate --tree out/kubectl/v1.31.0/parsed.json --output ./kubectl-replica

Explore and generate in one step:
  clint replicate kubectl --max-depth 2 --output ./kubectl-replica

Show what would be generated:
  clint replicate --tree tree.json --dry-run

Push the replica to an OCI registry:
  clint replicate --tree tree.json --output ./replica \
    --push --registry ghcr.io --repository nvidia/kubectl-replica --tag v1.31.0`,
		Flags: append(exploreFlags(),
			treeFlag(false),
			outputFlag("Output directory for the generated replica (default: out/<program>/<version>/replica)"),
			&cli.StringFlag{
				Name:  "module",
				Usage: "Module path of the generated go.mod (default: example.com/<program>-replica)",
			},
			&cli.BoolFlag{
				Name:  "keep-help-flags",
				Usage: "Keep help flags and help commands of the original program",
			},
			&cli.BoolFlag{
				Name:  "keep-verbose-flags",
				Usage: "Keep --verbose flags of the original program",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Print the replica command tree and files without writing anything",
			},
			// OCI push flags
			&cli.BoolFlag{
				Name:  "push",
				Usage: "Push generated replica as OCI artifact to registry",
			},
			&cli.StringFlag{
				Name:  "registry",
				Usage: "OCI registry host (e.g., ghcr.io, localhost:5000)",
			},
			&cli.StringFlag{
				Name:  "repository",
				Usage: "OCI repository path (e.g., nvidia/kubectl-replica)",
			},
			&cli.StringFlag{
				Name:  "tag",
				Usage: "OCI image tag (default: latest)",
			},
			&cli.BoolFlag{
				Name:  "insecure-tls",
				Usage: "Skip TLS certificate verification for OCI registry",
			},
			&cli.BoolFlag{
				Name:  "plain-http",
				Usage: "Use HTTP instead of HTTPS for OCI registry (for local development)",
			},
			kubeconfigFlag(),
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			pushEnabled := cmd.Bool("push")
			registryHost := cmd.String("registry")
			repository := cmd.String("repository")

			if pushEnabled {
				if cmd.Bool("dry-run") {
					return fmt.Errorf("--push cannot be combined with --dry-run")
				}
				if registryHost == "" {
					return fmt.Errorf("--registry is required when --push is enabled")
				}
				if repository == "" {
					return fmt.Errorf("--repository is required when --push is enabled")
				}
				if err := oci.ValidateRegistryReference(registryHost, repository); err != nil {
					return fmt.Errorf("invalid OCI reference: %w", err)
				}
			}

			tree, err := replicaSource(ctx, cmd)
			if err != nil {
				return err
			}

			gen := replica.NewGenerator(
				replica.WithModulePath(cmd.String("module")),
				replica.WithKeepHelpFlags(cmd.Bool("keep-help-flags")),
				replica.WithKeepVerboseFlags(cmd.Bool("keep-verbose-flags")),
			)

			if cmd.Bool("dry-run") {
				return printReplicaPlan(os.Stdout, gen, tree)
			}

			outputDir := cmd.String("output")
			if outputDir == "" {
				outputDir = filepath.Join(defaultOutputRoot, pathSegment(tree.Name), versionLabel(tree, ""), replicaDirName)
			}

			slog.Info("generating replica",
				slog.String("program", tree.Name),
				slog.String("output", outputDir))

			out, err := gen.Generate(ctx, tree, outputDir)
			if err != nil {
				return fmt.Errorf("replica generation failed: %w", err)
			}
			for _, e := range out.Errors {
				slog.Warn("replica generated with errors", "error", e)
			}

			slog.Info("replica generated",
				"files", len(out.Files),
				"commands", out.Commands,
				"size_bytes", out.Size,
				"duration_sec", out.Duration.Seconds(),
				"output_dir", out.Dir,
			)
			printReplicaInstructions(os.Stdout, out)

			if pushEnabled {
				return pushReplica(ctx, cmd, outputDir)
			}
			return nil
		},
	}
}

// replicaSource loads the tree from --tree or explores the program given
// as the first argument.
func replicaSource(ctx context.Context, cmd *cli.Command) (*model.CommandNode, error) {
	treePath := cmd.String("tree")
	switch {
	case treePath != "" && cmd.NArg() > 0:
		return nil, fmt.Errorf("--tree and a program argument are mutually exclusive")
	case treePath != "":
		return loadTree(treePath, cmd.String("kubeconfig"))
	case cmd.NArg() > 0:
		return exploreProgram(ctx, cmd, cmd.Args().First(), cmd.Args().Tail())
	default:
		return nil, fmt.Errorf("either --tree or a program argument is required")
	}
}

func pushReplica(ctx context.Context, cmd *cli.Command, outputDir string) error {
	absOutputDir, err := filepath.Abs(outputDir)
	if err != nil {
		return fmt.Errorf("failed to resolve output directory: %w", err)
	}

	registryHost := cmd.String("registry")
	repository := cmd.String("repository")
	imageTag := cmd.String("tag")
	if imageTag == "" {
		imageTag = oci.DefaultTag
	}

	slog.Info("pushing replica to OCI registry",
		"registry", registryHost,
		"repository", repository,
		"tag", imageTag,
	)

	packageResult, err := oci.Package(ctx, oci.PackageOptions{
		SourceDir:  absOutputDir,
		OutputDir:  absOutputDir,
		Registry:   registryHost,
		Repository: repository,
		Tag:        imageTag,
	})
	if err != nil {
		return fmt.Errorf("failed to package OCI artifact: %w", err)
	}

	slog.Info("OCI artifact packaged locally",
		"reference", packageResult.Reference,
		"digest", packageResult.Digest,
		"store_path", packageResult.StorePath,
	)

	pushResult, err := oci.PushFromStore(ctx, packageResult.StorePath, oci.PushOptions{
		Registry:    registryHost,
		Repository:  repository,
		Tag:         imageTag,
		PlainHTTP:   cmd.Bool("plain-http"),
		InsecureTLS: cmd.Bool("insecure-tls"),
	})
	if err != nil {
		return fmt.Errorf("failed to push OCI artifact to registry: %w", err)
	}

	slog.Info("OCI artifact pushed successfully",
		"reference", pushResult.Reference,
		"digest", pushResult.Digest,
	)
	return nil
}

// printReplicaPlan writes the command outline and file list of the replica.
func printReplicaPlan(w io.Writer, gen *replica.Generator, tree *model.CommandNode) error {
	root, err := gen.BuildCommand(tree)
	if err != nil {
		return err
	}
	artifacts, err := gen.Render(tree)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Commands (%d):\n", artifacts.Commands)
	printCommandOutline(w, root, 1)
	fmt.Fprintf(w, "\nFiles:\n")
	for _, f := range artifacts.Files {
		fmt.Fprintf(w, "  %-16s %6d bytes\n", f.Name, len(f.Content))
	}
	return nil
}

func printCommandOutline(w io.Writer, cmd *cli.Command, depth int) {
	var flags []string
	for _, f := range cmd.Flags {
		flags = append(flags, "--"+f.Names()[0])
	}
	line := strings.Repeat("  ", depth) + cmd.Name
	if len(flags) > 0 {
		line += " [" + strings.Join(flags, " ") + "]"
	}
	fmt.Fprintln(w, line)
	for _, c := range cmd.Commands {
		printCommandOutline(w, c, depth+1)
	}
}

// printReplicaInstructions prints how to build the generated replica.
func printReplicaInstructions(w io.Writer, out *replica.Result) {
	fmt.Fprintf(w, "\nReplica generated successfully!\n")
	fmt.Fprintf(w, "Output directory: %s\n", out.Dir)
	fmt.Fprintf(w, "Files generated: %d\n", len(out.Files))
	fmt.Fprintf(w, "\nTo build:\n")
	fmt.Fprintf(w, "  cd %s\n", out.Dir)
	fmt.Fprintf(w, "  go mod tidy\n")
	fmt.Fprintf(w, "  go build .\n")
}
