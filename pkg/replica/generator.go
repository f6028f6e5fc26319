// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package replica generates a Go program with the same command and flag
// structure as an explored command tree.
//
// The replica is built on github.com/urfave/cli/v3. Every command becomes
// one constructor function, subcommands are nested, and flags are typed
// from the data type recorded in the tree (unknown types become string
// flags). Output is deterministic: commands and flags are emitted in
// lexical order, no timestamps are written, and Go sources are gofmt'ed,
// so generating twice from the same tree yields identical files.
//
// Usage:
//
//	g := replica.NewGenerator(replica.WithModulePath("example.com/toola"))
//	res, err := g.Generate(ctx, tree, "./toola-replica")
package replica

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"go/format"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/natefinch/atomic"

	"github.com/NVIDIA/clint/pkg/errors"
	"github.com/NVIDIA/clint/pkg/model"
)

const (
	// DefaultGoVersion is the go directive of the generated go.mod.
	DefaultGoVersion = "1.24.0"

	// DefaultCLIVersion is the github.com/urfave/cli/v3 version required by the replica.
	DefaultCLIVersion = "v3.6.2"

	// ChecksumsFile lists the SHA256 of every other generated file.
	ChecksumsFile = "checksums.txt"
)

// sources maps templates to output files, in write order.
var sources = []struct {
	template string
	file     string
	gofmt    bool
}{
	{"go.mod", "go.mod", false},
	{"main.go", "main.go", true},
	{"commands.go", "commands.go", true},
	{"README.md", "README.md", false},
}

// File is one rendered replica file.
type File struct {
	Name    string
	Content []byte
}

// Artifacts is a replica rendered in memory.
type Artifacts struct {
	Files    []File
	Commands int
}

// Get returns the content of the named file.
func (a *Artifacts) Get(name string) ([]byte, bool) {
	for _, f := range a.Files {
		if f.Name == name {
			return f.Content, true
		}
	}
	return nil, false
}

// Generator renders replicas.
type Generator struct {
	modulePath       string
	goVersion        string
	cliVersion       string
	keepHelpFlags    bool
	keepVerboseFlags bool
	renderer         *TemplateRenderer
}

// Option is a functional option for configuring Generator instances.
type Option func(*Generator)

// WithModulePath sets the module path of the generated go.mod.
func WithModulePath(path string) Option {
	return func(g *Generator) {
		g.modulePath = strings.TrimSpace(path)
	}
}

// WithGoVersion sets the go directive of the generated go.mod.
func WithGoVersion(version string) Option {
	return func(g *Generator) {
		if version != "" {
			g.goVersion = version
		}
	}
}

// WithCLIVersion sets the required github.com/urfave/cli/v3 version.
func WithCLIVersion(version string) Option {
	return func(g *Generator) {
		if version != "" {
			g.cliVersion = version
		}
	}
}

// WithKeepHelpFlags keeps the tree's help flags and help commands. The
// built-in urfave/cli help is then hidden so that names do not clash.
func WithKeepHelpFlags(keep bool) Option {
	return func(g *Generator) {
		g.keepHelpFlags = keep
	}
}

// WithKeepVerboseFlags keeps --verbose flags, which are dropped by default.
func WithKeepVerboseFlags(keep bool) Option {
	return func(g *Generator) {
		g.keepVerboseFlags = keep
	}
}

// NewGenerator creates a Generator.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		goVersion:  DefaultGoVersion,
		cliVersion: DefaultCLIVersion,
		renderer:   NewTemplateRenderer(embeddedTemplate),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Render produces the replica files in memory.
func (g *Generator) Render(tree *model.CommandNode) (*Artifacts, error) {
	if err := validate(tree); err != nil {
		return nil, errors.Wrap(errors.ErrCodeGeneration, "command tree cannot be replicated", err)
	}

	p := g.plan(tree)
	out := &Artifacts{Commands: len(p.Commands)}

	for _, src := range sources {
		content, err := g.renderer.Render(src.template, p)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeGeneration, fmt.Sprintf("failed to render %s", src.file), err)
		}
		if src.gofmt {
			formatted, err := format.Source(content)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("generated %s is not valid Go", src.file), err)
			}
			content = formatted
		}
		out.Files = append(out.Files, File{Name: src.file, Content: content})
	}

	out.Files = append(out.Files, File{
		Name:    ChecksumsFile,
		Content: checksums(p.Name, out.Files),
	})
	return out, nil
}

// Generate renders the replica and writes it to dir, replacing files that
// already exist. Any render or write failure aborts generation.
func (g *Generator) Generate(ctx context.Context, tree *model.CommandNode, dir string) (*Result, error) {
	start := time.Now()
	defer func() {
		generateDuration.Observe(time.Since(start).Seconds())
	}()

	res := NewResult(dir)

	artifacts, err := g.Render(tree)
	if err != nil {
		generateTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	res.Commands = artifacts.Commands

	if err := os.MkdirAll(dir, 0o755); err != nil {
		generateTotal.WithLabelValues("error").Inc()
		return nil, errors.Wrap(errors.ErrCodeGeneration, fmt.Sprintf("failed to create directory %s", dir), err)
	}

	for _, f := range artifacts.Files {
		if err := ctx.Err(); err != nil {
			generateTotal.WithLabelValues("error").Inc()
			return nil, errors.Wrap(errors.ErrCodeUnavailable, "generation cancelled", err)
		}

		path := filepath.Join(dir, f.Name)
		if err := atomic.WriteFile(path, bytes.NewReader(f.Content)); err != nil {
			generateTotal.WithLabelValues("error").Inc()
			return nil, errors.Wrap(errors.ErrCodeGeneration, fmt.Sprintf("failed to write file %s", path), err)
		}
		if err := os.Chmod(path, 0o644); err != nil {
			res.AddError(fmt.Errorf("failed to set permissions on %s: %w", f.Name, err))
		}
		res.AddFile(path, int64(len(f.Content)))

		slog.Debug("file written",
			slog.String("path", path),
			slog.Int("size_bytes", len(f.Content)))
	}

	res.Duration = time.Since(start)
	res.MarkSuccess()
	generateTotal.WithLabelValues("success").Inc()

	return res, nil
}

// ComputeChecksum returns the hex SHA256 of content.
func ComputeChecksum(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

func checksums(name string, files []File) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "# %s replica checksums (SHA256)\n\n", name)
	for _, f := range files {
		fmt.Fprintf(&b, "%s  %s\n", ComputeChecksum(f.Content), f.Name)
	}
	return b.Bytes()
}
