/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/NVIDIA/clint/pkg/model"
	"github.com/NVIDIA/clint/pkg/serializer"
)

const (
	defaultOutputRoot = "out"
	latestLabel       = "latest"
	parsedBaseName    = "parsed"
)

// versionLabel picks the directory name for a tree: the tag when set,
// otherwise the reported version, otherwise "latest".
func versionLabel(tree *model.CommandNode, tag string) string {
	if tag != "" {
		return pathSegment(tag)
	}
	v := strings.TrimSpace(tree.Version)
	if v == "" || v == model.UnknownVersion {
		return latestLabel
	}
	return pathSegment(v)
}

// pathSegment makes s usable as a single directory name.
func pathSegment(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ', '\t', '\n':
			return '_'
		}
		return r
	}, strings.TrimSpace(s))
	if s == "" || s == "." || s == ".." {
		return latestLabel
	}
	return s
}

func fileExtension(format serializer.Format) string {
	if format == serializer.FormatTable {
		return "txt"
	}
	return string(format)
}

// treeOutputPath resolves where explore writes a tree.
//
//   - no output: out/<program>/<version or tag>/parsed.<ext>
//   - output and tag: <output>/<program>/<tag>/parsed.<ext>
//   - output only: used as given
//
// Stdout and ConfigMap targets are never rewritten.
func treeOutputPath(output, tag string, tree *model.CommandNode, format serializer.Format) string {
	if output == serializer.StdoutURI || isConfigMapTarget(output) {
		return output
	}
	if output != "" && tag == "" {
		return output
	}
	base := output
	if base == "" {
		base = defaultOutputRoot
	}
	return filepath.Join(base, pathSegment(tree.Name), versionLabel(tree, tag),
		parsedBaseName+"."+fileExtension(format))
}

// ensureParentDir creates the directory that will hold path.
func ensureParentDir(path string) error {
	if path == "" || path == serializer.StdoutURI || isConfigMapTarget(path) {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory for %q: %w", path, err)
	}
	return nil
}

func isConfigMapTarget(target string) bool {
	return strings.HasPrefix(strings.TrimSpace(target), serializer.ConfigMapURIScheme)
}
