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

// Package serializer reads and writes documents as JSON, YAML or a flat
// table, to and from files, stdout or Kubernetes ConfigMaps.
//
// Destinations are given as a single string:
//
//	""  or "-"             stdout
//	cm://namespace/name    a ConfigMap (created or updated)
//	anything else          a file path
package serializer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Serializer encodes data to a destination.
type Serializer interface {
	Serialize(ctx context.Context, data any) error
}

// Closer is implemented by serializers that hold resources.
type Closer interface {
	Close() error
}

// Writer encodes data to an io.Writer.
type Writer struct {
	format Format
	output io.Writer
	closer io.Closer

	mu     sync.Mutex
	closed bool
}

// NewWriter creates a Writer. Unknown formats fall back to JSON.
func NewWriter(format Format, output io.Writer) *Writer {
	if format.IsUnknown() {
		slog.Warn("unknown output format, using json", slog.String("format", string(format)))
		format = FormatJSON
	}
	if output == nil {
		output = os.Stdout
	}
	return &Writer{
		format: format,
		output: output,
	}
}

// NewStdoutWriter creates a Writer on stdout.
func NewStdoutWriter(format Format) *Writer {
	return NewWriter(format, os.Stdout)
}

// NewFileWriterOrStdout creates a serializer for target: stdout when
// target is empty or "-", a ConfigMap for cm:// URIs, else a file that is
// created or truncated. Parent directories must exist.
func NewFileWriterOrStdout(format Format, target string) (Serializer, error) {
	return NewFileWriterOrStdoutWithKubeconfig(format, target, "")
}

// NewFileWriterOrStdoutWithKubeconfig is NewFileWriterOrStdout with an
// explicit kubeconfig for cm:// targets.
func NewFileWriterOrStdoutWithKubeconfig(format Format, target, kubeconfig string) (Serializer, error) {
	target = strings.TrimSpace(target)
	if target == "" || target == StdoutURI {
		return NewStdoutWriter(format), nil
	}

	if strings.HasPrefix(target, ConfigMapURIScheme) {
		namespace, name, err := ParseConfigMapURI(target)
		if err != nil {
			return nil, err
		}
		w := NewConfigMapWriter(format, namespace, name, nil)
		w.kubeconfig = kubeconfig
		return w, nil
	}

	f, err := os.Create(target)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file %q: %w", target, err)
	}
	w := NewWriter(format, f)
	w.closer = f
	return w, nil
}

// Serialize encodes data in the writer's format.
func (w *Writer) Serialize(ctx context.Context, data any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return fmt.Errorf("serialize on closed writer")
	}

	switch w.format {
	case FormatYAML:
		enc := yaml.NewEncoder(w.output)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return fmt.Errorf("failed to serialize to yaml: %w", err)
		}
		return enc.Close()
	case FormatTable:
		if err := writeTable(w.output, data); err != nil {
			return fmt.Errorf("failed to serialize to table: %w", err)
		}
		return nil
	default:
		enc := json.NewEncoder(w.output)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(data); err != nil {
			return fmt.Errorf("failed to serialize to json: %w", err)
		}
		return nil
	}
}

// Close releases the underlying file, if any. It is safe to call more
// than once and never closes stdout.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closer == nil || w.closed {
		return nil
	}
	w.closed = true
	return w.closer.Close()
}
