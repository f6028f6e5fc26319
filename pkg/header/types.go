// Package header carries the Kubernetes-style kind/apiVersion/metadata
// block written at the top of documents clint produces about trees, such
// as comparison reports.
package header

import (
	"fmt"
	"sort"
	"strings"
)

const (
	APIVersionDomain = "clint.nvidia.com"
	APIVersionV1     = "v1"
)

// Option is a functional option for configuring Header instances.
type Option func(*Header)

// WithMetadata adds a metadata key-value pair.
func WithMetadata(key, value string) Option {
	return func(h *Header) {
		if h.Metadata == nil {
			h.Metadata = make(map[string]string)
		}
		h.Metadata[key] = value
	}
}

// WithKind sets the Kind and derives the APIVersion from it.
func WithKind(kind string) Option {
	return func(h *Header) {
		h.SetKind(kind)
	}
}

// WithAPIVersion overrides the derived APIVersion.
func WithAPIVersion(version string) Option {
	return func(h *Header) {
		h.APIVersion = version
	}
}

// New creates a Header. The Metadata map is always initialized.
func New(opts ...Option) *Header {
	h := &Header{
		Metadata: make(map[string]string),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Header identifies the kind and schema version of a document.
type Header struct {
	Kind       string            `json:"kind,omitempty" yaml:"kind,omitempty"`
	APIVersion string            `json:"apiVersion,omitempty" yaml:"apiVersion,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// SetKind sets Kind and the APIVersion "<kind>.clint.nvidia.com/v1".
// Metadata is left untouched; headers carry no timestamps so that
// documents rendered from the same input are byte-identical.
func (h *Header) SetKind(kind string) {
	h.Kind = kind
	h.APIVersion = fmt.Sprintf("%s.%s/%s", strings.ToLower(kind), APIVersionDomain, APIVersionV1)
}

// MetadataKeys returns the metadata keys in lexical order.
func (h *Header) MetadataKeys() []string {
	keys := make([]string, 0, len(h.Metadata))
	for k := range h.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
