package serializer

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/clint/pkg/model"
)

func sampleTree() *model.CommandNode {
	root := model.NewRootNode("toolA")
	root.Description = "toolA manages widgets"
	root.Version = "toolA 1.2.3"
	root.AddFlag(model.Flag{Short: "v", Long: "verbose", Description: "Verbose output", ParentHeader: "Flags"})

	sub := model.NewChildNode(root, "sub1", "Do the first thing", "Available Commands")
	sub.AddFlag(model.Flag{Long: "name", DataType: "string", ParentHeader: "Flags"})
	sub.AddUsage(model.Usage{UsageString: "toolA sub1 --name <n>", ParentHeader: "Usage"})
	root.AddChild(sub)
	return root
}

func TestWriter_SerializeJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(FormatJSON, &buf).Serialize(context.Background(), sampleTree()))

	var raw map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	for _, key := range []string{"name", "description", "version", "depth", "command_path", "children"} {
		assert.Contains(t, raw, key)
	}
	children := raw["children"].(map[string]any)
	for _, key := range []string{"COMMAND", "FLAG", "USAGE", "OTHER"} {
		assert.Contains(t, children, key)
	}
	assert.True(t, strings.HasPrefix(buf.String(), "{\n  \""), "expected two-space indentation")
}

func TestWriter_SerializeJSON_NoHTMLEscaping(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(FormatJSON, &buf).Serialize(context.Background(), map[string]string{"usage": "tool <file> & more"}))
	assert.Contains(t, buf.String(), "tool <file> & more")
}

func TestWriter_SerializeYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(FormatYAML, &buf).Serialize(context.Background(), sampleTree()))

	var got model.CommandNode
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "toolA", got.Name)
	require.Contains(t, got.Children.Command, "sub1")
	assert.Equal(t, "toolA sub1", got.Children.Command["sub1"].CommandPath)
	assert.Contains(t, buf.String(), "COMMAND:")
}

func TestWriter_SerializeTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(FormatTable, &buf).Serialize(context.Background(), sampleTree()))

	out := buf.String()
	assert.Contains(t, out, "FIELD")
	assert.Contains(t, out, "VALUE")
	assert.Contains(t, out, "Children.Command.sub1.CommandPath")
	assert.Contains(t, out, "Children.Flag[0].Long")
	assert.Contains(t, out, "toolA sub1")
}

func TestWriter_SerializeTable_Slices(t *testing.T) {
	type entry struct {
		Name  string
		Value int
	}
	var buf bytes.Buffer
	data := []any{entry{"a", 1}, &entry{"b", 2}}
	require.NoError(t, NewWriter(FormatTable, &buf).Serialize(context.Background(), data))

	out := buf.String()
	assert.Contains(t, out, "[0].Name")
	assert.Contains(t, out, "[1].Value")
}

func TestWriter_SerializeTable_EmptyData(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(FormatTable, &buf).Serialize(context.Background(), []string{}))
	assert.Contains(t, buf.String(), "<empty>")
}

func TestWriter_SerializeTable_SortedMapKeys(t *testing.T) {
	var buf bytes.Buffer
	data := map[string]any{"b": true, "a": "x", "c": nil}
	require.NoError(t, NewWriter(FormatTable, &buf).Serialize(context.Background(), data))

	out := buf.String()
	assert.Less(t, strings.Index(out, "a "), strings.Index(out, "b "))
	assert.Contains(t, out, "<nil>")
}

func TestNewWriter_UnknownFormatFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(Format("xml"), &buf)
	require.NoError(t, w.Serialize(context.Background(), sampleTree()))

	var got model.CommandNode
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "toolA", got.Name)
}

func TestWriter_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	err := NewWriter(FormatJSON, &buf).Serialize(ctx, sampleTree())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, buf.Len())
}

func TestWriter_CloseStdoutIsSafe(t *testing.T) {
	w := NewStdoutWriter(FormatJSON)
	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}

func TestNewFileWriterOrStdout_Stdout(t *testing.T) {
	for _, target := range []string{"", "  ", "\t", "-"} {
		s, err := NewFileWriterOrStdout(FormatJSON, target)
		require.NoError(t, err, "target %q", target)
		w, ok := s.(*Writer)
		require.True(t, ok, "target %q", target)
		assert.Equal(t, os.Stdout, w.output)
		assert.NoError(t, w.Close())
	}
}

func TestNewFileWriterOrStdout_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "toolA.json")

	s, err := NewFileWriterOrStdout(FormatJSON, path)
	require.NoError(t, err)
	require.NoError(t, s.Serialize(context.Background(), sampleTree()))
	require.NoError(t, s.(Closer).Close())
	require.NoError(t, s.(Closer).Close())

	err = s.Serialize(context.Background(), sampleTree())
	assert.Error(t, err, "serialize after close")

	got, err := FromFile[model.CommandNode](path)
	require.NoError(t, err)
	assert.Equal(t, sampleTree(), got)
}

func TestNewFileWriterOrStdout_MissingDirectory(t *testing.T) {
	s, err := NewFileWriterOrStdout(FormatJSON, "/nonexistent/path/file.json")
	require.Error(t, err)
	assert.Nil(t, s)
	assert.Contains(t, err.Error(), "failed to create output file")
}

func TestNewFileWriterOrStdout_InvalidConfigMapURI(t *testing.T) {
	for _, uri := range []string{"cm://namespace", "cm:///name", "cm://", "cm://ns/a/b"} {
		t.Run(uri, func(t *testing.T) {
			s, err := NewFileWriterOrStdout(FormatJSON, uri)
			require.Error(t, err)
			assert.Nil(t, s)
			assert.Contains(t, err.Error(), "invalid ConfigMap URI")
		})
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		format  Format
		unknown bool
	}{
		{FormatJSON, false},
		{FormatYAML, false},
		{FormatTable, false},
		{Format("xml"), true},
		{Format(""), true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.unknown, tt.format.IsUnknown(), "format %q", tt.format)
	}
	assert.Equal(t, []string{"json", "yaml", "table"}, SupportedFormats())
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"tree.json":     FormatJSON,
		"tree.YAML":     FormatYAML,
		"tree.yml":      FormatYAML,
		"tree.txt":      FormatTable,
		"tree":          FormatJSON,
		"cm://ns/trees": FormatJSON,
	}
	for path, want := range tests {
		assert.Equal(t, want, FormatFromPath(path), path)
	}
}
