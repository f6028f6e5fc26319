package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/clint/pkg/model"
	"github.com/NVIDIA/clint/pkg/server"
)

func TestSuggestPaths(t *testing.T) {
	tree := testTree()
	build := model.NewChildNode(tree, "build", "Build a widget", "Available Commands")
	tree.AddChild(build)

	tests := []struct {
		name string
		path string
		want []string
	}{
		{"typo without root", "sub2", []string{"toolA sub1"}},
		{"typo with root", "toolA biuld", []string{"toolA build"}},
		{"prefix", "toolA bu", []string{"toolA build"}},
		{"unrelated", "completely-different-words", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, suggestPaths(tree, tt.path, maxSuggestions))
		})
	}
}

func TestSuggestPaths_Limit(t *testing.T) {
	tree := model.NewRootNode("t")
	for _, n := range []string{"aa", "ab", "ac", "ad"} {
		tree.AddChild(model.NewChildNode(tree, n, "", "Commands"))
	}
	assert.Len(t, suggestPaths(tree, "a", 2), 2)
}

func TestHandleCommand_NotFoundSuggestions(t *testing.T) {
	w := get(t, NewTreeHandler(testTree(), 0).HandleCommand, "/v1/command?path=sub2")

	var resp server.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []any{"toolA sub1"}, resp.Details["suggestions"])
}
