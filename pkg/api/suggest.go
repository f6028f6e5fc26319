package api

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/NVIDIA/clint/pkg/model"
)

const (
	// suggestThreshold is the minimum similarity for a path to be suggested.
	suggestThreshold = 0.5

	maxSuggestions = 3
)

// suggestPaths returns up to limit command paths of tree that look like
// path, most similar first. path may omit the root program name. Paths are
// compared below the root so that the shared program name does not count.
func suggestPaths(tree *model.CommandNode, path string, limit int) []string {
	target := relativePath(tree, path)

	type scored struct {
		path  string
		score float64
	}
	var found []scored
	tree.Walk(func(n *model.CommandNode) bool {
		if n == tree {
			return true
		}
		if s := similarity(target, relativePath(tree, n.CommandPath)); s > suggestThreshold {
			found = append(found, scored{n.CommandPath, s})
		}
		return true
	})

	sort.Slice(found, func(i, j int) bool {
		if found[i].score == found[j].score {
			return found[i].path < found[j].path
		}
		return found[i].score > found[j].score
	})

	out := make([]string, 0, min(limit, len(found)))
	for i := 0; i < len(found) && i < limit; i++ {
		out = append(out, found[i].path)
	}
	return out
}

func similarity(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	switch {
	case a == b:
		return 1
	case strings.HasPrefix(b, a):
		return 0.9
	}
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 0
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

func relativePath(tree *model.CommandNode, path string) string {
	if rest, ok := strings.CutPrefix(path, tree.Name+" "); ok {
		return rest
	}
	return path
}
