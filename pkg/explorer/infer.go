package explorer

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"k8s.io/utils/ptr"

	"github.com/NVIDIA/clint/pkg/model"
)

// echoThreshold is the similarity at which a subcommand's help page is
// considered a copy of its parent's.
const echoThreshold = 0.95

// isEcho reports whether child is (nearly) the same text as parent.
func isEcho(parent, child string) bool {
	return similarity(strings.TrimSpace(parent), strings.TrimSpace(child)) >= echoThreshold
}

// echoCompareRunes caps the prefix compared by edit distance.
const echoCompareRunes = 4096

// similarity is 1 minus the normalized Levenshtein distance of a and b.
// Long pages are compared on their first echoCompareRunes runes.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longest := max(la, lb)
	// the distance is at least the length difference
	if float64(min(la, lb))/float64(longest) < echoThreshold {
		return float64(min(la, lb)) / float64(longest)
	}
	a, b = runePrefix(a, echoCompareRunes), runePrefix(b, echoCompareRunes)
	longest = max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

func runePrefix(s string, n int) string {
	for i := range s {
		if n == 0 {
			return s[:i]
		}
		n--
	}
	return s
}

// inferRequired marks flags that a usage line names outside of any
// optional group or alternation.
func inferRequired(node *model.CommandNode) {
	required := make(map[string]bool)
	for _, u := range node.Children.Usage {
		collectRequired(u.Components, true, required)
	}
	if len(required) == 0 {
		return
	}
	for i := range node.Children.Flag {
		f := &node.Children.Flag[i]
		if (f.Long != "" && required[f.Long]) || (f.Short != "" && required[f.Short]) {
			f.Required = ptr.To(true)
		}
	}
}

func collectRequired(comps []model.UsageComponent, required bool, out map[string]bool) {
	for _, c := range comps {
		req := required && c.Required
		switch c.ComponentType {
		case model.ComponentFlag:
			if req {
				out[c.Name] = true
			}
		case model.ComponentGroup:
			collectRequired(c.Children, req, out)
		}
	}
}
