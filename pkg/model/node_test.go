package model

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/utils/ptr"
	"pgregory.net/rapid"
)

func sampleTree() *CommandNode {
	root := NewRootNode("toolA")
	root.Version = "1.0.0"
	root.Description = "Tool A does things"
	root.SetOutput(OutputHelpPage, &Output{Stdout: "Usage: toolA", Status: 0})
	root.AddFlag(Flag{Short: "h", Long: "help", Description: "Show help", ParentHeader: "Flags"})
	root.AddUsage(Usage{
		UsageString:  "toolA [flags] <file>",
		ParentHeader: "Usage",
		Components: NormalizeComponents([]UsageComponent{
			{ComponentType: ComponentGroup, Name: "", Children: []UsageComponent{{ComponentType: ComponentKeyword, Name: "flags", Required: true}}},
			{ComponentType: ComponentArgument, Name: "file", Required: true},
		}),
	})
	root.AddOther(OtherLine{LineContents: "Learn more at example.com", ParentHeader: RootHeader})

	sub := NewChildNode(root, "sub1", "First subcommand", "Commands")
	sub.AddFlag(Flag{Short: "o", Long: "output", DataType: "string", Required: ptr.To(true), ParentHeader: "Flags"})
	sub.AddWarning("help exited with status 1")
	root.AddChild(sub)

	return root
}

func TestNewChildNode(t *testing.T) {
	root := NewRootNode("toolA")
	sub := NewChildNode(root, "sub1", "", "Commands")

	assert.Equal(t, 0, root.Depth)
	assert.Equal(t, "toolA", root.CommandPath)
	assert.Equal(t, 1, sub.Depth)
	assert.Equal(t, "toolA sub1", sub.CommandPath)
	assert.Equal(t, "toolA", sub.Parent)
	assert.Equal(t, []string{"toolA"}, sub.Ancestors())
}

func TestAddChild_RejectsDuplicateSibling(t *testing.T) {
	root := NewRootNode("git")
	first := NewChildNode(root, "commit", "first", "Commands")
	second := NewChildNode(root, "commit", "second", "Commands")

	assert.True(t, root.AddChild(first))
	assert.False(t, root.AddChild(second))
	assert.Equal(t, "first", root.Children.Command["commit"].Description)
}

func TestAddFlag_MergesByIdentity(t *testing.T) {
	n := NewRootNode("tool")

	tests := []struct {
		name  string
		flag  Flag
		isNew bool
	}{
		{"first", Flag{Short: "o", Long: "output", Description: "Output path"}, true},
		{"same identity", Flag{Short: "o", Long: "output", Description: "other text"}, false},
		{"long only is distinct", Flag{Long: "output"}, true},
		{"short only is distinct", Flag{Short: "o"}, true},
		{"nameless ignored", Flag{Description: "nothing"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.AddFlag(tt.flag); got != tt.isNew {
				t.Errorf("AddFlag() = %v, want %v", got, tt.isNew)
			}
		})
	}

	require.Len(t, n.Children.Flag, 3)
	assert.Equal(t, "Output path", n.Children.Flag[0].Description, "first description wins")

	seen := map[FlagKey]bool{}
	for _, f := range n.Children.Flag {
		if seen[f.Key()] {
			t.Errorf("duplicate flag identity %+v", f.Key())
		}
		seen[f.Key()] = true
	}
}

func TestAddFlag_FirstOccurrenceWins(t *testing.T) {
	n := NewRootNode("tool")
	assert.True(t, n.AddFlag(Flag{Long: "config", ParentHeader: "Flags"}))
	assert.False(t, n.AddFlag(Flag{Long: "config", DataType: "string", Description: "Config file", Default: "x.yaml", ParentHeader: "Global Flags"}))

	require.Len(t, n.Children.Flag, 1)
	f := n.Children.Flag[0]
	assert.Empty(t, f.DataType)
	assert.Empty(t, f.Description)
	assert.Empty(t, f.Default)
	assert.Equal(t, "Flags", f.ParentHeader)
}

func TestAddUsage_Dedupes(t *testing.T) {
	n := NewRootNode("tool")
	assert.True(t, n.AddUsage(Usage{UsageString: "tool <x>"}))
	assert.False(t, n.AddUsage(Usage{UsageString: "tool <x>"}))
	assert.NotNil(t, n.Children.Usage[0].Components)
}

func TestWalkAndFind(t *testing.T) {
	root := sampleTree()
	deep := NewChildNode(root.Children.Command["sub1"], "deep", "", "Commands")
	root.Children.Command["sub1"].AddChild(deep)
	root.AddChild(NewChildNode(root, "alpha", "", "Commands"))

	var visited []string
	root.Walk(func(n *CommandNode) bool {
		visited = append(visited, n.CommandPath)
		return true
	})
	assert.Equal(t, []string{"toolA", "toolA alpha", "toolA sub1", "toolA sub1 deep"}, visited)
	assert.Equal(t, 4, root.Count())

	assert.Same(t, deep, root.Find("toolA sub1 deep"))
	assert.Nil(t, root.Find("toolA missing"))
	assert.Nil(t, root.Find("other sub1"))
	assert.Nil(t, root.Find(""))
}

func TestFlagDisplay(t *testing.T) {
	tests := []struct {
		flag Flag
		want string
	}{
		{Flag{Short: "o", Long: "output"}, "-o, --output"},
		{Flag{Long: "verbose"}, "--verbose"},
		{Flag{Short: "v"}, "-v"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.flag.Display())
		})
	}
}

func TestFlagTypeAndRequired(t *testing.T) {
	assert.True(t, Flag{Long: "help"}.IsBoolean())
	assert.True(t, Flag{Long: "help", DataType: BooleanType}.IsBoolean())
	assert.False(t, Flag{Long: "output", DataType: "string"}.IsBoolean())
	assert.False(t, Flag{Long: "output"}.IsRequired())
	assert.True(t, Flag{Long: "output", Required: ptr.To(true)}.IsRequired())
}

func TestSortedFlags(t *testing.T) {
	n := NewRootNode("tool")
	n.AddFlag(Flag{Long: "zeta"})
	n.AddFlag(Flag{Short: "a"})
	n.AddFlag(Flag{Short: "m", Long: "Mid"})

	var names []string
	for _, f := range n.SortedFlags() {
		names = append(names, f.Name())
	}
	assert.Equal(t, []string{"a", "Mid", "zeta"}, names)
	assert.Equal(t, "zeta", n.Children.Flag[0].Long, "original order untouched")
}

func TestJSONShape(t *testing.T) {
	data, err := json.Marshal(sampleTree())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	for _, key := range []string{"name", "description", "version", "depth", "command_path", "children"} {
		assert.Contains(t, raw, key)
	}
	children := raw["children"].(map[string]any)
	for _, key := range []string{"COMMAND", "FLAG", "USAGE", "OTHER"} {
		assert.Contains(t, children, key)
	}
	assert.IsType(t, map[string]any{}, children["COMMAND"])
	assert.IsType(t, []any{}, children["FLAG"])
}

func TestJSONRoundTrip(t *testing.T) {
	tree := sampleTree()
	tree.Normalize()

	data, err := json.Marshal(tree)
	require.NoError(t, err)

	var decoded CommandNode
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, tree, &decoded)
}

func componentGen(depth int) *rapid.Generator[UsageComponent] {
	return rapid.Custom(func(t *rapid.T) UsageComponent {
		c := UsageComponent{
			ComponentType: rapid.SampledFrom([]ComponentType{ComponentFlag, ComponentArgument, ComponentKeyword}).Draw(t, "type"),
			Name:          rapid.StringMatching(`[a-z][a-z0-9-]{0,6}`).Draw(t, "name"),
			Required:      rapid.Bool().Draw(t, "required"),
			Repeatable:    rapid.Bool().Draw(t, "repeatable"),
		}
		if depth > 0 && rapid.Bool().Draw(t, "nested") {
			c.ComponentType = ComponentGroup
			c.Name = ""
			c.Children = rapid.SliceOfN(componentGen(depth-1), 1, 3).Draw(t, "children")
		}
		return c
	})
}

func nodeGen(parent *CommandNode, depth int) *rapid.Generator[*CommandNode] {
	return rapid.Custom(func(t *rapid.T) *CommandNode {
		name := rapid.StringMatching(`[a-z]{1,8}`).Draw(t, "name")
		var n *CommandNode
		if parent == nil {
			n = NewRootNode(name)
			n.Version = rapid.StringMatching(`v[0-9]\.[0-9]`).Draw(t, "version")
		} else {
			n = NewChildNode(parent, name, rapid.StringMatching(`[A-Za-z ]{0,20}`).Draw(t, "desc"), "Commands")
		}
		for i, count := 0, rapid.IntRange(0, 3).Draw(t, "flags"); i < count; i++ {
			n.AddFlag(Flag{
				Short:        rapid.StringMatching(`[a-z]?`).Draw(t, "short"),
				Long:         rapid.StringMatching(`[a-z]{2,6}`).Draw(t, "long"),
				DataType:     rapid.SampledFrom([]string{"", "string", "int"}).Draw(t, "type"),
				ParentHeader: "Flags",
			})
		}
		if rapid.Bool().Draw(t, "usage") {
			n.AddUsage(Usage{
				UsageString:  fmt.Sprintf("%s [flags]", name),
				ParentHeader: "Usage",
				Components:   rapid.SliceOfN(componentGen(2), 0, 3).Draw(t, "components"),
			})
		}
		if rapid.Bool().Draw(t, "warn") {
			n.AddWarning("partial help output")
		}
		if depth > 0 {
			for i, count := 0, rapid.IntRange(0, 2).Draw(t, "children"); i < count; i++ {
				n.AddChild(nodeGen(n, depth-1).Draw(t, "child"))
			}
		}
		return n
	})
}

func TestJSONRoundTrip_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tree := nodeGen(nil, 2).Draw(t, "tree")
		tree.Normalize()

		data, err := json.Marshal(tree)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var decoded CommandNode
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		again, err := json.Marshal(&decoded)
		if err != nil {
			t.Fatalf("re-marshal: %v", err)
		}
		if string(data) != string(again) {
			t.Fatalf("round trip changed the document:\n%s\n%s", data, again)
		}
	})
}

func TestExtractKeywords(t *testing.T) {
	root := sampleTree()
	sub := root.Children.Command["sub1"]
	nested := NewChildNode(sub, "inner", "", "Commands")
	nested.AddFlag(Flag{Short: "h", Long: "help"})
	sub.AddChild(nested)

	k := ExtractKeywords(root)

	assert.Equal(t, "toolA", k.Program)
	assert.Equal(t, []string{"sub1"}, k.Commands)
	assert.Equal(t, []string{"inner"}, k.Subcommands)
	assert.Equal(t, []string{"-h", "-o"}, k.ShortFlags)
	assert.Equal(t, []string{"--help", "--output"}, k.LongFlags)
	assert.Equal(t, 6, k.Summary.UniqueKeywords)
	assert.Equal(t, 3, k.Summary.TotalShortFlags)
	assert.Equal(t, 3, k.Summary.TotalLongFlags)
}
