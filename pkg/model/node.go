package model

import (
	"sort"
	"strings"

	"k8s.io/utils/ptr"
)

// BooleanType is the data type reported for flags without a value placeholder.
const BooleanType = "bool"

// NewChildren returns buckets that encode as empty collections rather than null.
func NewChildren() Children {
	return Children{
		Command: make(map[string]*CommandNode),
		Flag:    []Flag{},
		Usage:   []Usage{},
		Other:   []OtherLine{},
	}
}

// NewRootNode creates the depth-0 node for a program.
func NewRootNode(name string) *CommandNode {
	return &CommandNode{
		Name:        name,
		CommandPath: name,
		Children:    NewChildren(),
	}
}

// NewChildNode creates a node one level below parent. It does not attach
// the node to parent; use AddChild for that.
func NewChildNode(parent *CommandNode, name, description, header string) *CommandNode {
	return &CommandNode{
		Name:         name,
		Description:  description,
		Parent:       parent.Name,
		ParentHeader: header,
		Depth:        parent.Depth + 1,
		CommandPath:  JoinPath(parent.CommandPath, name),
		Children:     NewChildren(),
	}
}

// JoinPath appends name to a space-joined command path.
func JoinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + " " + name
}

// SplitPath returns the command names of a path, root first.
func SplitPath(path string) []string {
	return strings.Fields(path)
}

// Ancestors returns the names on the path from the root down to the node's parent.
func (n *CommandNode) Ancestors() []string {
	parts := SplitPath(n.CommandPath)
	if len(parts) == 0 {
		return nil
	}
	return parts[:len(parts)-1]
}

// AddChild attaches child under its name. It reports false when a sibling
// with the same name already exists, leaving the existing entry in place.
func (n *CommandNode) AddChild(child *CommandNode) bool {
	if n.Children.Command == nil {
		n.Children.Command = make(map[string]*CommandNode)
	}
	if _, exists := n.Children.Command[child.Name]; exists {
		return false
	}
	n.Children.Command[child.Name] = child
	return true
}

// AddFlag appends f unless a flag with the same identity exists; the
// first occurrence wins and later duplicates are dropped. It reports
// whether f was added.
func (n *CommandNode) AddFlag(f Flag) bool {
	if f.Short == "" && f.Long == "" {
		return false
	}
	key := f.Key()
	for _, existing := range n.Children.Flag {
		if existing.Key() == key {
			return false
		}
	}
	n.Children.Flag = append(n.Children.Flag, f)
	return true
}

// AddUsage appends u unless an identical usage string is already present.
func (n *CommandNode) AddUsage(u Usage) bool {
	for _, existing := range n.Children.Usage {
		if existing.UsageString == u.UsageString {
			return false
		}
	}
	if u.Components == nil {
		u.Components = []UsageComponent{}
	}
	n.Children.Usage = append(n.Children.Usage, u)
	return true
}

// AddOther appends an unclassified line.
func (n *CommandNode) AddOther(line OtherLine) {
	n.Children.Other = append(n.Children.Other, line)
}

// AddWarning records a non-fatal problem found while exploring the node.
func (n *CommandNode) AddWarning(msg string) {
	n.Warnings = append(n.Warnings, msg)
}

// SetOutput stores the captured output of one invocation under key.
func (n *CommandNode) SetOutput(key string, out *Output) {
	if n.Outputs == nil {
		n.Outputs = make(map[string]*Output)
	}
	n.Outputs[key] = out
}

// HasStructure reports whether the node carries anything a help page
// would declare: flags, usage lines or subcommands.
func (n *CommandNode) HasStructure() bool {
	return len(n.Children.Flag) > 0 || len(n.Children.Usage) > 0 || len(n.Children.Command) > 0
}

// SortedChildNames returns the subcommand names in lexical order.
func (n *CommandNode) SortedChildNames() []string {
	names := make([]string, 0, len(n.Children.Command))
	for name := range n.Children.Command {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SortedFlags returns a copy of the flags ordered by display name.
func (n *CommandNode) SortedFlags() []Flag {
	flags := make([]Flag, len(n.Children.Flag))
	copy(flags, n.Children.Flag)
	sort.SliceStable(flags, func(i, j int) bool {
		a, b := flags[i].SortKey(), flags[j].SortKey()
		if a != b {
			return a < b
		}
		return flags[i].Short < flags[j].Short
	})
	return flags
}

// Walk visits the node and its descendants depth-first, children in
// lexical order. Returning false from fn skips the node's subtree.
func (n *CommandNode) Walk(fn func(*CommandNode) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, name := range n.SortedChildNames() {
		n.Children.Command[name].Walk(fn)
	}
}

// Find returns the node at the given command path, or nil.
func (n *CommandNode) Find(path string) *CommandNode {
	parts := SplitPath(path)
	if len(parts) == 0 || parts[0] != n.Name {
		return nil
	}
	cur := n
	for _, name := range parts[1:] {
		next, ok := cur.Children.Command[name]
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}

// Count returns the number of nodes in the tree rooted at n.
func (n *CommandNode) Count() int {
	total := 0
	n.Walk(func(*CommandNode) bool {
		total++
		return true
	})
	return total
}

// Normalize replaces nil buckets with empty ones throughout the tree so
// that encoding and decoding produce equal values.
func (n *CommandNode) Normalize() {
	n.Walk(func(c *CommandNode) bool {
		if c.Children.Command == nil {
			c.Children.Command = make(map[string]*CommandNode)
		}
		if c.Children.Flag == nil {
			c.Children.Flag = []Flag{}
		}
		if c.Children.Usage == nil {
			c.Children.Usage = []Usage{}
		}
		if c.Children.Other == nil {
			c.Children.Other = []OtherLine{}
		}
		for i := range c.Children.Usage {
			c.Children.Usage[i].Components = NormalizeComponents(c.Children.Usage[i].Components)
		}
		return true
	})
}

// NormalizeComponents returns comps with nil Alternatives and Children
// replaced by empty slices, recursively.
func NormalizeComponents(comps []UsageComponent) []UsageComponent {
	if comps == nil {
		return []UsageComponent{}
	}
	for i := range comps {
		comps[i].Alternatives = NormalizeComponents(comps[i].Alternatives)
		comps[i].Children = NormalizeComponents(comps[i].Children)
	}
	return comps
}

// Key returns the flag identity.
func (f Flag) Key() FlagKey {
	return FlagKey{Long: f.Long, Short: f.Short}
}

// Name returns the long name when present, else the short one.
func (f Flag) Name() string {
	if f.Long != "" {
		return f.Long
	}
	return f.Short
}

// SortKey orders flags by their preferred name.
func (f Flag) SortKey() string {
	return strings.ToLower(f.Name())
}

// Display renders the flag the way a help page would, e.g. "-o, --output".
func (f Flag) Display() string {
	switch {
	case f.Short != "" && f.Long != "":
		return "-" + f.Short + ", --" + f.Long
	case f.Long != "":
		return "--" + f.Long
	default:
		return "-" + f.Short
	}
}

// IsBoolean reports whether the flag takes no value.
func (f Flag) IsBoolean() bool {
	return f.DataType == "" || f.DataType == BooleanType
}

// IsRequired reports whether the flag was inferred to be mandatory.
func (f Flag) IsRequired() bool {
	return ptr.Deref(f.Required, false)
}
