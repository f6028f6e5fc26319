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

// Package compare reports the structural differences between two command
// trees of the same program, typically two versions of it.
//
// Commands are matched by name below the root, so renaming the program
// itself is not a change. Flags are matched by their (long, short) names.
package compare

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/NVIDIA/clint/pkg/header"
	"github.com/NVIDIA/clint/pkg/model"
)

// Kind is the type of a Change.
type Kind string

const (
	CommandAdded           Kind = "command_added"
	CommandRemoved         Kind = "command_removed"
	DescriptionChanged     Kind = "description_changed"
	FlagAdded              Kind = "flag_added"
	FlagRemoved            Kind = "flag_removed"
	FlagDescriptionChanged Kind = "flag_description_changed"
	FlagDataTypeChanged    Kind = "flag_data_type_changed"
	HelpChanged            Kind = "help_changed"
)

// ReportKind is the header kind of a Report.
const ReportKind = "Comparison"

// Change is one difference. Command is the path of the command the change
// applies to; for added and removed commands it is the parent's path and
// Name is the command.
type Change struct {
	Kind    Kind   `json:"kind" yaml:"kind"`
	Command string `json:"command" yaml:"command"`
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Before  string `json:"before,omitempty" yaml:"before,omitempty"`
	After   string `json:"after,omitempty" yaml:"after,omitempty"`
	Diff    string `json:"diff,omitempty" yaml:"diff,omitempty"`
}

// Summary counts changes by direction.
type Summary struct {
	Added    int `json:"added" yaml:"added"`
	Removed  int `json:"removed" yaml:"removed"`
	Modified int `json:"modified" yaml:"modified"`
}

// Report is the result of Compare.
type Report struct {
	header.Header `json:",inline" yaml:",inline"`

	From    string   `json:"from" yaml:"from"`
	To      string   `json:"to" yaml:"to"`
	Changes []Change `json:"changes" yaml:"changes"`
	Summary Summary  `json:"summary" yaml:"summary"`
}

// HasChanges reports whether the trees differ.
func (r *Report) HasChanges() bool {
	return len(r.Changes) > 0
}

type comparer struct {
	helpDiff bool
	dmp      *diffmatchpatch.DiffMatchPatch
	changes  []Change
}

// Option is a functional option for Compare.
type Option func(*comparer)

// WithHelpDiff adds a line diff of the captured help page of every
// command present in both trees.
func WithHelpDiff(enabled bool) Option {
	return func(c *comparer) {
		c.helpDiff = enabled
	}
}

// Compare reports how to differs from from. Changes are ordered by command
// path, then kind, then name.
func Compare(from, to *model.CommandNode, opts ...Option) *Report {
	c := &comparer{dmp: diffmatchpatch.New()}
	for _, opt := range opts {
		opt(c)
	}

	r := &Report{
		Header:  *header.New(header.WithKind(ReportKind)),
		From:    label(from),
		To:      label(to),
		Changes: []Change{},
	}
	if from == nil || to == nil {
		return r
	}

	c.node(from, to, to.Name)

	sort.SliceStable(c.changes, func(i, j int) bool {
		a, b := c.changes[i], c.changes[j]
		if a.Command != b.Command {
			return a.Command < b.Command
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.Name < b.Name
	})
	r.Changes = append(r.Changes, c.changes...)

	for _, ch := range r.Changes {
		switch ch.Kind {
		case CommandAdded, FlagAdded:
			r.Summary.Added++
		case CommandRemoved, FlagRemoved:
			r.Summary.Removed++
		default:
			r.Summary.Modified++
		}
	}
	return r
}

func label(n *model.CommandNode) string {
	switch {
	case n == nil:
		return ""
	case n.Version != "" && n.Version != model.UnknownVersion:
		return n.Version
	default:
		return n.Name
	}
}

func (c *comparer) add(ch Change) {
	c.changes = append(c.changes, ch)
}

func (c *comparer) node(from, to *model.CommandNode, path string) {
	if from.Description != to.Description {
		c.add(Change{
			Kind:    DescriptionChanged,
			Command: path,
			Before:  from.Description,
			After:   to.Description,
			Diff:    c.wordDiff(from.Description, to.Description),
		})
	}

	c.flags(from, to, path)

	if c.helpDiff {
		c.help(from, to, path)
	}

	for name, child := range to.Children.Command {
		if _, ok := from.Children.Command[name]; !ok {
			c.add(Change{Kind: CommandAdded, Command: path, Name: name, After: child.Description})
		}
	}
	for name, child := range from.Children.Command {
		next, ok := to.Children.Command[name]
		if !ok {
			c.add(Change{Kind: CommandRemoved, Command: path, Name: name, Before: child.Description})
			continue
		}
		c.node(child, next, model.JoinPath(path, name))
	}
}

func (c *comparer) flags(from, to *model.CommandNode, path string) {
	before := make(map[model.FlagKey]model.Flag, len(from.Children.Flag))
	for _, f := range from.Children.Flag {
		before[f.Key()] = f
	}
	after := make(map[model.FlagKey]model.Flag, len(to.Children.Flag))
	for _, f := range to.Children.Flag {
		after[f.Key()] = f
	}

	for key, f := range after {
		if _, ok := before[key]; !ok {
			c.add(Change{Kind: FlagAdded, Command: path, Name: f.Display(), After: f.Description})
		}
	}
	for key, old := range before {
		cur, ok := after[key]
		if !ok {
			c.add(Change{Kind: FlagRemoved, Command: path, Name: old.Display(), Before: old.Description})
			continue
		}
		if old.Description != cur.Description {
			c.add(Change{
				Kind:    FlagDescriptionChanged,
				Command: path,
				Name:    cur.Display(),
				Before:  old.Description,
				After:   cur.Description,
				Diff:    c.wordDiff(old.Description, cur.Description),
			})
		}
		if old.DataType != cur.DataType {
			c.add(Change{
				Kind:    FlagDataTypeChanged,
				Command: path,
				Name:    cur.Display(),
				Before:  typeName(old.DataType),
				After:   typeName(cur.DataType),
			})
		}
	}
}

func typeName(t string) string {
	if t == "" {
		return "none"
	}
	return t
}

func (c *comparer) help(from, to *model.CommandNode, path string) {
	a, b := helpText(from), helpText(to)
	if a == b {
		return
	}
	c.add(Change{Kind: HelpChanged, Command: path, Diff: c.lineDiff(a, b)})
}

func helpText(n *model.CommandNode) string {
	for _, key := range []string{model.OutputHelpPage, model.OutputHelpSubcommand, model.OutputHelpShort} {
		if out, ok := n.Outputs[key]; ok && out != nil {
			if strings.TrimSpace(out.Stdout) != "" {
				return out.Stdout
			}
			return out.Stderr
		}
	}
	return ""
}

// wordDiff renders an inline diff as "[-removed-]{+added+}".
func (c *comparer) wordDiff(a, b string) string {
	diffs := c.dmp.DiffCleanupSemantic(c.dmp.DiffMain(a, b, false))
	var sb strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			sb.WriteString("[-" + d.Text + "-]")
		case diffmatchpatch.DiffInsert:
			sb.WriteString("{+" + d.Text + "+}")
		default:
			sb.WriteString(d.Text)
		}
	}
	return sb.String()
}

// lineDiff renders changed lines prefixed with "-" and "+".
func (c *comparer) lineDiff(a, b string) string {
	ca, cb, lines := c.dmp.DiffLinesToChars(a, b)
	diffs := c.dmp.DiffCharsToLines(c.dmp.DiffMain(ca, cb, false), lines)

	var sb strings.Builder
	for _, d := range diffs {
		var prefix string
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		default:
			continue
		}
		for _, line := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			sb.WriteString(prefix + line + "\n")
		}
	}
	return sb.String()
}

// Write prints the report for terminals.
func (r *Report) Write(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Comparing %s -> %s\n", r.From, r.To); err != nil {
		return err
	}
	if !r.HasChanges() {
		_, err := fmt.Fprintln(w, "No changes.")
		return err
	}
	for _, ch := range r.Changes {
		if _, err := fmt.Fprintln(w, ch.String()); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\n%d added, %d removed, %d modified\n",
		r.Summary.Added, r.Summary.Removed, r.Summary.Modified)
	return err
}

// String renders the change as one or more lines.
func (ch Change) String() string {
	switch ch.Kind {
	case CommandAdded:
		return fmt.Sprintf("+ Added command: %s (to %s)", ch.Name, ch.Command)
	case CommandRemoved:
		return fmt.Sprintf("- Removed command: %s (from %s)", ch.Name, ch.Command)
	case FlagAdded:
		return fmt.Sprintf("+ Added flag: %s (command: %s)", ch.Name, ch.Command)
	case FlagRemoved:
		return fmt.Sprintf("- Removed flag: %s (command: %s)", ch.Name, ch.Command)
	case FlagDescriptionChanged:
		return fmt.Sprintf("~ Modified flag: %s (command: %s)\n    Description: %s", ch.Name, ch.Command, ch.Diff)
	case FlagDataTypeChanged:
		return fmt.Sprintf("~ Modified flag: %s (command: %s)\n    Data type: %s -> %s", ch.Name, ch.Command, ch.Before, ch.After)
	case DescriptionChanged:
		return fmt.Sprintf("~ Modified command: %s\n    Description: %s", ch.Command, ch.Diff)
	case HelpChanged:
		return fmt.Sprintf("~ Help page changed: %s\n%s", ch.Command, indent(ch.Diff, "    "))
	default:
		return fmt.Sprintf("? %s %s %s", ch.Kind, ch.Command, ch.Name)
	}
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimSuffix(s, "\n"), "\n")
	for i := range lines {
		lines[i] = prefix + lines[i]
	}
	return strings.Join(lines, "\n")
}
