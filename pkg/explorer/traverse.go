package explorer

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/NVIDIA/clint/pkg/helpparser"
	"github.com/NVIDIA/clint/pkg/invoker"
	"github.com/NVIDIA/clint/pkg/model"
	"github.com/NVIDIA/clint/pkg/usage"
)

// attempt is one way of asking the target for a help page.
type attempt struct {
	key  string
	args []string
}

// attempts lists the help invocations for node in the order they are tried.
func (t *traversal) attempts(node *model.CommandNode) []attempt {
	path := model.SplitPath(node.CommandPath)[1:]
	base := slices.Concat(t.argv, path)

	if node.Depth == 0 {
		return []attempt{
			{model.OutputHelpPage, slices.Concat(base, []string{"--help"})},
			{model.OutputHelpShort, slices.Concat(base, []string{"-h"})},
			{model.OutputHelpSubcommand, slices.Concat(base, []string{"help"})},
		}
	}

	parent := slices.Concat(t.argv, path[:len(path)-1])
	return []attempt{
		{model.OutputHelpPage, slices.Concat(base, []string{"--help"})},
		{model.OutputHelpSubcommand, slices.Concat(parent, []string{"help", node.Name})},
		{model.OutputHelpShort, slices.Concat(base, []string{"-h"})},
	}
}

// explore fills node from its help page and schedules its subcommands.
// parentHelp is the help text of the parent, used to detect programs that
// print the parent's page for any unknown subcommand.
func (t *traversal) explore(node *model.CommandNode, parentHelp string) error {
	slog.Debug("exploring", slog.String("command_path", node.CommandPath), slog.Int("depth", node.Depth))

	var (
		page     *helpparser.PartialNode
		fallback *helpparser.PartialNode
		help     string
		starved  bool
	)

	for _, a := range t.attempts(node) {
		if !t.take() {
			node.AddWarning(fmt.Sprintf("%s: invocation budget of %d exhausted", a.key, t.e.budget))
			prunedTotal.WithLabelValues("budget").Inc()
			starved = true
			break
		}

		res, err := t.invoke(a.args)
		if err != nil {
			if t.ctx.Err() != nil {
				return t.ctx.Err()
			}
			var ie *invoker.InvocationError
			if stderrors.As(err, &ie) && ie.Partial != nil {
				node.SetOutput(a.key, output(ie.Partial))
			}
			node.AddWarning(fmt.Sprintf("%s: %v", a.key, err))
			continue
		}
		node.SetOutput(a.key, output(res))
		if res.Truncated {
			node.AddWarning(fmt.Sprintf("%s: output truncated", a.key))
		}

		text := helpparser.HelpText(res.Stdout, res.Stderr)
		if strings.TrimSpace(text) == "" {
			continue
		}
		if parentHelp != "" && isEcho(parentHelp, text) {
			node.AddWarning(fmt.Sprintf("%s: output repeats the parent help page", a.key))
			continue
		}

		p := helpparser.Parse(res.Stdout, res.Stderr, "")
		if p.HasStructure() {
			page, help = p, text
			break
		}
		if fallback == nil {
			fallback, help = p, text
		}
	}

	if page == nil {
		page = fallback
	}
	if page == nil {
		if !starved {
			node.AddWarning("no usable help output")
		}
		nodesExplored.WithLabelValues("empty").Inc()
		return nil
	}

	apply(node, page)
	inferRequired(node)
	nodesExplored.WithLabelValues("parsed").Inc()

	t.schedule(node, page.Commands, help)
	return nil
}

// schedule attaches the listed subcommands to node and explores each one
// that passes the exclusion, cycle and depth guards.
func (t *traversal) schedule(node *model.CommandNode, commands []helpparser.CommandEntry, help string) {
	lineage := model.SplitPath(node.CommandPath)

	for _, c := range commands {
		if excluded(c.Name, t.e.exclude) {
			prunedTotal.WithLabelValues("excluded").Inc()
			continue
		}
		child := model.NewChildNode(node, c.Name, c.Description, c.Header)
		if !t.claim(child.CommandPath) || !node.AddChild(child) {
			node.AddWarning(fmt.Sprintf("subcommand %q listed more than once", c.Name))
			prunedTotal.WithLabelValues("cycle").Inc()
			continue
		}

		// a name already on the path is kept as a terminal reference
		if slices.Contains(lineage, c.Name) {
			child.AddWarning(fmt.Sprintf("not explored: %q repeats a command on its own path", c.Name))
			prunedTotal.WithLabelValues("cycle").Inc()
			continue
		}

		if child.Depth > t.e.maxDepth {
			child.AddWarning(fmt.Sprintf("not explored: depth %d exceeds limit of %d", child.Depth, t.e.maxDepth))
			prunedTotal.WithLabelValues("depth").Inc()
			continue
		}

		t.g.Go(func() error {
			return t.explore(child, help)
		})
	}
}

// apply merges a parsed help page into node.
func apply(node *model.CommandNode, p *helpparser.PartialNode) {
	if node.Description == "" {
		node.Description = p.Description
	}
	for _, u := range p.Usages {
		u.Components = usage.ParseLine(u.UsageString, node.CommandPath)
		node.AddUsage(u)
	}
	for _, f := range p.Flags {
		node.AddFlag(f)
	}
	for _, o := range p.Other {
		node.AddOther(o)
	}
}

// probeVersion asks the program for its version. The first line of the
// first successful non-help answer is used.
func (t *traversal) probeVersion(root *model.CommandNode) error {
	root.Version = model.UnknownVersion

	for _, arg := range []string{"--version", "version"} {
		if !t.take() {
			root.AddWarning(fmt.Sprintf("version probe: invocation budget of %d exhausted", t.e.budget))
			prunedTotal.WithLabelValues("budget").Inc()
			return nil
		}
		res, err := t.invoke(slices.Concat(t.argv, []string{arg}))
		if err != nil {
			if t.ctx.Err() != nil {
				return t.ctx.Err()
			}
			continue
		}
		if res.ExitCode != 0 {
			continue
		}
		if helpparser.Parse(res.Stdout, res.Stderr, "").HasStructure() {
			continue
		}
		if line := firstLine(helpparser.HelpText(res.Stdout, res.Stderr)); line != "" {
			root.Version = line
			root.SetOutput(model.OutputVersion, output(res))
			return nil
		}
	}
	return nil
}

func output(r *invoker.Result) *model.Output {
	return &model.Output{
		Stdout: r.Stdout,
		Stderr: r.Stderr,
		Status: r.ExitCode,
	}
}

func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
