package replica

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode"

	"github.com/hashicorp/go-multierror"
	"github.com/iancoleman/strcase"

	"github.com/NVIDIA/clint/pkg/model"
)

// Flag kinds of github.com/urfave/cli/v3.
const (
	kindBool        = "BoolFlag"
	kindInt         = "IntFlag"
	kindUint        = "UintFlag"
	kindFloat       = "FloatFlag"
	kindDuration    = "DurationFlag"
	kindStringSlice = "StringSliceFlag"
	kindString      = "StringFlag"
)

// program is the template model of a replica.
type program struct {
	Module     string
	Name       string
	Source     string
	GoVersion  string
	CLIVersion string
	Root       *command
	Commands   []*command
}

type command struct {
	Func     string
	Name     string
	Path     string
	Usage    string
	Version  string
	Root     bool
	HideHelp bool
	Flags    []flagSpec
	Children []*command
}

type flagSpec struct {
	Kind     string
	Name     string
	Aliases  []string
	Usage    string
	Required bool
	// Value is a Go literal of the default, empty when there is none.
	Value string
}

// validate reports every node that cannot be turned into a command.
func validate(tree *model.CommandNode) error {
	if tree == nil {
		return fmt.Errorf("command tree is nil")
	}

	var errs *multierror.Error
	tree.Walk(func(n *model.CommandNode) bool {
		if strings.TrimSpace(n.Name) == "" {
			errs = multierror.Append(errs, fmt.Errorf("command at %q has no name", n.CommandPath))
		} else if strings.ContainsFunc(n.Name, unicode.IsSpace) {
			errs = multierror.Append(errs, fmt.Errorf("command name %q contains whitespace", n.Name))
		}
		for key, child := range n.Children.Command {
			if child == nil {
				errs = multierror.Append(errs, fmt.Errorf("subcommand %q of %q is empty", key, n.CommandPath))
			} else if key != child.Name {
				errs = multierror.Append(errs, fmt.Errorf("subcommand %q of %q is stored under %q", child.Name, n.CommandPath, key))
			}
		}
		return true
	})
	return errs.ErrorOrNil()
}

// plan turns a validated tree into the template model.
func (g *Generator) plan(tree *model.CommandNode) *program {
	p := &program{
		Module:     g.modulePath,
		Name:       tree.Name,
		Source:     tree.Name,
		GoVersion:  g.goVersion,
		CLIVersion: g.cliVersion,
	}
	if p.Module == "" {
		p.Module = "example.com/" + strcase.ToKebab(identWords(tree.Name)) + "-replica"
	}
	if tree.Version != "" && tree.Version != model.UnknownVersion {
		p.Source += " (" + tree.Version + ")"
	}

	funcs := make(map[string]int)
	var build func(n *model.CommandNode) *command
	build = func(n *model.CommandNode) *command {
		c := &command{
			Func:     funcName(n.CommandPath, funcs),
			Name:     n.Name,
			Path:     n.CommandPath,
			Usage:    oneLine(n.Description),
			Root:     n == tree,
			HideHelp: g.keepHelpFlags,
			Flags:    g.flags(n),
		}
		if c.Root && tree.Version != model.UnknownVersion {
			c.Version = tree.Version
		}
		p.Commands = append(p.Commands, c)

		for _, name := range n.SortedChildNames() {
			if name == "help" && !g.keepHelpFlags {
				continue
			}
			c.Children = append(c.Children, build(n.Children.Command[name]))
		}
		return c
	}
	p.Root = build(tree)
	return p
}

// flags maps the flags of n to urfave/cli flags. Names already taken in
// the command (including those reserved by the built-in help flag) are
// dropped; a flag left without any name is omitted.
func (g *Generator) flags(n *model.CommandNode) []flagSpec {
	used := make(map[string]bool)
	if !g.keepHelpFlags {
		used["help"], used["h"] = true, true
	}

	var out []flagSpec
	for _, f := range n.SortedFlags() {
		if f.Long == "help" && !g.keepHelpFlags {
			continue
		}
		if f.Long == "verbose" && !g.keepVerboseFlags {
			continue
		}

		var names []string
		for _, candidate := range []string{f.Long, f.Short} {
			if validFlagName(candidate) && !used[candidate] {
				names = append(names, candidate)
				used[candidate] = true
			}
		}
		if len(names) == 0 {
			slog.Debug("dropping flag without a free name",
				slog.String("command_path", n.CommandPath),
				slog.String("flag", f.Display()))
			continue
		}

		spec := flagSpec{
			Kind:     flagKind(f),
			Name:     names[0],
			Aliases:  names[1:],
			Usage:    oneLine(f.Description),
			Required: f.IsRequired(),
		}
		spec.Value = defaultLiteral(spec.Kind, f.Default)
		out = append(out, spec)
	}
	return out
}

// flagKind picks the urfave/cli flag type for a data type. Unknown types
// are strings.
func flagKind(f model.Flag) string {
	if f.IsBoolean() {
		return kindBool
	}
	t := strings.ToLower(f.DataType)
	switch {
	case strings.Contains(t, "slice") || strings.Contains(t, "array") || t == "strings" || t == "ints" ||
		t == "uints" || t == "bools" || t == "durations" || t == "list":
		return kindStringSlice
	case t == "boolean":
		return kindBool
	case t == "int" || t == "int8" || t == "int16" || t == "int32" || t == "int64" ||
		t == "count" || t == "n" || t == "num" || t == "number" || t == "integer":
		return kindInt
	case strings.HasPrefix(t, "uint"):
		return kindUint
	case strings.HasPrefix(t, "float") || t == "double":
		return kindFloat
	case t == "duration":
		return kindDuration
	default:
		return kindString
	}
}

// defaultLiteral renders a default value as a Go literal of the flag's
// type. Defaults that do not parse are dropped.
func defaultLiteral(kind, def string) string {
	def = strings.TrimSpace(def)
	if def == "" {
		return ""
	}
	switch kind {
	case kindString:
		return strconv.Quote(def)
	case kindBool:
		if b, err := strconv.ParseBool(def); err == nil && b {
			return "true"
		}
	case kindInt:
		if n, err := strconv.ParseInt(def, 10, 64); err == nil && n != 0 {
			return strconv.FormatInt(n, 10)
		}
	case kindUint:
		if n, err := strconv.ParseUint(def, 10, 64); err == nil && n != 0 {
			return strconv.FormatUint(n, 10)
		}
	case kindFloat:
		if f, err := strconv.ParseFloat(def, 64); err == nil && f != 0 {
			lit := strconv.FormatFloat(f, 'g', -1, 64)
			if !strings.ContainsAny(lit, ".e") {
				lit += ".0"
			}
			return lit
		}
	}
	return ""
}

func validFlagName(name string) bool {
	return name != "" && !strings.ContainsAny(name, " \t=,")
}

// funcName derives a unique constructor name from a command path.
func funcName(path string, used map[string]int) string {
	base := "new" + strcase.ToCamel(identWords(path)) + "Command"
	used[base]++
	if n := used[base]; n > 1 {
		return fmt.Sprintf("%s%d", base, n)
	}
	return base
}

// identWords replaces everything that cannot appear in an identifier
// with spaces so that strcase treats it as a word boundary.
func identWords(s string) string {
	w := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, s)
	if strings.TrimSpace(w) == "" {
		return "cmd"
	}
	return w
}

// oneLine collapses whitespace so descriptions fit a single Usage string.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
