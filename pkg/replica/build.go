package replica

import (
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/clint/pkg/errors"
	"github.com/NVIDIA/clint/pkg/model"
)

// BuildCommand builds the replica's command tree in memory, exactly as the
// generated program declares it. Commands have no action.
func (g *Generator) BuildCommand(tree *model.CommandNode) (*cli.Command, error) {
	if err := validate(tree); err != nil {
		return nil, errors.Wrap(errors.ErrCodeGeneration, "command tree cannot be replicated", err)
	}
	return buildCommand(g.plan(tree).Root), nil
}

func buildCommand(c *command) *cli.Command {
	cmd := &cli.Command{
		Name:     c.Name,
		Usage:    c.Usage,
		HideHelp: c.HideHelp,
	}
	if c.Root {
		cmd.Version = c.Version
		cmd.HideVersion = true
	}
	for _, f := range c.Flags {
		cmd.Flags = append(cmd.Flags, buildFlag(f))
	}
	for _, child := range c.Children {
		cmd.Commands = append(cmd.Commands, buildCommand(child))
	}
	return cmd
}

func buildFlag(f flagSpec) cli.Flag {
	switch f.Kind {
	case kindBool:
		return &cli.BoolFlag{Name: f.Name, Aliases: f.Aliases, Usage: f.Usage, Required: f.Required, Value: f.Value == "true"}
	case kindInt:
		return &cli.IntFlag{Name: f.Name, Aliases: f.Aliases, Usage: f.Usage, Required: f.Required}
	case kindUint:
		return &cli.UintFlag{Name: f.Name, Aliases: f.Aliases, Usage: f.Usage, Required: f.Required}
	case kindFloat:
		return &cli.FloatFlag{Name: f.Name, Aliases: f.Aliases, Usage: f.Usage, Required: f.Required}
	case kindDuration:
		return &cli.DurationFlag{Name: f.Name, Aliases: f.Aliases, Usage: f.Usage, Required: f.Required}
	case kindStringSlice:
		return &cli.StringSliceFlag{Name: f.Name, Aliases: f.Aliases, Usage: f.Usage, Required: f.Required}
	default:
		value, _ := strconv.Unquote(f.Value)
		return &cli.StringFlag{Name: f.Name, Aliases: f.Aliases, Usage: f.Usage, Required: f.Required, Value: value}
	}
}
