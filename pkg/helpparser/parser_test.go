package helpparser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/NVIDIA/clint/pkg/model"
)

const cobraHelp = `toolA manages widgets.

Usage:
  toolA [flags]
  toolA [command]

Available Commands:
  completion  Generate the autocompletion script for the specified shell
  help        Help about any command
  sub1        Do the first thing
  build, b    Build a widget
              across two lines

Flags:
  -h, --help            help for toolA
  -o, --output string   Output path (default "out.json")
      --count int       Number of widgets
  -v, --verbose         Verbose output

Examples:
  toolA sub1 --count 3

Use "toolA [command] --help" for more information about a command.
`

func TestParse_FlagsExample(t *testing.T) {
	p := Parse("Flags:\n  -h, --help   Show help\n  -o, --output string   Output path", "", "")

	require.Len(t, p.Flags, 2)

	help := p.Flags[0]
	assert.Equal(t, "h", help.Short)
	assert.Equal(t, "help", help.Long)
	assert.True(t, help.IsBoolean())
	assert.Empty(t, help.DataType)
	assert.Equal(t, "Show help", help.Description)
	assert.Equal(t, "Flags", help.ParentHeader)

	out := p.Flags[1]
	assert.Equal(t, "o", out.Short)
	assert.Equal(t, "output", out.Long)
	assert.Equal(t, "string", out.DataType)
	assert.Equal(t, "Output path", out.Description)
}

func TestParse_CobraHelp(t *testing.T) {
	p := Parse(cobraHelp, "", "")

	assert.Equal(t, "toolA manages widgets.", p.Description)

	require.Len(t, p.Usages, 2)
	assert.Equal(t, "toolA [flags]", p.Usages[0].UsageString)
	assert.Equal(t, "Usage", p.Usages[0].ParentHeader)

	var names []string
	for _, c := range p.Commands {
		names = append(names, c.Name)
		assert.Equal(t, "Available Commands", c.Header)
	}
	assert.Equal(t, []string{"completion", "help", "sub1", "build"}, names)
	assert.Equal(t, "Build a widget across two lines", p.Commands[3].Description)

	require.Len(t, p.Flags, 4)
	assert.Equal(t, "out.json", p.Flags[1].Default)
	assert.Equal(t, "count", p.Flags[2].Long)
	assert.Empty(t, p.Flags[2].Short)
	assert.Equal(t, "int", p.Flags[2].DataType)

	require.Len(t, p.Other, 2)
	assert.Equal(t, "Examples", p.Other[0].ParentHeader)
	assert.Contains(t, p.Other[0].LineContents, "toolA sub1 --count 3")
	assert.Equal(t, "Examples", p.Other[1].ParentHeader)
	assert.True(t, strings.HasPrefix(p.Other[1].LineContents, "Use "))
}

func TestParse_GoFlagPackage(t *testing.T) {
	help := "Usage of mytool:\n  -config string\n    \tpath to config (default \"/etc/x\")\n  -v\tverbose logging\n"
	p := Parse("", help, "")

	require.Len(t, p.Flags, 2)
	assert.Equal(t, "config", p.Flags[0].Long)
	assert.Equal(t, "string", p.Flags[0].DataType)
	assert.Equal(t, `path to config (default "/etc/x")`, p.Flags[0].Description)
	assert.Equal(t, "/etc/x", p.Flags[0].Default)
	assert.Equal(t, "v", p.Flags[1].Short)
	assert.Equal(t, "verbose logging", p.Flags[1].Description)
	assert.Empty(t, p.Usages)
}

func TestParse_InlineUsageAndDescriptionAfter(t *testing.T) {
	help := "Usage:  docker [OPTIONS] COMMAND\n\nA self-sufficient runtime for containers\n\nManagement Commands:\n  builder     Manage builds\n  container*  Manage containers\n"
	p := Parse(help, "", "")

	require.Len(t, p.Usages, 1)
	assert.Equal(t, "docker [OPTIONS] COMMAND", p.Usages[0].UsageString)
	assert.Equal(t, "A self-sufficient runtime for containers", p.Description)
	require.Len(t, p.Commands, 2)
	assert.Equal(t, "container", p.Commands[1].Name)
	assert.Equal(t, "Management Commands", p.Commands[0].Header)
}

func TestParse_WrappedUsage(t *testing.T) {
	help := "usage: git [-v | --version] [-h | --help] [-C <path>]\n           [--exec-path[=<path>]] [--html-path]\n           <command> [<args>]\n"
	p := Parse(help, "", "")

	require.Len(t, p.Usages, 1)
	assert.Equal(t, "git [-v | --version] [-h | --help] [-C <path>] [--exec-path[=<path>]] [--html-path] <command> [<args>]", p.Usages[0].UsageString)
}

func TestParse_DashLinesNeverCommands(t *testing.T) {
	help := "Commands:\n  -x, --extra   not a command\n  run   Run it\n"
	p := Parse(help, "", "")

	require.Len(t, p.Commands, 1)
	assert.Equal(t, "run", p.Commands[0].Name)
	require.Len(t, p.Flags, 1)
	assert.Equal(t, "extra", p.Flags[0].Long)
}

func TestParse_CommandEntriesNeedColumnGap(t *testing.T) {
	help := "Commands:\n  build   Build it\n  Run the help command for more details\n  version\n"
	p := Parse(help, "", "")

	require.Len(t, p.Commands, 2)
	assert.Equal(t, "build", p.Commands[0].Name)
	assert.Equal(t, "Build it", p.Commands[0].Description)
	assert.Equal(t, "version", p.Commands[1].Name)
	assert.Empty(t, p.Commands[1].Description)

	require.Len(t, p.Other, 1)
	assert.Equal(t, "Run the help command for more details", p.Other[0].LineContents)
	assert.Equal(t, "Commands", p.Other[0].ParentHeader)
}

func TestParse_UnclassifiedGoesToOther(t *testing.T) {
	help := "Tool\n\nsome trailing text\n  indented without header\nNotes:\n  remember this\n"
	p := Parse(help, "", "")

	assert.Equal(t, "Tool", p.Description)
	require.Len(t, p.Other, 3)
	assert.Equal(t, model.RootHeader, p.Other[0].ParentHeader)
	assert.Equal(t, model.RootHeader, p.Other[1].ParentHeader)
	assert.Equal(t, "Notes", p.Other[2].ParentHeader)
}

func TestParse_ParentHeaderDefault(t *testing.T) {
	p := Parse("x\n\nloose line\n", "", "Commands")
	require.Len(t, p.Other, 1)
	assert.Equal(t, "Commands", p.Other[0].ParentHeader)
}

func TestParse_StderrFallback(t *testing.T) {
	p := Parse("  \n", "Flags:\n  --debug   Debug\n", "")
	require.Len(t, p.Flags, 1)
	assert.Equal(t, "debug", p.Flags[0].Long)
}

func TestParse_CRLF(t *testing.T) {
	p := Parse("Commands:\r\n  run   Run it\r\n", "", "")
	require.Len(t, p.Commands, 1)
	assert.Equal(t, "Run it", p.Commands[0].Description)
}

func TestParse_NeverPanics(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		stdout := rapid.String().Draw(t, "stdout")
		stderr := rapid.String().Draw(t, "stderr")
		p := Parse(stdout, stderr, "")
		if p == nil {
			t.Fatal("nil PartialNode")
		}
		for _, f := range p.Flags {
			if f.Short == "" && f.Long == "" {
				t.Fatalf("nameless flag %+v", f)
			}
		}
	})
}
