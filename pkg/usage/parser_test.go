package usage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/NVIDIA/clint/pkg/model"
)

func TestParseLine_OptionalAlternativesAndRepeatableGroup(t *testing.T) {
	comps := ParseLine("mytool [--verbose|-v] <file> [file...]", "mytool")
	require.Len(t, comps, 3)

	alt := comps[0]
	assert.Equal(t, model.ComponentAlternativeGroup, alt.ComponentType)
	assert.False(t, alt.Required)
	require.Len(t, alt.Alternatives, 2)
	assert.Equal(t, model.ComponentFlag, alt.Alternatives[0].ComponentType)
	assert.Equal(t, "verbose", alt.Alternatives[0].Name)
	assert.Equal(t, model.ComponentFlag, alt.Alternatives[1].ComponentType)
	assert.Equal(t, "v", alt.Alternatives[1].Name)
	assert.Empty(t, alt.Children)

	file := comps[1]
	assert.Equal(t, model.ComponentArgument, file.ComponentType)
	assert.Equal(t, "file", file.Name)
	assert.True(t, file.Required)

	more := comps[2]
	assert.Equal(t, model.ComponentGroup, more.ComponentType)
	assert.False(t, more.Required)
	assert.True(t, more.Repeatable)
	require.Len(t, more.Children, 1)
	assert.Equal(t, model.ComponentArgument, more.Children[0].ComponentType)
	assert.Equal(t, "file", more.Children[0].Name)
	assert.Empty(t, more.Alternatives)
}

func TestParse_WithoutStrippingKeepsCommandKeyword(t *testing.T) {
	comps := Parse("mytool [--verbose|-v] <file> [file...]")
	require.Len(t, comps, 4)
	assert.Equal(t, model.ComponentKeyword, comps[0].ComponentType)
	assert.Equal(t, "mytool", comps[0].Name)
}

func TestParse_Tokens(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantType model.ComponentType
		wantName string
		keyValue bool
		children int
	}{
		{"long flag", "--force", model.ComponentFlag, "force", false, 0},
		{"short flag", "-f", model.ComponentFlag, "f", false, 0},
		{"flag with equals value", "--output=<path>", model.ComponentFlag, "output", true, 1},
		{"flag with upper value", "--level=LEVEL", model.ComponentFlag, "level", true, 1},
		{"flag with adjacent value", "--config <file>", model.ComponentFlag, "config", true, 1},
		{"angle placeholder", "<name>", model.ComponentArgument, "name", false, 0},
		{"angle placeholder with spaces", "<source file>", model.ComponentArgument, "source file", false, 0},
		{"brace placeholder", "{start|stop}", model.ComponentArgument, "start|stop", false, 0},
		{"upper placeholder", "SRC_DIR", model.ComponentArgument, "SRC_DIR", false, 0},
		{"key value pair", "<key>=<value>", model.ComponentKeyValuePair, "<key>=<value>", true, 2},
		{"keyword", "commit", model.ComponentKeyword, "commit", false, 0},
		{"lone dash", "-", model.ComponentKeyword, "-", false, 0},
		{"double dash", "--", model.ComponentKeyword, "--", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comps := Parse(tt.input)
			require.Len(t, comps, 1)
			c := comps[0]
			assert.Equal(t, tt.wantType, c.ComponentType)
			assert.Equal(t, tt.wantName, c.Name)
			assert.Equal(t, tt.keyValue, c.KeyValue)
			assert.Len(t, c.Children, tt.children)
			assert.True(t, c.Required)
		})
	}
}

func TestParse_RequiredGroupAndRepeatable(t *testing.T) {
	comps := Parse("(--all | <pod>)... [-n <ns>]")
	require.Len(t, comps, 2)

	assert.Equal(t, model.ComponentAlternativeGroup, comps[0].ComponentType)
	assert.True(t, comps[0].Required)
	assert.True(t, comps[0].Repeatable)
	assert.Len(t, comps[0].Alternatives, 2)

	assert.Equal(t, model.ComponentGroup, comps[1].ComponentType)
	assert.False(t, comps[1].Required)
	require.Len(t, comps[1].Children, 1)
	assert.True(t, comps[1].Children[0].KeyValue)
	assert.Equal(t, "ns", comps[1].Children[0].Children[0].Name)
}

func TestParse_NestedGroups(t *testing.T) {
	comps := Parse("[--opt [<value>]] command")
	require.Len(t, comps, 2)

	outer := comps[0]
	assert.Equal(t, model.ComponentGroup, outer.ComponentType)
	require.Len(t, outer.Children, 2)
	flag := outer.Children[0]
	assert.Equal(t, model.ComponentFlag, flag.ComponentType)
	assert.False(t, flag.KeyValue, "a bracketed group is not an adjacent value")
	inner := outer.Children[1]
	assert.Equal(t, model.ComponentGroup, inner.ComponentType)
	assert.Equal(t, "value", inner.Children[0].Name)

	assert.Equal(t, model.ComponentKeyword, comps[1].ComponentType)
}

func TestParse_TopLevelAlternationBindsTightly(t *testing.T) {
	comps := Parse("start|stop <name>")
	require.Len(t, comps, 2)
	assert.Equal(t, model.ComponentAlternativeGroup, comps[0].ComponentType)
	assert.Equal(t, "start", comps[0].Alternatives[0].Name)
	assert.Equal(t, "stop", comps[0].Alternatives[1].Name)
}

func TestParse_UnmatchedDelimiterFallsBack(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantLen  int
		fallback string
	}{
		{"unclosed bracket", "run [--flag <x>", 2, "[--flag <x>"},
		{"stray closer", "run ] tail", 2, "] tail"},
		{"mismatched closer", "run [a)", 2, "[a)"},
		{"unterminated placeholder", "cp <src", 2, "<src"},
		{"only garbage", "((((", 1, "(((("},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comps := Parse(tt.input)
			require.Len(t, comps, tt.wantLen)
			last := comps[len(comps)-1]
			assert.Equal(t, model.ComponentKeyword, last.ComponentType)
			assert.Equal(t, tt.fallback, last.Name)
		})
	}
}

func TestParse_DeepNestingFallsBack(t *testing.T) {
	t.Run("unclosed run", func(t *testing.T) {
		input := strings.Repeat("[", 200_000)
		comps := Parse(input)
		require.Len(t, comps, 1)
		assert.Equal(t, model.ComponentKeyword, comps[0].ComponentType)
		assert.Equal(t, input, comps[0].Name)
	})

	t.Run("balanced beyond limit", func(t *testing.T) {
		input := "run " + strings.Repeat("[", maxNesting+1) + "x" + strings.Repeat("]", maxNesting+1)
		comps := Parse(input)
		require.Len(t, comps, 2)
		assert.Equal(t, "run", comps[0].Name)
		assert.Equal(t, model.ComponentKeyword, comps[1].ComponentType)
		assert.Equal(t, input[len("run "):], comps[1].Name)
	})

	t.Run("balanced within limit", func(t *testing.T) {
		comps := Parse(strings.Repeat("[", 8) + "x" + strings.Repeat("]", 8))
		require.Len(t, comps, 1)
		depth := 0
		for c := comps[0]; c.ComponentType == model.ComponentGroup; c = c.Children[0] {
			require.Len(t, c.Children, 1)
			depth++
		}
		assert.Equal(t, 8, depth)
	})
}

func TestParse_EmptyInput(t *testing.T) {
	comps := Parse("   ")
	assert.NotNil(t, comps)
	assert.Empty(t, comps)
}

func TestStripCommand(t *testing.T) {
	tests := []struct {
		line string
		path string
		want string
	}{
		{"Usage: git commit [options]", "git commit", "[options]"},
		{"usage: /usr/bin/tool <x>", "tool", "<x>"},
		{"tool sub --flag", "tool sub", "--flag"},
		{"other words <x>", "tool", "other words <x>"},
		{"kubectl get [(-o|--output=)json]", "kubectl get", "[(-o|--output=)json]"},
		{"", "tool", ""},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, StripCommand(tt.line, tt.path))
		})
	}
}

func checkInvariants(t *rapid.T, comps []model.UsageComponent) {
	for _, c := range comps {
		switch c.ComponentType {
		case model.ComponentAlternativeGroup:
			if len(c.Alternatives) < 2 {
				t.Fatalf("alternative group with %d alternatives", len(c.Alternatives))
			}
			if len(c.Children) != 0 {
				t.Fatalf("alternative group with children")
			}
		case model.ComponentGroup:
			if len(c.Children) == 0 || len(c.Alternatives) != 0 {
				t.Fatalf("malformed group %+v", c)
			}
		default:
			if len(c.Alternatives) != 0 {
				t.Fatalf("%s with alternatives", c.ComponentType)
			}
		}
		if c.Alternatives == nil || c.Children == nil {
			t.Fatalf("nil slices in %+v", c)
		}
		checkInvariants(t, c.Alternatives)
		checkInvariants(t, c.Children)
	}
}

func TestParse_Totality(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.String().Draw(t, "usage")
		comps := Parse(s)
		if comps == nil {
			t.Fatalf("Parse(%q) returned nil", s)
		}
		checkInvariants(t, comps)
	})
}

func TestParse_TotalityOnGrammarAlphabet(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.StringMatching(`[\[\]()<>{}|. a-zA-Z=-]{0,40}`).Draw(t, "usage")
		comps := ParseLine(s, "tool")
		if comps == nil {
			t.Fatalf("ParseLine(%q) returned nil", s)
		}
		checkInvariants(t, comps)
	})
}
