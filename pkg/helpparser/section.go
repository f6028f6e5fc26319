package helpparser

import (
	"strings"

	"golang.org/x/text/cases"
)

// SectionKind classifies a help page section by its header.
type SectionKind int

const (
	SectionNone SectionKind = iota
	SectionUsage
	SectionFlags
	SectionCommands
	SectionExamples
	SectionOther
)

var sectionNames = map[SectionKind]string{
	SectionNone:     "none",
	SectionUsage:    "usage",
	SectionFlags:    "flags",
	SectionCommands: "commands",
	SectionExamples: "examples",
	SectionOther:    "other",
}

func (k SectionKind) String() string {
	if s, ok := sectionNames[k]; ok {
		return s
	}
	return "unknown"
}

var fold = cases.Fold()

// exact header names, already case-folded
var knownHeaders = map[string]SectionKind{
	"usage":              SectionUsage,
	"synopsis":           SectionUsage,
	"flags":              SectionFlags,
	"options":            SectionFlags,
	"global flags":       SectionFlags,
	"global options":     SectionFlags,
	"optional arguments": SectionFlags,
	"commands":           SectionCommands,
	"available commands": SectionCommands,
	"subcommands":        SectionCommands,
	"examples":           SectionExamples,
	"example":            SectionExamples,
}

// Header is a recognized section header line.
type Header struct {
	Kind SectionKind
	// Name is the header text without its trailing colon.
	Name string
	// Inline is text following the colon on the same line,
	// e.g. the usage string in "Usage: tool [flags]".
	Inline string
}

// ClassifyHeader reports whether line opens a section. Only lines that
// start at column zero qualify. Known names match case-insensitively with
// or without a colon; any other short line ending in a colon opens a
// SectionOther section.
func ClassifyHeader(line string) (Header, bool) {
	if line == "" || isIndent(line[0]) {
		return Header{}, false
	}
	t := strings.TrimSpace(line)
	if t == "" || strings.HasPrefix(t, "-") {
		return Header{}, false
	}

	name, inline, hasColon := strings.Cut(t, ":")
	name = strings.TrimSpace(name)
	inline = strings.TrimSpace(inline)

	if !hasColon {
		if kind, ok := knownHeaders[fold.String(t)]; ok {
			return Header{Kind: kind, Name: t}, true
		}
		return Header{}, false
	}
	if name == "" {
		return Header{}, false
	}

	folded := fold.String(name)
	if kind, ok := knownHeaders[folded]; ok {
		return Header{Kind: kind, Name: name, Inline: inline}, true
	}
	if strings.HasPrefix(folded, "usage") && inline == "" {
		// "Usage of tool:" as printed by Go's flag package
		return Header{Kind: SectionUsage, Name: name}, true
	}
	if inline != "" {
		return Header{}, false
	}

	switch {
	case strings.Contains(folded, "example"):
		return Header{Kind: SectionExamples, Name: name}, true
	case strings.Contains(folded, "flag") || strings.Contains(folded, "option"):
		return Header{Kind: SectionFlags, Name: name}, true
	case strings.Contains(folded, "command"):
		return Header{Kind: SectionCommands, Name: name}, true
	case len(strings.Fields(name)) <= 6:
		return Header{Kind: SectionOther, Name: name}, true
	}
	return Header{}, false
}

func isIndent(c byte) bool {
	return c == ' ' || c == '\t'
}

// indentWidth counts leading whitespace, a tab counting as four columns.
func indentWidth(line string) int {
	w := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case ' ':
			w++
		case '\t':
			w += 4
		default:
			return w
		}
	}
	return w
}
