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

// Package helpparser classifies the lines of a help page.
//
// Parsing is a line-by-line state machine over the current section, which
// is switched by header lines (see ClassifyHeader). Within a section each
// line is classified as a usage line, a flag entry, a subcommand entry or
// an unclassified line. Parse never fails: anything it does not recognize
// ends up in PartialNode.Other tagged with its section header.
package helpparser

import (
	"regexp"
	"strings"

	"github.com/NVIDIA/clint/pkg/model"
)

var commandName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.:-]*$`)

// CommandEntry is a subcommand candidate listed on a help page.
type CommandEntry struct {
	Name        string
	Description string
	Header      string
}

// PartialNode is everything a single help page declares about a command.
// Usage components are left empty; the caller knows the command path
// needed to parse them.
type PartialNode struct {
	Description string
	Usages      []model.Usage
	Flags       []model.Flag
	Commands    []CommandEntry
	Other       []model.OtherLine
}

// HasStructure reports whether the page declared flags, usage or commands.
func (p *PartialNode) HasStructure() bool {
	return len(p.Flags) > 0 || len(p.Usages) > 0 || len(p.Commands) > 0
}

// HelpText picks the text to parse: stdout, or stderr when stdout is blank.
func HelpText(stdout, stderr string) string {
	if strings.TrimSpace(stdout) != "" {
		return stdout
	}
	return stderr
}

type state struct {
	out          *PartialNode
	section      SectionKind
	header       string
	seenHeader   bool
	descDone     bool
	lastFlag     int
	lastCommand  int
	lastUsage    int
	continuation int
}

// Parse classifies a help page. Lines seen before any section header are
// tagged with parentHeader, or "root" when it is empty.
func Parse(stdout, stderr, parentHeader string) *PartialNode {
	if parentHeader == "" {
		parentHeader = model.RootHeader
	}
	s := &state{
		out:     &PartialNode{},
		section: SectionNone,
		header:  parentHeader,
	}
	s.resetItems()

	text := strings.ReplaceAll(HelpText(stdout, stderr), "\r\n", "\n")
	for _, line := range strings.Split(text, "\n") {
		s.line(strings.TrimRight(line, " \t\r"))
	}
	return s.out
}

func (s *state) resetItems() {
	s.lastFlag, s.lastCommand, s.lastUsage = -1, -1, -1
	s.continuation = -1
}

func (s *state) line(line string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		s.resetItems()
		if s.out.Description != "" {
			s.descDone = true
		}
		return
	}

	if h, ok := ClassifyHeader(line); ok {
		s.section, s.header, s.seenHeader = h.Kind, h.Name, true
		s.resetItems()
		if h.Kind == SectionUsage && h.Inline != "" {
			s.addUsage(h.Inline)
		}
		return
	}

	indent := indentWidth(line)
	indented := indent > 0

	if indented && strings.HasPrefix(trimmed, "-") && s.section != SectionExamples {
		if f, ok := ParseFlagLine(trimmed, s.header); ok {
			s.out.Flags = append(s.out.Flags, f)
			s.resetItems()
			s.lastFlag = len(s.out.Flags) - 1
			s.continuation = indent
			return
		}
	}

	if indented && s.continuation >= 0 && indent > s.continuation && s.appendContinuation(trimmed) {
		return
	}

	switch {
	case !indented:
		s.unindented(trimmed)
	case s.section == SectionUsage:
		s.usageLine(trimmed, indent)
	case s.section == SectionCommands:
		s.commandLine(trimmed, indent)
	default:
		s.other(line)
	}
}

func (s *state) unindented(trimmed string) {
	switch {
	case !s.seenHeader && !s.descDone:
		s.out.Description = joinText(s.out.Description, trimmed)
	case s.section == SectionUsage && s.out.Description == "":
		// tools that print "Usage: ..." first and the description after it
		s.out.Description = trimmed
	default:
		s.other(trimmed)
	}
}

func (s *state) appendContinuation(text string) bool {
	switch {
	case s.lastFlag >= 0:
		f := &s.out.Flags[s.lastFlag]
		f.Description = joinText(f.Description, text)
		if f.Default == "" {
			if m := defaultValue.FindStringSubmatch(f.Description); m != nil {
				f.Default = strings.Trim(strings.TrimSpace(m[1]), `"'`)
			}
		}
	case s.lastCommand >= 0:
		c := &s.out.Commands[s.lastCommand]
		c.Description = joinText(c.Description, text)
	case s.lastUsage >= 0:
		u := &s.out.Usages[s.lastUsage]
		u.UsageString = joinText(u.UsageString, text)
	default:
		return false
	}
	return true
}

func (s *state) usageLine(trimmed string, indent int) {
	if s.lastUsage >= 0 && strings.ContainsRune("[(<{|", rune(trimmed[0])) {
		u := &s.out.Usages[s.lastUsage]
		u.UsageString = joinText(u.UsageString, trimmed)
		return
	}
	s.addUsage(trimmed)
	s.continuation = indent
}

func (s *state) addUsage(text string) {
	s.out.Usages = append(s.out.Usages, model.Usage{
		UsageString:  text,
		ParentHeader: s.header,
		Components:   []model.UsageComponent{},
	})
	s.lastFlag, s.lastCommand = -1, -1
	s.lastUsage = len(s.out.Usages) - 1
}

func (s *state) commandLine(trimmed string, indent int) {
	name, desc := splitCommandLine(trimmed)
	if name == "" {
		s.other(trimmed)
		return
	}
	s.out.Commands = append(s.out.Commands, CommandEntry{
		Name:        name,
		Description: desc,
		Header:      s.header,
	})
	s.resetItems()
	s.lastCommand = len(s.out.Commands) - 1
	s.continuation = indent
}

// splitCommandLine reads "name   description". The name column may list
// aliases ("build, b") of which the first is kept. Without a column gap
// only a bare name is accepted; single-spaced text is prose.
func splitCommandLine(trimmed string) (string, string) {
	var nameCol, desc string
	if loc := columnGap.FindStringIndex(trimmed); loc != nil {
		nameCol, desc = trimmed[:loc[0]], strings.TrimSpace(trimmed[loc[1]:])
	} else {
		if len(strings.Fields(trimmed)) != 1 {
			return "", ""
		}
		nameCol = trimmed
	}

	name := strings.Fields(nameCol)[0]
	name = strings.TrimRight(name, ",:*")
	if !commandName.MatchString(name) {
		return "", ""
	}
	return name, desc
}

func (s *state) other(line string) {
	s.out.Other = append(s.out.Other, model.OtherLine{
		LineContents: line,
		ParentHeader: s.header,
	})
}

func joinText(a, b string) string {
	if a == "" {
		return b
	}
	return a + " " + b
}
