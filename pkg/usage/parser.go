// Package usage parses a single usage line into a tree of components.
//
// The grammar is deliberately loose since CLIs do not share one usage
// convention:
//
//	sequence  := component*
//	component := primary ('|' primary)*
//	primary   := '[' sequence ']' ['...']   optional group
//	           | '(' sequence ')' ['...']   required group
//	           | word ['...']
//
// Words are flags (--name, -n, --name=<v>), placeholders (<x>, {x},
// UPPER, <k>=<v>) or literal keywords. Parsing never fails: when a
// delimiter is unmatched, the rest of the line becomes one Keyword.
package usage

import (
	"errors"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/NVIDIA/clint/pkg/model"
)

var errUnmatched = errors.New("unmatched delimiter")

// maxNesting bounds group depth; deeper input falls back to a Keyword.
const maxNesting = 256

type parser struct {
	src   string
	toks  []token
	pos   int
	depth int
	args  map[string]bool
}

// Parse returns the component sequence of a usage string.
func Parse(s string) []model.UsageComponent {
	p := &parser{
		src:  s,
		toks: tokenize(s),
		args: make(map[string]bool),
	}

	out := []model.UsageComponent{}
	for !p.eof() {
		t := p.peek()
		if t.kind == tokPipe {
			p.pos++
			continue
		}
		comp, err := p.parseComponent(true)
		if err != nil {
			out = append(out, keyword(strings.TrimSpace(s[t.off:]), true))
			break
		}
		out = append(out, comp)
	}
	return model.NormalizeComponents(out)
}

// ParseLine strips a leading "Usage:" label and the command words of
// commandPath before parsing the rest of the line.
func ParseLine(line, commandPath string) []model.UsageComponent {
	return Parse(StripCommand(line, commandPath))
}

// StripCommand removes the "Usage:" label and everything up to the last
// occurrence of the command's own name that precedes the first flag,
// placeholder or group.
func StripCommand(line, commandPath string) string {
	s := strings.TrimSpace(line)
	if len(s) >= 6 && strings.EqualFold(s[:6], "usage:") {
		s = strings.TrimSpace(s[6:])
	}

	names := model.SplitPath(commandPath)
	if len(names) == 0 {
		return s
	}
	last := names[len(names)-1]

	fields := strings.Fields(s)
	cut := -1
	for i, f := range fields {
		if strings.HasPrefix(f, "-") || strings.ContainsAny(f, "[](){}<>|") {
			break
		}
		if f == last || filepath.Base(f) == last {
			cut = i
		}
	}
	if cut < 0 {
		return s
	}
	return strings.Join(fields[cut+1:], " ")
}

func (p *parser) eof() bool {
	return p.pos >= len(p.toks)
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) peekKind(kind tokenKind) bool {
	return !p.eof() && p.toks[p.pos].kind == kind
}

// parseSequence reads components until the matching closer, which it
// leaves unconsumed. An empty closer means top level.
func (p *parser) parseSequence(required bool, closer string) ([]model.UsageComponent, error) {
	out := []model.UsageComponent{}
	for {
		if p.eof() {
			return nil, errUnmatched
		}
		t := p.peek()
		switch t.kind {
		case tokClose:
			if t.text != closer {
				return nil, errUnmatched
			}
			return out, nil
		case tokPipe:
			p.pos++
			continue
		}
		comp, err := p.parseComponent(required)
		if err != nil {
			return nil, err
		}
		out = append(out, comp)
	}
}

func (p *parser) parseComponent(required bool) (model.UsageComponent, error) {
	first, err := p.parsePrimary(required)
	if err != nil {
		return model.UsageComponent{}, err
	}

	alts := []model.UsageComponent{first}
	for p.peekKind(tokPipe) {
		p.pos++
		if p.eof() || p.peek().kind == tokClose || p.peek().kind == tokPipe {
			break
		}
		next, err := p.parsePrimary(required)
		if err != nil {
			return model.UsageComponent{}, err
		}
		alts = append(alts, next)
	}

	if len(alts) == 1 {
		return first, nil
	}
	return model.UsageComponent{
		ComponentType: model.ComponentAlternativeGroup,
		Required:      required,
		Alternatives:  alts,
	}, nil
}

func (p *parser) parsePrimary(required bool) (model.UsageComponent, error) {
	if p.eof() {
		return model.UsageComponent{}, errUnmatched
	}
	t := p.peek()
	p.pos++

	var comp model.UsageComponent
	switch t.kind {
	case tokOpen:
		if p.depth >= maxNesting {
			return model.UsageComponent{}, errUnmatched
		}
		groupRequired := t.text == "("
		closer := "]"
		if groupRequired {
			closer = ")"
		}
		p.depth++
		children, err := p.parseSequence(groupRequired, closer)
		p.depth--
		if err != nil {
			return model.UsageComponent{}, err
		}
		end := p.peek()
		p.pos++
		comp = group(children, groupRequired, p.src[t.off:end.off+1])
	case tokWord:
		comp = p.word(t.text, required)
	case tokEllipsis:
		comp = keyword(ellipsis, required)
	default:
		return model.UsageComponent{}, errUnmatched
	}

	if p.peekKind(tokEllipsis) {
		p.pos++
		comp.Repeatable = true
	}
	return comp, nil
}

// group builds a Group from parsed children. A group holding only an
// alternation collapses into that AlternativeGroup, and a single
// repeatable child lends its repetition to the group.
func group(children []model.UsageComponent, required bool, literal string) model.UsageComponent {
	if len(children) == 0 {
		return keyword(literal, required)
	}
	if len(children) == 1 && children[0].ComponentType == model.ComponentAlternativeGroup {
		alt := children[0]
		alt.Required = required
		return alt
	}
	g := model.UsageComponent{
		ComponentType: model.ComponentGroup,
		Required:      required,
		Children:      children,
	}
	if len(children) == 1 && children[0].Repeatable {
		g.Repeatable = true
		g.Children[0].Repeatable = false
	}
	return g
}

func (p *parser) word(text string, required bool) model.UsageComponent {
	if isFlag(text) {
		return p.flag(text, required)
	}

	if k, v, ok := strings.Cut(text, "="); ok && isPlaceholder(k) && isPlaceholder(v) {
		return model.UsageComponent{
			ComponentType: model.ComponentKeyValuePair,
			Name:          text,
			Required:      required,
			KeyValue:      true,
			Children: []model.UsageComponent{
				p.argument(k, true),
				p.argument(v, true),
			},
		}
	}

	if isPlaceholder(text) {
		return p.argument(text, required)
	}
	if p.args[strings.ToLower(text)] {
		return argument(text, required)
	}
	return keyword(text, required)
}

func (p *parser) flag(text string, required bool) model.UsageComponent {
	comp := model.UsageComponent{
		ComponentType: model.ComponentFlag,
		Required:      required,
	}

	name, value, hasValue := strings.Cut(text, "=")
	comp.Name = strings.TrimRight(strings.TrimLeft(name, "-"), ",")

	switch {
	case hasValue:
		if value == "" {
			value = "value"
		}
		comp.KeyValue = true
		comp.Children = []model.UsageComponent{p.argument(value, true)}
	case p.peekKind(tokWord) && isBracketed(p.peek().text):
		next := p.peek()
		p.pos++
		comp.KeyValue = true
		comp.Children = []model.UsageComponent{p.argument(next.text, true)}
	}
	return comp
}

func (p *parser) argument(text string, required bool) model.UsageComponent {
	arg := argument(unwrap(text), required)
	p.args[strings.ToLower(arg.Name)] = true
	return arg
}

func argument(name string, required bool) model.UsageComponent {
	return model.UsageComponent{
		ComponentType: model.ComponentArgument,
		Name:          name,
		Required:      required,
	}
}

func keyword(name string, required bool) model.UsageComponent {
	return model.UsageComponent{
		ComponentType: model.ComponentKeyword,
		Name:          name,
		Required:      required,
	}
}

func isFlag(text string) bool {
	if len(text) < 2 || text[0] != '-' {
		return false
	}
	rest := strings.TrimLeft(text, "-")
	if rest == "" || len(text)-len(rest) > 2 {
		return false
	}
	r := rune(rest[0])
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isBracketed(text string) bool {
	return len(text) >= 2 &&
		((text[0] == '<' && text[len(text)-1] == '>') ||
			(text[0] == '{' && text[len(text)-1] == '}'))
}

func isPlaceholder(text string) bool {
	return isBracketed(text) || isUpper(text)
}

// isUpper reports whether text is an ALL-CAPS placeholder such as FILE or SRC_DIR.
func isUpper(text string) bool {
	hasLetter := false
	for _, r := range text {
		switch {
		case unicode.IsUpper(r):
			hasLetter = true
		case unicode.IsDigit(r) || r == '_' || r == '-':
		default:
			return false
		}
	}
	return hasLetter
}

func unwrap(text string) string {
	if isBracketed(text) {
		return text[1 : len(text)-1]
	}
	return text
}
