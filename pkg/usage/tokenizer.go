package usage

import "strings"

type tokenKind int

const (
	tokWord tokenKind = iota
	tokOpen
	tokClose
	tokPipe
	tokEllipsis
	tokInvalid
)

type token struct {
	kind tokenKind
	text string
	off  int
}

const ellipsis = "..."

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDelimiter(c byte) bool {
	return strings.IndexByte("[]()|", c) >= 0
}

// tokenize splits a usage string into delimiters, ellipses and words.
// Angle and brace placeholders are kept whole even when they contain
// spaces or delimiters. An unterminated placeholder produces a single
// tokInvalid and ends the stream.
func tokenize(s string) []token {
	var toks []token
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case isSpace(c):
			i++
		case c == '[' || c == '(':
			toks = append(toks, token{kind: tokOpen, text: string(c), off: i})
			i++
		case c == ']' || c == ')':
			toks = append(toks, token{kind: tokClose, text: string(c), off: i})
			i++
		case c == '|':
			toks = append(toks, token{kind: tokPipe, text: "|", off: i})
			i++
		case strings.HasPrefix(s[i:], ellipsis):
			toks = append(toks, token{kind: tokEllipsis, text: ellipsis, off: i})
			i += len(ellipsis)
		default:
			start := i
			var nest []byte
			for i < len(s) {
				c = s[i]
				if len(nest) == 0 && (isSpace(c) || isDelimiter(c) || strings.HasPrefix(s[i:], ellipsis)) {
					break
				}
				switch c {
				case '<':
					nest = append(nest, '>')
				case '{':
					nest = append(nest, '}')
				case '>', '}':
					if len(nest) > 0 && nest[len(nest)-1] == c {
						nest = nest[:len(nest)-1]
					}
				}
				i++
			}
			if len(nest) > 0 {
				toks = append(toks, token{kind: tokInvalid, text: s[start:], off: start})
				return toks
			}
			toks = append(toks, token{kind: tokWord, text: s[start:i], off: start})
		}
	}
	return toks
}
