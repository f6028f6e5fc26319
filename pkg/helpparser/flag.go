package helpparser

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/NVIDIA/clint/pkg/model"
)

var (
	// columnGap separates the flag column from its description.
	columnGap = regexp.MustCompile(`\s{2,}|\t`)

	defaultValue = regexp.MustCompile(`[(\[]default:?\s+([^)\]]*)[)\]]`)
)

// typeWords are bare value types printed after a flag name, as pflag and
// similar libraries do ("--count int").
var typeWords = map[string]bool{
	"string": true, "strings": true, "stringArray": true, "stringSlice": true,
	"stringToString": true, "int": true, "int8": true, "int16": true,
	"int32": true, "int64": true, "ints": true, "intSlice": true,
	"uint": true, "uint8": true, "uint16": true, "uint32": true, "uint64": true,
	"uints": true, "uintSlice": true, "float": true, "float32": true,
	"float64": true, "float32Slice": true, "float64Slice": true,
	"bool": true, "bools": true, "boolSlice": true, "duration": true,
	"durations": true, "durationSlice": true, "ip": true, "ipSlice": true,
	"ipNet": true, "ipMask": true, "bytesHex": true, "bytesBase64": true,
	"count": true, "value": true, "list": true, "file": true, "path": true,
	"dir": true, "num": true, "number": true, "n": true,
}

// ParseFlagLine parses one flag entry such as
//
//	-o, --output string   Output path (default "out")
//
// into a Flag. The line must start with a dash. It reports false when no
// flag name could be read.
func ParseFlagLine(line, header string) (model.Flag, bool) {
	t := strings.TrimSpace(line)
	if !strings.HasPrefix(t, "-") {
		return model.Flag{}, false
	}

	var spec, desc string
	if loc := columnGap.FindStringIndex(t); loc != nil {
		spec, desc = t[:loc[0]], strings.TrimSpace(t[loc[1]:])
	} else {
		spec, desc = splitSingleSpaced(t)
	}

	f := model.Flag{ParentHeader: header}
	for _, tok := range flagTokens(spec) {
		if strings.HasPrefix(tok, "-") && len(tok) > 1 {
			name, value := splitFlagToken(tok)
			if name == "" {
				continue
			}
			assignName(&f, tok, name)
			if value != "" && f.DataType == "" {
				f.DataType = normalizeType(value)
			}
			continue
		}
		if f.DataType == "" {
			f.DataType = normalizeType(tok)
		}
	}

	if f.Short == "" && f.Long == "" {
		return model.Flag{}, false
	}

	f.Description = desc
	if m := defaultValue.FindStringSubmatch(desc); m != nil {
		f.Default = strings.Trim(strings.TrimSpace(m[1]), `"'`)
	}
	return f, true
}

// splitSingleSpaced separates flags from a description when the help page
// uses only single spaces. Leading dash tokens (and comma-joined aliases)
// are kept, plus at most one value placeholder.
func splitSingleSpaced(t string) (string, string) {
	fields := strings.Fields(t)
	i := 0
	for i < len(fields) && (strings.HasPrefix(fields[i], "-") || strings.HasSuffix(fields[i], ",")) {
		i++
	}
	if i < len(fields) && isPlaceholder(fields[i]) {
		i++
	}
	return strings.Join(fields[:i], " "), strings.Join(fields[i:], " ")
}

// flagTokens splits the flag column on commas and spaces.
func flagTokens(spec string) []string {
	fields := strings.FieldsFunc(spec, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// splitFlagToken splits "--output=FILE", "--output[=FILE]" or
// "--[no-]color" into a dash-less name and an optional value placeholder.
func splitFlagToken(tok string) (string, string) {
	tok = strings.Replace(tok, "[no-]", "", 1)

	var value string
	if i := strings.Index(tok, "[="); i >= 0 {
		value = strings.TrimSuffix(tok[i+2:], "]")
		tok = tok[:i]
	} else if name, v, ok := strings.Cut(tok, "="); ok {
		tok, value = name, v
	}
	if i := strings.IndexAny(tok, "<["); i > 0 {
		value = tok[i:]
		tok = tok[:i]
	}
	return strings.TrimLeft(tok, "-"), value
}

// assignName records a name as short or long. "--x" is long, "-x" is
// short, and "-xyz" (single dash, several letters) is treated as long.
// Extra aliases beyond the first short and long name are ignored.
func assignName(f *model.Flag, tok, name string) {
	long := strings.HasPrefix(tok, "--") || len([]rune(name)) > 1
	switch {
	case long && f.Long == "":
		f.Long = name
	case !long && f.Short == "":
		f.Short = name
	}
}

// isPlaceholder reports whether a token names a flag value.
func isPlaceholder(tok string) bool {
	tok = strings.TrimSuffix(tok, ",")
	if tok == "" {
		return false
	}
	if (tok[0] == '<' && strings.HasSuffix(tok, ">")) ||
		(tok[0] == '[' && strings.HasSuffix(tok, "]")) ||
		(tok[0] == '{' && strings.HasSuffix(tok, "}")) {
		return true
	}
	return typeWords[tok] || isUpperWord(tok)
}

func isUpperWord(tok string) bool {
	hasLetter := false
	for _, r := range tok {
		switch {
		case unicode.IsUpper(r):
			hasLetter = true
		case unicode.IsDigit(r) || r == '_' || r == '-' || r == '.':
		default:
			return false
		}
	}
	return hasLetter
}

// normalizeType turns a placeholder into a data type name: brackets are
// removed and ALL-CAPS words are lower-cased, so "<file>", "FILE" and
// "[file]" all give "file". pflag type words keep their case.
func normalizeType(tok string) string {
	tok = strings.TrimSuffix(strings.TrimSpace(tok), ",")
	for len(tok) >= 2 && strings.ContainsRune("<[{", rune(tok[0])) && strings.ContainsRune(">]}", rune(tok[len(tok)-1])) {
		tok = strings.TrimSpace(tok[1 : len(tok)-1])
	}
	tok = strings.TrimPrefix(tok, "=")
	if isUpperWord(tok) {
		return strings.ToLower(tok)
	}
	return tok
}
