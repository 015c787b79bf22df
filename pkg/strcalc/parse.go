package strcalc

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

const headerPrefix = "//"

// defaultDelimiters returns the separators used when the input carries no
// delimiter header. Each call returns a fresh slice.
func defaultDelimiters() []string { return []string{",", "\n"} }

// Term is one numeric token of the input. Offset points at the first byte of
// the untrimmed token in the original text.
type Term struct {
	Text   string
	Offset int
}

// Expression is the tokenised form of an input string.
type Expression struct {
	Delimiters []string
	Terms      []Term
}

// Parse splits text into terms. It validates the delimiter header and rejects
// empty tokens but does not interpret the numbers.
func Parse(text string) (Expression, error) {
	if text == "" {
		return Expression{Delimiters: defaultDelimiters()}, nil
	}
	delims := defaultDelimiters()
	body, bodyOff := text, 0
	if strings.HasPrefix(text, headerPrefix) {
		var err error
		delims, bodyOff, err = parseHeader(text)
		if err != nil {
			return Expression{}, err
		}
		body = text[bodyOff:]
	}
	expr := Expression{Delimiters: delims}
	if body == "" {
		return expr, nil
	}
	terms, err := split(body, bodyOff, longestFirst(delims))
	if err != nil {
		return Expression{}, err
	}
	expr.Terms = terms
	return expr, nil
}

// parseHeader reads "//X\n" or "//[d1][d2]...\n" and returns the delimiters
// and the offset at which the body starts.
func parseHeader(text string) ([]string, int, error) {
	nl := strings.IndexByte(text, '\n')
	if nl < 0 {
		return nil, 0, &SyntaxError{Offset: 0, Msg: "delimiter header missing newline"}
	}
	spec := text[len(headerPrefix):nl]
	if spec == "" {
		return nil, 0, &SyntaxError{Offset: len(headerPrefix), Msg: "empty delimiter"}
	}

	var delims []string
	if spec[0] != '[' {
		if utf8.RuneCountInString(spec) != 1 {
			return nil, 0, &SyntaxError{Offset: len(headerPrefix), Token: spec, Msg: "single delimiter must be one character; use [...] for longer ones"}
		}
		delims = []string{spec}
	} else {
		rest, off := spec, len(headerPrefix)
		for rest != "" {
			if rest[0] != '[' {
				return nil, 0, &SyntaxError{Offset: off, Token: rest, Msg: "expected '['"}
			}
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return nil, 0, &SyntaxError{Offset: off, Token: rest, Msg: "missing ']'"}
			}
			d := rest[1:end]
			if d == "" {
				return nil, 0, &SyntaxError{Offset: off, Msg: "empty delimiter"}
			}
			delims = append(delims, d)
			rest = rest[end+1:]
			off += end + 1
		}
	}
	for _, d := range delims {
		if strings.IndexFunc(d, unicode.IsDigit) >= 0 {
			return nil, 0, &SyntaxError{Offset: len(headerPrefix), Token: d, Msg: "delimiter must not contain digits"}
		}
	}
	return delims, nl + 1, nil
}

// longestFirst returns a copy of delims ordered so that the longest candidate
// is tried first at every position.
func longestFirst(delims []string) []string {
	out := append([]string(nil), delims...)
	sort.SliceStable(out, func(i, j int) bool { return len(out[i]) > len(out[j]) })
	return out
}

func split(body string, base int, delims []string) ([]Term, error) {
	var terms []Term
	start := 0
	emit := func(end int) error {
		tok := body[start:end]
		if strings.TrimSpace(tok) == "" {
			return &SyntaxError{Offset: base + start, Msg: "empty number"}
		}
		terms = append(terms, Term{Text: tok, Offset: base + start})
		return nil
	}
	for i := 0; i < len(body); {
		d := matchAt(body, i, delims)
		if d == "" {
			i++
			continue
		}
		if err := emit(i); err != nil {
			return nil, err
		}
		i += len(d)
		start = i
	}
	if err := emit(len(body)); err != nil {
		return nil, err
	}
	return terms, nil
}

func matchAt(s string, i int, delims []string) string {
	for _, d := range delims {
		if strings.HasPrefix(s[i:], d) {
			return d
		}
	}
	return ""
}
