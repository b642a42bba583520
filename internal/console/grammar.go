package console

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// --- Literal grammar ---
// Arguments of dotted calls and structured update values are parsed into
// plain Go values. Nothing is ever evaluated.

// Literal is one of: quoted string, bare word, list or dict.
// Bare words that read as numbers, True/False or None become those values.
type Literal struct {
	Str  *string  `parser:"  @String"`
	Word *string  `parser:"| @Word"`
	List *ListLit `parser:"| @@"`
	Dict *DictLit `parser:"| @@"`
}

// ListLit parses: [ literal, ... ]
type ListLit struct {
	Items []*Literal `parser:"'[' ( @@ ( ',' @@ )* ','? )? ']'"`
}

// DictLit parses: { key: literal, ... }
type DictLit struct {
	Entries []*DictEntry `parser:"'{' ( @@ ( ',' @@ )* ','? )? '}'"`
}

// DictEntry parses: key : literal
type DictEntry struct {
	Key   *Literal `parser:"@@ ':'"`
	Value *Literal `parser:"@@"`
}

// ArgList parses a comma-separated argument list.
type ArgList struct {
	Args []*Literal `parser:"( @@ ( ',' @@ )* ','? )?"`
}

// WordList parses a shell-like line: bare words and quoted strings.
type WordList struct {
	Words []string `parser:"@(String | Word)*"`
}

var literalLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"|'(?:[^'\\]|\\.)*'`},
	{Name: "Punct", Pattern: `[\[\]{}:,]`},
	{Name: "Word", Pattern: `[^\s\[\]{}:,"']+`},
})

var wordLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"|'(?:[^'\\]|\\.)*'`},
	{Name: "Word", Pattern: `[^\s"']+`},
})

var (
	argParser = participle.MustBuild[ArgList](
		participle.Lexer(literalLexer),
		participle.Elide("Whitespace"),
		participle.UseLookahead(2),
	)
	literalParser = participle.MustBuild[Literal](
		participle.Lexer(literalLexer),
		participle.Elide("Whitespace"),
		participle.UseLookahead(2),
	)
	wordParser = participle.MustBuild[WordList](
		participle.Lexer(wordLexer),
		participle.Elide("Whitespace"),
	)
)

// ParseArgs parses a comma-separated argument list into values.
func ParseArgs(s string) ([]any, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	ast, err := argParser.ParseString("", s)
	if err != nil {
		return nil, fmt.Errorf("parse arguments: %w", err)
	}
	out := make([]any, 0, len(ast.Args))
	for _, lit := range ast.Args {
		v, err := lit.Value()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// ParseLiteral parses a single literal value.
func ParseLiteral(s string) (any, error) {
	ast, err := literalParser.ParseString("", s)
	if err != nil {
		return nil, fmt.Errorf("parse literal: %w", err)
	}
	return ast.Value()
}

// ParseDict parses a dict literal such as {"name": "Paris", "rooms": 3}.
func ParseDict(s string) (map[string]any, error) {
	v, err := ParseLiteral(s)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected dict literal, got %T", v)
	}
	return m, nil
}

// SplitWords splits a line into words, honoring single and double quotes.
func SplitWords(line string) ([]string, error) {
	if strings.TrimSpace(line) == "" {
		return []string{}, nil
	}
	ast, err := wordParser.ParseString("", line)
	if err != nil {
		return nil, fmt.Errorf("split line: %w", err)
	}
	words := make([]string, len(ast.Words))
	for i, w := range ast.Words {
		if isQuoted(w) {
			words[i] = unquote(w)
		} else {
			words[i] = w
		}
	}
	return words, nil
}

// Value converts the parsed literal into a plain Go value.
func (l *Literal) Value() (any, error) {
	switch {
	case l.Str != nil:
		return unquote(*l.Str), nil
	case l.Word != nil:
		return wordValue(*l.Word), nil
	case l.List != nil:
		items := make([]any, 0, len(l.List.Items))
		for _, item := range l.List.Items {
			v, err := item.Value()
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return items, nil
	case l.Dict != nil:
		m := make(map[string]any, len(l.Dict.Entries))
		for _, entry := range l.Dict.Entries {
			k, err := entry.Key.Value()
			if err != nil {
				return nil, err
			}
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("dict key %v is not a string", k)
			}
			v, err := entry.Value.Value()
			if err != nil {
				return nil, err
			}
			m[key] = v
		}
		return m, nil
	}
	return nil, fmt.Errorf("empty literal")
}

// wordValue interprets a bare word: integers, floats, True/False and None
// become typed values, anything else stays a string.
func wordValue(w string) any {
	switch w {
	case "True":
		return true
	case "False":
		return false
	case "None":
		return nil
	}
	if i, err := strconv.ParseInt(w, 10, 64); err == nil {
		return i
	}
	if looksNumeric(w) {
		if f, err := strconv.ParseFloat(w, 64); err == nil {
			return f
		}
	}
	return w
}

// looksNumeric rules out words like "inf" or "NaN" that ParseFloat accepts.
func looksNumeric(w string) bool {
	w = strings.TrimLeft(w, "+-")
	return w != "" && (w[0] >= '0' && w[0] <= '9' || w[0] == '.')
}

func isQuoted(s string) bool {
	return len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0]
}

// unquote strips the surrounding quotes and resolves backslash escapes.
func unquote(s string) string {
	if !isQuoted(s) {
		return s
	}
	body := s[1 : len(s)-1]
	if !strings.Contains(body, `\`) {
		return body
	}
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i == len(body)-1 {
			b.WriteByte(c)
			continue
		}
		i++
		switch body[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		default:
			b.WriteByte(body[i])
		}
	}
	return b.String()
}
