package script

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Rule order matters: a quoted string wins over a bare word starting at the
// same position, and an unterminated quote falls through to Word.
var lineLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"[^"]+"`},
	{Name: "Word", Pattern: `[^\s,]+`},
	{Name: "Sep", Pattern: `[\s,]+`},
})

var (
	stringToken = lineLexer.Symbols()["String"]
	wordToken   = lineLexer.Symbols()["Word"]
)

// Tokenize splits one script line into tokens. Double-quoted segments become a
// single token with the quotes stripped; everything else splits on whitespace
// and commas. Blank lines and comments yield no tokens.
func Tokenize(line string) ([]string, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return nil, nil
	}

	lex, err := lineLexer.LexString("", trimmed)
	if err != nil {
		return nil, fmt.Errorf("tokenize %q: %w", trimmed, err)
	}
	raw, err := lexer.ConsumeAll(lex)
	if err != nil {
		return nil, fmt.Errorf("tokenize %q: %w", trimmed, err)
	}

	tokens := make([]string, 0, len(raw))
	for _, tok := range raw {
		switch tok.Type {
		case stringToken:
			tokens = append(tokens, strings.Trim(tok.Value, `"`))
		case wordToken:
			tokens = append(tokens, tok.Value)
		}
	}
	return tokens, nil
}
