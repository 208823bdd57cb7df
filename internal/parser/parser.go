// Package parser implements the operation-string parser for mingo.
//
// Grammar (EBNF):
//
//	operation  = collection "." method "(" [ arguments ] ")"
//	collection = identifier
//	method     = identifier
//	arguments  = json_value { "," json_value }
//	identifier = ( letter | "_" ) { letter | digit | "_" | "." | "-" }
//
// The operation string arrives as one shell argument, possibly wrapped in a
// single layer of shell quotes. Parsing is a fixed pipeline: Clean strips
// the quote layer, Tokenize emits the six-token stream, SplitArguments cuts
// the args blob on top-level commas, each segment is decoded as strict JSON,
// and Validate checks identifiers and arity against the method grammar.
// Every stage is a pure function of its input; Parse holds no state between
// calls and is safe for concurrent use.
//
// Structural characters inside single- or double-quoted strings are never
// treated as syntax. A boundary scan decides whether a position is inside a
// string, using a single-level escape rule: a quote immediately preceded by
// a backslash does not toggle string state, and the backslash itself is
// never considered escaped. A literal trailing backslash before a closing
// quote is therefore not representable; the rule is kept identical across
// the tokenizer and the splitter.
package parser

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mingo-db/mingo/internal/types"
)

// logger traces parse stages to stderr when MINGO_DEBUG_PARSER is set.
var logger = newDebugLogger()

func newDebugLogger() *slog.Logger {
	if os.Getenv("MINGO_DEBUG_PARSER") == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Remove timestamp and level for cleaner trace output
			if a.Key == slog.TimeKey || a.Key == slog.LevelKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}

// Parse turns a raw operation string into a validated Call.
func Parse(raw string) (*types.Call, error) {
	cleaned := Clean(raw)
	logger.Debug("cleaned operation", "raw", raw, "cleaned", cleaned)

	tokens, err := Tokenize(cleaned)
	if err != nil {
		return nil, err
	}
	logger.Debug("token stream", "tokens", tokens)

	collection, method, blob := tokens[0], tokens[2], tokens[4]

	segments, err := SplitArguments(blob)
	if err != nil {
		return nil, err
	}

	args := make([]interface{}, 0, len(segments))
	for _, seg := range segments {
		value, err := decodeArgument(seg)
		if err != nil {
			return nil, err
		}
		args = append(args, value)
	}

	if err := Validate(collection, method, args); err != nil {
		return nil, err
	}

	logger.Debug("validated call", "collection", collection, "method", method, "args", len(args))
	return &types.Call{Collection: collection, Method: types.Method(method), Args: args}, nil
}

// Clean trims whitespace and strips at most one layer of matching outer
// quote characters (', ", or backtick) left over from shell quoting. Inner
// content is never unescaped. Idempotent on unquoted input.
func Clean(raw string) string {
	s := strings.TrimSpace(raw)
	if len(s) > 1 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '\'' || first == '"' || first == '`') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// isInsideString reports whether position lies inside a single- or
// double-quoted string, scanning text[0:position) from the left. A quote
// toggles string state unless the immediately preceding character is a
// backslash (single-level escape rule). Backtick is not a string delimiter
// here; it only matters to Clean.
func isInsideString(text string, position int) bool {
	if position <= 0 {
		return false
	}
	if position > len(text) {
		position = len(text)
	}

	inString := false
	var quote byte

	for i := 0; i < position; i++ {
		c := text[i]
		if c != '\'' && c != '"' {
			continue
		}
		if i > 0 && text[i-1] == '\\' {
			continue
		}
		if !inString {
			inString = true
			quote = c
		} else if c == quote {
			inString = false
		}
	}

	return inString
}

// Tokenize walks the cleaned text once and emits the flat token stream
// [collection, ".", method, "(", argsBlob, ")"]. The argsBlob token is kept
// even when empty: it is the zero-argument marker for method(). Any stream
// that does not have exactly that shape is a StructuralError.
func Tokenize(cleaned string) ([]string, error) {
	var tokens []string
	var acc strings.Builder

	flush := func() {
		if t := strings.TrimSpace(acc.String()); t != "" {
			tokens = append(tokens, t)
		}
		acc.Reset()
	}

scan:
	for i := 0; i < len(cleaned); i++ {
		ch := cleaned[i]

		if isInsideString(cleaned, i) {
			acc.WriteByte(ch)
			continue
		}

		switch ch {
		case '.':
			flush()
			tokens = append(tokens, ".")
		case '(':
			flush()
			tokens = append(tokens, "(")
			end := matchingParen(cleaned, i)
			if end < 0 {
				// Never closes: keep the remainder as the blob and let the
				// shape check report the short stream.
				tokens = append(tokens, cleaned[i+1:])
				break scan
			}
			tokens = append(tokens, cleaned[i+1:end])
			tokens = append(tokens, ")")
			i = end
		default:
			acc.WriteByte(ch)
		}
	}
	flush()

	if err := checkShape(tokens); err != nil {
		return nil, err
	}
	return tokens, nil
}

// matchingParen returns the index of the ')' matching the '(' at open,
// counting nested paren pairs and ignoring parens inside strings. Returns
// -1 when the paren never closes.
func matchingParen(text string, open int) int {
	depth := 1
	for i := open + 1; i < len(text); i++ {
		if isInsideString(text, i) {
			continue
		}
		switch text[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// checkShape enforces the six-token result contract.
func checkShape(tokens []string) error {
	count := len(tokens)
	if count != 6 {
		return &StructuralError{Tokens: tokens, Count: count, Message: "expected collection.method(arguments)"}
	}
	if tokens[1] != "." {
		return &StructuralError{Tokens: tokens, Count: count, Message: "expected '.' between collection and method"}
	}
	if tokens[3] != "(" {
		return &StructuralError{Tokens: tokens, Count: count, Message: "expected '(' after method name"}
	}
	if tokens[5] != ")" {
		return &StructuralError{Tokens: tokens, Count: count, Message: "expected closing ')'"}
	}
	return nil
}
