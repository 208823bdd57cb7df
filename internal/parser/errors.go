package parser

import (
	"fmt"
	"strings"
)

// StructuralError reports a token stream that does not have the
// collection.method(arguments) shape. It carries the scanned tokens so the
// message can cite exactly what the tokenizer saw.
type StructuralError struct {
	Tokens  []string
	Count   int
	Message string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("structural error: %s (got %d tokens: %s)", e.Message, e.Count, formatTokens(e.Tokens))
}

func formatTokens(tokens []string) string {
	quoted := make([]string, len(tokens))
	for i, t := range tokens {
		quoted[i] = fmt.Sprintf("%q", t)
	}
	return "[" + strings.Join(quoted, " ") + "]"
}

// UnbalancedStructureError reports braces or brackets left open (or
// over-closed) at the end of the arguments blob.
type UnbalancedStructureError struct {
	Blob     string
	Braces   int
	Brackets int
}

func (e *UnbalancedStructureError) Error() string {
	return fmt.Sprintf("unbalanced arguments %q: brace depth %d, bracket depth %d at end of scan", e.Blob, e.Braces, e.Brackets)
}

// ArgumentDecodeError reports an argument segment that is not valid JSON.
// It wraps the underlying decode error and always names the literal segment.
type ArgumentDecodeError struct {
	Segment string
	Err     error
}

func (e *ArgumentDecodeError) Error() string {
	return fmt.Sprintf("invalid JSON in argument %q: %v", e.Segment, e.Err)
}

func (e *ArgumentDecodeError) Unwrap() error {
	return e.Err
}

// UnsupportedMethodError reports a method name outside the known set.
type UnsupportedMethodError struct {
	Method    string
	Supported []string
	Suggest   string
}

// Error lists the supported set; the Suggest field is left to the caller,
// which may render it as a separate hint.
func (e *UnsupportedMethodError) Error() string {
	return fmt.Sprintf("unsupported method %q (supported: %s)", e.Method, strings.Join(e.Supported, ", "))
}

// ArityError reports an argument count outside the method's allowed range.
type ArityError struct {
	Method string
	Min    int
	Max    int
	Actual int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("wrong number of arguments for %s: expected %s, got %d", e.Method, e.expected(), e.Actual)
}

func (e *ArityError) expected() string {
	switch {
	case e.Min == e.Max && e.Min == 0:
		return "none"
	case e.Min == e.Max:
		return fmt.Sprintf("exactly %d", e.Min)
	case e.Actual < e.Min:
		return fmt.Sprintf("at least %d", e.Min)
	default:
		return fmt.Sprintf("at most %d", e.Max)
	}
}

// ArgumentTypeError reports an argument whose decoded type violates the
// method's rules, such as insertOne with a non-document argument.
type ArgumentTypeError struct {
	Method   string
	Index    int
	Name     string
	Expected string
	Actual   string
}

func (e *ArgumentTypeError) Error() string {
	return fmt.Sprintf("%s argument %d (%s) must be %s, got %s", e.Method, e.Index, e.Name, e.Expected, e.Actual)
}

// InvalidIdentifierError reports a collection or method name that fails the
// identifier grammar.
type InvalidIdentifierError struct {
	Kind string // "collection" or "method"
	Name string
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("invalid %s name %q: names start with a letter or underscore, followed by letters, digits, '_', '.', or '-'", e.Kind, e.Name)
}
