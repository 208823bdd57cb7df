package parser

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/mingo-db/mingo/internal/grammar"
	"github.com/mingo-db/mingo/internal/types"
)

// identifierPattern is the naming grammar for collections and methods.
// Deliberately permissive past the first character: dots and hyphens are
// legal so namespaced collection names validate, even though names arriving
// through Tokenize cannot contain dots (the TUI builder validates directly).
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.-]*$`)

// Validate checks the collection and method identifiers and the per-method
// arity and argument-type rules for a decoded call.
func Validate(collection, method string, args []interface{}) error {
	if !identifierPattern.MatchString(collection) {
		return &InvalidIdentifierError{Kind: "collection", Name: collection}
	}
	if !identifierPattern.MatchString(method) {
		return &InvalidIdentifierError{Kind: "method", Name: method}
	}

	m, ok := grammar.Lookup(method)
	if !ok {
		return &UnsupportedMethodError{
			Method:    method,
			Supported: grammar.Names(),
			Suggest:   suggestMethod(method),
		}
	}

	if len(args) < m.MinArgs || len(args) > m.MaxArgs {
		return &ArityError{Method: method, Min: m.MinArgs, Max: m.MaxArgs, Actual: len(args)}
	}

	switch types.Method(method) {
	case types.MethodInsertOne:
		if _, ok := args[0].(bson.D); !ok {
			return &ArgumentTypeError{
				Method:   method,
				Index:    0,
				Name:     m.Args[0],
				Expected: "a document",
				Actual:   describeValue(args[0]),
			}
		}
	case types.MethodInsertMany:
		if _, ok := args[0].(bson.A); !ok {
			return &ArgumentTypeError{
				Method:   method,
				Index:    0,
				Name:     m.Args[0],
				Expected: "an array",
				Actual:   describeValue(args[0]),
			}
		}
	}

	return nil
}

// describeValue names a decoded argument's type in user terms.
func describeValue(v interface{}) string {
	switch v.(type) {
	case bson.D:
		return "a document"
	case bson.A:
		return "an array"
	case string:
		return "a string"
	case int64, float64:
		return "a number"
	case bool:
		return "a boolean"
	case nil:
		return "null"
	}
	return "an unknown value"
}

// suggestMethod suggests a similar method name.
func suggestMethod(input string) string {
	best := ""
	minDist := 999
	for _, name := range grammar.Names() {
		dist := levenshteinDistance(input, name)
		if dist < minDist {
			minDist = dist
			best = name
		}
	}
	if minDist <= 2 {
		return best
	}
	return ""
}

// levenshteinDistance calculates the Levenshtein distance between two strings.
func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	matrix := make([][]int, len(a)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(b)+1)
	}

	for i := 0; i <= len(a); i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= len(b); j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			matrix[i][j] = min(
				matrix[i-1][j]+1,
				matrix[i][j-1]+1,
				matrix[i-1][j-1]+cost,
			)
		}
	}

	return matrix[len(a)][len(b)]
}

func min(a, b, c int) int {
	if a < b && a < c {
		return a
	}
	if b < c {
		return b
	}
	return c
}
