// Package grammar defines the structured grammar data for mingo operations.
package grammar

import (
	"fmt"
	"strings"
)

// Method represents a collection method: its positional arguments and the
// number of arguments it accepts.
type Method struct {
	Name        string
	Description string
	Args        []string // positional argument names, in order
	MinArgs     int
	MaxArgs     int
	Example     string
}

// Grammar contains the complete grammar definition.
type Grammar struct {
	Methods []Method
}

// GetGrammar returns the canonical grammar definition.
func GetGrammar() Grammar {
	return Grammar{
		Methods: []Method{
			{
				Name:        "insertOne",
				Description: "insert a single document",
				Args:        []string{"document"},
				MinArgs:     1,
				MaxArgs:     1,
				Example:     `users.insertOne({"name": "Ada", "age": 36})`,
			},
			{
				Name:        "insertMany",
				Description: "insert an array of documents",
				Args:        []string{"documents"},
				MinArgs:     1,
				MaxArgs:     1,
				Example:     `users.insertMany([{"name": "Ada"}, {"name": "Grace"}])`,
			},
			{
				Name:        "find",
				Description: "return all matching documents",
				Args:        []string{"filter", "projection"},
				MinArgs:     0,
				MaxArgs:     2,
				Example:     `users.find({"age": {"$gte": 30}}, {"name": 1})`,
			},
			{
				Name:        "findOne",
				Description: "return the first matching document",
				Args:        []string{"filter", "projection"},
				MinArgs:     0,
				MaxArgs:     2,
				Example:     `users.findOne({"name": "Ada"})`,
			},
			{
				Name:        "updateOne",
				Description: "update the first matching document",
				Args:        []string{"filter", "update", "options"},
				MinArgs:     2,
				MaxArgs:     3,
				Example:     `users.updateOne({"name": "Ada"}, {"$set": {"age": 37}})`,
			},
			{
				Name:        "updateMany",
				Description: "update all matching documents",
				Args:        []string{"filter", "update", "options"},
				MinArgs:     2,
				MaxArgs:     3,
				Example:     `users.updateMany({}, {"$inc": {"visits": 1}})`,
			},
			{
				Name:        "deleteOne",
				Description: "delete the first matching document",
				Args:        []string{"filter"},
				MinArgs:     1,
				MaxArgs:     1,
				Example:     `users.deleteOne({"name": "Ada"})`,
			},
			{
				Name:        "deleteMany",
				Description: "delete all matching documents",
				Args:        []string{"filter"},
				MinArgs:     1,
				MaxArgs:     1,
				Example:     `users.deleteMany({"retired": true})`,
			},
			{
				Name:        "countDocuments",
				Description: "count matching documents",
				Args:        []string{"filter"},
				MinArgs:     0,
				MaxArgs:     1,
				Example:     `users.countDocuments({"age": {"$lt": 50}})`,
			},
			{
				Name:        "drop",
				Description: "drop the collection",
				Args:        nil,
				MinArgs:     0,
				MaxArgs:     0,
				Example:     `users.drop()`,
			},
		},
	}
}

// Lookup returns the grammar entry for a method name.
func Lookup(name string) (Method, bool) {
	for _, m := range GetGrammar().Methods {
		if m.Name == name {
			return m, true
		}
	}
	return Method{}, false
}

// Names returns the method names in grammar order.
func Names() []string {
	g := GetGrammar()
	names := make([]string, len(g.Methods))
	for i, m := range g.Methods {
		names[i] = m.Name
	}
	return names
}

// Signature renders a method as "name(arg, optional?)" with optional
// arguments marked.
func (m Method) Signature() string {
	args := make([]string, len(m.Args))
	for i, a := range m.Args {
		if i >= m.MinArgs {
			a += "?"
		}
		args[i] = a
	}
	return fmt.Sprintf("%s(%s)", m.Name, strings.Join(args, ", "))
}

// FormatHelp formats the grammar as help text.
func FormatHelp() string {
	g := GetGrammar()

	var help string
	help += "mingo - pocket document database shell\n\n"
	help += "Usage: mingo [flags] '<collection>.<method>(arguments)'\n\n"
	help += "Arguments are JSON values separated by top-level commas.\n"
	help += "Methods:\n"

	for _, m := range g.Methods {
		help += fmt.Sprintf("  %-38s - %s\n", m.Signature(), m.Description)
	}

	help += "\nExamples:\n"
	help += `  mingo 'users.insertOne({"name": "Ada", "age": 36})'` + "\n"
	help += `  mingo 'users.find({"age": {"$gte": 30}}, {"name": 1, "_id": 0})'` + "\n"
	help += `  mingo 'users.updateOne({"name": "Ada"}, {"$set": {"age": 37}})'` + "\n"
	help += `  mingo -db demo 'users.countDocuments()'` + "\n"
	help += `  mingo explain 'users.deleteMany({"retired": true})'` + "\n"
	help += "\nRun 'mingo help <method>' for one method, or 'mingo' alone for the interactive builder.\n"

	return help
}

// FormatMethodHelp formats the help text for a single method. The second
// return value reports whether the method exists.
func FormatMethodHelp(name string) (string, bool) {
	m, ok := Lookup(name)
	if !ok {
		return "", false
	}

	var help string
	help += fmt.Sprintf("%s\n", m.Signature())
	help += fmt.Sprintf("  %s\n", m.Description)
	switch {
	case m.MaxArgs == 0:
		help += "  Takes no arguments.\n"
	case m.MinArgs == m.MaxArgs && m.MaxArgs == 1:
		help += "  Takes exactly 1 argument.\n"
	case m.MinArgs == m.MaxArgs:
		help += fmt.Sprintf("  Takes exactly %d arguments.\n", m.MaxArgs)
	default:
		help += fmt.Sprintf("  Takes %d to %d arguments.\n", m.MinArgs, m.MaxArgs)
	}
	if m.Example != "" {
		help += fmt.Sprintf("  Example: %s\n", m.Example)
	}
	return help, true
}
