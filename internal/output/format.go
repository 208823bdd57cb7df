// Package output renders plans and results as relaxed Extended JSON. When
// stdout is a terminal, documents are indented; when piped, output is
// compact and find streams become one document per line for downstream
// tools.
package output

import (
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"go.mongodb.org/mongo-driver/bson"
)

// Payload is the renderable shape of an execution result.
type Payload struct {
	Documents []bson.D // find result stream
	Document  bson.D
	IsStream  bool
	Null      bool
}

// FormatPlan renders an explain/dry-run plan document, TTY-aware.
func FormatPlan(plan interface{ Doc() bson.D }) ([]byte, error) {
	rendered, err := renderDocument(plan.Doc(), stdoutIsTTY())
	if err != nil {
		return nil, err
	}
	return []byte(rendered), nil
}

// FormatResult renders an execution result, TTY-aware.
func FormatResult(p Payload) (string, error) {
	return RenderResult(p, stdoutIsTTY())
}

// RenderResult renders an execution result. With pretty set, documents are
// indented and a stream is joined with newlines; otherwise everything is
// compact and a stream is one document per line.
func RenderResult(p Payload, pretty bool) (string, error) {
	switch {
	case p.IsStream:
		lines := make([]string, len(p.Documents))
		for i, doc := range p.Documents {
			line, err := renderDocument(doc, pretty)
			if err != nil {
				return "", err
			}
			lines[i] = line
		}
		return strings.Join(lines, "\n"), nil
	case p.Null:
		return "null", nil
	default:
		return renderDocument(p.Document, pretty)
	}
}

// renderDocument marshals one document as relaxed Extended JSON.
func renderDocument(doc bson.D, pretty bool) (string, error) {
	var data []byte
	var err error
	if pretty {
		data, err = bson.MarshalExtJSONIndent(doc, false, false, "", "  ")
	} else {
		data, err = bson.MarshalExtJSON(doc, false, false)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func stdoutIsTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd())
}
