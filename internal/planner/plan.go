// Package planner shapes validated calls into execution plans.
//
// The parser guarantees identifiers, method membership, and arity; the
// planner maps the positional arguments onto named fields, applies the
// per-method defaults, and enforces the shape rules the arity table cannot
// express (a filter must be a document, an update must be operator-keyed,
// options must be a document with known keys).
package planner

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/mingo-db/mingo/internal/types"
)

// ExecutionPlan is the named-field form of a validated call, ready for the
// executor. Fields are populated per method; unused fields stay nil.
type ExecutionPlan struct {
	Collection string
	Method     types.Method
	Filter     bson.D // find*, update*, delete*, countDocuments
	Projection bson.D // find, findOne
	Update     bson.D // updateOne, updateMany
	Document   bson.D // insertOne
	Documents  bson.A // insertMany
	Options    *UpdateOptions
}

// UpdateOptions holds the recognized keys of an update options document.
type UpdateOptions struct {
	Upsert bool
}

// PlanError reports an argument whose shape does not fit its field.
type PlanError struct {
	Method types.Method
	Field  string
	Detail string
}

func (e *PlanError) Error() string {
	return fmt.Sprintf("%s: %s %s", e.Method, e.Field, e.Detail)
}

// Plan builds an ExecutionPlan from a validated call.
func Plan(call *types.Call) (*ExecutionPlan, error) {
	plan := &ExecutionPlan{Collection: call.Collection, Method: call.Method}
	args := call.Args

	switch call.Method {
	case types.MethodInsertOne:
		doc, err := documentArg(call.Method, "document", args[0])
		if err != nil {
			return nil, err
		}
		plan.Document = doc

	case types.MethodInsertMany:
		arr, ok := args[0].(bson.A)
		if !ok {
			return nil, &PlanError{Method: call.Method, Field: "documents", Detail: "must be an array of documents"}
		}
		for i, v := range arr {
			if _, ok := v.(bson.D); !ok {
				return nil, &PlanError{Method: call.Method, Field: "documents", Detail: fmt.Sprintf("element %d is not a document", i)}
			}
		}
		plan.Documents = arr

	case types.MethodFind, types.MethodFindOne:
		plan.Filter = bson.D{}
		if len(args) > 0 {
			filter, err := documentArg(call.Method, "filter", args[0])
			if err != nil {
				return nil, err
			}
			plan.Filter = filter
		}
		if len(args) > 1 {
			projection, err := documentArg(call.Method, "projection", args[1])
			if err != nil {
				return nil, err
			}
			plan.Projection = projection
		}

	case types.MethodUpdateOne, types.MethodUpdateMany:
		filter, err := documentArg(call.Method, "filter", args[0])
		if err != nil {
			return nil, err
		}
		update, err := updateArg(call.Method, args[1])
		if err != nil {
			return nil, err
		}
		plan.Filter = filter
		plan.Update = update
		if len(args) > 2 {
			opts, err := optionsArg(call.Method, args[2])
			if err != nil {
				return nil, err
			}
			plan.Options = opts
		}

	case types.MethodDeleteOne, types.MethodDeleteMany:
		filter, err := documentArg(call.Method, "filter", args[0])
		if err != nil {
			return nil, err
		}
		plan.Filter = filter

	case types.MethodCountDocuments:
		plan.Filter = bson.D{}
		if len(args) > 0 {
			filter, err := documentArg(call.Method, "filter", args[0])
			if err != nil {
				return nil, err
			}
			plan.Filter = filter
		}

	case types.MethodDrop:
		// No arguments to shape.

	default:
		return nil, &PlanError{Method: call.Method, Field: "method", Detail: "has no plan shape"}
	}

	return plan, nil
}

// Doc renders the plan as an ordered document for explain/dry-run output.
func (p *ExecutionPlan) Doc() bson.D {
	doc := bson.D{
		{Key: "collection", Value: p.Collection},
		{Key: "method", Value: string(p.Method)},
	}
	if p.Filter != nil {
		doc = append(doc, bson.E{Key: "filter", Value: p.Filter})
	}
	if p.Projection != nil {
		doc = append(doc, bson.E{Key: "projection", Value: p.Projection})
	}
	if p.Update != nil {
		doc = append(doc, bson.E{Key: "update", Value: p.Update})
	}
	if p.Document != nil {
		doc = append(doc, bson.E{Key: "document", Value: p.Document})
	}
	if p.Documents != nil {
		doc = append(doc, bson.E{Key: "documents", Value: p.Documents})
	}
	if p.Options != nil {
		doc = append(doc, bson.E{Key: "options", Value: bson.D{{Key: "upsert", Value: p.Options.Upsert}}})
	}
	return doc
}

// documentArg requires a decoded argument to be a document.
func documentArg(method types.Method, field string, v interface{}) (bson.D, error) {
	doc, ok := v.(bson.D)
	if !ok {
		return nil, &PlanError{Method: method, Field: field, Detail: fmt.Sprintf("must be a document, got %s", describe(v))}
	}
	return doc, nil
}

// updateArg requires a non-empty, operator-keyed update document. The
// operator subset itself is the engine's concern; the planner only rules
// out plain replacement documents, which the engine does not support.
func updateArg(method types.Method, v interface{}) (bson.D, error) {
	doc, err := documentArg(method, "update", v)
	if err != nil {
		return nil, err
	}
	if len(doc) == 0 {
		return nil, &PlanError{Method: method, Field: "update", Detail: "must not be empty"}
	}
	for _, e := range doc {
		if len(e.Key) == 0 || e.Key[0] != '$' {
			return nil, &PlanError{Method: method, Field: "update", Detail: fmt.Sprintf("key %q is not an update operator (use $set, $unset, or $inc)", e.Key)}
		}
	}
	return doc, nil
}

// optionsArg interprets an options document. Only upsert is recognized.
func optionsArg(method types.Method, v interface{}) (*UpdateOptions, error) {
	doc, err := documentArg(method, "options", v)
	if err != nil {
		return nil, err
	}
	opts := &UpdateOptions{}
	for _, e := range doc {
		switch e.Key {
		case "upsert":
			b, ok := e.Value.(bool)
			if !ok {
				return nil, &PlanError{Method: method, Field: "options", Detail: "upsert must be a boolean"}
			}
			opts.Upsert = b
		default:
			return nil, &PlanError{Method: method, Field: "options", Detail: fmt.Sprintf("unknown option %q", e.Key)}
		}
	}
	return opts, nil
}

// describe names a decoded value's type in user terms.
func describe(v interface{}) string {
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
