package store

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// applyUpdate applies an operator-keyed update document ($set, $unset,
// $inc) to doc and returns the new document. The input is never mutated.
// The changed flag reports whether the result differs from the input.
func applyUpdate(doc, update bson.D) (bson.D, bool, error) {
	out := cloneDocument(doc)
	changed := false

	for _, op := range update {
		fields, ok := op.Value.(bson.D)
		if !ok {
			return nil, false, &EngineError{Op: "update", Detail: fmt.Sprintf("%s requires a document operand", op.Key)}
		}

		switch op.Key {
		case "$set":
			for _, f := range fields {
				before, existed := lookupPath(out, f.Key)
				if existed && valuesEqual(before, f.Value) {
					continue
				}
				next, err := setPath(out, f.Key, cloneValue(f.Value))
				if err != nil {
					return nil, false, err
				}
				out = next
				changed = true
			}
		case "$unset":
			for _, f := range fields {
				next, removed := unsetPath(out, f.Key)
				out = next
				if removed {
					changed = true
				}
			}
		case "$inc":
			for _, f := range fields {
				delta, ok := asFloat(f.Value)
				if !ok {
					return nil, false, &EngineError{Op: "update", Detail: fmt.Sprintf("$inc value for %q is not a number", f.Key)}
				}
				current, existed := lookupPath(out, f.Key)
				base := 0.0
				if existed {
					base, ok = asFloat(current)
					if !ok {
						return nil, false, &EngineError{Op: "update", Detail: fmt.Sprintf("cannot $inc non-numeric field %q", f.Key)}
					}
				}
				next, err := setPath(out, f.Key, normalizeNumber(base+delta, f.Value, current))
				if err != nil {
					return nil, false, err
				}
				out = next
				changed = true
			}
		default:
			return nil, false, &EngineError{Op: "update", Detail: fmt.Sprintf("unknown update operator %q", op.Key)}
		}
	}

	return out, changed, nil
}

// normalizeNumber keeps an incremented value integral when both the stored
// value and the delta were integral.
func normalizeNumber(sum float64, delta, current interface{}) interface{} {
	if isIntegral(delta) && (current == nil || isIntegral(current)) && sum == float64(int64(sum)) {
		return int64(sum)
	}
	return sum
}

func isIntegral(v interface{}) bool {
	switch v.(type) {
	case int32, int64:
		return true
	}
	return false
}

// setPath sets a possibly dotted field path, creating intermediate
// documents as needed. Setting through a non-document value is an error.
func setPath(doc bson.D, path string, value interface{}) (bson.D, error) {
	head, rest, nested := strings.Cut(path, ".")

	for i, e := range doc {
		if e.Key != head {
			continue
		}
		if !nested {
			doc[i].Value = value
			return doc, nil
		}
		inner, ok := e.Value.(bson.D)
		if !ok {
			return nil, &EngineError{Op: "update", Detail: fmt.Sprintf("cannot set %q: %q is not a document", path, head)}
		}
		updated, err := setPath(inner, rest, value)
		if err != nil {
			return nil, err
		}
		doc[i].Value = updated
		return doc, nil
	}

	if !nested {
		return append(doc, bson.E{Key: head, Value: value}), nil
	}
	inner, err := setPath(bson.D{}, rest, value)
	if err != nil {
		return nil, err
	}
	return append(doc, bson.E{Key: head, Value: inner}), nil
}

// unsetPath removes a possibly dotted field path. Missing paths are a
// no-op, reported by the second return value.
func unsetPath(doc bson.D, path string) (bson.D, bool) {
	head, rest, nested := strings.Cut(path, ".")

	for i, e := range doc {
		if e.Key != head {
			continue
		}
		if !nested {
			return append(doc[:i], doc[i+1:]...), true
		}
		inner, ok := e.Value.(bson.D)
		if !ok {
			return doc, false
		}
		updated, removed := unsetPath(inner, rest)
		doc[i].Value = updated
		return doc, removed
	}
	return doc, false
}

// upsertSeed builds the starting document for an upsert from the filter's
// literal equality fields. Operator conditions and dotted paths contribute
// nothing.
func upsertSeed(filter bson.D) bson.D {
	seed := bson.D{}
	for _, cond := range filter {
		if strings.Contains(cond.Key, ".") {
			continue
		}
		if _, isOp := operatorDocument(cond.Value); isOp {
			continue
		}
		seed = append(seed, bson.E{Key: cond.Key, Value: cloneValue(cond.Value)})
	}
	return seed
}

// cloneDocument deep-copies a document.
func cloneDocument(doc bson.D) bson.D {
	if doc == nil {
		return nil
	}
	out := make(bson.D, len(doc))
	for i, e := range doc {
		out[i] = bson.E{Key: e.Key, Value: cloneValue(e.Value)}
	}
	return out
}

// cloneValue deep-copies a decoded value. Scalars are immutable and pass
// through.
func cloneValue(v interface{}) interface{} {
	switch val := v.(type) {
	case bson.D:
		return cloneDocument(val)
	case bson.A:
		out := make(bson.A, len(val))
		for i, elem := range val {
			out[i] = cloneValue(elem)
		}
		return out
	}
	return v
}
