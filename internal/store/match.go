package store

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// matchDocument reports whether doc satisfies the filter. An empty or nil
// filter matches every document. Each filter entry is either an operator
// document ($eq, $ne, $gt, $gte, $lt, $lte, $in, $nin, $exists) applied to
// the field's value, or a literal value compared for equality. Field names
// may be dotted paths descending into nested documents.
func matchDocument(doc, filter bson.D) (bool, error) {
	for _, cond := range filter {
		value, exists := lookupPath(doc, cond.Key)

		if ops, ok := operatorDocument(cond.Value); ok {
			matched, err := matchOperators(value, exists, ops)
			if err != nil {
				return false, err
			}
			if !matched {
				return false, nil
			}
			continue
		}

		if !exists || !valuesEqual(value, cond.Value) {
			return false, nil
		}
	}
	return true, nil
}

// operatorDocument reports whether v is a document whose keys are all
// $-operators. A document mixing operator and plain keys is treated as a
// literal value, matching only a field holding that exact document.
func operatorDocument(v interface{}) (bson.D, bool) {
	doc, ok := v.(bson.D)
	if !ok || len(doc) == 0 {
		return nil, false
	}
	for _, e := range doc {
		if !strings.HasPrefix(e.Key, "$") {
			return nil, false
		}
	}
	return doc, true
}

// matchOperators applies each operator in the document to the field value.
// All operators must hold.
func matchOperators(value interface{}, exists bool, ops bson.D) (bool, error) {
	for _, op := range ops {
		switch op.Key {
		case "$eq":
			if !exists || !valuesEqual(value, op.Value) {
				return false, nil
			}
		case "$ne":
			// Matches missing fields, like the real thing.
			if exists && valuesEqual(value, op.Value) {
				return false, nil
			}
		case "$gt", "$gte", "$lt", "$lte":
			if !exists {
				return false, nil
			}
			cmp, comparable := compareValues(value, op.Value)
			if !comparable {
				return false, nil
			}
			ok := false
			switch op.Key {
			case "$gt":
				ok = cmp > 0
			case "$gte":
				ok = cmp >= 0
			case "$lt":
				ok = cmp < 0
			case "$lte":
				ok = cmp <= 0
			}
			if !ok {
				return false, nil
			}
		case "$in":
			arr, ok := op.Value.(bson.A)
			if !ok {
				return false, &EngineError{Op: "filter", Detail: "$in requires an array operand"}
			}
			if !exists || !containsValue(arr, value) {
				return false, nil
			}
		case "$nin":
			arr, ok := op.Value.(bson.A)
			if !ok {
				return false, &EngineError{Op: "filter", Detail: "$nin requires an array operand"}
			}
			if exists && containsValue(arr, value) {
				return false, nil
			}
		case "$exists":
			want, ok := op.Value.(bool)
			if !ok {
				return false, &EngineError{Op: "filter", Detail: "$exists requires a boolean operand"}
			}
			if exists != want {
				return false, nil
			}
		default:
			return false, &EngineError{Op: "filter", Detail: fmt.Sprintf("unknown operator %q", op.Key)}
		}
	}
	return true, nil
}

// lookupPath resolves a possibly dotted field path against a document. The
// second return value reports whether the full path exists.
func lookupPath(doc bson.D, path string) (interface{}, bool) {
	parts := strings.Split(path, ".")
	var current interface{} = doc
	for _, part := range parts {
		d, ok := current.(bson.D)
		if !ok {
			return nil, false
		}
		current, ok = lookupField(d, part)
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// lookupField finds a top-level field in a document.
func lookupField(doc bson.D, key string) (interface{}, bool) {
	for _, e := range doc {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// containsValue reports whether arr holds an element equal to v.
func containsValue(arr bson.A, v interface{}) bool {
	for _, elem := range arr {
		if valuesEqual(elem, v) {
			return true
		}
	}
	return false
}

// valuesEqual compares two decoded values. Numbers compare numerically
// across int64 and float64; documents compare field by field in order;
// arrays element by element.
func valuesEqual(a, b interface{}) bool {
	if an, aok := asFloat(a); aok {
		bn, bok := asFloat(b)
		return bok && an == bn
	}

	switch av := a.(type) {
	case bson.D:
		bv, ok := b.(bson.D)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i].Key != bv[i].Key || !valuesEqual(av[i].Value, bv[i].Value) {
				return false
			}
		}
		return true
	case bson.A:
		bv, ok := b.(bson.A)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !valuesEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	}

	return a == b
}

// compareValues orders two values. Only numbers and strings are ordered;
// anything else is not comparable and never satisfies a range operator.
func compareValues(a, b interface{}) (int, bool) {
	if an, aok := asFloat(a); aok {
		bn, bok := asFloat(b)
		if !bok {
			return 0, false
		}
		switch {
		case an < bn:
			return -1, true
		case an > bn:
			return 1, true
		}
		return 0, true
	}

	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return strings.Compare(as, bs), true
	}
	return 0, false
}

// asFloat widens any stored numeric type to float64 for comparison.
func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
