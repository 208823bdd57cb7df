package store

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// applyProjection shapes a document for output. A nil or empty projection
// returns a deep copy of the whole document. Otherwise the projection is
// either inclusion ({field: 1}) or exclusion ({field: 0}); mixing the two
// is an error, except that _id may always be excluded from an inclusion
// projection. _id is included by default.
func applyProjection(doc, projection bson.D) (bson.D, error) {
	if len(projection) == 0 {
		return cloneDocument(doc), nil
	}

	mode := "" // "include" or "exclude", set by the first non-_id field
	includeID := true
	fields := make(map[string]bool, len(projection))

	for _, e := range projection {
		include, err := projectionFlag(e.Key, e.Value)
		if err != nil {
			return nil, err
		}
		if e.Key == "_id" {
			includeID = include
			continue
		}
		want := "exclude"
		if include {
			want = "include"
		}
		if mode == "" {
			mode = want
		} else if mode != want {
			return nil, &EngineError{Op: "projection", Detail: "cannot mix inclusion and exclusion fields"}
		}
		fields[e.Key] = true
	}

	// Projection of _id alone: exclusion of _id keeps everything else,
	// inclusion of _id keeps only _id.
	if mode == "" {
		if includeID {
			mode = "include"
		} else {
			mode = "exclude"
		}
	}

	out := bson.D{}
	for _, e := range doc {
		if e.Key == "_id" {
			if includeID {
				out = append(out, bson.E{Key: e.Key, Value: cloneValue(e.Value)})
			}
			continue
		}
		keep := fields[e.Key]
		if mode == "exclude" {
			keep = !keep
		}
		if keep {
			out = append(out, bson.E{Key: e.Key, Value: cloneValue(e.Value)})
		}
	}
	return out, nil
}

// projectionFlag interprets a projection value as include (truthy number
// or true) or exclude (zero or false).
func projectionFlag(key string, v interface{}) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case int32:
		return val != 0, nil
	case int64:
		return val != 0, nil
	case float64:
		return val != 0, nil
	}
	return false, &EngineError{Op: "projection", Detail: fmt.Sprintf("field %q must be 0, 1, or a boolean", key)}
}
