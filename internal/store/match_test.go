package store

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestMatchDocument(t *testing.T) {
	doc := bson.D{
		{Key: "name", Value: "Ada"},
		{Key: "age", Value: int64(36)},
		{Key: "score", Value: 9.5},
		{Key: "active", Value: true},
		{Key: "address", Value: bson.D{
			{Key: "city", Value: "London"},
			{Key: "geo", Value: bson.D{{Key: "lat", Value: 51.5}}},
		}},
		{Key: "tags", Value: bson.A{"math", "computing"}},
	}

	tests := []struct {
		name   string
		filter bson.D
		want   bool
	}{
		{name: "empty filter matches", filter: bson.D{}, want: true},
		{name: "nil filter matches", filter: nil, want: true},
		{name: "equality match", filter: bson.D{{Key: "name", Value: "Ada"}}, want: true},
		{name: "equality mismatch", filter: bson.D{{Key: "name", Value: "Grace"}}, want: false},
		{name: "missing field", filter: bson.D{{Key: "missing", Value: 1}}, want: false},
		{name: "numeric equality across types", filter: bson.D{{Key: "age", Value: 36.0}}, want: true},
		{name: "dotted path", filter: bson.D{{Key: "address.city", Value: "London"}}, want: true},
		{name: "dotted path two levels", filter: bson.D{{Key: "address.geo.lat", Value: 51.5}}, want: true},
		{name: "dotted path through scalar", filter: bson.D{{Key: "name.x", Value: 1}}, want: false},
		{name: "array equality", filter: bson.D{{Key: "tags", Value: bson.A{"math", "computing"}}}, want: true},
		{name: "array order matters", filter: bson.D{{Key: "tags", Value: bson.A{"computing", "math"}}}, want: false},
		{
			name:   "eq operator",
			filter: bson.D{{Key: "age", Value: bson.D{{Key: "$eq", Value: int64(36)}}}},
			want:   true,
		},
		{
			name:   "ne operator",
			filter: bson.D{{Key: "age", Value: bson.D{{Key: "$ne", Value: int64(36)}}}},
			want:   false,
		},
		{
			name:   "ne matches missing field",
			filter: bson.D{{Key: "missing", Value: bson.D{{Key: "$ne", Value: int64(1)}}}},
			want:   true,
		},
		{
			name:   "gte boundary",
			filter: bson.D{{Key: "age", Value: bson.D{{Key: "$gte", Value: int64(36)}}}},
			want:   true,
		},
		{
			name:   "gt boundary",
			filter: bson.D{{Key: "age", Value: bson.D{{Key: "$gt", Value: int64(36)}}}},
			want:   false,
		},
		{
			name:   "lt with float operand",
			filter: bson.D{{Key: "age", Value: bson.D{{Key: "$lt", Value: 36.5}}}},
			want:   true,
		},
		{
			name:   "string ordering",
			filter: bson.D{{Key: "name", Value: bson.D{{Key: "$lt", Value: "Grace"}}}},
			want:   true,
		},
		{
			name:   "range on incomparable types never matches",
			filter: bson.D{{Key: "active", Value: bson.D{{Key: "$gt", Value: false}}}},
			want:   false,
		},
		{
			name:   "range on missing field",
			filter: bson.D{{Key: "missing", Value: bson.D{{Key: "$lt", Value: int64(1)}}}},
			want:   false,
		},
		{
			name:   "in operator",
			filter: bson.D{{Key: "name", Value: bson.D{{Key: "$in", Value: bson.A{"Grace", "Ada"}}}}},
			want:   true,
		},
		{
			name:   "nin operator",
			filter: bson.D{{Key: "name", Value: bson.D{{Key: "$nin", Value: bson.A{"Grace"}}}}},
			want:   true,
		},
		{
			name:   "exists true",
			filter: bson.D{{Key: "score", Value: bson.D{{Key: "$exists", Value: true}}}},
			want:   true,
		},
		{
			name:   "exists false on missing",
			filter: bson.D{{Key: "missing", Value: bson.D{{Key: "$exists", Value: false}}}},
			want:   true,
		},
		{
			name: "multiple conditions all required",
			filter: bson.D{
				{Key: "name", Value: "Ada"},
				{Key: "age", Value: bson.D{{Key: "$gte", Value: int64(30)}, {Key: "$lt", Value: int64(40)}}},
			},
			want: true,
		},
		{
			name: "literal document with non-operator keys",
			filter: bson.D{{Key: "address", Value: bson.D{
				{Key: "city", Value: "London"},
				{Key: "geo", Value: bson.D{{Key: "lat", Value: 51.5}}},
			}}},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := matchDocument(doc, tt.filter)
			if err != nil {
				t.Fatalf("matchDocument() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("matchDocument(%v) = %v, want %v", tt.filter, got, tt.want)
			}
		})
	}
}

func TestMatchDocumentErrors(t *testing.T) {
	doc := bson.D{{Key: "age", Value: int64(36)}}

	tests := []struct {
		name   string
		filter bson.D
	}{
		{
			name:   "unknown operator",
			filter: bson.D{{Key: "age", Value: bson.D{{Key: "$regex", Value: "a"}}}},
		},
		{
			name:   "in without array",
			filter: bson.D{{Key: "age", Value: bson.D{{Key: "$in", Value: int64(36)}}}},
		},
		{
			name:   "nin without array",
			filter: bson.D{{Key: "age", Value: bson.D{{Key: "$nin", Value: "x"}}}},
		},
		{
			name:   "exists without boolean",
			filter: bson.D{{Key: "age", Value: bson.D{{Key: "$exists", Value: int64(1)}}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := matchDocument(doc, tt.filter)
			var engineErr *EngineError
			if !errors.As(err, &engineErr) {
				t.Fatalf("matchDocument() error = %v, want *EngineError", err)
			}
		})
	}
}
