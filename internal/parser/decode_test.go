package parser

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.mongodb.org/mongo-driver/bson"
)

func TestDecodeArgument(t *testing.T) {
	tests := []struct {
		name    string
		segment string
		want    interface{}
		wantErr bool
	}{
		{name: "integer", segment: "5", want: int64(5)},
		{name: "negative integer", segment: "-3", want: int64(-3)},
		{name: "float", segment: "5.5", want: 5.5},
		{name: "exponent becomes float", segment: "1e3", want: float64(1000)},
		{
			name:    "large integer keeps precision",
			segment: "9007199254740993",
			want:    int64(9007199254740993),
		},
		{name: "string", segment: `"hi"`, want: "hi"},
		{name: "empty string value", segment: `""`, want: ""},
		{name: "true", segment: "true", want: true},
		{name: "false", segment: "false", want: false},
		{name: "null", segment: "null", want: nil},
		{
			name:    "array",
			segment: `[1, "a", null]`,
			want:    bson.A{int64(1), "a", nil},
		},
		{
			name:    "document keeps key order",
			segment: `{"z": 1, "a": 2, "m": 3}`,
			want: bson.D{
				{Key: "z", Value: int64(1)},
				{Key: "a", Value: int64(2)},
				{Key: "m", Value: int64(3)},
			},
		},
		{
			name:    "nested values",
			segment: `{"a": [{"b": true}], "c": {"d": null}}`,
			want: bson.D{
				{Key: "a", Value: bson.A{bson.D{{Key: "b", Value: true}}}},
				{Key: "c", Value: bson.D{{Key: "d", Value: nil}}},
			},
		},
		{
			name:    "duplicate key keeps first position and last value",
			segment: `{"a": 1, "b": 2, "a": 3}`,
			want: bson.D{
				{Key: "a", Value: int64(3)},
				{Key: "b", Value: int64(2)},
			},
		},
		{
			name:    "surrounding whitespace trimmed",
			segment: `  {"a": 1}  `,
			want:    bson.D{{Key: "a", Value: int64(1)}},
		},
		{
			name:    "escaped quotes decode to literal text",
			segment: `{"msg": "He said \"Hi\""}`,
			want:    bson.D{{Key: "msg", Value: `He said "Hi"`}},
		},
		{
			name:    "dollar keys stay opaque",
			segment: `{"$set": {"a": 1}}`,
			want:    bson.D{{Key: "$set", Value: bson.D{{Key: "a", Value: int64(1)}}}},
		},
		{name: "empty segment", segment: "", wantErr: true},
		{name: "bare word", segment: "{bad}", wantErr: true},
		{name: "missing value", segment: `{"a":}`, wantErr: true},
		{name: "single-quoted string is not JSON", segment: "'hi'", wantErr: true},
		{name: "trailing data rejected", segment: "1 2", wantErr: true},
		{name: "trailing garbage after document", segment: `{"a": 1} x`, wantErr: true},
		{name: "unterminated string", segment: `"abc`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeArgument(tt.segment)
			if (err != nil) != tt.wantErr {
				t.Errorf("decodeArgument(%q) error = %v, wantErr %v", tt.segment, err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("decodeArgument(%q) mismatch (-want +got):\n%s", tt.segment, diff)
			}
		})
	}
}

func TestDecodeArgumentErrorContext(t *testing.T) {
	_, err := decodeArgument("  {broken  ")
	if err == nil {
		t.Fatal("decodeArgument() expected error")
	}
	var decodeErr *ArgumentDecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("error = %T (%v), want *ArgumentDecodeError", err, err)
	}
	if decodeErr.Segment != "{broken" {
		t.Errorf("ArgumentDecodeError.Segment = %q, want %q", decodeErr.Segment, "{broken")
	}
	if decodeErr.Err == nil {
		t.Error("ArgumentDecodeError.Err = nil, want the underlying decode error")
	}
}
