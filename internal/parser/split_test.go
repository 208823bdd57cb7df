package parser

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSplitArguments(t *testing.T) {
	tests := []struct {
		name    string
		blob    string
		want    []string
		wantErr bool
	}{
		{name: "empty blob", blob: "", want: nil},
		{name: "blank blob", blob: "   ", want: nil},
		{name: "single document", blob: `{"a": 1}`, want: []string{`{"a": 1}`}},
		{
			name: "two documents split on top-level comma",
			blob: `{"a": 1}, {"b": 2}`,
			want: []string{`{"a": 1}`, ` {"b": 2}`},
		},
		{
			name: "comma inside string kept",
			blob: `{"title": "Hello, World"}`,
			want: []string{`{"title": "Hello, World"}`},
		},
		{
			name: "comma inside nested braces kept",
			blob: `{"a": {"b": 1, "c": 2}}`,
			want: []string{`{"a": {"b": 1, "c": 2}}`},
		},
		{
			name: "comma inside brackets kept",
			blob: `[1, 2, 3], {"x": 1}`,
			want: []string{"[1, 2, 3]", ` {"x": 1}`},
		},
		{
			name: "escaped quote does not end the string",
			blob: `{"m": "a\",b"}`,
			want: []string{`{"m": "a\",b"}`},
		},
		{
			name: "single-quoted text shields commas too",
			blob: `{'m': 'a,b'}`,
			want: []string{`{'m': 'a,b'}`},
		},
		{
			name: "scalars split",
			blob: `"x", 5, null, true`,
			want: []string{`"x"`, " 5", " null", " true"},
		},
		{
			name: "trailing comma tolerated",
			blob: `{"a": 1},`,
			want: []string{`{"a": 1}`},
		},
		{
			name: "empty middle segment kept",
			blob: "1,,2",
			want: []string{"1", "", "2"},
		},
		{
			name: "lone comma yields one empty segment",
			blob: ",",
			want: []string{""},
		},
		{name: "open brace unbalanced", blob: `{"a": 1`, wantErr: true},
		{name: "over-closed brace unbalanced", blob: `{"a": 1}}`, wantErr: true},
		{name: "open bracket unbalanced", blob: "[1, 2", wantErr: true},
		{name: "brace closed by bracket unbalanced", blob: `{"a": 1]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SplitArguments(tt.blob)
			if (err != nil) != tt.wantErr {
				t.Errorf("SplitArguments(%q) error = %v, wantErr %v", tt.blob, err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("SplitArguments(%q) mismatch (-want +got):\n%s", tt.blob, diff)
			}
		})
	}
}

func TestSplitArgumentsUnbalancedDepths(t *testing.T) {
	_, err := SplitArguments(`{"a": {"b": 1}`)
	if err == nil {
		t.Fatal("SplitArguments() expected error for unbalanced blob")
	}
	var unbalErr *UnbalancedStructureError
	if !errors.As(err, &unbalErr) {
		t.Fatalf("error = %T (%v), want *UnbalancedStructureError", err, err)
	}
	if unbalErr.Braces != 1 {
		t.Errorf("UnbalancedStructureError.Braces = %d, want 1", unbalErr.Braces)
	}
	if unbalErr.Blob != `{"a": {"b": 1}` {
		t.Errorf("UnbalancedStructureError.Blob = %q, want the original blob", unbalErr.Blob)
	}
}
