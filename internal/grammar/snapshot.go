package grammar

import "encoding/json"

// Snapshot represents a snapshot of the grammar for drift detection.
type Snapshot struct {
	Methods []MethodSnapshot `json:"methods"`
}

// MethodSnapshot represents a method in the snapshot.
type MethodSnapshot struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Args        []string `json:"args,omitempty"`
	MinArgs     int      `json:"minArgs"`
	MaxArgs     int      `json:"maxArgs"`
}

// GetSnapshot returns a JSON-serializable snapshot of the grammar.
func GetSnapshot() Snapshot {
	g := GetGrammar()

	methods := make([]MethodSnapshot, len(g.Methods))
	for i, m := range g.Methods {
		methods[i] = MethodSnapshot{
			Name:        m.Name,
			Description: m.Description,
			Args:        m.Args,
			MinArgs:     m.MinArgs,
			MaxArgs:     m.MaxArgs,
		}
	}

	return Snapshot{Methods: methods}
}

// GetSnapshotJSON returns the snapshot as JSON bytes.
func GetSnapshotJSON() ([]byte, error) {
	snapshot := GetSnapshot()
	return json.MarshalIndent(snapshot, "", "  ")
}
