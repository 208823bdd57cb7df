// Package session persists named database snapshots as Extended JSON files
// under the user config directory. A snapshot holds every collection of a
// store; mingo -db <name> loads it before executing and saves it back after
// a mutating operation.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// namePattern restricts snapshot names to safe file-name material.
var namePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.-]*$`)

// configDir returns the directory holding snapshot files:
// $XDG_CONFIG_HOME/mingo, or ~/.config/mingo.
func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "mingo")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mingo"
	}
	return filepath.Join(home, ".config", "mingo")
}

// snapshotPath returns the file path for a named snapshot, creating the
// config directory as needed.
func snapshotPath(name string) (string, error) {
	if !namePattern.MatchString(name) {
		return "", fmt.Errorf("invalid database name %q", name)
	}
	dir := configDir()
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return filepath.Join(dir, name+".json"), nil
}

// Load reads a named snapshot. Returns nil with no error when the snapshot
// does not exist. A snapshot file readable by group or others is refused.
func Load(name string) (map[string][]bson.D, error) {
	path, err := snapshotPath(name)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to stat snapshot: %w", err)
	}
	if mode := info.Mode().Perm(); mode&0044 != 0 {
		return nil, fmt.Errorf("snapshot %s has insecure permissions (%s): group or world readable, refusing to load", path, mode)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var file bson.D
	if err := bson.UnmarshalExtJSON(data, false, &file); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}
	return decodeSnapshot(path, file)
}

// decodeSnapshot walks the parsed snapshot document:
// {"collections": {"<name>": [docs...]}}.
func decodeSnapshot(path string, file bson.D) (map[string][]bson.D, error) {
	malformed := func(detail string) error {
		return fmt.Errorf("malformed snapshot %s: %s", path, detail)
	}

	var colls bson.D
	found := false
	for _, e := range file {
		if e.Key == "collections" {
			var ok bool
			colls, ok = e.Value.(bson.D)
			if !ok {
				return nil, malformed("collections is not a document")
			}
			found = true
			break
		}
	}
	if !found {
		return nil, malformed("missing collections document")
	}

	out := make(map[string][]bson.D, len(colls))
	for _, coll := range colls {
		arr, ok := coll.Value.(bson.A)
		if !ok {
			return nil, malformed(fmt.Sprintf("collection %q is not an array", coll.Key))
		}
		docs := make([]bson.D, len(arr))
		for i, v := range arr {
			doc, ok := v.(bson.D)
			if !ok {
				return nil, malformed(fmt.Sprintf("collection %q element %d is not a document", coll.Key, i))
			}
			docs[i] = doc
		}
		out[coll.Key] = docs
	}
	return out, nil
}

// Save writes a named snapshot with 0600 permissions. Collection names are
// written in sorted order so saves are stable under diff.
func Save(name string, collections map[string][]bson.D) error {
	path, err := snapshotPath(name)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(collections))
	for n := range collections {
		names = append(names, n)
	}
	sort.Strings(names)

	colls := bson.D{}
	for _, n := range names {
		arr := make(bson.A, len(collections[n]))
		for i, doc := range collections[n] {
			arr[i] = doc
		}
		colls = append(colls, bson.E{Key: n, Value: arr})
	}
	file := bson.D{{Key: "collections", Value: colls}}

	data, err := bson.MarshalExtJSONIndent(file, false, false, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// Delete removes a named snapshot. Deleting a missing snapshot is a no-op.
func Delete(name string) error {
	path, err := snapshotPath(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

// List returns the names of every stored snapshot, sorted.
func List() ([]string, error) {
	entries, err := os.ReadDir(configDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}
