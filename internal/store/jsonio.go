package store

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/atomicio"
	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/storeerr"
)

// writeJSON marshals v with two-space indentation (spec §6, "on-disk
// format — JSON, UTF-8, two-space indentation") and writes it atomically.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return storeerr.New(storeerr.IOError, "marshaling record")
	}
	if err := atomicio.WriteFile(path, data, 0o644); err != nil {
		return storeerr.New(storeerr.IOError, "writing record to disk")
	}
	return nil
}

// createJSONExclusive is writeJSON's O_CREAT|O_EXCL-equivalent sibling,
// used to serialize project-creation races.
func createJSONExclusive(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return storeerr.New(storeerr.IOError, "marshaling record")
	}
	if err := atomicio.CreateExclusive(path, data, 0o644); err != nil {
		if os.IsExist(err) {
			return storeerr.New(storeerr.AlreadyExists, "record already exists")
		}
		return storeerr.New(storeerr.IOError, "writing record to disk")
	}
	return nil
}

// readJSON loads and unmarshals the JSON file at path into v.
func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return storeerr.New(storeerr.NotFound, "record not found")
		}
		return storeerr.New(storeerr.IOError, "reading record from disk")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return storeerr.New(storeerr.IOError, "parsing record")
	}
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
