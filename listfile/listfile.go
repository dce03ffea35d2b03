// Package listfile reads and writes shopping lists as JSON files,
// used to move a list between devices without a sync.
package listfile

import (
	"bufio"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/spf13/afero"

	"github.com/szopper/go-szopper/common/types"
)

const (
	// SchemaVersion identifies the file format.
	SchemaVersion = "https://szopper.app/list.schema.json.1.0"

	schemaFile = "list.schema.json"
	dirPerm    = 0o700
)

// Schema of list files.
const Schema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["version", "items"],
  "properties": {
    "version": {"type": "string"},
    "deviceId": {"type": "string"},
    "exportedAt": {"type": "integer"},
    "items": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "name", "createdAt", "updatedAt"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "name": {"type": "string", "minLength": 1},
          "bought": {"type": "boolean"},
          "position": {"type": "integer", "minimum": -2147483648, "maximum": 2147483647},
          "createdAt": {"type": "integer"},
          "updatedAt": {"type": "integer"}
        }
      }
    }
  }
}`

// List is the content of a list file.
type List struct {
	Version    string       `json:"version"`
	DeviceID   string       `json:"deviceId,omitempty"`
	ExportedAt int64        `json:"exportedAt,omitempty"`
	Items      []types.Item `json:"items"`
}

// ValidateSchema checks data against Schema.
func ValidateSchema(data []byte) error {
	sch, err := jsonschema.CompileString(schemaFile, Schema)
	if err != nil {
		return fmt.Errorf("compile list json schema: %w", err)
	}
	var v any
	if err = json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal list data: %w", err)
	}
	if err = sch.Validate(v); err != nil {
		return fmt.Errorf("validate list data: %w", err)
	}
	return nil
}

// Write stores list at path. The file is replaced only once fully written.
func Write(fs afero.Fs, path string, list *List) error {
	list.Version = SchemaVersion
	if list.Items == nil {
		list.Items = []types.Item{}
	}
	if err := fs.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return fmt.Errorf("create dst dir %v: %w", filepath.Dir(path), err)
	}
	tmpf, err := afero.TempFile(fs, filepath.Dir(path), filepath.Base(path))
	if err != nil {
		return fmt.Errorf("create tmp file: %w", err)
	}
	defer tmpf.Close()
	w := bufio.NewWriter(tmpf)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(list); err != nil {
		_ = fs.Remove(tmpf.Name())
		return fmt.Errorf("encode list: %w", err)
	}
	if err := w.Flush(); err != nil {
		_ = fs.Remove(tmpf.Name())
		return fmt.Errorf("flush tmp file: %w", err)
	}
	if err := tmpf.Sync(); err != nil {
		_ = fs.Remove(tmpf.Name())
		return fmt.Errorf("sync tmp file: %w", err)
	}
	if err := tmpf.Close(); err != nil {
		_ = fs.Remove(tmpf.Name())
		return fmt.Errorf("close tmp file: %w", err)
	}
	if err := fs.Rename(tmpf.Name(), path); err != nil {
		return fmt.Errorf("rename tmp file %v to %v: %w", tmpf.Name(), path, err)
	}
	return nil
}

// Read loads and validates the list file at path.
func Read(fs afero.Fs, path string) (*List, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := ValidateSchema(data); err != nil {
		return nil, err
	}
	var list List
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("unmarshal list from %v: %w", path, err)
	}
	if list.Version != SchemaVersion {
		return nil, fmt.Errorf("expected version %v, got %v", SchemaVersion, list.Version)
	}
	for i := range list.Items {
		if err := list.Items[i].Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return &list, nil
}
