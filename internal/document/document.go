// Package document loads and saves local configuration documents in YAML or
// JSON form, as edited through the console.
package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads a configuration document, choosing the codec by file extension
// (.yaml/.yml vs .json).
func Load(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	var doc map[string]any
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decode yaml document: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decode json document: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported document extension %q", ext)
	}

	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}

// Save writes the document atomically (temp file + rename), choosing the
// codec by file extension.
func Save(path string, doc map[string]any) error {
	if doc == nil {
		return errors.New("document is nil")
	}

	var payload []byte
	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		payload, err = yaml.Marshal(doc)
	case ".json":
		payload, err = json.MarshalIndent(doc, "", "  ")
	default:
		return fmt.Errorf("unsupported document extension %q", ext)
	}
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		tmpFile.Close()
		os.Remove(tmpFile.Name())
	}()

	if _, err := tmpFile.Write(payload); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpFile.Name(), path); err != nil {
		return fmt.Errorf("replace document: %w", err)
	}
	return nil
}
