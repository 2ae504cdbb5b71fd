package scope

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// navDocument is the persisted navigation state.
type navDocument struct {
	ConfigGroup string `json:"config_group"`
}

// FileNav persists the group indicator in a small JSON state file, the CLI's
// stand-in for the browser URL. A missing file means no group is selected.
type FileNav struct {
	mu   sync.Mutex
	path string
}

// NewFileNav creates a file-backed navigation state at path.
func NewFileNav(path string) (*FileNav, error) {
	if path == "" {
		return nil, errors.New("state file path is required")
	}
	return &FileNav{path: path}, nil
}

// Group reads the stored group indicator; "" when none is stored.
func (n *FileNav) Group() (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	raw, err := os.ReadFile(n.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read state file: %w", err)
	}

	var doc navDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return "", fmt.Errorf("decode state file: %w", err)
	}
	return doc.ConfigGroup, nil
}

// SetGroup writes the group indicator atomically (temp file + rename).
func (n *FileNav) SetGroup(group string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	payload, err := json.MarshalIndent(navDocument{ConfigGroup: group}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	dir := filepath.Dir(n.path)
	tmpFile, err := os.CreateTemp(dir, filepath.Base(n.path)+".tmp-")
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
	if err := os.Rename(tmpFile.Name(), n.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}

// MemoryNav is an in-memory navigation state, used by tests and by callers
// that pin a group explicitly (e.g. a --group flag).
type MemoryNav struct {
	mu    sync.Mutex
	group string
}

// NewMemoryNav creates an in-memory navigation state holding group.
func NewMemoryNav(group string) *MemoryNav {
	return &MemoryNav{group: group}
}

func (n *MemoryNav) Group() (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.group, nil
}

func (n *MemoryNav) SetGroup(group string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.group = group
	return nil
}
