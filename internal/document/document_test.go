package document

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSave_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracking.yaml")
	content := "interval: 30\nschedule:\n  - start: sunrise+00:30\n    stop: sunset-00:30\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc["interval"] != 30 {
		t.Errorf("expected interval 30, got %v", doc["interval"])
	}

	doc["interval"] = 60
	if err := Save(path, doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reloaded["interval"] != 60 {
		t.Errorf("expected interval 60 after save, got %v", reloaded["interval"])
	}
	if _, ok := reloaded["schedule"]; !ok {
		t.Error("expected schedule preserved across round trip")
	}
}

func TestLoadSave_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracking.json")
	if err := os.WriteFile(path, []byte(`{"interval": 30}`), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// encoding/json decodes numbers as float64
	if doc["interval"] != float64(30) {
		t.Errorf("expected interval 30, got %v", doc["interval"])
	}

	if err := Save(path, doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := Load(path); err != nil {
		t.Fatalf("reload after save: %v", err)
	}
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracking.toml")
	if err := os.WriteFile(path, []byte("interval = 30"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSave_NilDocument(t *testing.T) {
	if err := Save(filepath.Join(t.TempDir(), "doc.yaml"), nil); err == nil {
		t.Error("expected error for nil document")
	}
}
