package importer

import (
	"path/filepath"
	"testing"
)

func TestState_SaveAndReload(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "nested", "state.json")

	s, err := LoadState(statePath)
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	s.MarkProcessed("a.txt")
	s.RecordsSaved = 1
	s.AddError("b.eml: llm extraction: connection refused")

	if err := s.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded, err := LoadState(statePath)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reloaded.IsProcessed("a.txt") || reloaded.IsProcessed("b.eml") {
		t.Errorf("unexpected processed files: %v", reloaded.FilesProcessed)
	}
	if reloaded.RecordsSaved != 1 || len(reloaded.Errors) != 1 {
		t.Errorf("unexpected state: %+v", reloaded)
	}
	if reloaded.LastProcessedAt.IsZero() {
		t.Error("expected LastProcessedAt to be set")
	}
}

func TestExpandHome(t *testing.T) {
	if got := expandHome("/abs/path"); got != "/abs/path" {
		t.Errorf("absolute path changed: %q", got)
	}
	if got := expandHome("~/x.json"); got == "~/x.json" {
		t.Error("expected ~ to be expanded")
	}
}
