package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestVersionDefault(t *testing.T) {
	if version != "dev" {
		t.Errorf("default version = %q, want %q", version, "dev")
	}
}

func TestNewRootCmd_HasSubcommands(t *testing.T) {
	root := newRootCmd()
	want := map[string]bool{"totals": false, "diff": false, "compare": false, "impacted": false, "serve": false}
	for _, c := range root.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DefaultFlags != nil || cfg.SessionMapping != nil {
		t.Fatalf("expected zero-value config, got %+v", cfg)
	}
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	os.WriteFile(path, []byte("default_flags: [unit, integration]\nsession_mapping:\n  0: [unit]\n"), 0644)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.DefaultFlags) != 2 || cfg.DefaultFlags[0] != "unit" {
		t.Fatalf("got default flags %v", cfg.DefaultFlags)
	}
	if len(cfg.SessionMapping[0]) != 1 || cfg.SessionMapping[0][0] != "unit" {
		t.Fatalf("got session mapping %v", cfg.SessionMapping)
	}
}

func TestLoadFilenames(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "filenames.json")
	os.WriteFile(path, []byte(`{"a.go": 0, "b.go": 1}`), 0644)

	m, err := loadFilenames(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m["a.go"] != 0 || m["b.go"] != 1 {
		t.Fatalf("got %v", m)
	}
}

func TestLoadDiffFile_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "diff.json")
	os.WriteFile(path, []byte(`{
		"file1.go": {
			"change_kind": "modified",
			"hunks": [{"base_start": 1, "head_start": 1, "markers": " +"}]
		}
	}`), 0644)

	diff, err := loadDiffFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	entry, ok := diff["file1.go"]
	if !ok {
		t.Fatal("missing file1.go entry")
	}
	if len(entry.Hunks) != 1 || string(entry.Hunks[0].Markers) != " +" {
		t.Fatalf("got hunks %+v", entry.Hunks)
	}
}

func TestLoadReport_RequiresSource(t *testing.T) {
	_, err := loadReport(reportSource{}, &Config{})
	if err == nil {
		t.Fatal("expected error when neither --chunks nor --profile is set")
	}
}
