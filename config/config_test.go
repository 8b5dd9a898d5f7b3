package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Walk.Order != "time-reverse" {
		t.Errorf("Walk.Order = %q, expected %q", cfg.Walk.Order, "time-reverse")
	}
	if cfg.Walk.Branch != "HEAD" {
		t.Errorf("Walk.Branch = %q, expected %q", cfg.Walk.Branch, "HEAD")
	}
	if cfg.Diff.RenameDetect != "auto" {
		t.Errorf("Diff.RenameDetect = %q, expected %q", cfg.Diff.RenameDetect, "auto")
	}
	if cfg.Diff.Backend != "native" {
		t.Errorf("Diff.Backend = %q, expected %q", cfg.Diff.Backend, "native")
	}
	if cfg.Diff.Unresolved != "skip" {
		t.Errorf("Diff.Unresolved = %q, expected %q", cfg.Diff.Unresolved, "skip")
	}
	if len(cfg.Match.Patterns) != 4 {
		t.Errorf("Match.Patterns length = %d, expected 4", len(cfg.Match.Patterns))
	}
	if cfg.Burst.WindowDays != 7 {
		t.Errorf("Burst.WindowDays = %d, expected 7", cfg.Burst.WindowDays)
	}
	if cfg.Coupling.MinCoCommits != 3 {
		t.Errorf("Coupling.MinCoCommits = %d, expected 3", cfg.Coupling.MinCoCommits)
	}
	if cfg.Output.Top != 20 {
		t.Errorf("Output.Top = %d, expected 20", cfg.Output.Top)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{name: "negative max count", mutate: func(c *Config) { c.Walk.MaxCount = -1 }, field: "walk.maxCount"},
		{name: "zero burst window", mutate: func(c *Config) { c.Burst.WindowDays = 0 }, field: "burst.windowDays"},
		{name: "zero half life", mutate: func(c *Config) { c.Activity.HalfLifeDays = 0 }, field: "activity.halfLifeDays"},
		{name: "tiny coupling limit", mutate: func(c *Config) { c.Coupling.MaxFilesPerCommit = 1 }, field: "coupling.maxFilesPerCommit"},
		{name: "jaccard above one", mutate: func(c *Config) { c.Coupling.MinJaccardThreshold = 1.5 }, field: "coupling.minJaccardThreshold"},
		{name: "negative top", mutate: func(c *Config) { c.Output.Top = -3 }, field: "output.top"},
		{name: "unknown color", mutate: func(c *Config) { c.Output.Color = "sometimes" }, field: "output.color"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q does not mention %s", err, tt.field)
			}
		})
	}
}

func TestLoadConfig_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.json")
	data := `{"walk": {"order": "topo"}, "filters": {"exclude": ["vendor/**"]}, "output": {"top": 5}}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Walk.Order != "topo" {
		t.Errorf("Walk.Order = %q, expected %q", cfg.Walk.Order, "topo")
	}
	if len(cfg.Filters.Exclude) != 1 || cfg.Filters.Exclude[0] != "vendor/**" {
		t.Errorf("Filters.Exclude = %v", cfg.Filters.Exclude)
	}
	if cfg.Output.Top != 5 {
		t.Errorf("Output.Top = %d, expected 5", cfg.Output.Top)
	}
	// Unset fields keep their defaults.
	if cfg.Walk.Branch != "HEAD" {
		t.Errorf("Walk.Branch = %q, expected default", cfg.Walk.Branch)
	}
}

func TestLoadConfig_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	data := "diff:\n  renameDetect: off\n  backend: git\ncoupling:\n  topPairs: 3\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Diff.RenameDetect != "off" {
		t.Errorf("Diff.RenameDetect = %q, expected %q", cfg.Diff.RenameDetect, "off")
	}
	if cfg.Diff.Backend != "git" {
		t.Errorf("Diff.Backend = %q, expected %q", cfg.Diff.Backend, "git")
	}
	if cfg.Coupling.TopPairs != 3 {
		t.Errorf("Coupling.TopPairs = %d, expected 3", cfg.Coupling.TopPairs)
	}
	if cfg.Coupling.MinCoCommits != 3 {
		t.Errorf("Coupling.MinCoCommits = %d, expected default 3", cfg.Coupling.MinCoCommits)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(bad); err == nil {
		t.Error("expected parse error")
	}

	invalid := filepath.Join(dir, "invalid.json")
	if err := os.WriteFile(invalid, []byte(`{"burst": {"windowDays": -1}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(invalid); err == nil {
		t.Error("expected validation error")
	}

	cfg, err := LoadConfig(filepath.Join(dir, "missing.json"))
	if err != nil {
		t.Fatalf("missing file should fall back to defaults: %v", err)
	}
	if cfg.Output.Format != "console" {
		t.Errorf("Output.Format = %q, expected default", cfg.Output.Format)
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	for _, name := range []string{"out.json", "out.yml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			cfg := DefaultConfig()
			cfg.Walk.Order = "topo-reverse"
			cfg.Filters.Include = []string{"src/**"}

			if err := SaveConfig(cfg, path); err != nil {
				t.Fatalf("SaveConfig: %v", err)
			}
			loaded, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("LoadConfig: %v", err)
			}
			if loaded.Walk.Order != "topo-reverse" {
				t.Errorf("Walk.Order = %q, expected %q", loaded.Walk.Order, "topo-reverse")
			}
			if len(loaded.Filters.Include) != 1 || loaded.Filters.Include[0] != "src/**" {
				t.Errorf("Filters.Include = %v", loaded.Filters.Include)
			}
		})
	}
}
