package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Walk     WalkConfig     `json:"walk" yaml:"walk"`
	Diff     DiffConfig     `json:"diff" yaml:"diff"`
	Filters  FilterConfig   `json:"filters" yaml:"filters"`
	Match    MatchConfig    `json:"match" yaml:"match"`
	Burst    BurstConfig    `json:"burst" yaml:"burst"`
	Activity ActivityConfig `json:"activity" yaml:"activity"`
	Coupling CouplingConfig `json:"coupling" yaml:"coupling"`
	Output   OutputConfig   `json:"output" yaml:"output"`
}

// WalkConfig holds commit walk defaults.
type WalkConfig struct {
	Order    string `json:"order" yaml:"order"`       // Default: "time-reverse"
	Branch   string `json:"branch" yaml:"branch"`     // Default: "HEAD"
	MaxCount int    `json:"maxCount" yaml:"maxCount"` // 0 = unlimited
}

// DiffConfig holds change classification options.
type DiffConfig struct {
	RenameDetect string `json:"renameDetect" yaml:"renameDetect"` // auto, off, simple, aggressive
	Backend      string `json:"backend" yaml:"backend"`           // native or git
	Unresolved   string `json:"unresolved" yaml:"unresolved"`     // skip or error
}

// MatchConfig holds the commit message patterns used by `log --fixes`.
type MatchConfig struct {
	Patterns []string `json:"patterns" yaml:"patterns"`
}

// BurstConfig holds burst calculation options.
type BurstConfig struct {
	WindowDays int `json:"windowDays" yaml:"windowDays"`
}

// ActivityConfig holds the weights of the file activity score used by
// `stats --sort activity`.
type ActivityConfig struct {
	HalfLifeDays int             `json:"halfLifeDays" yaml:"halfLifeDays"`
	Weights      ActivityWeights `json:"weights" yaml:"weights"`
}

// ActivityWeights holds the weight of each activity component.
type ActivityWeights struct {
	Commit    float64 `json:"commit" yaml:"commit"`
	Churn     float64 `json:"churn" yaml:"churn"`
	Recency   float64 `json:"recency" yaml:"recency"`
	Burst     float64 `json:"burst" yaml:"burst"`
	Ownership float64 `json:"ownership" yaml:"ownership"`
	Fixes     float64 `json:"fixes" yaml:"fixes"`
}

// CouplingConfig holds coupling analysis options.
type CouplingConfig struct {
	MinCoCommits        int     `json:"minCoCommits" yaml:"minCoCommits"`
	MinJaccardThreshold float64 `json:"minJaccardThreshold" yaml:"minJaccardThreshold"`
	MaxFilesPerCommit   int     `json:"maxFilesPerCommit" yaml:"maxFilesPerCommit"`
	TopPairs            int     `json:"topPairs" yaml:"topPairs"`
}

// FilterConfig holds file path filtering options.
type FilterConfig struct {
	Include []string `json:"include" yaml:"include"`
	Exclude []string `json:"exclude" yaml:"exclude"`
}

// OutputConfig holds report defaults.
type OutputConfig struct {
	Format string `json:"format" yaml:"format"` // console, json, ndjson, csv, markdown
	Top    int    `json:"top" yaml:"top"`
	Color  string `json:"color" yaml:"color"` // auto, always, never
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Walk: WalkConfig{
			Order:  "time-reverse",
			Branch: "HEAD",
		},
		Diff: DiffConfig{
			RenameDetect: "auto",
			Backend:      "native",
			Unresolved:   "skip",
		},
		Filters: FilterConfig{
			Include: []string{},
			Exclude: []string{},
		},
		Match: MatchConfig{
			Patterns: []string{
				`\bfix(ed|es)?\b`,
				`\bbug\b`,
				`\bhotfix\b`,
				`\bpatch\b`,
			},
		},
		Burst: BurstConfig{
			WindowDays: 7,
		},
		Activity: ActivityConfig{
			HalfLifeDays: 30,
			Weights: ActivityWeights{
				Commit:    0.25,
				Churn:     0.25,
				Recency:   0.20,
				Burst:     0.10,
				Ownership: 0.10,
				Fixes:     0.10,
			},
		},
		Coupling: CouplingConfig{
			MinCoCommits:        3,
			MinJaccardThreshold: 0.1,
			MaxFilesPerCommit:   50,
			TopPairs:            20,
		},
		Output: OutputConfig{
			Format: "console",
			Top:    20,
			Color:  "auto",
		},
	}
}

// Validate checks value ranges that cannot be expressed by the file format.
func (c *Config) Validate() error {
	var errs []error
	if c.Walk.MaxCount < 0 {
		errs = append(errs, fmt.Errorf("walk.maxCount must be >= 0, got %d", c.Walk.MaxCount))
	}
	if c.Burst.WindowDays <= 0 {
		errs = append(errs, fmt.Errorf("burst.windowDays must be > 0, got %d", c.Burst.WindowDays))
	}
	if c.Activity.HalfLifeDays <= 0 {
		errs = append(errs, fmt.Errorf("activity.halfLifeDays must be > 0, got %d", c.Activity.HalfLifeDays))
	}
	if c.Coupling.MaxFilesPerCommit < 2 {
		errs = append(errs, fmt.Errorf("coupling.maxFilesPerCommit must be >= 2, got %d", c.Coupling.MaxFilesPerCommit))
	}
	if c.Coupling.MinJaccardThreshold < 0 || c.Coupling.MinJaccardThreshold > 1 {
		errs = append(errs, fmt.Errorf("coupling.minJaccardThreshold must be within [0,1], got %g", c.Coupling.MinJaccardThreshold))
	}
	if c.Output.Top < 0 {
		errs = append(errs, fmt.Errorf("output.top must be >= 0, got %d", c.Output.Top))
	}
	switch strings.ToLower(c.Output.Color) {
	case "", "auto", "always", "never":
	default:
		errs = append(errs, fmt.Errorf("output.color must be auto, always or never, got %q", c.Output.Color))
	}
	return errors.Join(errs...)
}

// configNames are the file names searched, in order, by LoadConfig.
var configNames = []string{".gitcommits.json", ".gitcommits.yaml", ".gitcommits.yml"}

// LoadConfig loads configuration from a file, merging with defaults.
// With an empty path the working directory and then the home directory are
// searched for .gitcommits.json, .gitcommits.yaml and .gitcommits.yml.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = findConfig()
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if isYAML(path) {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func findConfig() string {
	dirs := []string{"."}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		dirs = append(dirs, home)
	} else if envHome := os.Getenv("HOME"); envHome != "" {
		dirs = append(dirs, envHome)
	}
	for _, dir := range dirs {
		for _, name := range configNames {
			p := filepath.Join(dir, name)
			if _, err := os.Stat(p); err == nil {
				return p
			}
		}
	}
	return ""
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// SaveConfig saves configuration to a file. The format follows the extension.
func SaveConfig(cfg *Config, path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
