package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "data_dir: /tmp/run\n")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.DataDir != "/tmp/run" {
		t.Errorf("DataDir = %q", c.DataDir)
	}
	if c.Monitor.MinR2 != 0.75 || c.Monitor.RelTolerance != 0.1 {
		t.Errorf("monitor defaults = %v/%v", c.Monitor.MinR2, c.Monitor.RelTolerance)
	}
	if c.Storage.Backend != "jsonl" {
		t.Errorf("backend = %q", c.Storage.Backend)
	}
	if c.AlphaVantage.DaysBack != 365 || c.AlphaVantage.OutputSize != "full" {
		t.Errorf("alpha vantage defaults = %d/%q", c.AlphaVantage.DaysBack, c.AlphaVantage.OutputSize)
	}
	if c.Train.TestSize != 0.2 {
		t.Errorf("test size = %v", c.Train.TestSize)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
data_dir: work
storage:
  backend: memory
monitor:
  min_r2: 0.5
  variant: with_outliers
`)

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Storage.Backend != "memory" {
		t.Errorf("backend = %q", c.Storage.Backend)
	}
	if c.Monitor.MinR2 != 0.5 || c.Monitor.Variant != "with_outliers" {
		t.Errorf("monitor = %v/%q", c.Monitor.MinR2, c.Monitor.Variant)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"bad backend", "storage:\n  backend: sqlite\n"},
		{"bad variant", "monitor:\n  variant: sideways\n"},
		{"bad test size", "train:\n  test_size: 1.5\n"},
		{"bad log level", "logging:\n  level: loud\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tc.body)); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestEnvOverridesAPIKey(t *testing.T) {
	t.Setenv("ALPHA_VANTAGE_API_KEY", "from-env")

	c, err := Load(writeConfig(t, "alpha_vantage:\n  api_key: from-file\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.AlphaVantage.APIKey != "from-env" {
		t.Errorf("APIKey = %q, want env override", c.AlphaVantage.APIKey)
	}
}

func TestDefault(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if c.DataDir != "work" || c.Logging.Format != "console" {
		t.Errorf("defaults = %q/%q", c.DataDir, c.Logging.Format)
	}
}
