package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/YuminosukeSato/houseprice/pkg/errors"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvDataPath, EnvArtifactsDir, EnvSeed, EnvTestSize, EnvLogLevel, EnvPlotPath, EnvListenAddr, EnvHereAPIKey, EnvHereMapsJSKey} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("got %+v, want defaults %+v", cfg, Default())
	}
	if cfg.Seed != 42 || cfg.TestSize != 0.2 || cfg.ArtifactsDir != "artifacts" || cfg.ListenAddr != ":5000" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadYAMLThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "houseprice.yaml")
	yml := "dataPath: /data/bengaluru.csv\nseed: 7\ntestSize: 0.25\nplotPath: out/eval.png\n"
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv(EnvSeed, "99")
	t.Setenv(EnvArtifactsDir, "/tmp/bundle")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DataPath != "/data/bengaluru.csv" || cfg.TestSize != 0.25 || cfg.PlotPath != "out/eval.png" {
		t.Errorf("YAML values not applied: %+v", cfg)
	}
	if cfg.Seed != 99 || cfg.ArtifactsDir != "/tmp/bundle" {
		t.Errorf("environment should override YAML: %+v", cfg)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("unset fields should keep defaults: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		yaml string
	}{
		{name: "bad seed", env: map[string]string{EnvSeed: "forty-two"}},
		{name: "bad test size", env: map[string]string{EnvTestSize: "1.5"}},
		{name: "bad log level", env: map[string]string{EnvLogLevel: "verbose"}},
		{name: "bad plot extension", env: map[string]string{EnvPlotPath: "eval.jpg"}},
		{name: "unknown yaml field", yaml: "seeed: 1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.yaml != "" {
				path = filepath.Join(t.TempDir(), "c.yaml")
				if err := os.WriteFile(path, []byte(tt.yaml), 0o600); err != nil {
					t.Fatal(err)
				}
			}
			if _, err := Load(path); err == nil {
				t.Error("expected error")
			}
		})
	}

	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing config file should fail")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.TestSize = 0
	err := cfg.Validate()
	var ve *errors.ValidationError
	if !errors.As(err, &ve) || ve.ParamName != "testSize" {
		t.Errorf("expected ValidationError for testSize, got %v", err)
	}

	cfg = Default()
	cfg.PlotPath = "eval.SVG"
	if err := cfg.Validate(); err != nil {
		t.Errorf("upper-case extension should be accepted: %v", err)
	}
}

func TestLoadHereKeys(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "houseprice.yaml")
	if err := os.WriteFile(path, []byte("hereApiKey: from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.HereAPIKey != "from-file" || cfg.HereMapsJSKey != "" {
		t.Errorf("unexpected keys: %+v", cfg)
	}

	t.Setenv(EnvHereAPIKey, "from-env")
	t.Setenv(EnvHereMapsJSKey, "js-key")
	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.HereAPIKey != "from-env" || cfg.HereMapsJSKey != "js-key" {
		t.Errorf("environment should override the file: %+v", cfg)
	}
}
