package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAppConfigApplyDefaults(t *testing.T) {
	t.Run("empty environment defaults to development", func(t *testing.T) {
		cfg := AppConfig{Name: "mcpipe"}
		cfg.ApplyDefaults()
		if cfg.Environment != "development" {
			t.Errorf("expected 'development', got %q", cfg.Environment)
		}
		if !cfg.Debug {
			t.Error("expected debug=true for development")
		}
	})

	t.Run("production keeps debug false", func(t *testing.T) {
		cfg := AppConfig{Name: "mcpipe", Environment: "production"}
		cfg.ApplyDefaults()
		if cfg.Debug {
			t.Error("expected debug=false for production")
		}
	})

	t.Run("logging inherits app name", func(t *testing.T) {
		cfg := AppConfig{Name: "mcpipe"}
		cfg.ApplyDefaults()
		if cfg.Logging.ServiceName != "mcpipe" {
			t.Errorf("expected logging service name 'mcpipe', got %q", cfg.Logging.ServiceName)
		}
	})
}

func TestAppConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     AppConfig
		wantErr bool
		errMsg  string
	}{
		{"valid development", withLogging(AppConfig{Name: "app", Environment: "development"}), false, ""},
		{"valid production", withLogging(AppConfig{Name: "app", Environment: "production"}), false, ""},
		{"missing name", withLogging(AppConfig{Environment: "production"}), true, "config.name is required"},
		{"invalid environment", withLogging(AppConfig{Name: "app", Environment: "sandbox"}), true, "config.environment must be one of"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !strings.Contains(err.Error(), tc.errMsg) {
					t.Errorf("expected error containing %q, got %q", tc.errMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func withLogging(cfg AppConfig) AppConfig {
	cfg.Logging.ApplyDefaults()
	return cfg
}

func TestLoadConfigWithYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yml")

	yamlContent := `
name: mcpipe
environment: staging
chain:
  burn_in: 500
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	type ChainConfig struct {
		BurnIn int `yaml:"burn_in" mapstructure:"burn_in"`
	}
	type TestConfig struct {
		AppConfig `yaml:",inline" mapstructure:",squash"`
		Chain     ChainConfig `yaml:"chain" mapstructure:"chain"`
	}

	var cfg TestConfig
	if err := LoadConfig("mcpipe", &cfg, WithConfigFile(configPath)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Name != "mcpipe" {
		t.Errorf("expected name 'mcpipe', got %q", cfg.Name)
	}
	if cfg.Environment != "staging" {
		t.Errorf("expected environment 'staging', got %q", cfg.Environment)
	}
	if cfg.Chain.BurnIn != 500 {
		t.Errorf("expected burn_in 500, got %d", cfg.Chain.BurnIn)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	var cfg AppConfig
	if err := LoadConfig("nonexistent-app", &cfg, WithConfigFile("/nonexistent/path.yml")); err != nil {
		t.Fatalf("expected LoadConfig to succeed with missing file, got %v", err)
	}
}

type mockFS struct {
	files map[string]bool
}

func (m *mockFS) Exists(path string) bool   { return m.files[path] }
func (m *mockFS) LoadEnv(path string) error { return nil }

func TestResolverFindsCmdConfig(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		"./cmd/mcpipe/config.yml": true,
	}}
	resolver := &Resolver{FileSystem: fs}
	files := resolver.ResolveFiles("mcpipe", LoaderConfig{})
	if files.ConfigFile != "./cmd/mcpipe/config.yml" {
		t.Errorf("expected config file at ./cmd/mcpipe/config.yml, got %q", files.ConfigFile)
	}
}

func TestLoaderOptions(t *testing.T) {
	var lc LoaderConfig
	fs := &mockFS{}
	WithFileSystem(fs)(&lc)
	WithConfigFile("/path/to/config.yml")(&lc)
	WithEnvFile("/path/to/.env")(&lc)

	if lc.FileSystem == nil {
		t.Error("expected FileSystem to be set")
	}
	if lc.ConfigFile != "/path/to/config.yml" {
		t.Errorf("unexpected config file path %q", lc.ConfigFile)
	}
	if lc.EnvFile != "/path/to/.env" {
		t.Errorf("unexpected env file path %q", lc.EnvFile)
	}
}

func TestEnvKeyVariants(t *testing.T) {
	variants := envKeyVariants("SAMPLER_STEP_SIZE")
	want := map[string]bool{
		"sampler_step_size": false,
		"sampler.step.size": false,
		"sampler.step_size": false,
	}
	for _, v := range variants {
		if _, ok := want[v]; ok {
			want[v] = true
		}
	}
	for k, found := range want {
		if !found {
			t.Errorf("expected variant %q in %v", k, variants)
		}
	}
}
