package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gyaneshwarpardhi/lineage/internal/config"
)

const validYAML = `
version: v1
lineages:
  - id: ansel
    enabled: true
    root:
      name: Ansel
      year_converted: 1500
      offspring:
        - name: Timothy
          year_converted: 1825
          offspring:
            - name: Sarah
              year_converted: 1885
        - name: Andrew
          year_converted: 1895
`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lineages.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := config.Parse([]byte(validYAML))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	e := cfg.Engine
	if e.QueryWorkers != 8 || e.QueueDepth != 1000 || e.QueryTimeoutMs != 2000 || e.Threshold() != 1980 {
		t.Errorf("defaults not applied: %+v", e)
	}
	root := cfg.Lineages[0].Root
	if root.Name != "Ansel" || len(root.Offspring) != 2 || root.Offspring[0].Offspring[0].Name != "Sarah" {
		t.Errorf("tree decoded wrong: %+v", root)
	}
}

func TestParse_Overrides(t *testing.T) {
	cfg, err := config.Parse([]byte("version: v1\nengine:\n  query_workers: 3\n  year_threshold: 1900\n"))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if cfg.Engine.QueryWorkers != 3 || cfg.Engine.Threshold() != 1900 {
		t.Errorf("overrides lost: %+v", cfg.Engine)
	}
}

func TestParse_ZeroYearThreshold(t *testing.T) {
	cfg, err := config.Parse([]byte("version: v1\nengine:\n  year_threshold: 0\n"))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if got := cfg.Engine.Threshold(); got != 0 {
		t.Errorf("Threshold() = %d, want explicit 0", got)
	}
	if got := (config.EngineConf{}).Threshold(); got != 1980 {
		t.Errorf("unset Threshold() = %d, want 1980", got)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("expected error for missing file")
	}
	if _, err := config.Load(writeFile(t, "lineages: [")); err == nil {
		t.Errorf("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		yaml    string
		wantErr []string
	}{
		{name: "valid", yaml: validYAML},
		{
			name:    "missing version",
			yaml:    strings.Replace(validYAML, "version: v1", "", 1),
			wantErr: []string{"Version is required"},
		},
		{
			name:    "duplicate vampire",
			yaml:    strings.Replace(validYAML, "name: Andrew", "name: Sarah", 1),
			wantErr: []string{`duplicate vampire name "Sarah"`},
		},
		{
			name:    "missing name",
			yaml:    strings.Replace(validYAML, "name: Timothy", "name: \"\"", 1),
			wantErr: []string{"Name is required"},
		},
		{
			name: "duplicate lineage id",
			yaml: validYAML + `  - id: ansel
    enabled: true
    root:
      name: Other
`,
			wantErr: []string{`duplicate lineage id "ansel"`},
		},
		{
			name: "names may repeat across lineages",
			yaml: validYAML + `  - id: second
    root:
      name: Ansel
`,
		},
		{
			name:    "bad engine bounds",
			yaml:    validYAML + "engine:\n  query_workers: -1\n",
			wantErr: []string{"QueryWorkers must be at least 1"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := config.Parse([]byte(tc.yaml))
			if err != nil {
				t.Fatalf("Parse error: %v", err)
			}
			err = config.Validate(cfg)
			if len(tc.wantErr) == 0 {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %v", tc.wantErr)
			}
			for _, want := range tc.wantErr {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("error %q does not mention %q", err, want)
				}
			}
		})
	}
}

func TestLoader_ReloadCallbacks(t *testing.T) {
	path := writeFile(t, validYAML)
	l, err := config.NewLoader(path, nil)
	if err != nil {
		t.Fatalf("NewLoader error: %v", err)
	}

	var got *config.LineageConfig
	l.OnChange(func(cfg *config.LineageConfig) { got = cfg })

	if err := os.WriteFile(path, []byte(strings.Replace(validYAML, "version: v1", "version: v2", 1)), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := l.Reload(); err != nil {
		t.Fatalf("Reload error: %v", err)
	}
	if got == nil || got.Version != "v2" || l.Config().Version != "v2" {
		t.Errorf("callback/config not updated: %+v", got)
	}

	if err := os.WriteFile(path, []byte("lineages: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := l.Reload(); err == nil {
		t.Errorf("expected reload error")
	}
	if l.Config().Version != "v2" {
		t.Errorf("failed reload should keep previous config")
	}
}

func TestLoader_ValidateHookKeepsPrevious(t *testing.T) {
	path := writeFile(t, validYAML)
	l, err := config.NewLoader(path, config.Validate)
	if err != nil {
		t.Fatalf("NewLoader error: %v", err)
	}
	calls := 0
	l.OnChange(func(*config.LineageConfig) { calls++ })

	invalid := strings.Replace(validYAML, "name: Andrew", "name: Sarah", 1)
	if err := os.WriteFile(path, []byte(invalid), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = l.Reload()
	if !errors.Is(err, config.ErrInvalid) {
		t.Fatalf("Reload err = %v, want ErrInvalid", err)
	}
	if calls != 0 {
		t.Errorf("callbacks ran %d times for an invalid config", calls)
	}
	if err := config.Validate(l.Config()); err != nil {
		t.Errorf("current config should still be the valid one: %v", err)
	}

	if _, err := config.NewLoader(path, config.Validate); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("initial load of invalid file: err = %v, want ErrInvalid", err)
	}
}

func TestLoader_Watch(t *testing.T) {
	path := writeFile(t, validYAML)
	l, err := config.NewLoader(path, nil)
	if err != nil {
		t.Fatalf("NewLoader error: %v", err)
	}
	changed := make(chan string, 4)
	l.OnChange(func(cfg *config.LineageConfig) { changed <- cfg.Version })

	stop, err := l.Watch()
	if err != nil {
		t.Skipf("watcher unavailable: %v", err)
	}
	defer stop()

	if err := os.WriteFile(path, []byte(strings.Replace(validYAML, "version: v1", "version: v3", 1)), 0o644); err != nil {
		t.Fatal(err)
	}
	deadline := time.After(5 * time.Second)
	for {
		select {
		case v := <-changed:
			if v == "v3" {
				return
			}
		case <-deadline:
			t.Fatalf("watcher did not pick up the change")
		}
	}
}
