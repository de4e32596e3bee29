package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_FromRoot(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "version: 1\nroot_plan: false\ntimeout: 30s\nexit_codes:\n  skip: 3\n")

	res, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if res.Root != dir {
		t.Errorf("Root = %q, want %q", res.Root, dir)
	}
	if res.Config.Version != 1 {
		t.Errorf("Config.Version = %d, want 1", res.Config.Version)
	}
	if res.Config.RootPlanEnabled() {
		t.Error("RootPlanEnabled() = true, want false")
	}
	if got := res.Config.Timeout(); got != 30*time.Second {
		t.Errorf("Timeout() = %v, want 30s", got)
	}
	if got := res.Config.ExitCodes.SkipCode(); got != 3 {
		t.Errorf("SkipCode() = %d, want 3", got)
	}
}

func TestLoad_FromSubdirectory(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "version: 2\n")

	sub := filepath.Join(root, "tests", "board")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	res, err := Load(sub)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if res.Root != root {
		t.Errorf("Root = %q, want %q", res.Root, root)
	}
	if res.Config.Version != 2 {
		t.Errorf("Config.Version = %d, want 2", res.Config.Version)
	}
}

func TestLoad_NoFile(t *testing.T) {
	dir := t.TempDir()

	res, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if res.Root != dir {
		t.Errorf("Root = %q, want %q", res.Root, dir)
	}
	if !res.Config.RootPlanEnabled() {
		t.Error("RootPlanEnabled() = false, want true by default")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "version: [unclosed\n")

	if _, err := Load(dir); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestLoad_RejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "exit_codes:\n  skip: 99\n")

	_, err := Load(dir)
	if err == nil {
		t.Fatal("expected error for clashing exit codes")
	}
	if !strings.Contains(err.Error(), "both use 99") {
		t.Errorf("error = %q, want clash message", err)
	}
}

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	if got := cfg.ManifestPattern(); got != DefaultPattern {
		t.Errorf("ManifestPattern() = %q, want %q", got, DefaultPattern)
	}
	if got := cfg.Timeout(); got != 0 {
		t.Errorf("Timeout() = %v, want 0", got)
	}
	if got := cfg.MaxOutputBytes(); got != DefaultMaxOutput {
		t.Errorf("MaxOutputBytes() = %d, want %d", got, DefaultMaxOutput)
	}
	if got := cfg.HistorySize(); got != DefaultHistory {
		t.Errorf("HistorySize() = %d, want %d", got, DefaultHistory)
	}
	if got := cfg.ExitCodes.ToDoCode(); got != 0 {
		t.Errorf("ToDoCode() = %d, want 0", got)
	}
	if got := cfg.ExitCodes.BailOutCode(); got != DefaultBailOutCode {
		t.Errorf("BailOutCode() = %d, want %d", got, DefaultBailOutCode)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"bad timeout", Config{RawTimeout: "soon"}, "invalid timeout"},
		{"out of range", Config{ExitCodes: ExitCodes{Fail: 300}}, "not a valid exit status"},
		{"todo clash", Config{ExitCodes: ExitCodes{ToDo: 1}}, "both use 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.want)
			}
		})
	}
}
