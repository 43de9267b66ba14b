package cli

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"loud", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseLevel(tt.name); got != tt.want {
				t.Fatalf("parseLevel(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestLoadEnvFileExplicitMissing(t *testing.T) {
	t.Setenv(envFileVar, filepath.Join(t.TempDir(), "absent.list"))
	if err := loadEnvFile(); err == nil {
		t.Fatal("expected error for a missing explicit env file")
	}
}

func TestLoadEnvFileExplicit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "service.list")
	if err := os.WriteFile(path, []byte("PROCUREMENT_TEST_KEY=from-file\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(envFileVar, path)
	t.Setenv("PROCUREMENT_TEST_KEY", "from-process")

	if err := loadEnvFile(); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv("PROCUREMENT_TEST_KEY"); got != "from-file" {
		t.Fatalf("PROCUREMENT_TEST_KEY = %q, want from-file", got)
	}
}

func TestLoadEnvFileDefaultMissing(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(envFileVar, "")
	if err := loadEnvFile(); err != nil {
		t.Fatalf("missing default env file: %v", err)
	}
}
