package envfile

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRead(t *testing.T) {
	path := writeFile(t, "# comment\nSERVICE_ADDR_PROCUREMENT=[::1]:50063\nexport PROCUREMENT_DATA_DIR=/tmp/data\nQUOTED=\"a b\"\n")

	vars, err := Read(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]string{
		"SERVICE_ADDR_PROCUREMENT": "[::1]:50063",
		"PROCUREMENT_DATA_DIR":     "/tmp/data",
		"QUOTED":                   "a b",
	}
	if len(vars) != len(want) {
		t.Fatalf("vars = %v, want %v", vars, want)
	}
	for k, v := range want {
		if vars[k] != v {
			t.Errorf("vars[%s] = %q, want %q", k, vars[k], v)
		}
	}
}

func TestReadMissing(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope"))
	if !errors.Is(err, ErrEnvFile) {
		t.Fatalf("err = %v, want ErrEnvFile", err)
	}
}

func TestReadOptionalMissing(t *testing.T) {
	vars, err := ReadOptional(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vars) != 0 {
		t.Fatalf("vars = %v, want empty", vars)
	}
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name string
		base []string
		vars map[string]string
		want []string
	}{
		{
			name: "file overrides base",
			base: []string{"A=1", "B=2"},
			vars: map[string]string{"A": "file"},
			want: []string{"A=file", "B=2"},
		},
		{
			name: "file adds keys",
			base: []string{"B=2"},
			vars: map[string]string{"A": "1"},
			want: []string{"A=1", "B=2"},
		},
		{
			name: "malformed base entries dropped",
			base: []string{"BROKEN", "C=x=y"},
			vars: nil,
			want: []string{"C=x=y"},
		},
		{
			name: "empty",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(tt.base, tt.vars)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLoadOverridesExisting(t *testing.T) {
	path := writeFile(t, "ENVFILE_TEST_SET=file\nENVFILE_TEST_NEW=file\n")
	t.Setenv("ENVFILE_TEST_SET", "process")
	t.Setenv("ENVFILE_TEST_NEW", "")
	os.Unsetenv("ENVFILE_TEST_NEW")

	if err := Load(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := os.Getenv("ENVFILE_TEST_SET"); got != "file" {
		t.Errorf("ENVFILE_TEST_SET = %q, want file", got)
	}
	if got := os.Getenv("ENVFILE_TEST_NEW"); got != "file" {
		t.Errorf("ENVFILE_TEST_NEW = %q, want file", got)
	}
}

// Load and Merge apply the same precedence.
func TestLoadMatchesMerge(t *testing.T) {
	path := writeFile(t, "ENVFILE_TEST_DIR=/b\n")
	t.Setenv("ENVFILE_TEST_DIR", "/a")

	vars, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	merged := Merge(os.Environ(), vars)

	if err := Load(path); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv("ENVFILE_TEST_DIR"); got != "/b" {
		t.Fatalf("Load left ENVFILE_TEST_DIR = %q, want /b", got)
	}
	if !slices.Contains(merged, "ENVFILE_TEST_DIR=/b") {
		t.Fatal("Merge should give the file value too")
	}
}
