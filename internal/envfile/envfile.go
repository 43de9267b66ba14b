package envfile

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/joho/godotenv"
)

// Default name of the env list file, resolved against the project root.
const DefaultName = "ENV.list"

// Reads all KEY=VALUE pairs from the file at path.
func Read(path string) (map[string]string, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrEnvFile, path, err)
	}
	slog.Debug("env file read", "path", path, "keys", len(vars))
	return vars, nil
}

// Reads the file at path, treating a missing file as empty.
//
// Used for the default list file, which is optional. A file named
// explicitly by the user should be read with [Read] instead.
func ReadOptional(path string) (map[string]string, error) {
	vars, err := Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("env file not found, skipping", "path", path)
		return map[string]string{}, nil
	}
	return vars, err
}

// Loads the file at path into the current process environment. Keys in the
// file replace variables already present, matching [Merge].
func Load(path string) error {
	if err := godotenv.Overload(path); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrEnvFile, path, err)
	}
	return nil
}

// Overlays vars on top of base, a list of "key=value" strings such as
// [os.Environ]. Keys in vars win. The result is sorted by key so that
// commands see a stable environment.
func Merge(base []string, vars map[string]string) []string {
	merged := make(map[string]string, len(base)+len(vars))
	for _, entry := range base {
		if k, v, ok := strings.Cut(entry, "="); ok {
			merged[k] = v
		}
	}
	maps.Copy(merged, vars)

	keys := slices.Sorted(maps.Keys(merged))
	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+merged[k])
	}
	return env
}
