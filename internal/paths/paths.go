package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/gardenzilla/procurement/internal"
)

const (

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644

	// Default permission mode for the store file.
	PrivateFileMode os.FileMode = 0600

	// Default data directory, relative to the working directory. Inside the
	// image this resolves under the image workdir.
	DefaultDataDir = "data/procurement"
)

// Path to the directory for runtime files (PID file).
//
//	Linux:   $XDG_RUNTIME_DIR/procurement or /run/user/<uid>/procurement
//	macOS:   ~/Library/Caches/procurement/run
func Runtime() string {
	if xdg.RuntimeDir != "" {
		return filepath.Join(xdg.RuntimeDir, internal.Name)
	}
	return filepath.Join(xdg.CacheHome, internal.Name, "run")
}

// Default path to the service PID file.
func PIDFile() string {
	return filepath.Join(Runtime(), internal.BinaryName+".pid")
}

// Directory where procurectl keeps cloned source trees.
//
//	Linux:   $XDG_CACHE_HOME/procurement/sources
//	macOS:   ~/Library/Caches/procurement/sources
func Sources() string {
	return filepath.Join(xdg.CacheHome, internal.Name, "sources")
}

// Path of the store file inside a data directory.
func StoreFile(dataDir string) string {
	return filepath.Join(dataDir, internal.Name+".db")
}
