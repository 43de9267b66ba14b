package internal

import (
	"fmt"
	"runtime"
	"strings"
)

const (

	// Placeholder for a variable the build did not stamp.
	defaultUndefined = "(undefined)"

	// Reported instead of a version for builds outside the release target.
	defaultLocalBuild = "(local)"

	// Branch whose name is omitted from version strings.
	mainBranch = "main"
)

// Stamped by the release target with -ldflags "-X ...". See [Stamp].
var (
	version   = "" // Version number (e.g., "1.2.3")
	stage     = "" // Git branch the release was cut from (e.g., "staging", "main")
	gitCommit = "" // Git commit hash (e.g., "a1b2c3d4")

	rawQuiet   = "false"
	rawDebug   = "false"
	rawVerbose = "false"
)

// Values written into a release binary by the linker.
type Stamp struct {
	Version   string
	Stage     string
	GitCommit string
	Quiet     bool
	Debug     bool
}

// Returns the linker arguments that write the stamp into this package.
//
// Empty fields are skipped so that a partial stamp still yields a "(local)"
// version string at run time.
func (s Stamp) LinkerFlags() []string {
	var flags []string
	add := func(name, value string) {
		if value != "" {
			flags = append(flags, "-X", fmt.Sprintf("%s.%s=%s", ImportPath, name, value))
		}
	}
	add("version", s.Version)
	add("stage", s.Stage)
	add("gitCommit", s.GitCommit)
	if s.Quiet {
		add("rawQuiet", "true")
	}
	if s.Debug {
		add("rawDebug", "true")
	}
	return flags
}

// Returns the current version without a leading "v", or "(undefined)".
func Version() string {
	v := strings.ToLower(strings.TrimSpace(version))
	if v == "" {
		return defaultUndefined
	}
	return strings.TrimPrefix(v, "v")
}

// Returns the branch the binary was built from, or "(undefined)".
func Stage() string {
	s := strings.TrimSpace(stage)
	if s == "" {
		return defaultUndefined
	}
	return strings.ToLower(s)
}

// Returns the git commit hash, or "(undefined)".
func GitCommit() string {
	c := strings.TrimSpace(gitCommit)
	if c == "" {
		return defaultUndefined
	}
	return c
}

// A build is local unless version, commit and stage were all stamped.
func IsLocal() bool {
	return strings.TrimSpace(version) == "" ||
		strings.TrimSpace(gitCommit) == "" ||
		strings.TrimSpace(stage) == ""
}

// Returns "<version>+<stage> <git-commit> [<arch>]", or "(local)".
//
// The stage suffix is dropped for builds cut from main.
func VersionString() string {
	if IsLocal() {
		return defaultLocalBuild
	}

	s := Stage()
	if s == mainBranch {
		s = ""
	} else {
		s = "+" + s
	}

	return fmt.Sprintf("%s%s %s [%s]", Version(), s, GitCommit(), runtime.GOARCH)
}
