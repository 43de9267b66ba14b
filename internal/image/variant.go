package image

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// A base image and the package manager commands that go with it.
type Variant struct {
	Name    string            // Variant name, e.g. "debian".
	Base    string            // Pinned base image reference.
	Index   string            // Refreshes the package index. Optional.
	Upgrade string            // Upgrades installed packages.
	Install string            // Install command; packages are appended.
	Clean   string            // Cleanup run after package changes. Optional.
	Tools   []string          // Diagnostic tools installed unless disabled.
	Env     map[string]string // Build-time environment of the package setup.
}

var variants = map[string]Variant{
	"debian": {
		Name:    "debian",
		Base:    "debian:bookworm-slim",
		Index:   "apt-get update",
		Upgrade: "apt-get -y upgrade",
		Install: "apt-get install -y --no-install-recommends",
		Clean:   "rm -rf /var/lib/apt/lists/*",
		Tools:   []string{"curl"},
		Env:     map[string]string{"DEBIAN_FRONTEND": "noninteractive"},
	},
	"fedora": {
		Name:    "fedora",
		Base:    "registry.fedoraproject.org/fedora-minimal:40",
		Upgrade: "microdnf -y update",
		Install: "microdnf -y install",
		Clean:   "microdnf clean all",
	},
}

// Returns the variant registered under name.
func Lookup(name string) (Variant, error) {
	v, ok := variants[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Variant{}, fmt.Errorf("%w: %q (known: %s)", ErrUnknownVariant, name, strings.Join(Variants(), ", "))
	}
	return v, nil
}

// Returns the registered variant names in sorted order.
func Variants() []string {
	return slices.Sorted(maps.Keys(variants))
}

// Returns the command installing packages, or "" when there are none.
func (v Variant) installCommand(packages []string) string {
	if len(packages) == 0 {
		return ""
	}
	return v.Install + " " + strings.Join(packages, " ")
}
