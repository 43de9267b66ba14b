package runtime

import (
	"fmt"
	"testing"

	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

func TestImageConfigApply(t *testing.T) {
	img := ocispec.ImageConfig{
		Cmd:        []string{"bash"},
		WorkingDir: "/",
		Labels:     map[string]string{"base": "debian"},
	}

	ImageConfig{
		Entrypoint: []string{"/app/procurement_microservice"},
		WorkingDir: "/app",
		StopSignal: "SIGINT",
		Labels:     map[string]string{"service": "procurement"},
	}.apply(&img)

	if len(img.Entrypoint) != 1 || img.Entrypoint[0] != "/app/procurement_microservice" {
		t.Fatalf("entrypoint = %v", img.Entrypoint)
	}
	if img.Cmd != nil {
		t.Fatalf("cmd = %v, want nil", img.Cmd)
	}
	if img.WorkingDir != "/app" || img.StopSignal != "SIGINT" {
		t.Fatalf("config = %+v", img)
	}
	if img.Labels["base"] != "debian" || img.Labels["service"] != "procurement" {
		t.Fatalf("labels = %v", img.Labels)
	}
}

func TestImageConfigApplyEmptyKeepsBase(t *testing.T) {
	img := ocispec.ImageConfig{Cmd: []string{"bash"}, StopSignal: "SIGTERM"}
	ImageConfig{}.apply(&img)

	if len(img.Cmd) != 1 || img.StopSignal != "SIGTERM" {
		t.Fatalf("config = %+v, want base values", img)
	}
}

func TestManifestGCLabels(t *testing.T) {
	m := ocispec.Manifest{
		Config: ocispec.Descriptor{Digest: digest.FromString("config")},
		Layers: []ocispec.Descriptor{
			{Digest: digest.FromString("base")},
			{Digest: digest.FromString("service")},
		},
	}

	labels := manifestGCLabels(m)
	if len(labels) != 3 {
		t.Fatalf("len(labels) = %d, want 3", len(labels))
	}
	if labels["containerd.io/gc.ref.content.config"] != m.Config.Digest.String() {
		t.Fatal("config label mismatch")
	}
	for i, layer := range m.Layers {
		key := fmt.Sprintf("containerd.io/gc.ref.content.l.%d", i)
		if labels[key] != layer.Digest.String() {
			t.Fatalf("labels[%q] = %q, want %q", key, labels[key], layer.Digest.String())
		}
	}
}

func TestIndexGCLabels(t *testing.T) {
	idx := ocispec.Index{Manifests: []ocispec.Descriptor{{Digest: digest.FromString("m")}}}
	labels := indexGCLabels(idx)
	if labels["containerd.io/gc.ref.content.m.0"] != idx.Manifests[0].Digest.String() {
		t.Fatalf("labels = %v", labels)
	}
}
