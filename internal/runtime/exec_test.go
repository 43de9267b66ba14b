package runtime

import (
	"slices"
	"testing"
)

func TestMergeEnv(t *testing.T) {
	tests := []struct {
		name      string
		base      []string
		overrides []string
		want      []string
	}{
		{"override", []string{"PATH=/usr/bin", "LANG=C"}, []string{"LANG=C.UTF-8"}, []string{"LANG=C.UTF-8", "PATH=/usr/bin"}},
		{"add", []string{"PATH=/usr/bin"}, []string{"DEBIAN_FRONTEND=noninteractive"}, []string{"DEBIAN_FRONTEND=noninteractive", "PATH=/usr/bin"}},
		{"value with equals", nil, []string{"OPTS=a=b"}, []string{"OPTS=a=b"}},
		{"malformed skipped", []string{"BROKEN", "A=1"}, []string{"ALSO", "B=2"}, []string{"A=1", "B=2"}},
		{"empty", nil, nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mergeEnv(tt.base, tt.overrides)
			if !slices.Equal(got, tt.want) {
				t.Fatalf("mergeEnv = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNextExecID(t *testing.T) {
	a, b := nextExecID(), nextExecID()
	if a == b || a == "" {
		t.Fatalf("ids %q, %q not unique", a, b)
	}
}
