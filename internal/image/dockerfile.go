package image

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"path"
	"text/template"

	"github.com/gardenzilla/procurement/internal"
)

//go:embed dockerfile.tmpl
var dockerfileSource string

var dockerfileTemplate = template.Must(template.New("Dockerfile").Parse(dockerfileSource))

// Values substituted into the Dockerfile template.
type dockerfileData struct {
	Builder    *builderData // Set for source builds.
	Base       string
	Args       []string // Rendered KEY=value build arguments.
	Setup      string
	Workdir    string
	From       string // Stage the binary is copied from, if any.
	Source     string // Path of the binary in the context or stage.
	Target     string
	Labels     []string // Rendered key="value" pairs.
	StopSignal string
	Entrypoint string // JSON array, exec form.
}

type builderData struct {
	Image   string
	Stage   string
	Source  string
	Compile string
}

// Renders the definition as a Dockerfile. The build context is expected to
// hold the binary under its in-image name, or the source tree for source
// builds. Variant environment is declared with ARG so it applies to the
// package setup without persisting in the image.
func (d *Definition) Dockerfile() (string, error) {
	entrypoint, err := json.Marshal(d.Entrypoint())
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRender, err)
	}

	data := dockerfileData{
		Base:       d.Variant.Base,
		Setup:      d.Setup(),
		Workdir:    d.Workdir,
		Source:     internal.BinaryName,
		Target:     d.Target(),
		StopSignal: StopSignal,
		Entrypoint: string(entrypoint),
	}
	if d.Source != "" {
		data.Builder = &builderData{
			Image:   d.Builder,
			Stage:   builderStage,
			Source:  builderSource,
			Compile: d.Compile(),
		}
		data.From = builderStage
		data.Source = path.Join(builderOutput, internal.BinaryName)
	}
	if data.Setup != "" {
		for _, k := range slices.Sorted(maps.Keys(d.Variant.Env)) {
			data.Args = append(data.Args, k+"="+d.Variant.Env[k])
		}
	}
	for _, k := range slices.Sorted(maps.Keys(d.Labels)) {
		data.Labels = append(data.Labels, k+"="+strconv.Quote(d.Labels[k]))
	}

	var b strings.Builder
	if err := dockerfileTemplate.Execute(&b, data); err != nil {
		return "", fmt.Errorf("%w: %w", ErrRender, err)
	}
	return b.String(), nil
}
