package image

import "errors"

var (
	ErrUnknownVariant = errors.New("unknown image variant")
	ErrMissingBinary  = errors.New("release binary not found")
	ErrMissingSource  = errors.New("source tree not found")
	ErrRender         = errors.New("failed to render image definition")
	ErrImageBuild     = errors.New("image build failed")
)
