package build

import "errors"

var (
	ErrBuild         = errors.New("image build failed")
	ErrInvalidRecipe = errors.New("invalid recipe")
	ErrCommandFailed = errors.New("command failed")
	ErrFileSystem    = errors.New("file system operation failed")
	ErrCopy          = errors.New("copy failed")
)
