package envfile

import "errors"

var (
	ErrEnvFile = errors.New("env file error")
)
