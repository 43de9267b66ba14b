package store

import "errors"

var (
	ErrStore    = errors.New("store error")
	ErrNotFound = errors.New("procurement not found")
)
