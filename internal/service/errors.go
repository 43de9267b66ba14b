package service

import (
	"errors"

	"github.com/gardenzilla/procurement/internal/procurement"
	"github.com/gardenzilla/procurement/internal/store"
)

var (
	ErrBadRequest = errors.New("bad request")
)

// Category of a service error.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindAlreadyExists
	KindBadRequest
)

// Returns the category of err. Unclassified errors are internal.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, procurement.ErrSkuNotFound),
		errors.Is(err, procurement.ErrUplNotFound):
		return KindNotFound

	case errors.Is(err, procurement.ErrSkuExists),
		errors.Is(err, procurement.ErrUplExists):
		return KindAlreadyExists

	case errors.Is(err, ErrBadRequest),
		errors.Is(err, procurement.ErrInvalidUpl),
		errors.Is(err, procurement.ErrNoDeliveryDate),
		errors.Is(err, procurement.ErrEmpty),
		errors.Is(err, procurement.ErrTransition),
		errors.Is(err, procurement.ErrMissingUpls),
		errors.Is(err, procurement.ErrUnknownStatus):
		return KindBadRequest
	}
	return KindInternal
}
