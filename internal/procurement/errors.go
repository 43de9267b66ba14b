package procurement

import "errors"

var (
	ErrSkuExists      = errors.New("SKU already in procurement")
	ErrSkuNotFound    = errors.New("SKU not in procurement")
	ErrUplExists      = errors.New("UPL already in procurement")
	ErrUplNotFound    = errors.New("UPL not in procurement")
	ErrInvalidUpl     = errors.New("invalid UPL id")
	ErrNoDeliveryDate = errors.New("estimated delivery date not set")
	ErrEmpty          = errors.New("procurement has no SKUs")
	ErrTransition     = errors.New("status change not allowed")
	ErrMissingUpls    = errors.New("UPL candidates incomplete")
	ErrUnknownStatus  = errors.New("unknown status")
)
