package utils

import "errors"

var (
	ErrBadTimeFormat      = errors.New("bad time format")
	ErrBadDateFormat      = errors.New("bad date format")
	ErrBadCoordinate      = errors.New("coordinate out of range")
	ErrInvalidRequirement = errors.New("invalid trip requirement")
	ErrInvalidTransport   = errors.New("unsupported transport mode")
	ErrInvalidInput       = errors.New("invalid input")
	ErrRoutingUnavailable = errors.New("routing provider unavailable")
	ErrGeocodeFailed      = errors.New("geocoding failed")
)
