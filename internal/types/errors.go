package types

import "errors"

var (
	// ErrInvalidInput marks a precondition violation in pipeline input.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnknownSymbol is returned for symbols outside the configured universe.
	ErrUnknownSymbol = errors.New("unknown symbol")
	// ErrRiskLimit is returned when a risk control blocks an order.
	ErrRiskLimit = errors.New("risk limit")
)
