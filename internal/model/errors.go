package model

import (
	"errors"
	"fmt"
)

var (
	// ErrDataInsufficient is returned when a series is shorter than the longest required window.
	ErrDataInsufficient = errors.New("insufficient price data")
	// ErrMalformedSeries is returned when a series is missing OHLCV columns or is out of order.
	ErrMalformedSeries = errors.New("malformed price series")
	// ErrSymbolNotFound is returned by fetchers when the source has no data for a symbol.
	ErrSymbolNotFound = errors.New("symbol not found")
)

// FetchError reports that the data source could not produce a series for a symbol.
type FetchError struct {
	Symbol string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Symbol, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
