package common

import "errors"

// Construction errors: these are returned by New and never reach an
// engine. ErrMissingOrderID is not returned by New, which stamps a
// fresh ID on an order whose ID is empty.
var (
	ErrNonPositiveQuantity  = errors.New("order quantity must be positive")
	ErrNonPositivePrice     = errors.New("limit/stop-loss/iceberg price must be positive")
	ErrMissingStopPrice     = errors.New("stop-loss orders require a positive stop price")
	ErrMissingDisclosedQty  = errors.New("iceberg orders require a positive disclosed quantity")
	ErrDisclosedExceedsQty  = errors.New("disclosed quantity must not exceed total quantity")
	ErrMissingOrderID       = errors.New("order id must not be empty")
)
