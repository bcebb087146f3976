package common

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Order is an instruction to buy or sell a quantity of the instrument.
// Once constructed via New it is valid; an engine only ever
// admits or rejects it, it never re-validates construction invariants.
type Order struct {
	ID            string
	Side          Side
	Type          OrderType
	LimitPrice    float64
	TotalQuantity uint64
	Filled        uint64
	Timestamp     time.Time
	StopPrice     float64 // required for StopLoss / StopLossMarket
	Disclosed     uint64  // required for Iceberg
	Validity      Validity
	Expiry        time.Time // only meaningful when Validity == GTD
	Triggered     bool      // stop-loss only
}

// New is a construction shorthand that stamps an ID (when empty) and
// timestamp, then validates.
func New(o Order) (*Order, error) {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.Timestamp.IsZero() {
		o.Timestamp = time.Now()
	}
	if err := validate(&o); err != nil {
		return nil, err
	}
	return &o, nil
}

func validate(o *Order) error {
	if o.TotalQuantity == 0 {
		return ErrNonPositiveQuantity
	}
	switch o.Type {
	case Limit, StopLoss, Iceberg:
		if o.LimitPrice <= 0 {
			return ErrNonPositivePrice
		}
	}
	switch o.Type {
	case StopLoss, StopLossMarket:
		if o.StopPrice <= 0 {
			return ErrMissingStopPrice
		}
	}
	if o.Type == Iceberg {
		if o.Disclosed == 0 {
			return ErrMissingDisclosedQty
		}
		if o.Disclosed > o.TotalQuantity {
			return ErrDisclosedExceedsQty
		}
	}
	return nil
}

// Remaining is the quantity still unfilled.
func (o *Order) Remaining() uint64 {
	return o.TotalQuantity - o.Filled
}

// Visible is the quantity a matching sweep may currently consume: the
// disclosed slice for iceberg orders, otherwise the full remainder.
func (o *Order) Visible() uint64 {
	if o.Type == Iceberg && o.Disclosed > 0 {
		remaining := o.Remaining()
		if o.Disclosed < remaining {
			return o.Disclosed
		}
		return remaining
	}
	return o.Remaining()
}

// IsExpired reports whether the order's validity has lapsed as of now.
// Only GTD orders can expire here; DAY/GTC/IOC never do.
func (o *Order) IsExpired(now time.Time) bool {
	if o.Validity == GTD && !o.Expiry.IsZero() {
		return now.After(o.Expiry)
	}
	return false
}

func (o *Order) String() string {
	return fmt.Sprintf(
		"Order{id=%s side=%s type=%s price=%.4f qty=%d/%d ts=%s}",
		o.ID, o.Side, o.Type, o.LimitPrice, o.Filled, o.TotalQuantity,
		o.Timestamp.Format(time.RFC3339Nano),
	)
}
