package common

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Trade is an atomic fill between a buy and a sell order.
// Pricing invariant: Price is always the resting (book-side) order's
// price; a pair of market orders never occurs because at least one
// side of any match is resting in the book.
type Trade struct {
	ID          string
	BuyOrderID  string
	SellOrderID string
	Price       float64
	Quantity    uint64
	Timestamp   time.Time
}

// NewTrade stamps a fresh trade ID and timestamp.
func NewTrade(buyOrderID, sellOrderID string, price float64, quantity uint64) *Trade {
	return &Trade{
		ID:          uuid.NewString(),
		BuyOrderID:  buyOrderID,
		SellOrderID: sellOrderID,
		Price:       price,
		Quantity:    quantity,
		Timestamp:   time.Now(),
	}
}

func (t *Trade) String() string {
	return fmt.Sprintf(
		"Trade{id=%s buy=%s sell=%s price=%.4f qty=%d ts=%s}",
		t.ID, t.BuyOrderID, t.SellOrderID, t.Price, t.Quantity,
		t.Timestamp.Format(time.RFC3339Nano),
	)
}
