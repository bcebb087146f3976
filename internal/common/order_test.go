package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_StampsIDAndTimestamp(t *testing.T) {
	o, err := New(Order{Side: Buy, Type: Limit, LimitPrice: 10, TotalQuantity: 5})
	require.NoError(t, err)
	assert.NotEmpty(t, o.ID)
	assert.False(t, o.Timestamp.IsZero())
}

func TestNew_RejectsZeroQuantity(t *testing.T) {
	_, err := New(Order{Side: Buy, Type: Limit, LimitPrice: 10})
	assert.ErrorIs(t, err, ErrNonPositiveQuantity)
}

func TestNew_RejectsNonPositiveLimitPrice(t *testing.T) {
	_, err := New(Order{Side: Buy, Type: Limit, TotalQuantity: 5})
	assert.ErrorIs(t, err, ErrNonPositivePrice)
}

func TestNew_StopLossRequiresStopPrice(t *testing.T) {
	_, err := New(Order{Side: Sell, Type: StopLoss, LimitPrice: 10, TotalQuantity: 5})
	assert.ErrorIs(t, err, ErrMissingStopPrice)
}

func TestNew_IcebergRequiresDisclosedWithinTotal(t *testing.T) {
	_, err := New(Order{Side: Buy, Type: Iceberg, LimitPrice: 10, TotalQuantity: 5})
	assert.ErrorIs(t, err, ErrMissingDisclosedQty)

	_, err = New(Order{Side: Buy, Type: Iceberg, LimitPrice: 10, TotalQuantity: 5, Disclosed: 6})
	assert.ErrorIs(t, err, ErrDisclosedExceedsQty)
}

func TestOrder_RemainingAndVisible(t *testing.T) {
	o, err := New(Order{Side: Buy, Type: Iceberg, LimitPrice: 10, TotalQuantity: 100, Disclosed: 20})
	require.NoError(t, err)

	assert.Equal(t, uint64(100), o.Remaining())
	assert.Equal(t, uint64(20), o.Visible())

	o.Filled = 90
	assert.Equal(t, uint64(10), o.Remaining())
	assert.Equal(t, uint64(10), o.Visible(), "visible caps at remaining once less than disclosed")
}

func TestOrder_IsExpired_OnlyGTD(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	o, err := New(Order{Side: Buy, Type: Limit, LimitPrice: 10, TotalQuantity: 1, Validity: GTD, Expiry: past})
	require.NoError(t, err)
	assert.True(t, o.IsExpired(time.Now()))

	o.Validity = GTC
	assert.False(t, o.IsExpired(time.Now()), "non-GTD orders never expire here")
}
