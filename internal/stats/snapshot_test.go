package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchbook/internal/book"
	"matchbook/internal/common"
)

func mustOrder(t *testing.T, o common.Order) *common.Order {
	t.Helper()
	order, err := common.New(o)
	require.NoError(t, err)
	return order
}

func TestTake_ComputesSpreadAndMidPrice(t *testing.T) {
	bids := book.NewBookSide(common.Buy)
	asks := book.NewBookSide(common.Sell)
	bids.AddOrder(mustOrder(t, common.Order{Side: common.Buy, Type: common.Limit, LimitPrice: 99, TotalQuantity: 10}))
	asks.AddOrder(mustOrder(t, common.Order{Side: common.Sell, Type: common.Limit, LimitPrice: 101, TotalQuantity: 10}))

	snap := Take(bids, asks, 5)
	assert.Equal(t, 2.0, snap.Spread)
	assert.Equal(t, 100.0, snap.MidPrice)
	require.Len(t, snap.Bids, 1)
	require.Len(t, snap.Asks, 1)
}

func TestTake_ZeroSpreadWhenOneSideEmpty(t *testing.T) {
	bids := book.NewBookSide(common.Buy)
	asks := book.NewBookSide(common.Sell)
	bids.AddOrder(mustOrder(t, common.Order{Side: common.Buy, Type: common.Limit, LimitPrice: 99, TotalQuantity: 10}))

	snap := Take(bids, asks, 5)
	assert.Equal(t, 0.0, snap.Spread)
}

func TestSummarize_BuildsDistributionAndTimeSinceLastChange(t *testing.T) {
	now := time.Now()
	history := []RegimeChange{
		{Timestamp: now.Add(-3 * time.Minute), From: common.Normal, To: common.HighVolatility},
		{Timestamp: now.Add(-1 * time.Minute), From: common.HighVolatility, To: common.Illiquid},
	}
	summary := Summarize(history, common.Illiquid, now)

	assert.Equal(t, 2, summary.TotalChanges)
	assert.Equal(t, common.Illiquid, summary.CurrentRegime)
	assert.Equal(t, 1, summary.RegimeDistribution[common.HighVolatility])
	assert.Equal(t, 1, summary.RegimeDistribution[common.Illiquid])
	assert.InDelta(t, time.Minute.Seconds(), summary.TimeSinceLastChange.Seconds(), 0.5)
}

func TestSummarize_EmptyHistory(t *testing.T) {
	summary := Summarize(nil, common.Normal, time.Now())
	assert.Equal(t, 0, summary.TotalChanges)
	assert.Equal(t, time.Duration(0), summary.TimeSinceLastChange)
}
