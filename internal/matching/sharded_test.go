package matching

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchbook/internal/book"
	"matchbook/internal/common"
)

func TestAgainstSharded_MatchesAtGlobalBestAcrossShards(t *testing.T) {
	asks := book.NewShardedBookSide(common.Sell, 4)
	first := mustOrder(t, common.Order{ID: "shard-order-a", Side: common.Sell, Type: common.Limit, LimitPrice: 100, TotalQuantity: 10})
	asks.AddOrder(first)
	time.Sleep(time.Millisecond)
	second := mustOrder(t, common.Order{ID: "shard-order-b", Side: common.Sell, Type: common.Limit, LimitPrice: 100, TotalQuantity: 10})
	asks.AddOrder(second)

	buy := mustOrder(t, common.Order{Side: common.Buy, Type: common.Limit, LimitPrice: 100, TotalQuantity: 10})
	trades := AgainstSharded(buy, asks)

	require.Len(t, trades, 1)
	assert.Equal(t, first.ID, trades[0].SellOrderID, "the earliest resting order across all shards fills first")
}

func TestAgainstSharded_ConservesQuantityLikeUnshardedKernel(t *testing.T) {
	asks := book.NewShardedBookSide(common.Sell, 4)
	for i := 0; i < 4; i++ {
		o := mustOrder(t, common.Order{Side: common.Sell, Type: common.Limit, LimitPrice: 100, TotalQuantity: 10})
		asks.AddOrder(o)
	}

	buy := mustOrder(t, common.Order{Side: common.Buy, Type: common.Limit, LimitPrice: 100, TotalQuantity: 25})
	trades := AgainstSharded(buy, asks)

	var tradedQty uint64
	for _, tr := range trades {
		tradedQty += tr.Quantity
	}
	assert.Equal(t, uint64(25), tradedQty)
	assert.Equal(t, uint64(15), asks.Levels()[0].Volume)
}
