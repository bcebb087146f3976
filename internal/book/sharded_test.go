package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchbook/internal/common"
)

func TestShardedBookSide_BestPriceAcrossShards(t *testing.T) {
	side := NewShardedBookSide(common.Buy, 4)
	for i, price := range []float64{99, 101, 100} {
		o := mustOrder(t, common.Order{ID: idFor(i), Side: common.Buy, Type: common.Limit, LimitPrice: price, TotalQuantity: 10})
		side.AddOrder(o)
	}

	best, ok := side.BestPrice()
	assert.True(t, ok)
	assert.Equal(t, 101.0, best)
}

func TestShardedBookSide_RemoveOrder_RoutesToOwningShard(t *testing.T) {
	side := NewShardedBookSide(common.Sell, 4)
	o := mustOrder(t, common.Order{ID: "order-1", Side: common.Sell, Type: common.Limit, LimitPrice: 100, TotalQuantity: 10})
	side.AddOrder(o)

	assert.True(t, side.RemoveOrder("order-1"))
	assert.False(t, side.RemoveOrder("order-1"))
	assert.Equal(t, 0, side.Len())
}

func TestShardedBookSide_OrdersAtBest_RestoresGlobalTimePriority(t *testing.T) {
	side := NewShardedBookSide(common.Buy, 8)

	var ids []string
	for i := 0; i < 6; i++ {
		id := idFor(i)
		ids = append(ids, id)
		o := mustOrder(t, common.Order{ID: id, Side: common.Buy, Type: common.Limit, LimitPrice: 100, TotalQuantity: 10})
		side.AddOrder(o)
	}

	candidates := side.OrdersAtBest()
	require.Len(t, candidates, 6)
	for i := 1; i < len(candidates); i++ {
		assert.False(t, candidates[i].Timestamp.Before(candidates[i-1].Timestamp), "orders must come back in ascending timestamp order")
	}
}

func TestShardedBookSide_Depth_AggregatesSamePriceAcrossShards(t *testing.T) {
	side := NewShardedBookSide(common.Sell, 4)
	for i := 0; i < 8; i++ {
		o := mustOrder(t, common.Order{ID: idFor(i), Side: common.Sell, Type: common.Limit, LimitPrice: 100, TotalQuantity: 10})
		side.AddOrder(o)
	}
	depth := side.Depth(10)
	require.Len(t, depth, 1)
	assert.Equal(t, uint64(80), depth[0].Volume)
}

func idFor(i int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz0123456789"
	return string(letters[i%len(letters)]) + string(letters[(i*7+3)%len(letters)]) + string(rune('A'+i))
}
