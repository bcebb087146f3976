package sharded

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchbook/internal/common"
)

func mustOrder(t *testing.T, o common.Order) *common.Order {
	t.Helper()
	order, err := common.New(o)
	require.NoError(t, err)
	return order
}

func TestEngine_Process_MatchesAcrossShards(t *testing.T) {
	e := New(8)
	for i := 0; i < 4; i++ {
		e.Process(mustOrder(t, common.Order{Side: common.Sell, Type: common.Limit, LimitPrice: 100, TotalQuantity: 10}))
	}

	trades := e.Process(mustOrder(t, common.Order{Side: common.Buy, Type: common.Limit, LimitPrice: 100, TotalQuantity: 25}))
	var tradedQty uint64
	for _, tr := range trades {
		tradedQty += tr.Quantity
	}
	assert.Equal(t, uint64(25), tradedQty)
}

func TestEngine_Cancel_RoutesToOwningShard(t *testing.T) {
	e := New(4)
	o := mustOrder(t, common.Order{Side: common.Buy, Type: common.Limit, LimitPrice: 100, TotalQuantity: 10})
	e.Process(o)

	assert.True(t, e.Cancel(o.ID))
	assert.False(t, e.Cancel(o.ID))
}

func TestEngine_Process_FOKRespectsAggregatedVolume(t *testing.T) {
	e := New(4)
	for i := 0; i < 3; i++ {
		e.Process(mustOrder(t, common.Order{Side: common.Sell, Type: common.Limit, LimitPrice: 100, TotalQuantity: 5}))
	}

	trades := e.Process(mustOrder(t, common.Order{Side: common.Buy, Type: common.FOK, LimitPrice: 100, TotalQuantity: 15}))
	require.NotEmpty(t, trades)

	e2 := New(4)
	for i := 0; i < 3; i++ {
		e2.Process(mustOrder(t, common.Order{Side: common.Sell, Type: common.Limit, LimitPrice: 100, TotalQuantity: 5}))
	}
	trades2 := e2.Process(mustOrder(t, common.Order{Side: common.Buy, Type: common.FOK, LimitPrice: 100, TotalQuantity: 16}))
	assert.Empty(t, trades2, "FOK rejects when the sharded aggregate can't cover the full quantity")
}

func TestEngine_Statistics(t *testing.T) {
	e := New(4)
	e.Process(mustOrder(t, common.Order{Side: common.Sell, Type: common.Limit, LimitPrice: 100, TotalQuantity: 10}))
	e.Process(mustOrder(t, common.Order{Side: common.Buy, Type: common.Limit, LimitPrice: 100, TotalQuantity: 10}))

	stats := e.Statistics()
	assert.Equal(t, 2, stats.TotalOrders)
	assert.Equal(t, 1, stats.TotalTrades)
}
