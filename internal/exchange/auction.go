package exchange

import (
	"sort"

	"matchbook/internal/common"
)

// ExecuteCallAuction runs the accumulated auction book through
// equilibrium-price discovery and executes matches at that single
// price, then moves to continuous trading. When no price crosses, LIMIT
// orders rest in the book and the phase still moves to continuous. An
// empty auction book is left as is: no trades and no phase change.
func (e *Engine) ExecuteCallAuction() []*common.Trade {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.executeCallAuction()
}

func (e *Engine) executeCallAuction() []*common.Trade {
	if len(e.auctionOrders) == 0 {
		return nil
	}

	buyOrders := make(map[float64][]*common.Order)
	sellOrders := make(map[float64][]*common.Order)
	for _, o := range e.auctionOrders {
		if o.Side == common.Buy {
			buyOrders[o.LimitPrice] = append(buyOrders[o.LimitPrice], o)
		} else {
			sellOrders[o.LimitPrice] = append(sellOrders[o.LimitPrice], o)
		}
	}

	price, ok := e.findEquilibriumPrice(buyOrders, sellOrders)
	if !ok {
		for _, o := range e.auctionOrders {
			if o.Type == common.Limit {
				e.sideFor(o.Side).AddOrder(o)
			}
		}
		e.auctionOrders = nil
		e.phase = common.Continuous
		return nil
	}

	trades := e.executeAuctionAtPrice(price, buyOrders, sellOrders)

	if e.phase == common.PreOpen {
		e.openingPrice = price
		e.haveOpening = true
		e.lastTradedPrice = price
		e.haveLastTraded = true
		if !e.haveReference {
			e.referencePrice = price
			e.haveReference = true
			e.updateBands()
		}
	}

	for _, o := range e.auctionOrders {
		if o.Remaining() > 0 && o.Type == common.Limit {
			e.sideFor(o.Side).AddOrder(o)
		}
	}

	e.auctionOrders = nil
	e.phase = common.Continuous
	e.tradeHistory = append(e.tradeHistory, trades...)
	return trades
}

// findEquilibriumPrice scans every price present in the accumulated
// auction book and picks the one maximizing tradeable (min of
// cumulative buy/sell) volume, tie-breaking toward the reference price.
func (e *Engine) findEquilibriumPrice(buyOrders, sellOrders map[float64][]*common.Order) (float64, bool) {
	priceSet := make(map[float64]struct{}, len(buyOrders)+len(sellOrders))
	for p := range buyOrders {
		priceSet[p] = struct{}{}
	}
	for p := range sellOrders {
		priceSet[p] = struct{}{}
	}
	if len(priceSet) == 0 {
		return 0, false
	}
	prices := make([]float64, 0, len(priceSet))
	for p := range priceSet {
		prices = append(prices, p)
	}
	sort.Float64s(prices)

	var bestPrice float64
	haveBest := false
	var maxVolume uint64

	for _, price := range prices {
		var buyVol, sellVol uint64
		for p, orders := range buyOrders {
			if p >= price {
				buyVol += sumQuantity(orders)
			}
		}
		for p, orders := range sellOrders {
			if p <= price {
				sellVol += sumQuantity(orders)
			}
		}
		tradeable := min(buyVol, sellVol)

		switch {
		case tradeable > maxVolume:
			maxVolume = tradeable
			bestPrice = price
			haveBest = true
		case tradeable == maxVolume && haveBest && e.haveReference:
			if absFloat(price-e.referencePrice) < absFloat(bestPrice-e.referencePrice) {
				bestPrice = price
			}
		}
	}
	return bestPrice, haveBest
}

func sumQuantity(orders []*common.Order) uint64 {
	var total uint64
	for _, o := range orders {
		total += o.TotalQuantity
	}
	return total
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// executeAuctionAtPrice matches every eligible buyer against every
// eligible seller in strict time priority, all at the single
// equilibrium price.
func (e *Engine) executeAuctionAtPrice(price float64, buyOrders, sellOrders map[float64][]*common.Order) []*common.Trade {
	var buyers, sellers []*common.Order
	for p, orders := range buyOrders {
		if p >= price {
			buyers = append(buyers, orders...)
		}
	}
	for p, orders := range sellOrders {
		if p <= price {
			sellers = append(sellers, orders...)
		}
	}
	sort.Slice(buyers, func(i, j int) bool { return buyers[i].Timestamp.Before(buyers[j].Timestamp) })
	sort.Slice(sellers, func(i, j int) bool { return sellers[i].Timestamp.Before(sellers[j].Timestamp) })

	var trades []*common.Trade
	bi, si := 0, 0
	for bi < len(buyers) && si < len(sellers) {
		buyOrder := buyers[bi]
		sellOrder := sellers[si]

		if buyOrder.Remaining() == 0 {
			bi++
			continue
		}
		if sellOrder.Remaining() == 0 {
			si++
			continue
		}

		qty := min(buyOrder.Remaining(), sellOrder.Remaining())
		trade := common.NewTrade(buyOrder.ID, sellOrder.ID, price, qty)
		trades = append(trades, trade)

		buyOrder.Filled += qty
		sellOrder.Filled += qty

		if buyOrder.Remaining() == 0 {
			bi++
		}
		if sellOrder.Remaining() == 0 {
			si++
		}
	}
	return trades
}
