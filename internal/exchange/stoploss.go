package exchange

import "matchbook/internal/common"

// handleStopLoss either triggers a stop order immediately (if the
// trigger condition already holds) or parks it in pendingStops until a
// subsequent trade triggers it.
func (e *Engine) handleStopLoss(o *common.Order) []*common.Trade {
	if e.isStopTriggered(o) {
		e.triggerStop(o)
		return e.matchOrder(o)
	}
	e.pendingStops.add(o)
	return nil
}

// isStopTriggered reports whether the last traded price has crossed
// the order's stop price: a buy stop triggers on a rise through the
// stop, a sell stop on a fall through it.
func (e *Engine) isStopTriggered(o *common.Order) bool {
	if !e.haveLastTraded || o.StopPrice <= 0 {
		return false
	}
	if o.Side == common.Buy {
		return e.lastTradedPrice >= o.StopPrice
	}
	return e.lastTradedPrice <= o.StopPrice
}

// triggerStop converts a triggered stop order into its live order type:
// a market order for STOP_LOSS_MARKET, a limit order (keeping its
// price) for STOP_LOSS.
func (e *Engine) triggerStop(o *common.Order) {
	o.Triggered = true
	if o.Type == common.StopLossMarket {
		o.Type = common.Market
		o.LimitPrice = 0
	} else {
		o.Type = common.Limit
	}
}

// checkPendingStops scans pending stop orders, in the order they were
// parked, and triggers any whose condition now holds.
func (e *Engine) checkPendingStops() {
	var triggered []*common.Order
	for _, o := range e.pendingStops.orderedValues() {
		if e.isStopTriggered(o) {
			triggered = append(triggered, o)
			e.pendingStops.remove(o.ID)
		}
	}
	for _, o := range triggered {
		e.triggerStop(o)
		e.matchOrder(o)
	}
}
