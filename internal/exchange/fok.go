package exchange

import (
	"matchbook/internal/common"
	"matchbook/internal/matching"
)

// handleFOK admits a fill-or-kill order only if the opposite side can
// currently satisfy its full quantity; otherwise it is rejected with
// no side effects.
func (e *Engine) handleFOK(o *common.Order) []*common.Trade {
	opposite := e.oppositeFor(o.Side)
	if matching.Available(o, opposite) < o.Remaining() {
		return nil
	}
	return e.matchOrder(o)
}
