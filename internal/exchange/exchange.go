package exchange

import (
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"matchbook/internal/book"
	"matchbook/internal/common"
	"matchbook/internal/matching"
	"matchbook/internal/stats"
)

// Engine is the exchange-grade matching engine (C8): trading-phase
// state machine, dynamic price bands, circuit breaker, call auctions,
// stop-loss triggering, and FOK/iceberg handling over a plain
// price-time-priority book.
type Engine struct {
	mu sync.Mutex

	cfg Config

	bids *book.BookSide
	asks *book.BookSide

	phase    common.TradingPhase
	isHalted bool

	referencePrice  float64
	haveReference   bool
	lastTradedPrice float64
	haveLastTraded  bool
	openingPrice    float64
	haveOpening     bool

	upperBand, lowerBand float64
	haveBands            bool

	auctionOrders []*common.Order
	pendingStops  *pendingStopSet

	tradeHistory []*common.Trade
	orderHistory int

	circuitBreakerHits int

	cancelWorker *cancelWorker
}

// New builds an exchange engine in CONTINUOUS phase with no reference
// price set.
func New(cfg Config) *Engine {
	e := &Engine{
		cfg:          cfg,
		bids:         book.NewBookSide(common.Buy),
		asks:         book.NewBookSide(common.Sell),
		phase:        common.Continuous,
		pendingStops: newPendingStopSet(),
	}
	if cfg.AsyncCancel {
		e.cancelWorker = startCancelWorker(e)
	}
	return e
}

// SetReferencePrice sets the previous-close reference used for circuit
// breaker and price-band calculations, and recomputes the bands.
func (e *Engine) SetReferencePrice(price float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.referencePrice = price
	e.haveReference = true
	e.updateBands()
}

func (e *Engine) updateBands() {
	if !e.haveReference {
		return
	}
	e.upperBand = e.referencePrice * (1 + e.cfg.PriceBandPct/100)
	e.lowerBand = e.referencePrice * (1 - e.cfg.PriceBandPct/100)
	e.haveBands = true
}

func (e *Engine) tickRound(price float64) float64 {
	if e.cfg.TickSize <= 0 {
		return price
	}
	return math.Round(price/e.cfg.TickSize) * e.cfg.TickSize
}

func (e *Engine) withinBand(price float64) bool {
	if !e.haveBands {
		return true
	}
	return price >= e.lowerBand && price <= e.upperBand
}

// ResumeTrading clears a circuit-breaker halt and returns to
// continuous trading.
func (e *Engine) ResumeTrading() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.isHalted = false
	e.phase = common.Continuous
}

// SetTradingPhase transitions the engine to a new phase. Entering
// PreOpen or Closing resets the auction accumulator.
func (e *Engine) SetTradingPhase(phase common.TradingPhase) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.phase = phase
	if phase == common.PreOpen || phase == common.Closing {
		e.auctionOrders = nil
	}
}

// Phase returns the current trading phase.
func (e *Engine) Phase() common.TradingPhase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// Process is the main entry point: admission checks (halt, expiry,
// tick-size rounding, price bands), then routes to the auction or
// continuous handler depending on phase.
func (e *Engine) Process(o *common.Order) []*common.Trade {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.process(o)
}

func (e *Engine) process(o *common.Order) []*common.Trade {
	e.orderHistory++

	if e.isHalted {
		return nil
	}
	if o.IsExpired(time.Now()) {
		return nil
	}

	if o.Type == common.Limit || o.Type == common.StopLoss {
		o.LimitPrice = e.tickRound(o.LimitPrice)
	}
	if o.Type == common.Limit || o.Type == common.StopLoss {
		if !e.withinBand(o.LimitPrice) {
			log.Debug().Str("order", o.ID).Float64("price", o.LimitPrice).Msg("order rejected: outside price band")
			return nil
		}
	}

	if e.phase == common.PreOpen || e.phase == common.Closing {
		e.auctionOrders = append(e.auctionOrders, o)
		return nil
	}
	return e.handleContinuous(o)
}

func (e *Engine) handleContinuous(o *common.Order) []*common.Trade {
	switch o.Type {
	case common.StopLoss, common.StopLossMarket:
		return e.handleStopLoss(o)
	case common.FOK:
		return e.handleFOK(o)
	default:
		trades := e.matchOrder(o)
		if o.Remaining() > 0 && (o.Type == common.Limit || o.Type == common.Iceberg) {
			own := e.sideFor(o.Side)
			own.AddOrder(o)
		}
		return trades
	}
}

func (e *Engine) sideFor(side common.Side) *book.BookSide {
	if side == common.Buy {
		return e.bids
	}
	return e.asks
}

func (e *Engine) oppositeFor(side common.Side) *book.BookSide {
	if side == common.Buy {
		return e.asks
	}
	return e.bids
}

// matchOrder runs the shared kernel against the opposite side, then
// updates last-traded price, evaluates the circuit breaker, and checks
// pending stop orders for triggering.
func (e *Engine) matchOrder(o *common.Order) []*common.Trade {
	trades := matching.Against(o, e.oppositeFor(o.Side))
	if len(trades) > 0 {
		last := trades[len(trades)-1]
		e.lastTradedPrice = last.Price
		e.haveLastTraded = true
		e.checkCircuitBreaker(last.Price)
		e.checkPendingStops()
	}
	e.tradeHistory = append(e.tradeHistory, trades...)
	return trades
}

// checkCircuitBreaker halts the engine if trade price has moved beyond
// the configured percentage from the reference price.
func (e *Engine) checkCircuitBreaker(tradePrice float64) bool {
	if !e.haveReference || e.referencePrice == 0 {
		return false
	}
	changePct := math.Abs(tradePrice-e.referencePrice) / e.referencePrice * 100
	if changePct >= e.cfg.CircuitBreakerPct {
		e.isHalted = true
		e.phase = common.Halted
		e.circuitBreakerHits++
		log.Warn().Str("symbol", e.cfg.Symbol).Float64("price", tradePrice).Msg("circuit breaker triggered, trading halted")
		return true
	}
	return false
}

// Snapshot returns the current book depth on both sides.
func (e *Engine) Snapshot(levels int) stats.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return stats.Take(e.bids, e.asks, levels)
}

// Statistics is a point-in-time summary of engine counters and state.
type Statistics struct {
	TotalOrders        int
	TotalTrades        int
	CircuitBreakerHits int
	PendingStopOrders  int
	TradingPhase       common.TradingPhase
	IsHalted           bool
	LastTradedPrice    float64
	HaveLastTraded     bool
	ReferencePrice     float64
	HaveReference      bool
	OpeningPrice       float64
	HaveOpening        bool
}

// Statistics reports the engine's current counters and state.
func (e *Engine) Statistics() Statistics {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Statistics{
		TotalOrders:        e.orderHistory,
		TotalTrades:        len(e.tradeHistory),
		CircuitBreakerHits: e.circuitBreakerHits,
		PendingStopOrders:  e.pendingStops.len(),
		TradingPhase:       e.phase,
		IsHalted:           e.isHalted,
		LastTradedPrice:    e.lastTradedPrice,
		HaveLastTraded:     e.haveLastTraded,
		ReferencePrice:     e.referencePrice,
		HaveReference:      e.haveReference,
		OpeningPrice:       e.openingPrice,
		HaveOpening:        e.haveOpening,
	}
}

// Shutdown stops the async cancellation worker, if one is running.
func (e *Engine) Shutdown(wait bool) {
	if e.cancelWorker != nil {
		e.cancelWorker.stop(wait)
	}
}
