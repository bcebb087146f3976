// Package stats implements C9: depth snapshots and regime/engine
// statistics, built generically over any book side that can report a
// best price and depth — so one implementation serves the plain,
// adaptive, and sharded book variants alike.
package stats

import (
	"time"

	"matchbook/internal/book"
	"matchbook/internal/common"
)

// Depther is implemented by both *book.BookSide and
// *book.ShardedBookSide.
type Depther interface {
	BestPrice() (float64, bool)
	Depth(n int) []book.PriceVolume
}

// Snapshot is a point-in-time view of the book.
type Snapshot struct {
	Timestamp time.Time
	Bids      []book.PriceVolume
	Asks      []book.PriceVolume
	Spread    float64
	MidPrice  float64
}

// Take builds a Snapshot from the given sides, requesting up to levels
// rows of depth per side.
func Take(bids, asks Depther, levels int) Snapshot {
	s := Snapshot{
		Timestamp: time.Now(),
		Bids:      bids.Depth(levels),
		Asks:      asks.Depth(levels),
	}

	bestBid, haveBid := bids.BestPrice()
	bestAsk, haveAsk := asks.BestPrice()
	if haveBid && haveAsk {
		s.Spread = bestAsk - bestBid
		s.MidPrice = (bestBid + bestAsk) / 2
	}
	return s
}

// RegimeChange records one adaptive-engine transition.
type RegimeChange struct {
	Timestamp time.Time
	From      common.Regime
	To        common.Regime
}

// RegimeStatistics summarises an adaptive engine's regime history:
// how often each regime occurred and how many transitions took place.
type RegimeStatistics struct {
	TotalChanges        int
	CurrentRegime       common.Regime
	RegimeDistribution  map[common.Regime]int
	RegimeHistory       []RegimeChange
	TimeSinceLastChange time.Duration
}

// Summarize builds RegimeStatistics from a full history and the
// current regime. now is injected so callers can supply a fixed clock
// in tests.
func Summarize(history []RegimeChange, current common.Regime, now time.Time) RegimeStatistics {
	dist := make(map[common.Regime]int, len(history))
	for _, change := range history {
		dist[change.To]++
	}

	var since time.Duration
	if len(history) > 0 {
		since = now.Sub(history[len(history)-1].Timestamp)
	}

	return RegimeStatistics{
		TotalChanges:        len(history),
		CurrentRegime:       current,
		RegimeDistribution:  dist,
		RegimeHistory:       history,
		TimeSinceLastChange: since,
	}
}
