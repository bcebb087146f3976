// Package exchange implements C8: an NSE-style exchange engine layering
// trading phases, price bands, circuit breakers, call auctions, and
// stop-loss/FOK/iceberg order handling on top of the shared book and
// matching kernel packages.
package exchange

// Config configures one exchange engine instance.
type Config struct {
	Symbol            string
	TickSize          float64
	CircuitBreakerPct float64
	PriceBandPct      float64

	// AsyncCancel, when true, routes Cancel through a background worker
	// instead of cancelling synchronously inline.
	AsyncCancel bool
}

// DefaultConfig returns the standard NSE-style defaults for NIFTY.
func DefaultConfig() Config {
	return Config{
		Symbol:            "NIFTY",
		TickSize:          0.05,
		CircuitBreakerPct: 10.0,
		PriceBandPct:      20.0,
	}
}
