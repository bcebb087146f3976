// Package regime implements the C5 regime detector: gated computation
// of market metrics from bounded windows, classified into one of five
// regimes.
package regime

import (
	"math"

	"matchbook/internal/common"
)

// Thresholds holds the four regime-gate cutoffs.
type Thresholds struct {
	Volatility   float64
	Spread       float64
	Imbalance    float64
	Cancellation float64
}

// DefaultThresholds returns the standard regime-gate cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{Volatility: 0.05, Spread: 0.02, Imbalance: 0.5, Cancellation: 0.25}
}

// Config configures window size and detection cadence.
type Config struct {
	WindowSize        int
	DetectionInterval int
	Thresholds        Thresholds
}

// DefaultConfig returns the standard window size and detection cadence.
func DefaultConfig() Config {
	return Config{WindowSize: 100, DetectionInterval: 100, Thresholds: DefaultThresholds()}
}

// Detector maintains bounded windows of recent prices, volumes, and
// spreads and classifies the current regime at each gate point.
type Detector struct {
	cfg Config

	observations int
	lastRegime   common.Regime

	prices  ring
	spreads ring

	buyVolume       uint64
	sellVolume      uint64
	cancellationCnt uint64
	totalOrders     uint64
}

// New builds a detector with the given config, filling in defaults for
// any zero field.
func New(cfg Config) *Detector {
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = DefaultConfig().WindowSize
	}
	if cfg.DetectionInterval <= 0 {
		cfg.DetectionInterval = DefaultConfig().DetectionInterval
	}
	if cfg.Thresholds == (Thresholds{}) {
		cfg.Thresholds = DefaultThresholds()
	}
	return &Detector{
		cfg:        cfg,
		lastRegime: common.Normal,
		prices:     newRing(cfg.WindowSize),
		spreads:    newRing(cfg.WindowSize),
	}
}

// Update feeds one observation — a new mid price, the order's quantity
// and side, and the current spread — into the bounded windows. Running
// sums are adjusted incrementally inside ring.push so the cost stays
// O(1) per order.
func (d *Detector) Update(midPrice float64, quantity uint64, side common.Side, spread float64) {
	d.observations++
	d.totalOrders++

	if side == common.Buy {
		d.buyVolume += quantity
	} else {
		d.sellVolume += quantity
	}

	d.prices.push(midPrice)
	d.spreads.push(spread)
}

// RecordCancellation records an external cancellation. Cancellations
// count toward both the cancellation count and the total-order
// denominator the cancellation rate is measured against.
func (d *Detector) RecordCancellation() {
	d.cancellationCnt++
	d.totalOrders++
}

// ShouldDetect reports whether this observation lands on a detection
// gate.
func (d *Detector) ShouldDetect() bool {
	return d.cfg.DetectionInterval > 0 && d.observations%d.cfg.DetectionInterval == 0
}

// Detect runs the gated classification. Between gate points it returns
// the cached last regime without recomputation. Before the window has
// collected WindowSize observations it returns NORMAL. bestBid/bestAsk feed the sigma_mid volatility proxy;
// buy/sell volume imbalance is computed from the cumulative side
// volumes accumulated by Update (resolved against original_source's
// regime_detector.py, which classifies on cumulative flow rather than
// top-of-book volume).
func (d *Detector) Detect(bestBid, bestAsk float64, haveBid, haveAsk bool) common.Regime {
	if !d.ShouldDetect() {
		return d.lastRegime
	}
	if !d.prices.full() {
		d.lastRegime = common.Normal
		return d.lastRegime
	}

	th := d.cfg.Thresholds
	cv := d.coefficientOfVariation()

	var sigmaMid float64
	if haveBid && haveAsk {
		mid := (bestBid + bestAsk) / 2
		if mid > 0 {
			sigmaMid = (bestAsk - bestBid) / mid
		}
	}

	meanSpread := 0.0
	if d.spreads.count > 0 {
		meanSpread = d.spreads.sum / float64(d.spreads.count)
	}

	var imbalance float64
	if total := d.buyVolume + d.sellVolume; total > 0 {
		imbalance = math.Abs(float64(d.buyVolume)-float64(d.sellVolume)) / float64(total)
	}

	var cancelRate float64
	if d.totalOrders > 0 {
		cancelRate = float64(d.cancellationCnt) / float64(d.totalOrders)
	}

	switch {
	case cv > th.Volatility || sigmaMid > th.Volatility:
		d.lastRegime = common.HighVolatility
	case imbalance > th.Imbalance:
		d.lastRegime = common.Directional
	case meanSpread > th.Spread:
		d.lastRegime = common.Illiquid
	case cancelRate > th.Cancellation:
		d.lastRegime = common.HighFrequency
	default:
		d.lastRegime = common.Normal
	}
	return d.lastRegime
}

func (d *Detector) coefficientOfVariation() float64 {
	n := d.prices.count
	if n < 2 {
		return 0
	}
	mean := d.prices.sum / float64(n)
	if mean <= 0 {
		return 0
	}
	variance := d.prices.sqSum/float64(n) - mean*mean
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance) / mean
}

// SetThreshold updates one named threshold. kind must be one of
// "volatility", "spread", "imbalance", "cancellation"; any other value
// is a configuration error.
func (d *Detector) SetThreshold(kind string, value float64) error {
	switch kind {
	case "volatility":
		d.cfg.Thresholds.Volatility = value
	case "spread":
		d.cfg.Thresholds.Spread = value
	case "imbalance":
		d.cfg.Thresholds.Imbalance = value
	case "cancellation":
		d.cfg.Thresholds.Cancellation = value
	default:
		return ErrUnknownThreshold
	}
	return nil
}

// LastRegime returns the most recently classified (or cached) regime.
func (d *Detector) LastRegime() common.Regime { return d.lastRegime }

// Config returns the detector's current window, cadence, and threshold
// configuration.
func (d *Detector) Config() Config { return d.cfg }
