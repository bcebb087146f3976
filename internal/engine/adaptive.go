package engine

import (
	"fmt"
	"sync"
	"time"

	"matchbook/internal/common"
	"matchbook/internal/regime"
	"matchbook/internal/stats"
)

// AdaptiveEngine wraps a base Engine with the regime detector (C5),
// rebinding each side's ordering discipline whenever the classified
// regime changes. MetricsHistory is sampled once every
// max(1, DetectionInterval/10) observed orders rather than on every
// order.
type AdaptiveEngine struct {
	mu sync.Mutex

	*Engine
	detector *regime.Detector

	benchmarkMode          bool
	enableRegimeDetection  bool
	enableMetricsRecording bool

	regimeHistory  []stats.RegimeChange
	metricsHistory []MetricsRecord
	sampleEvery    int
	gates          int
}

// MetricsRecord is one sampled row of adaptive engine activity. It is
// appended after an order has been matched so the trade-derived fields
// reflect that order's actual outcome.
type MetricsRecord struct {
	Timestamp       time.Time
	Regime          common.Regime
	Side            common.Side
	Quantity        uint64
	TradesGenerated int
	VolumeExecuted  uint64
	Spread          float64
}

// NewAdaptive builds an adaptive engine around a fresh base engine and
// the given detector config. Regime detection and metrics recording
// are both enabled by default.
func NewAdaptive(cfg regime.Config) *AdaptiveEngine {
	detector := regime.New(cfg)
	sampleEvery := detector.Config().DetectionInterval / 10
	if sampleEvery < 1 {
		sampleEvery = 1
	}
	return &AdaptiveEngine{
		Engine:                 New(),
		detector:               detector,
		sampleEvery:            sampleEvery,
		enableRegimeDetection:  true,
		enableMetricsRecording: true,
	}
}

// SetBenchmarkMode toggles bypassing the detector entirely: orders are
// matched with whatever discipline is currently bound, and no regime
// transitions occur. Used to isolate matching throughput from
// detection overhead.
func (e *AdaptiveEngine) SetBenchmarkMode(on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.benchmarkMode = on
}

// Process feeds the order to the detector, reclassifies the regime on
// gate points, rebinds both sides' disciplines on a transition, runs
// it through the base engine's matching logic, and — on a sampling
// gate — records a metrics row reflecting the trades that order
// actually produced.
func (e *AdaptiveEngine) Process(o *common.Order) []*common.Trade {
	e.mu.Lock()
	active := !e.benchmarkMode && e.enableRegimeDetection
	sample := false
	if active {
		sample = e.observe(o)
	}
	e.mu.Unlock()

	trades := e.Engine.Process(o)

	if active && sample {
		e.mu.Lock()
		if e.enableMetricsRecording {
			e.recordMetrics(o, trades)
		}
		e.mu.Unlock()
	}

	return trades
}

// observe feeds one order into the detector and rebinds disciplines on
// a regime transition. It reports whether this order lands on a
// metrics-sampling gate.
func (e *AdaptiveEngine) observe(o *common.Order) bool {
	bestBid, haveBid := e.Bids.BestPrice()
	bestAsk, haveAsk := e.Asks.BestPrice()

	var spread float64
	if haveBid && haveAsk {
		spread = bestAsk - bestBid
	}
	var mid float64
	if haveBid && haveAsk {
		mid = (bestBid + bestAsk) / 2
	} else if haveBid {
		mid = bestBid
	} else if haveAsk {
		mid = bestAsk
	}

	e.detector.Update(mid, o.TotalQuantity, o.Side, spread)
	e.gates++

	prev := e.detector.LastRegime()
	next := e.detector.Detect(bestBid, bestAsk, haveBid, haveAsk)
	if next != prev {
		e.rebind(next)
		e.regimeHistory = append(e.regimeHistory, stats.RegimeChange{
			Timestamp: time.Now(),
			From:      prev,
			To:        next,
		})
	}

	return e.gates%e.sampleEvery == 0
}

// recordMetrics appends one sampled metrics row. It must run after the
// order has been matched so TradesGenerated/VolumeExecuted reflect
// this order's actual fills, and Spread reflects the book post-match.
func (e *AdaptiveEngine) recordMetrics(o *common.Order, trades []*common.Trade) {
	var volume uint64
	for _, tr := range trades {
		volume += tr.Quantity
	}

	var spread float64
	if bestBid, haveBid := e.Bids.BestPrice(); haveBid {
		if bestAsk, haveAsk := e.Asks.BestPrice(); haveAsk {
			spread = bestAsk - bestBid
		}
	}

	e.metricsHistory = append(e.metricsHistory, MetricsRecord{
		Timestamp:       time.Now(),
		Regime:          e.detector.LastRegime(),
		Side:            o.Side,
		Quantity:        o.TotalQuantity,
		TradesGenerated: len(trades),
		VolumeExecuted:  volume,
		Spread:          spread,
	})
}

func (e *AdaptiveEngine) rebind(r common.Regime) {
	d := common.DisciplineFor(r)
	e.Bids.SetDiscipline(d)
	e.Asks.SetDiscipline(d)
}

// Cancel records the cancellation against the detector's flow
// counters before delegating to the base engine.
func (e *AdaptiveEngine) Cancel(id string) bool {
	e.mu.Lock()
	if !e.benchmarkMode && e.enableRegimeDetection {
		e.detector.RecordCancellation()
	}
	e.mu.Unlock()

	return e.Engine.Cancel(id)
}

// CurrentRegime returns the detector's last classified regime.
func (e *AdaptiveEngine) CurrentRegime() common.Regime {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.detector.LastRegime()
}

// RegimeStatistics summarises the regime transition history.
func (e *AdaptiveEngine) RegimeStatistics() stats.RegimeStatistics {
	e.mu.Lock()
	defer e.mu.Unlock()
	return stats.Summarize(e.regimeHistory, e.detector.LastRegime(), time.Now())
}

// MetricsHistory returns the sampled metrics rows over the life of the
// engine.
func (e *AdaptiveEngine) MetricsHistory() []MetricsRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]MetricsRecord, len(e.metricsHistory))
	copy(out, e.metricsHistory)
	return out
}

// SetRegimeThreshold updates one of the detector's named thresholds.
func (e *AdaptiveEngine) SetRegimeThreshold(kind string, value float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.detector.SetThreshold(kind, value)
}

// Config is the adaptive engine's full externally visible
// configuration: the detector's window and threshold parameters plus
// the enable_regime_detection/enable_metrics_recording feature toggles.
type Config struct {
	DetectionInterval      int
	WindowSize             int
	VolatilityThreshold    float64
	SpreadThreshold        float64
	ImbalanceThreshold     float64
	CancellationThreshold  float64
	EnableRegimeDetection  bool
	EnableMetricsRecording bool
}

// GetConfig returns the engine's current configuration.
func (e *AdaptiveEngine) GetConfig() Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.configLocked()
}

func (e *AdaptiveEngine) configLocked() Config {
	cfg := e.detector.Config()
	return Config{
		DetectionInterval:      cfg.DetectionInterval,
		WindowSize:             cfg.WindowSize,
		VolatilityThreshold:    cfg.Thresholds.Volatility,
		SpreadThreshold:        cfg.Thresholds.Spread,
		ImbalanceThreshold:     cfg.Thresholds.Imbalance,
		CancellationThreshold:  cfg.Thresholds.Cancellation,
		EnableRegimeDetection:  e.enableRegimeDetection,
		EnableMetricsRecording: e.enableMetricsRecording,
	}
}

// UpdateConfig applies a partial set of options by name, matching the
// module's recognised configuration table. Changing window_size or
// detection_interval rebuilds the detector from scratch — the same
// full-rebuild semantics a fresh NewAdaptive call would produce — so
// any in-flight window history is discarded. An unrecognised key or a
// value of the wrong type is a configuration error and leaves the
// engine's configuration unchanged.
func (e *AdaptiveEngine) UpdateConfig(updates map[string]any) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cfg := e.configLocked()
	rebuild := false

	for key, value := range updates {
		switch key {
		case "detection_interval":
			n, err := intValue(key, value)
			if err != nil {
				return err
			}
			cfg.DetectionInterval = n
			rebuild = true
		case "window_size":
			n, err := intValue(key, value)
			if err != nil {
				return err
			}
			cfg.WindowSize = n
			rebuild = true
		case "volatility_threshold":
			v, err := floatValue(key, value)
			if err != nil {
				return err
			}
			cfg.VolatilityThreshold = v
		case "spread_threshold":
			v, err := floatValue(key, value)
			if err != nil {
				return err
			}
			cfg.SpreadThreshold = v
		case "imbalance_threshold":
			v, err := floatValue(key, value)
			if err != nil {
				return err
			}
			cfg.ImbalanceThreshold = v
		case "cancellation_threshold":
			v, err := floatValue(key, value)
			if err != nil {
				return err
			}
			cfg.CancellationThreshold = v
		case "enable_regime_detection":
			v, ok := value.(bool)
			if !ok {
				return fmt.Errorf("%w: %s", ErrInvalidConfigValue, key)
			}
			cfg.EnableRegimeDetection = v
		case "enable_metrics_recording":
			v, ok := value.(bool)
			if !ok {
				return fmt.Errorf("%w: %s", ErrInvalidConfigValue, key)
			}
			cfg.EnableMetricsRecording = v
		default:
			return fmt.Errorf("%w: %s", ErrUnknownConfigKey, key)
		}
	}

	if rebuild {
		e.detector = regime.New(regime.Config{
			WindowSize:        cfg.WindowSize,
			DetectionInterval: cfg.DetectionInterval,
			Thresholds: regime.Thresholds{
				Volatility:   cfg.VolatilityThreshold,
				Spread:       cfg.SpreadThreshold,
				Imbalance:    cfg.ImbalanceThreshold,
				Cancellation: cfg.CancellationThreshold,
			},
		})
		e.sampleEvery = max(1, e.detector.Config().DetectionInterval/10)
		e.gates = 0
	} else {
		_ = e.detector.SetThreshold("volatility", cfg.VolatilityThreshold)
		_ = e.detector.SetThreshold("spread", cfg.SpreadThreshold)
		_ = e.detector.SetThreshold("imbalance", cfg.ImbalanceThreshold)
		_ = e.detector.SetThreshold("cancellation", cfg.CancellationThreshold)
	}

	e.enableRegimeDetection = cfg.EnableRegimeDetection
	e.enableMetricsRecording = cfg.EnableMetricsRecording
	return nil
}

func intValue(key string, v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrInvalidConfigValue, key)
	}
}

func floatValue(key string, v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrInvalidConfigValue, key)
	}
}
