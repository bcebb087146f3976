package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchbook/internal/common"
	"matchbook/internal/regime"
)

func TestAdaptiveEngine_RegimeStaysNormalBelowWindow(t *testing.T) {
	e := NewAdaptive(regime.Config{WindowSize: 50, DetectionInterval: 5})
	for i := 0; i < 5; i++ {
		e.Process(mustOrder(t, common.Order{Side: common.Buy, Type: common.Limit, LimitPrice: 100, TotalQuantity: 1}))
	}
	assert.Equal(t, common.Normal, e.CurrentRegime())
}

func TestAdaptiveEngine_TransitionsToHighVolatilityOnDispersedPrices(t *testing.T) {
	e := NewAdaptive(regime.Config{WindowSize: 4, DetectionInterval: 4})
	prices := []float64{100, 150, 80, 200}
	for _, price := range prices {
		e.Process(mustOrder(t, common.Order{Side: common.Sell, Type: common.Limit, LimitPrice: price, TotalQuantity: 1}))
	}

	require.Equal(t, common.HighVolatility, e.CurrentRegime())
	stats := e.RegimeStatistics()
	assert.Equal(t, 1, stats.TotalChanges)
}

func TestAdaptiveEngine_BenchmarkModeBypassesDetector(t *testing.T) {
	e := NewAdaptive(regime.Config{WindowSize: 4, DetectionInterval: 4})
	e.SetBenchmarkMode(true)

	prices := []float64{100, 150, 80, 200}
	for _, price := range prices {
		e.Process(mustOrder(t, common.Order{Side: common.Sell, Type: common.Limit, LimitPrice: price, TotalQuantity: 1}))
	}

	assert.Equal(t, common.Normal, e.CurrentRegime(), "benchmark mode never advances the detector")
}

func TestAdaptiveEngine_CancelRemovesRestingOrder(t *testing.T) {
	e := NewAdaptive(regime.Config{WindowSize: 10, DetectionInterval: 10})
	o := mustOrder(t, common.Order{Side: common.Buy, Type: common.Limit, LimitPrice: 100, TotalQuantity: 10})
	e.Process(o)

	assert.True(t, e.Cancel(o.ID))
}

func TestAdaptiveEngine_GetConfigReflectsConstruction(t *testing.T) {
	e := NewAdaptive(regime.Config{
		WindowSize:        20,
		DetectionInterval: 10,
		Thresholds:        regime.Thresholds{Volatility: 0.5, Spread: 0.2, Imbalance: 0.3, Cancellation: 0.4},
	})

	cfg := e.GetConfig()
	assert.Equal(t, 20, cfg.WindowSize)
	assert.Equal(t, 10, cfg.DetectionInterval)
	assert.Equal(t, 0.5, cfg.VolatilityThreshold)
	assert.Equal(t, 0.2, cfg.SpreadThreshold)
	assert.Equal(t, 0.3, cfg.ImbalanceThreshold)
	assert.Equal(t, 0.4, cfg.CancellationThreshold)
	assert.True(t, cfg.EnableRegimeDetection)
	assert.True(t, cfg.EnableMetricsRecording)
}

func TestAdaptiveEngine_UpdateConfigThresholdsWithoutRebuild(t *testing.T) {
	e := NewAdaptive(regime.Config{WindowSize: 10, DetectionInterval: 10})

	err := e.UpdateConfig(map[string]any{
		"volatility_threshold": 0.75,
		"spread_threshold":     0.15,
	})
	require.NoError(t, err)

	cfg := e.GetConfig()
	assert.Equal(t, 0.75, cfg.VolatilityThreshold)
	assert.Equal(t, 0.15, cfg.SpreadThreshold)
	assert.Equal(t, 10, cfg.WindowSize, "unrelated fields should be unaffected")
}

func TestAdaptiveEngine_UpdateConfigWindowRebuildsDetectorAndResetsRegime(t *testing.T) {
	e := NewAdaptive(regime.Config{WindowSize: 4, DetectionInterval: 4})
	prices := []float64{100, 150, 80, 200}
	for _, price := range prices {
		e.Process(mustOrder(t, common.Order{Side: common.Sell, Type: common.Limit, LimitPrice: price, TotalQuantity: 1}))
	}
	require.Equal(t, common.HighVolatility, e.CurrentRegime())

	err := e.UpdateConfig(map[string]any{"window_size": 50, "detection_interval": 50})
	require.NoError(t, err)

	cfg := e.GetConfig()
	assert.Equal(t, 50, cfg.WindowSize)
	assert.Equal(t, 50, cfg.DetectionInterval)
	assert.Equal(t, common.Normal, e.CurrentRegime(), "rebuilding the detector should drop its prior classification")
}

func TestAdaptiveEngine_UpdateConfigDisablesRegimeDetectionAndMetricsRecording(t *testing.T) {
	e := NewAdaptive(regime.Config{WindowSize: 4, DetectionInterval: 1})

	err := e.UpdateConfig(map[string]any{
		"enable_regime_detection":  false,
		"enable_metrics_recording": false,
	})
	require.NoError(t, err)

	prices := []float64{100, 150, 80, 200}
	for _, price := range prices {
		e.Process(mustOrder(t, common.Order{Side: common.Sell, Type: common.Limit, LimitPrice: price, TotalQuantity: 1}))
	}

	assert.Equal(t, common.Normal, e.CurrentRegime(), "disabling regime detection should stop classification from advancing")
	assert.Empty(t, e.MetricsHistory(), "disabling metrics recording should stop history from being appended")
}

func TestAdaptiveEngine_UpdateConfigRejectsUnknownKey(t *testing.T) {
	e := NewAdaptive(regime.Config{WindowSize: 10, DetectionInterval: 10})
	err := e.UpdateConfig(map[string]any{"not_a_real_key": 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownConfigKey))
}

func TestAdaptiveEngine_UpdateConfigRejectsWrongValueType(t *testing.T) {
	e := NewAdaptive(regime.Config{WindowSize: 10, DetectionInterval: 10})
	err := e.UpdateConfig(map[string]any{"volatility_threshold": "not-a-number"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfigValue))
}
