// metrics.go - Metrics collection for the game daemon.
package main

import (
	"fmt"
	"sync"
	"time"

	"encforest/internal/ledger"
)

// MetricType represents the type of metric
type MetricType string

const (
	Counter   MetricType = "counter"
	Gauge     MetricType = "gauge"
	Histogram MetricType = "histogram"
)

// Metric represents a single metric
type Metric struct {
	Name      string            `json:"name"`
	Type      MetricType        `json:"type"`
	Value     float64           `json:"value"`
	Labels    map[string]string `json:"labels,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// MetricsCollector manages metrics collection
type MetricsCollector struct {
	mu         sync.RWMutex
	metrics    map[string]*Metric
	counters   map[string]int64
	gauges     map[string]float64
	histograms map[string][]float64
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		metrics:    make(map[string]*Metric),
		counters:   make(map[string]int64),
		gauges:     make(map[string]float64),
		histograms: make(map[string][]float64),
	}
}

// IncrementCounter increments a counter metric
func (mc *MetricsCollector) IncrementCounter(name string, labels map[string]string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	key := mc.makeKey(name, labels)
	mc.counters[key]++
	mc.updateMetric(name, Counter, float64(mc.counters[key]), labels)
}

// SetGauge sets a gauge metric value
func (mc *MetricsCollector) SetGauge(name string, value float64, labels map[string]string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	key := mc.makeKey(name, labels)
	mc.gauges[key] = value
	mc.updateMetric(name, Gauge, value, labels)
}

// RecordHistogram records a value in a histogram
func (mc *MetricsCollector) RecordHistogram(name string, value float64, labels map[string]string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	key := mc.makeKey(name, labels)
	mc.histograms[key] = append(mc.histograms[key], value)

	// Keep only last 1000 values for memory efficiency
	if len(mc.histograms[key]) > 1000 {
		mc.histograms[key] = mc.histograms[key][len(mc.histograms[key])-1000:]
	}

	mc.updateMetric(name, Histogram, value, labels)
}

// GetMetricsSummary returns a summary of all metrics
func (mc *MetricsCollector) GetMetricsSummary() map[string]interface{} {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	summary := make(map[string]interface{})

	counters := make(map[string]int64, len(mc.counters))
	for key, value := range mc.counters {
		counters[key] = value
	}
	summary["counters"] = counters

	gauges := make(map[string]float64, len(mc.gauges))
	for key, value := range mc.gauges {
		gauges[key] = value
	}
	summary["gauges"] = gauges

	histograms := make(map[string]map[string]float64)
	for key, values := range mc.histograms {
		if len(values) == 0 {
			continue
		}
		h := map[string]float64{
			"count": float64(len(values)),
			"min":   values[0],
			"max":   values[0],
			"sum":   0,
		}
		for _, v := range values {
			if v < h["min"] {
				h["min"] = v
			}
			if v > h["max"] {
				h["max"] = v
			}
			h["sum"] += v
		}
		h["avg"] = h["sum"] / h["count"]
		histograms[key] = h
	}
	summary["histograms"] = histograms

	return summary
}

// makeKey creates a unique key for a metric name and labels
func (mc *MetricsCollector) makeKey(name string, labels map[string]string) string {
	if len(labels) == 0 {
		return name
	}
	key := name
	for k, v := range labels {
		key += fmt.Sprintf("_%s_%s", k, v)
	}
	return key
}

// updateMetric updates or creates a metric
func (mc *MetricsCollector) updateMetric(name string, metricType MetricType, value float64, labels map[string]string) {
	key := mc.makeKey(name, labels)
	mc.metrics[key] = &Metric{
		Name:      name,
		Type:      metricType,
		Value:     value,
		Labels:    labels,
		Timestamp: time.Now(),
	}
}

// Predefined metric names
const (
	MetricSpawnCount     = "spawn_count"
	MetricPlanetCount    = "planet_created_count"
	MetricMoveCount      = "move_count"
	MetricFlushCount     = "flush_count"
	MetricUpgradeCount   = "upgrade_count"
	MetricBroadcastCount = "broadcast_count"
	MetricActiveGames    = "active_games"
	MetricRoundDuration  = "confidential_round_seconds"
	MetricErrorCount     = "error_count"
)

// RecordRound records the wall-clock duration of one confidential round.
func (mc *MetricsCollector) RecordRound(op string, duration time.Duration) {
	mc.RecordHistogram(MetricRoundDuration, duration.Seconds(), map[string]string{"op": op})
}

// RecordError counts a failed request by category.
func (mc *MetricsCollector) RecordError(errorType string) {
	mc.IncrementCounter(MetricErrorCount, map[string]string{"type": errorType})
}

// eventMetric maps ledger event types onto counters.
var eventMetric = map[ledger.EventType]string{
	ledger.EventSpawnResult:   MetricSpawnCount,
	ledger.EventPlanetCreated: MetricPlanetCount,
	ledger.EventMoveResult:    MetricMoveCount,
	ledger.EventFlushResult:   MetricFlushCount,
	ledger.EventUpgradeResult: MetricUpgradeCount,
	ledger.EventBroadcast:     MetricBroadcastCount,
}

// Sink adapts the collector into a ledger event sink so every state
// transition is counted without touching the manager.
func (mc *MetricsCollector) Sink() ledger.Sink {
	var games sync.Map
	return ledger.SinkFunc(func(ev ledger.Event) {
		if name, ok := eventMetric[ev.Type]; ok {
			mc.IncrementCounter(name, map[string]string{"game": fmt.Sprint(ev.GameID)})
		}
		switch ev.Type {
		case ledger.EventGameCreated:
			games.Store(ev.GameID, struct{}{})
		case ledger.EventCleanup:
			if ev.PlanetHash == "" {
				games.Delete(ev.GameID)
			}
		}
		n := 0
		games.Range(func(any, any) bool { n++; return true })
		mc.SetGauge(MetricActiveGames, float64(n), nil)
	})
}
