package metrics

import (
	"path"
	"sync"
	"time"

	"github.com/nakabonne/tstorage"
)

// Package metrics keeps operational counters and gauges in an embedded
// time-series store under the application workdir. Writers never block the
// request path on errors; a metric that cannot be recorded is dropped.

var (
	storage tstorage.Storage
	mu      sync.RWMutex
)

// InitMetrics opens the metrics store under workdir/metrics.
func InitMetrics(workdir string) error {
	s, err := tstorage.NewStorage(
		tstorage.WithDataPath(path.Join(workdir, "metrics")),
		tstorage.WithTimestampPrecision(tstorage.Seconds),
		tstorage.WithRetention(30*24*time.Hour),
	)
	if err != nil {
		return err
	}
	mu.Lock()
	storage = s
	mu.Unlock()
	return nil
}

// SetGauge records the current value of a gauge metric.
func SetGauge(name string, value int64) {
	insert(name, float64(value))
}

// SetGaugeFloat records a fractional gauge such as a rate.
func SetGaugeFloat(name string, value float64) {
	insert(name, value)
}

// IncrCounter records a counter increment as a data point; consumers sum
// over a window to obtain rates.
func IncrCounter(name string, delta int64) {
	insert(name, float64(delta))
}

func insert(name string, value float64) {
	mu.RLock()
	s := storage
	mu.RUnlock()
	if s == nil {
		return
	}
	_ = s.InsertRows([]tstorage.Row{
		{
			Metric:    name,
			DataPoint: tstorage.DataPoint{Timestamp: time.Now().Unix(), Value: value},
		},
	})
}

// Select returns the raw data points for a metric in [start, end].
func Select(name string, start, end int64) ([]*tstorage.DataPoint, error) {
	mu.RLock()
	s := storage
	mu.RUnlock()
	if s == nil {
		return nil, nil
	}
	return s.Select(name, nil, start, end)
}

// SumRange sums all points of a counter metric in [start, end].
func SumRange(name string, start, end int64) float64 {
	points, err := Select(name, start, end)
	if err != nil {
		return 0
	}
	var total float64
	for _, p := range points {
		total += p.Value
	}
	return total
}

// LastValue returns the most recent value of a gauge metric within the
// trailing hour, or 0 when no sample exists.
func LastValue(name string) float64 {
	now := time.Now().Unix()
	points, err := Select(name, now-3600, now)
	if err != nil || len(points) == 0 {
		return 0
	}
	return points[len(points)-1].Value
}

// Close flushes and closes the metrics store.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if storage == nil {
		return nil
	}
	err := storage.Close()
	storage = nil
	return err
}
