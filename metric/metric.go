// Package metric publishes counters of line stages with expvar. Counters
// are aggregated by component name.
package metric

import (
	"expvar"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const componentsLabel = "textpipe.components"

const (
	// LineCounter measures number of processed lines.
	LineCounter = "Lines"
	// ByteCounter measures number of processed bytes of line text.
	ByteCounter = "Bytes"
	// LatencyCounter measures latency between two lines.
	LatencyCounter = "Latency"
	// ComponentCounter counts number of metered components.
	ComponentCounter = "Components"
)

var (
	components = metrics{
		m: make(map[string]metric),
	}

	counters = []string{
		LineCounter,
		ByteCounter,
		LatencyCounter,
		ComponentCounter,
	}
)

// Get metrics values for provided component name.
func Get(name string) map[string]string {
	return getCounters(name)
}

// GetAll returns counters for all measured components.
func GetAll() map[string]map[string]string {
	m := make(map[string]map[string]string)
	components.Lock()
	defer components.Unlock()
	for name := range components.m {
		m[name] = getCounters(name)
	}
	return m
}

func getCounters(name string) map[string]string {
	m := make(map[string]string)
	for _, counter := range counters {
		v := expvar.Get(key(name, counter))
		if v != nil {
			m[counter] = v.String()
		}
	}
	return m
}

// ResetFunc returns new Measure closure. This closure is needed to postpone metrics
// capture until component is actually running.
type ResetFunc func() MeasureFunc

// MeasureFunc captures metrics when a line is processed.
type MeasureFunc func(lineSize int64)

// Meter creates new meter closure to capture component counters.
func Meter(name string) ResetFunc {
	metric := components.get(name)
	metric.components.Add(1)
	return func() MeasureFunc {
		calledAt := time.Now()
		return func(s int64) {
			metric.latency.set(time.Since(calledAt))
			metric.lines.Add(1)
			metric.bytes.Add(s)
			calledAt = time.Now()
		}
	}
}

type metrics struct {
	sync.Mutex
	m map[string]metric
}

func (m *metrics) get(name string) metric {
	m.Lock()
	defer m.Unlock()
	if metric, ok := m.m[name]; ok {
		return metric
	}
	metric := newMetric(name)
	m.m[name] = metric
	return metric
}

type metric struct {
	components *expvar.Int
	lines      *expvar.Int
	bytes      *expvar.Int
	latency    *duration
}

func newMetric(name string) metric {
	m := metric{
		components: expvar.NewInt(key(name, ComponentCounter)),
		lines:      expvar.NewInt(key(name, LineCounter)),
		bytes:      expvar.NewInt(key(name, ByteCounter)),
		latency:    &duration{},
	}
	expvar.Publish(key(name, LatencyCounter), m.latency)
	return m
}

func key(name, counter string) string {
	return fmt.Sprintf("%s.%s.%s", componentsLabel, name, counter)
}

// duration allows to format time.Duration metric values.
type duration struct {
	d int64
}

func (v *duration) String() string {
	return fmt.Sprintf("%q", time.Duration(atomic.LoadInt64(&v.d)).String())
}

func (v *duration) set(value time.Duration) {
	atomic.StoreInt64(&v.d, int64(value))
}
