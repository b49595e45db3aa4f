package metrics

import (
	"encoding/json"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	// latency range: 1us to 10min, in microseconds
	minLatencyUs = 1
	maxLatencyUs = 600_000_000
	maxAttempts  = 10_000
)

// MatcherStats is a snapshot of one matcher's statistics.
type MatcherStats struct {
	Name        string        `json:"name"`
	Calls       int64         `json:"calls"`
	Failures    int64         `json:"failures"`
	P50         time.Duration `json:"p50"`
	P95         time.Duration `json:"p95"`
	P99         time.Duration `json:"p99"`
	MaxAttempts int64         `json:"maxAttempts"`
}

type matcherMetrics struct {
	calls    int64
	failures int64
	latency  *hdrhistogram.Histogram
	attempts *hdrhistogram.Histogram
}

// Collector aggregates observations. It is safe for concurrent use.
type Collector struct {
	mu       sync.Mutex
	matchers map[string]*matcherMetrics
}

func NewCollector() *Collector {
	return &Collector{matchers: make(map[string]*matcherMetrics)}
}

func clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Observe records one assertion.
func (c *Collector) Observe(name string, attempts int, elapsed time.Duration, passed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := c.matchers[name]
	if !ok {
		m = &matcherMetrics{
			latency:  hdrhistogram.New(minLatencyUs, maxLatencyUs, 3),
			attempts: hdrhistogram.New(1, maxAttempts, 3),
		}
		c.matchers[name] = m
	}

	m.calls++
	if !passed {
		m.failures++
	}
	_ = m.latency.RecordValue(clamp(elapsed.Microseconds(), minLatencyUs, maxLatencyUs))
	_ = m.attempts.RecordValue(clamp(int64(attempts), 1, maxAttempts))
}

// Snapshot returns the statistics of every observed matcher, sorted by name.
func (c *Collector) Snapshot() []MatcherStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := make([]MatcherStats, 0, len(c.matchers))
	for name, m := range c.matchers {
		stats = append(stats, MatcherStats{
			Name:        name,
			Calls:       m.calls,
			Failures:    m.failures,
			P50:         time.Duration(m.latency.ValueAtQuantile(50)) * time.Microsecond,
			P95:         time.Duration(m.latency.ValueAtQuantile(95)) * time.Microsecond,
			P99:         time.Duration(m.latency.ValueAtQuantile(99)) * time.Microsecond,
			MaxAttempts: m.attempts.Max(),
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Name < stats[j].Name })
	return stats
}

// Reset drops all observations.
func (c *Collector) Reset() {
	c.mu.Lock()
	c.matchers = make(map[string]*matcherMetrics)
	c.mu.Unlock()
}

// WriteJSON writes the snapshot as an indented JSON array.
func (c *Collector) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(c.Snapshot())
}
