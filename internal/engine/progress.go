package engine

import (
	"sync"
	"time"

	hdrhistogram "github.com/HdrHistogram/hdrhistogram-go"

	"yqhp/assistant-engine/pkg/types"
)

// maxLatencyMillis bounds the latency histograms at ten minutes; anything
// slower is recorded as the maximum.
const maxLatencyMillis = 600_000

// LatencyStats summarizes invocation latency for one capability.
type LatencyStats struct {
	Count int64 `json:"count"`
	P50   int64 `json:"p50_ms"`
	P95   int64 `json:"p95_ms"`
	P99   int64 `json:"p99_ms"`
	Max   int64 `json:"max_ms"`
}

// ProgressEmitter broadcasts task lifecycle events to subscribers and keeps
// per-capability latency histograms. Emission is fire-and-forget: a slow or
// absent subscriber never blocks engine progress.
type ProgressEmitter struct {
	mu         sync.Mutex
	listeners  []types.ProgressListener
	histograms map[string]*hdrhistogram.Histogram
}

// NewProgressEmitter creates an emitter with no subscribers.
func NewProgressEmitter() *ProgressEmitter {
	return &ProgressEmitter{
		histograms: make(map[string]*hdrhistogram.Histogram),
	}
}

// Subscribe registers a listener for subsequent events.
func (p *ProgressEmitter) Subscribe(l types.ProgressListener) {
	if l == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, l)
}

// Emit dispatches one event. Listeners run on their own goroutines.
func (p *ProgressEmitter) Emit(ev types.ProgressEvent) {
	ev.Timestamp = time.Now()

	p.mu.Lock()
	listeners := make([]types.ProgressListener, len(p.listeners))
	copy(listeners, p.listeners)

	if ev.Type != types.EventTaskStarted && ev.Duration > 0 {
		h, ok := p.histograms[ev.Capability]
		if !ok {
			h = hdrhistogram.New(1, maxLatencyMillis, 3)
			p.histograms[ev.Capability] = h
		}
		ms := ev.Duration.Milliseconds()
		if ms < 1 {
			ms = 1
		}
		if ms > maxLatencyMillis {
			ms = maxLatencyMillis
		}
		_ = h.RecordValue(ms)
	}
	p.mu.Unlock()

	for _, l := range listeners {
		go l(ev)
	}
}

// LatencySnapshot returns current latency percentiles per capability.
func (p *ProgressEmitter) LatencySnapshot() map[string]LatencyStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make(map[string]LatencyStats, len(p.histograms))
	for name, h := range p.histograms {
		out[name] = LatencyStats{
			Count: h.TotalCount(),
			P50:   h.ValueAtQuantile(50),
			P95:   h.ValueAtQuantile(95),
			P99:   h.ValueAtQuantile(99),
			Max:   h.Max(),
		}
	}
	return out
}
