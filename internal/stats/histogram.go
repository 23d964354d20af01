package stats

import (
	"sync"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// SafeHistogram is a thread-safe hdrhistogram that stores float samples
// as fixed-point integers (value * scale).
type SafeHistogram struct {
	hist  *hdrhistogram.Histogram
	scale float64
	mu    sync.Mutex
}

// NewSafeHistogram tracks values in [0, highest] with 3 significant figures.
func NewSafeHistogram(highest float64, scale float64) *SafeHistogram {
	if scale <= 0 {
		scale = 1
	}
	h := hdrhistogram.New(1, int64(highest*scale), 3)
	return &SafeHistogram{hist: h, scale: scale}
}

// Record adds a sample. Values outside the tracked range are clamped.
func (h *SafeHistogram) Record(v float64) {
	if v < 0 {
		v = 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	n := int64(v * h.scale)
	if limit := h.hist.HighestTrackableValue(); n > limit {
		n = limit
	}
	_ = h.hist.RecordValue(n)
}

func (h *SafeHistogram) ValueAtQuantile(q float64) float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return float64(h.hist.ValueAtQuantile(q)) / h.scale
}

func (h *SafeHistogram) Min() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return float64(h.hist.Min()) / h.scale
}

func (h *SafeHistogram) Max() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return float64(h.hist.Max()) / h.scale
}

func (h *SafeHistogram) TotalCount() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hist.TotalCount()
}
