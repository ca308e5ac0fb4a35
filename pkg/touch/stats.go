package touch

import "time"

// collector accumulates per-session magnitude statistics. Triggering and
// statistics are independent consumers of the magnitude stream: every
// observed sample feeds max/avg, debounced or not. It is owned by the
// sampling goroutine and must not be shared.
type collector struct {
	start   time.Time
	samples int
	events  int
	max     float64
	sum     float64
}

func newCollector(start time.Time) *collector {
	return &collector{start: start}
}

func (c *collector) observe(magnitude float64) {
	c.samples++
	c.sum += magnitude
	if magnitude > c.max {
		c.max = magnitude
	}
}

func (c *collector) event() {
	c.events++
}

// result finalizes the window into an immutable DetectionResult.
func (c *collector) result(end time.Time) DetectionResult {
	avg := 0.0
	if c.samples > 0 {
		avg = c.sum / float64(c.samples)
	}
	return DetectionResult{
		TouchesDetected: c.events,
		MaxMagnitude:    c.max,
		AvgMagnitude:    avg,
		WindowSeconds:   end.Sub(c.start).Seconds(),
	}
}
