package touch

import (
	"math"
	"testing"
	"time"

	"github.com/darrenmsmith/FT-2025-sub001/pkg/sensor"
)

func TestMagnitude(t *testing.T) {
	cases := []struct {
		name   string
		sample sensor.Sample
		base   [3]float64
		want   float64
	}{
		{"at rest on baseline", sensor.Sample{Z: 1.0}, [3]float64{0, 0, 1.0}, 0},
		{"unit X delta", sensor.Sample{X: 1.0, Z: 1.0}, [3]float64{0, 0, 1.0}, 1.0},
		{"3-4-5 triangle", sensor.Sample{X: 3.0, Y: 4.0, Z: 1.0}, [3]float64{0, 0, 1.0}, 5.0},
		{"negative deltas", sensor.Sample{X: -3.0, Y: -4.0}, [3]float64{}, 5.0},
		{"tilted baseline", sensor.Sample{X: 0.5, Z: 0.8}, [3]float64{0.5, 0, 0.8}, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Magnitude(c.sample, c.base); math.Abs(got-c.want) > 1e-9 {
				t.Fatalf("got %v, want %v", got, c.want)
			}
		})
	}
}

func TestBaselineTracksDrift(t *testing.T) {
	b := newBaseline(0.5)
	b.seed(0, 0, 1.0)

	// Feed a drifted rest vector; the EWMA must converge toward it.
	for i := 0; i < 50; i++ {
		b.update(sensor.Sample{X: 0.1, Z: 1.0, Time: time.Unix(int64(i), 0)})
	}
	v := b.vector()
	if math.Abs(v[0]-0.1) > 1e-6 {
		t.Fatalf("baseline X did not converge, got %v", v[0])
	}
	if math.Abs(v[2]-1.0) > 1e-6 {
		t.Fatalf("baseline Z moved unexpectedly, got %v", v[2])
	}
}

func TestBaselineSeedsOnFirstUpdate(t *testing.T) {
	b := newBaseline(0.05)
	b.update(sensor.Sample{X: 0.2, Y: -0.1, Z: 0.9})
	if got := b.vector(); got != [3]float64{0.2, -0.1, 0.9} {
		t.Fatalf("first update must seed, got %v", got)
	}
}

func TestCollectorResult(t *testing.T) {
	start := time.Unix(100, 0)
	c := newCollector(start)

	for _, m := range []float64{0.1, 0.3, 2.0, 0.2} {
		c.observe(m)
	}
	c.event()

	res := c.result(start.Add(2 * time.Second))
	if res.TouchesDetected != 1 {
		t.Fatalf("touches: got %d, want 1", res.TouchesDetected)
	}
	if res.MaxMagnitude != 2.0 {
		t.Fatalf("max: got %v, want 2.0", res.MaxMagnitude)
	}
	if math.Abs(res.AvgMagnitude-0.65) > 1e-9 {
		t.Fatalf("avg: got %v, want 0.65", res.AvgMagnitude)
	}
	if res.WindowSeconds != 2.0 {
		t.Fatalf("window: got %v, want 2.0", res.WindowSeconds)
	}
}

func TestCollectorEmptyWindow(t *testing.T) {
	c := newCollector(time.Unix(0, 0))
	res := c.result(time.Unix(1, 0))
	if res.AvgMagnitude != 0 || res.MaxMagnitude != 0 || res.TouchesDetected != 0 {
		t.Fatalf("empty window must produce zero stats, got %+v", res)
	}
}
