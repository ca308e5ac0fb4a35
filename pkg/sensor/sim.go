package sensor

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

// Sim is a simulated accelerometer for bench development and tests. It
// produces gravity on the Z axis plus Gaussian noise, and can inject
// synthetic taps at a fixed interval.
type Sim struct {
	// Noise is the standard deviation of the per-axis noise, in g.
	Noise float64
	// TapEvery injects a single-sample spike at this interval. Zero
	// disables synthetic taps.
	TapEvery time.Duration
	// TapAmplitude is the spike size in g, applied to the X axis.
	TapAmplitude float64

	mu      sync.Mutex
	rng     *rand.Rand
	lastTap time.Time
	step    float64
}

// NewSim returns a simulated source with a quiet noise floor and no
// synthetic taps.
func NewSim() *Sim {
	return &Sim{
		Noise: 0.01,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *Sim) Probe() error { return nil }

func (s *Sim) Read() (Sample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.step += 0.01

	// A slow sway keeps the baseline tracker honest.
	sample := Sample{
		X:    0.002*math.Sin(s.step) + s.rng.NormFloat64()*s.Noise,
		Y:    0.002*math.Cos(s.step) + s.rng.NormFloat64()*s.Noise,
		Z:    1.0 + s.rng.NormFloat64()*s.Noise,
		Time: now,
	}

	if s.TapEvery > 0 && now.Sub(s.lastTap) >= s.TapEvery {
		s.lastTap = now
		sample.X += s.TapAmplitude
	}

	return sample, nil
}

func (s *Sim) Close() error { return nil }
