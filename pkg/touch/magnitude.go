package touch

import (
	"math"

	"github.com/darrenmsmith/FT-2025-sub001/pkg/sensor"
)

// Magnitude is the Euclidean norm of the per-axis delta between a sample
// and the baseline. It is the scalar trigger signal for tap detection.
func Magnitude(s sensor.Sample, base [3]float64) float64 {
	dx := s.X - base[0]
	dy := s.Y - base[1]
	dz := s.Z - base[2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// baseline tracks the at-rest acceleration vector with a per-axis EWMA.
// The sampling loop only feeds it samples whose magnitude is at or below
// the threshold, so taps do not drag the baseline toward themselves.
type baseline struct {
	alpha  float64
	primed bool
	est    [3]float64
}

func newBaseline(alpha float64) *baseline {
	return &baseline{alpha: alpha}
}

func (b *baseline) seed(x, y, z float64) {
	b.est = [3]float64{x, y, z}
	b.primed = true
}

func (b *baseline) update(s sensor.Sample) {
	if !b.primed {
		b.seed(s.X, s.Y, s.Z)
		return
	}
	b.est[0] += b.alpha * (s.X - b.est[0])
	b.est[1] += b.alpha * (s.Y - b.est[1])
	b.est[2] += b.alpha * (s.Z - b.est[2])
}

func (b *baseline) vector() [3]float64 { return b.est }
