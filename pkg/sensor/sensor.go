// Package sensor abstracts the inertial sensor that feeds the touch engine.
package sensor

import "time"

// Sample is one timestamped 3-axis acceleration reading, in g.
type Sample struct {
	X, Y, Z float64
	Time    time.Time
}

// Source produces acceleration samples. Implementations must not block
// longer than one poll period on Read.
type Source interface {
	// Probe checks that the physical sensor can be addressed and is the
	// expected device. It must be called before Read.
	Probe() error

	// Read returns the latest acceleration sample.
	Read() (Sample, error)

	// Close releases the underlying bus handle. Read must not be called
	// after Close.
	Close() error
}
