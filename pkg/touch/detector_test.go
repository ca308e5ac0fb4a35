package touch

import (
	"testing"
	"time"
)

// feed drives the detector with a magnitude series sampled at the given
// interval and returns the number of events it produced.
func feed(d *detector, mags []float64, threshold float64, interval time.Duration) int {
	now := time.Unix(0, 0)
	events := 0
	for _, m := range mags {
		if d.process(m, threshold, now) {
			events++
		}
		now = now.Add(interval)
	}
	return events
}

func TestDetectorSingleSpike(t *testing.T) {
	d := newDetector(300 * time.Millisecond)
	d.reset()

	mags := []float64{0.1, 0.1, 2.0, 0.1, 0.1}
	if got := feed(d, mags, 1.0, 10*time.Millisecond); got != 1 {
		t.Fatalf("expected 1 event for a single spike, got %d", got)
	}
}

func TestDetectorRingingSuppressedByDebounce(t *testing.T) {
	d := newDetector(300 * time.Millisecond)
	d.reset()

	// A tap followed by mechanical ringing: several crossings inside the
	// debounce window must collapse into one event.
	mags := []float64{0.1, 3.0, 0.2, 2.5, 0.3, 1.8, 0.2, 1.2, 0.1}
	if got := feed(d, mags, 1.0, 10*time.Millisecond); got != 1 {
		t.Fatalf("expected ringing to count as 1 event, got %d", got)
	}
}

func TestDetectorSpacedSpikes(t *testing.T) {
	d := newDetector(300 * time.Millisecond)
	d.reset()

	// Five spikes spaced one second apart, sampled at 100ms: each spike is
	// well outside the previous debounce window.
	var mags []float64
	for i := 0; i < 5; i++ {
		mags = append(mags, 2.0)
		for j := 0; j < 9; j++ {
			mags = append(mags, 0.1)
		}
	}
	if got := feed(d, mags, 1.0, 100*time.Millisecond); got != 5 {
		t.Fatalf("expected 5 events for 5 spaced spikes, got %d", got)
	}
}

func TestDetectorHeldSignalCountsOnce(t *testing.T) {
	d := newDetector(300 * time.Millisecond)
	d.reset()

	// Magnitude held above the threshold for 2s with a 300ms debounce. The
	// detector must not re-trigger until the signal falls back below the
	// threshold, so the whole plateau is exactly one event.
	var mags []float64
	for i := 0; i < 200; i++ {
		mags = append(mags, 2.0)
	}
	if got := feed(d, mags, 1.0, 10*time.Millisecond); got != 1 {
		t.Fatalf("expected a held signal to count once, got %d events", got)
	}

	// Once it drops and rises again, a new event fires.
	if got := feed(d, []float64{0.1, 0.1, 2.0}, 1.0, 10*time.Millisecond); got != 1 {
		t.Fatalf("expected re-arm after falling below threshold, got %d events", got)
	}
}

func TestDetectorExactThresholdDoesNotTrigger(t *testing.T) {
	d := newDetector(300 * time.Millisecond)
	d.reset()

	// Triggering requires magnitude strictly greater than the threshold.
	if d.process(1.0, 1.0, time.Unix(0, 0)) {
		t.Fatal("magnitude equal to threshold must not trigger")
	}
	if !d.process(1.0000001, 1.0, time.Unix(1, 0)) {
		t.Fatal("magnitude just above threshold must trigger")
	}
}

func TestDetectorReArmBoundary(t *testing.T) {
	d := newDetector(300 * time.Millisecond)
	d.reset()

	now := time.Unix(0, 0)
	if !d.process(2.0, 1.0, now) {
		t.Fatal("first crossing must trigger")
	}
	// A fresh crossing just inside the window is suppressed.
	if d.process(0.1, 1.0, now.Add(100*time.Millisecond)) {
		t.Fatal("below-threshold sample must not trigger")
	}
	if d.process(2.0, 1.0, now.Add(299*time.Millisecond)) {
		t.Fatal("crossing inside debounce window must be suppressed")
	}
	// After the window and a dip below threshold, the next crossing fires.
	if d.process(0.1, 1.0, now.Add(301*time.Millisecond)) {
		t.Fatal("below-threshold sample must not trigger")
	}
	if !d.process(2.0, 1.0, now.Add(400*time.Millisecond)) {
		t.Fatal("crossing after debounce window must trigger")
	}
}

func TestDetectorReset(t *testing.T) {
	d := newDetector(time.Hour)
	d.reset()

	now := time.Unix(0, 0)
	if !d.process(2.0, 1.0, now) {
		t.Fatal("first crossing must trigger")
	}
	// Without reset the hour-long debounce would swallow this.
	d.reset()
	if !d.process(2.0, 1.0, now.Add(time.Millisecond)) {
		t.Fatal("reset must re-arm the detector immediately")
	}
}
