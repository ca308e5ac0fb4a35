package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/darrenmsmith/FT-2025-sub001/pkg/utils/ptr"
)

func TestFileDefaultsWhenMissing(t *testing.T) {
	f, err := NewFile(filepath.Join(t.TempDir(), "touchctl.json"))
	if err != nil {
		t.Fatalf("NewFile failed: %v", err)
	}

	if got := f.Device(); got != "pad-0" {
		t.Fatalf("Device: got %q, want pad-0", got)
	}
	if got := f.I2CDevice(); got != "/dev/i2c-1" {
		t.Fatalf("I2CDevice: got %q, want /dev/i2c-1", got)
	}
	if got := f.I2CAddr(); got != 0x53 {
		t.Fatalf("I2CAddr: got %#x, want 0x53", got)
	}
	if got := f.PollInterval(); got != 15*time.Millisecond {
		t.Fatalf("PollInterval: got %v, want 15ms", got)
	}
	if got := f.Debounce(); got != 300*time.Millisecond {
		t.Fatalf("Debounce: got %v, want 300ms", got)
	}
	if got := f.Sensitivity(); got != 2.5 {
		t.Fatalf("Sensitivity: got %v, want 2.5", got)
	}
	if got := f.ThresholdFloor(); got != 0.5 {
		t.Fatalf("ThresholdFloor: got %v, want 0.5", got)
	}
	if got := f.DefaultThreshold(); got != 1.0 {
		t.Fatalf("DefaultThreshold: got %v, want 1.0", got)
	}
	if got := f.CalibrationSeconds(); got != 3 {
		t.Fatalf("CalibrationSeconds: got %v, want 3", got)
	}
	if f.AllowNonRootAccess() {
		t.Fatal("AllowNonRootAccess should default to false")
	}
	if got := f.RecalibrateCron(); got != "" {
		t.Fatalf("RecalibrateCron should default empty, got %q", got)
	}
}

func TestFileEmptyFileIsValid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "touchctl.json")
	if err := os.WriteFile(path, []byte("  \n"), 0644); err != nil {
		t.Fatal(err)
	}

	f, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile on empty file failed: %v", err)
	}
	if got := f.Device(); got != "pad-0" {
		t.Fatalf("empty file must yield defaults, got device %q", got)
	}
}

func TestFilePartialConfigKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "touchctl.json")
	if err := os.WriteFile(path, []byte(`{"device":"pad-7","debounceMs":150}`), 0644); err != nil {
		t.Fatal(err)
	}

	f, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile failed: %v", err)
	}
	if got := f.Device(); got != "pad-7" {
		t.Fatalf("Device: got %q, want pad-7", got)
	}
	if got := f.Debounce(); got != 150*time.Millisecond {
		t.Fatalf("Debounce: got %v, want 150ms", got)
	}
	// Fields the file does not mention keep their defaults.
	if got := f.PollInterval(); got != 15*time.Millisecond {
		t.Fatalf("PollInterval: got %v, want default 15ms", got)
	}
}

func TestFileMalformedConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "touchctl.json")
	if err := os.WriteFile(path, []byte(`{"device":`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFile(path); err == nil {
		t.Fatal("malformed config must fail to load")
	}
}

func TestFileSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "touchctl.json")
	f := NewFileFromConfig(&RawFileConfig{
		Device:      ptr.To("pad-3"),
		Sensitivity: ptr.To(3.5),
	}, path)
	f.SetAllowNonRootAccess(true)
	f.SetRecalibrateCron("0 4 * * *")

	if err := f.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	g, err := NewFile(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got := g.Device(); got != "pad-3" {
		t.Fatalf("Device: got %q, want pad-3", got)
	}
	if got := g.Sensitivity(); got != 3.5 {
		t.Fatalf("Sensitivity: got %v, want 3.5", got)
	}
	if !g.AllowNonRootAccess() {
		t.Fatal("AllowNonRootAccess did not survive the round trip")
	}
	if got := g.RecalibrateCron(); got != "0 4 * * *" {
		t.Fatalf("RecalibrateCron: got %q", got)
	}
	// Unset fields stay unset on disk and resolve to defaults on load.
	if got := g.Debounce(); got != 300*time.Millisecond {
		t.Fatalf("Debounce: got %v, want default 300ms", got)
	}
}

func TestFileReloadPicksUpChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "touchctl.json")
	if err := os.WriteFile(path, []byte(`{"sensitivity":2.0}`), 0644); err != nil {
		t.Fatal(err)
	}
	f, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile failed: %v", err)
	}
	if got := f.Sensitivity(); got != 2.0 {
		t.Fatalf("Sensitivity: got %v, want 2.0", got)
	}

	if err := os.WriteFile(path, []byte(`{"sensitivity":4.0}`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := f.Load(); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got := f.Sensitivity(); got != 4.0 {
		t.Fatalf("Sensitivity after reload: got %v, want 4.0", got)
	}
}
