package daemon

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/darrenmsmith/FT-2025-sub001/pkg/config"
	"github.com/darrenmsmith/FT-2025-sub001/pkg/events"
	"github.com/darrenmsmith/FT-2025-sub001/pkg/touch"
)

func newTestDaemon(t *testing.T) *Daemon {
	t.Helper()

	conf := config.NewFileFromConfig(nil, filepath.Join(t.TempDir(), "touchctl.json"))
	registry := NewRegistry()
	if err := registry.Register("pad-0", newTestEngine()); err != nil {
		t.Fatal(err)
	}
	return &Daemon{
		conf:          conf,
		hub:           events.NewHub(),
		registry:      registry,
		defaultDevice: "pad-0",
	}
}

func serve(d *Daemon, method, target, body string) *httptest.ResponseRecorder {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	d.setupRoutes().ServeHTTP(w, r)
	return w
}

func TestGetStatus(t *testing.T) {
	d := newTestDaemon(t)

	w := serve(d, http.MethodGet, "/status", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status code: got %d, body %s", w.Code, w.Body.String())
	}

	var st touch.EngineState
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("bad status payload: %v", err)
	}
	if !st.HardwareAvailable {
		t.Fatal("hardware should be available")
	}
	if st.Running || st.Calibrated {
		t.Fatalf("fresh engine state: %+v", st)
	}
}

func TestUnknownDeviceIs404(t *testing.T) {
	d := newTestDaemon(t)
	w := serve(d, http.MethodGet, "/status?device=pad-9", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status code: got %d, want 404", w.Code)
	}
}

func TestThresholdRoundTrip(t *testing.T) {
	d := newTestDaemon(t)

	w := serve(d, http.MethodPut, "/threshold", "2.5")
	if w.Code != http.StatusCreated {
		t.Fatalf("set threshold: got %d, body %s", w.Code, w.Body.String())
	}

	w = serve(d, http.MethodGet, "/threshold", "")
	if w.Code != http.StatusOK {
		t.Fatalf("get threshold: got %d", w.Code)
	}
	if got := strings.TrimSpace(w.Body.String()); got != "2.5" {
		t.Fatalf("threshold: got %q, want 2.5", got)
	}
}

func TestThresholdUpDown(t *testing.T) {
	d := newTestDaemon(t)

	w := serve(d, http.MethodPut, "/threshold/up", "0.5")
	if w.Code != http.StatusCreated || strings.TrimSpace(w.Body.String()) != "1.5" {
		t.Fatalf("up: code %d, body %q", w.Code, w.Body.String())
	}

	// Down past the floor clamps at the floor.
	w = serve(d, http.MethodPut, "/threshold/down", "100")
	if w.Code != http.StatusCreated || strings.TrimSpace(w.Body.String()) != "0.5" {
		t.Fatalf("down: code %d, body %q", w.Code, w.Body.String())
	}
}

func TestThresholdRejectsBadInput(t *testing.T) {
	d := newTestDaemon(t)
	for _, body := range []string{"-1", "0", "not-a-number"} {
		w := serve(d, http.MethodPut, "/threshold", body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %q: got %d, want 400", body, w.Code)
		}
	}
}

func TestStartStopSession(t *testing.T) {
	d := newTestDaemon(t)

	w := serve(d, http.MethodPost, "/start", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("start: got %d, body %s", w.Code, w.Body.String())
	}

	// Starting twice is a conflict, not an error that kills the session.
	w = serve(d, http.MethodPost, "/start", "")
	if w.Code != http.StatusConflict {
		t.Fatalf("double start: got %d, want 409", w.Code)
	}

	w = serve(d, http.MethodPost, "/stop", "")
	if w.Code != http.StatusOK {
		t.Fatalf("stop: got %d, body %s", w.Code, w.Body.String())
	}

	w = serve(d, http.MethodPost, "/stop", "")
	if w.Code != http.StatusConflict {
		t.Fatalf("stop while idle: got %d, want 409", w.Code)
	}
}

func TestTestWindowValidation(t *testing.T) {
	d := newTestDaemon(t)
	for _, body := range []string{"0", "-5", "301"} {
		w := serve(d, http.MethodPost, "/test", body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("window %q: got %d, want 400", body, w.Code)
		}
	}
}

func TestTestRunsBoundedWindow(t *testing.T) {
	d := newTestDaemon(t)

	w := serve(d, http.MethodPost, "/test", "1")
	if w.Code != http.StatusOK {
		t.Fatalf("test: got %d, body %s", w.Code, w.Body.String())
	}

	var res touch.DetectionResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("bad result payload: %v", err)
	}
	if res.TouchesDetected != 0 {
		t.Fatalf("still pad produced %d touches", res.TouchesDetected)
	}
	if res.WindowSeconds < 0.9 {
		t.Fatalf("window seconds: got %v, want about 1", res.WindowSeconds)
	}
}

func TestCalibrateEndpoint(t *testing.T) {
	d := newTestDaemon(t)

	// Request body overrides the configured default window.
	w := serve(d, http.MethodPost, "/calibrate", "1")
	if w.Code != http.StatusCreated {
		t.Fatalf("calibrate: got %d, body %s", w.Code, w.Body.String())
	}

	var profile touch.CalibrationProfile
	if err := json.Unmarshal(w.Body.Bytes(), &profile); err != nil {
		t.Fatalf("bad profile payload: %v", err)
	}
	// A noiseless source clamps the threshold at the floor.
	if profile.Threshold != 0.5 {
		t.Fatalf("threshold: got %v, want 0.5", profile.Threshold)
	}

	w = serve(d, http.MethodPost, "/calibrate", "zero")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad window: got %d, want 400", w.Code)
	}
}

func TestProbeEndpoint(t *testing.T) {
	d := newTestDaemon(t)
	w := serve(d, http.MethodPost, "/probe", "")
	if w.Code != http.StatusOK {
		t.Fatalf("probe: got %d, body %s", w.Code, w.Body.String())
	}
}

func TestGetConfigAndVersion(t *testing.T) {
	d := newTestDaemon(t)

	w := serve(d, http.MethodGet, "/config", "")
	if w.Code != http.StatusOK {
		t.Fatalf("config: got %d", w.Code)
	}
	var raw config.RawFileConfig
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("bad config payload: %v", err)
	}
	if raw.Device == nil || *raw.Device != "pad-0" {
		t.Fatalf("config device: got %+v", raw.Device)
	}

	w = serve(d, http.MethodGet, "/version", "")
	if w.Code != http.StatusOK {
		t.Fatalf("version: got %d", w.Code)
	}
}
