package daemon

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/darrenmsmith/FT-2025-sub001/pkg/config"
	"github.com/darrenmsmith/FT-2025-sub001/pkg/events"
	"github.com/darrenmsmith/FT-2025-sub001/pkg/touch"
	"github.com/darrenmsmith/FT-2025-sub001/pkg/version"
)

// engineFor resolves the target engine from the ?device= query parameter,
// defaulting to the daemon's own device.
func (d *Daemon) engineFor(c *gin.Context) (*touch.Engine, string, bool) {
	device := c.Query("device")
	if device == "" {
		device = d.defaultDevice
	}
	eng, ok := d.registry.Get(device)
	if !ok {
		err := fmt.Errorf("unknown device %q, have %v", device, d.registry.Devices())
		c.IndentedJSON(http.StatusNotFound, err.Error())
		_ = c.AbortWithError(http.StatusNotFound, err)
		return nil, "", false
	}
	return eng, device, true
}

// engineStatusCode maps engine errors onto HTTP statuses.
func engineStatusCode(err error) int {
	switch {
	case errors.Is(err, touch.ErrHardwareUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, touch.ErrInsufficientSamples):
		return http.StatusUnprocessableEntity
	case errors.Is(err, touch.ErrAlreadyRunning), errors.Is(err, touch.ErrNotRunning):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func abortEngineError(c *gin.Context, err error) {
	code := engineStatusCode(err)
	c.IndentedJSON(code, err.Error())
	_ = c.AbortWithError(code, err)
}

func (d *Daemon) getStatus(c *gin.Context) {
	eng, _, ok := d.engineFor(c)
	if !ok {
		return
	}
	c.IndentedJSON(http.StatusOK, eng.Status())
}

func (d *Daemon) postCalibrate(c *gin.Context) {
	eng, device, ok := d.engineFor(c)
	if !ok {
		return
	}

	seconds := d.conf.CalibrationSeconds()
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}
	if s := strings.TrimSpace(string(body)); s != "" {
		seconds, err = strconv.Atoi(s)
		if err != nil || seconds <= 0 {
			err := fmt.Errorf("calibration window must be a positive number of seconds, got %q", s)
			c.IndentedJSON(http.StatusBadRequest, err.Error())
			_ = c.AbortWithError(http.StatusBadRequest, err)
			return
		}
	}

	profile, err := eng.Calibrate(time.Duration(seconds) * time.Second)
	if err != nil {
		logrus.Errorf("calibration failed: %v", err)
		abortEngineError(c, err)
		return
	}

	logrus.Infof("calibrated %s: threshold %.3f from %d samples", device, profile.Threshold, profile.Samples)

	d.hub.Publish(events.CalibrationDone, events.CalibrationDoneEvent{
		Device:    device,
		Threshold: profile.Threshold,
		Samples:   profile.Samples,
		Ts:        time.Now().Unix(),
	})

	c.IndentedJSON(http.StatusCreated, profile)
}

func (d *Daemon) getThreshold(c *gin.Context) {
	eng, _, ok := d.engineFor(c)
	if !ok {
		return
	}
	c.String(http.StatusOK, strconv.FormatFloat(eng.Threshold(), 'f', -1, 64))
}

func (d *Daemon) setThreshold(c *gin.Context) {
	d.tuneThreshold(c, func(eng *touch.Engine, v float64) (float64, error) {
		return eng.SetThreshold(v)
	})
}

func (d *Daemon) thresholdUp(c *gin.Context) {
	d.tuneThreshold(c, func(eng *touch.Engine, v float64) (float64, error) {
		return eng.IncreaseThreshold(v)
	})
}

func (d *Daemon) thresholdDown(c *gin.Context) {
	d.tuneThreshold(c, func(eng *touch.Engine, v float64) (float64, error) {
		return eng.DecreaseThreshold(v)
	})
}

func (d *Daemon) tuneThreshold(c *gin.Context, tune func(*touch.Engine, float64) (float64, error)) {
	eng, device, ok := d.engineFor(c)
	if !ok {
		return
	}

	var v float64
	if err := c.BindJSON(&v); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	newThreshold, err := tune(eng, v)
	if err != nil {
		abortEngineError(c, err)
		return
	}

	logrus.Infof("threshold on %s is now %.3f", device, newThreshold)

	d.hub.Publish(events.ThresholdChanged, events.ThresholdChangedEvent{
		Device:    device,
		Threshold: newThreshold,
		Ts:        time.Now().Unix(),
	})

	c.String(http.StatusCreated, strconv.FormatFloat(newThreshold, 'f', -1, 64))
}

func (d *Daemon) postTest(c *gin.Context) {
	eng, device, ok := d.engineFor(c)
	if !ok {
		return
	}

	var seconds int
	if err := c.BindJSON(&seconds); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}
	if seconds <= 0 || seconds > 300 {
		err := fmt.Errorf("test window must be between 1 and 300 seconds, got %d", seconds)
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	d.hub.Publish(events.SessionStarted, events.SessionEvent{
		Device: device, Bounded: true, Ts: time.Now().Unix(),
	})

	// Blocks for the whole window. The engine keeps serving status and
	// tuning calls meanwhile.
	result, err := eng.Test(time.Duration(seconds) * time.Second)

	d.hub.Publish(events.SessionStopped, events.SessionEvent{
		Device: device, Bounded: true, Ts: time.Now().Unix(),
	})

	if err != nil {
		logrus.Errorf("detection test failed: %v", err)
		abortEngineError(c, err)
		return
	}

	c.IndentedJSON(http.StatusOK, result)
}

func (d *Daemon) postStart(c *gin.Context) {
	eng, device, ok := d.engineFor(c)
	if !ok {
		return
	}

	if err := eng.Start(); err != nil {
		abortEngineError(c, err)
		return
	}

	logrus.Infof("interactive session started on %s", device)

	d.hub.Publish(events.SessionStarted, events.SessionEvent{
		Device: device, Bounded: false, Ts: time.Now().Unix(),
	})

	c.IndentedJSON(http.StatusCreated, "session started")
}

func (d *Daemon) postStop(c *gin.Context) {
	eng, device, ok := d.engineFor(c)
	if !ok {
		return
	}

	if err := eng.Stop(); err != nil {
		abortEngineError(c, err)
		return
	}

	logrus.Infof("session stopped on %s", device)

	d.hub.Publish(events.SessionStopped, events.SessionEvent{
		Device: device, Bounded: false, Ts: time.Now().Unix(),
	})

	c.IndentedJSON(http.StatusOK, "session stopped")
}

func (d *Daemon) postProbe(c *gin.Context) {
	eng, device, ok := d.engineFor(c)
	if !ok {
		return
	}

	if err := eng.Reprobe(); err != nil {
		logrus.Errorf("re-probe of %s failed: %v", device, err)
		abortEngineError(c, err)
		return
	}

	logrus.Infof("re-probe of %s succeeded", device)
	c.IndentedJSON(http.StatusOK, "hardware available")
}

func (d *Daemon) getConfig(c *gin.Context) {
	fc, err := config.NewRawFileConfigFromConfig(d.conf)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.IndentedJSON(http.StatusOK, fc)
}

func (d *Daemon) getVersion(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, version.Version)
}
