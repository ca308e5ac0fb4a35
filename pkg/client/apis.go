package client

import (
	"encoding/json"
	"strconv"

	pkgerrors "github.com/pkg/errors"

	"github.com/darrenmsmith/FT-2025-sub001/pkg/config"
	"github.com/darrenmsmith/FT-2025-sub001/pkg/touch"
)

// GetStatus returns the engine state snapshot.
func (c *Client) GetStatus() (*touch.EngineState, error) {
	ret, err := c.Get("/status")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get engine status")
	}

	var st touch.EngineState
	if err := json.Unmarshal([]byte(ret), &st); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal engine status")
	}
	return &st, nil
}

// Calibrate runs a calibration pass over the given at-rest window and
// returns the new profile. Zero seconds uses the daemon's configured
// default window.
func (c *Client) Calibrate(seconds int) (*touch.CalibrationProfile, error) {
	body := ""
	if seconds > 0 {
		body = strconv.Itoa(seconds)
	}
	ret, err := c.Post("/calibrate", body)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to calibrate")
	}

	var p touch.CalibrationProfile
	if err := json.Unmarshal([]byte(ret), &p); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal calibration profile")
	}
	return &p, nil
}

// GetThreshold returns the current detection threshold.
func (c *Client) GetThreshold() (float64, error) {
	ret, err := c.Get("/threshold")
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "failed to get threshold")
	}
	return parseFloatResponse(ret)
}

// SetThreshold sets the detection threshold to an explicit value and
// returns the effective (possibly clamped) value.
func (c *Client) SetThreshold(v float64) (float64, error) {
	ret, err := c.Put("/threshold", strconv.FormatFloat(v, 'f', -1, 64))
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "failed to set threshold")
	}
	return parseFloatResponse(ret)
}

// IncreaseThreshold raises the threshold by delta and returns the new value.
func (c *Client) IncreaseThreshold(delta float64) (float64, error) {
	ret, err := c.Put("/threshold/up", strconv.FormatFloat(delta, 'f', -1, 64))
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "failed to increase threshold")
	}
	return parseFloatResponse(ret)
}

// DecreaseThreshold lowers the threshold by delta (clamped to the floor)
// and returns the new value.
func (c *Client) DecreaseThreshold(delta float64) (float64, error) {
	ret, err := c.Put("/threshold/down", strconv.FormatFloat(delta, 'f', -1, 64))
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "failed to decrease threshold")
	}
	return parseFloatResponse(ret)
}

// Test runs a bounded detection session of the given length. This call
// blocks for the whole window.
func (c *Client) Test(seconds int) (*touch.DetectionResult, error) {
	ret, err := c.Post("/test", strconv.Itoa(seconds))
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to run detection test")
	}

	var r touch.DetectionResult
	if err := json.Unmarshal([]byte(ret), &r); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal detection result")
	}
	return &r, nil
}

// Start begins an unbounded interactive detection session.
func (c *Client) Start() (string, error) {
	return c.Post("/start", "")
}

// Stop ends the active detection session.
func (c *Client) Stop() (string, error) {
	return c.Post("/stop", "")
}

// Probe asks the daemon to re-probe the sensor hardware.
func (c *Client) Probe() (string, error) {
	return c.Post("/probe", "")
}

// GetConfig returns the daemon's raw file configuration.
func (c *Client) GetConfig() (*config.RawFileConfig, error) {
	ret, err := c.Get("/config")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get config")
	}

	var conf config.RawFileConfig
	if err := json.Unmarshal([]byte(ret), &conf); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal config")
	}
	return &conf, nil
}

// GetVersion returns the daemon version.
func (c *Client) GetVersion() (string, error) {
	ret, err := c.Get("/version")
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get version")
	}
	// Remove "" around JSON string. I don't want to use a JSON decoder just for this.
	if len(ret) >= 2 {
		ret = ret[1 : len(ret)-1]
	}
	return ret, nil
}

func parseFloatResponse(resp string) (float64, error) {
	v, err := strconv.ParseFloat(resp, 64)
	if err != nil {
		return 0, pkgerrors.Errorf("unexpected response: %s", resp)
	}
	return v, nil
}
