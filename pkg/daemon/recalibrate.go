package daemon

import (
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/darrenmsmith/FT-2025-sub001/pkg/touch"
)

// scheduleRecalibration arms a cron job that re-baselines the noise floor
// of every idle engine. Devices sit unattended for days: drift in mounting
// or temperature slowly invalidates the calibrated threshold, so operators
// typically schedule this for a quiet overnight slot.
func (d *Daemon) scheduleRecalibration(cronExpr string) (*cron.Cron, error) {
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	sched, err := parser.Parse(cronExpr)
	if err != nil {
		return nil, err
	}

	c := cron.New(cron.WithParser(parser))
	_, err = c.AddFunc(cronExpr, d.recalibrateAll)
	if err != nil {
		return nil, err
	}
	c.Start()

	logrus.WithFields(logrus.Fields{
		"cron":    cronExpr,
		"nextRun": sched.Next(time.Now()).Format(time.RFC3339),
	}).Info("scheduled recalibration armed")

	return c, nil
}

func (d *Daemon) recalibrateAll() {
	window := time.Duration(d.conf.CalibrationSeconds()) * time.Second

	for _, device := range d.registry.Devices() {
		eng, ok := d.registry.Get(device)
		if !ok {
			continue
		}

		profile, err := eng.Calibrate(window)
		if err != nil {
			if errors.Is(err, touch.ErrAlreadyRunning) {
				logrus.Infof("skipping scheduled recalibration of %s: session active", device)
				continue
			}
			logrus.WithError(err).Errorf("scheduled recalibration of %s failed", device)
			continue
		}

		logrus.WithFields(logrus.Fields{
			"device":    device,
			"threshold": profile.Threshold,
			"samples":   profile.Samples,
		}).Info("scheduled recalibration complete")
	}
}
