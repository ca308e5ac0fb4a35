// Package daemon runs the on-device touch engine and exposes its control
// surface over an HTTP API on a unix socket.
package daemon

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/darrenmsmith/FT-2025-sub001/pkg/config"
	"github.com/darrenmsmith/FT-2025-sub001/pkg/events"
	"github.com/darrenmsmith/FT-2025-sub001/pkg/sensor"
	"github.com/darrenmsmith/FT-2025-sub001/pkg/touch"
)

// Daemon owns the engine registry, configuration and event hub. Handlers
// hang off it so nothing engine-related lives in package globals.
type Daemon struct {
	conf          config.Config
	hub           *events.Hub
	registry      *Registry
	defaultDevice string
}

func (d *Daemon) setupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logrus.StandardLogger()))
	router.GET("/status", d.getStatus)
	router.POST("/calibrate", d.postCalibrate)
	router.GET("/threshold", d.getThreshold)
	router.PUT("/threshold", d.setThreshold)
	router.PUT("/threshold/up", d.thresholdUp)
	router.PUT("/threshold/down", d.thresholdDown)
	router.POST("/test", d.postTest)
	router.POST("/start", d.postStart)
	router.POST("/stop", d.postStop)
	router.POST("/probe", d.postProbe)
	router.GET("/events", d.getEvents)
	router.GET("/config", d.getConfig)
	router.GET("/version", d.getVersion)

	return router
}

// Run starts the daemon in the foreground: probes the accelerometer,
// registers the engine, serves the control API and blocks until a
// terminating signal arrives.
func Run(configPath string, unixSocketPath string, allowNonRoot bool, simulate bool) error {
	conf, err := config.NewFile(configPath)
	if err != nil {
		logrus.Fatalf("failed to parse config during startup: %v", err)
	}
	logrus.WithFields(conf.LogrusFields()).Infof("config loaded")

	// Receive SIGHUP to reload config
	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGHUP)
		for range sigc {
			err := conf.Load()
			if err != nil {
				logrus.Errorf("failed to reload config: %v", err)
				continue
			}
			logrus.Infof("config reloaded")
		}
	}()

	var src sensor.Source
	if simulate {
		logrus.Warn("running with a simulated accelerometer")
		src = sensor.NewSim()
	} else {
		src = sensor.NewADXL345(conf.I2CDevice(), conf.I2CAddr())
	}

	hub := events.NewHub()

	eng := touch.New(src, touch.Options{
		PollInterval:     conf.PollInterval(),
		Debounce:         conf.Debounce(),
		Sensitivity:      conf.Sensitivity(),
		ThresholdFloor:   conf.ThresholdFloor(),
		DefaultThreshold: conf.DefaultThreshold(),
	})

	device := conf.Device()
	eng.SetObserver(touch.ObserverFunc(func(ev touch.TouchEvent) error {
		hub.Publish(events.TouchDetected, events.TouchDetectedEvent{
			Device:     device,
			Magnitude:  ev.Magnitude,
			TouchCount: eng.Status().TouchCount,
			Ts:         ev.Time.Unix(),
		})
		return nil
	}))

	registry := NewRegistry()
	if err := registry.Register(device, eng); err != nil {
		logrus.Fatal(err)
	}

	d := &Daemon{
		conf:          conf,
		hub:           hub,
		registry:      registry,
		defaultDevice: device,
	}

	router := d.setupRoutes()

	srv := &http.Server{
		Handler: router,
	}

	// Create the socket to listen on:
	l, err := net.Listen("unix", unixSocketPath)
	if err != nil {
		logrus.Fatal(err)
	}

	if conf.AllowNonRootAccess() || allowNonRoot {
		logrus.Infof("non-root access is allowed, changing permissions of %s to 0777", unixSocketPath)
		err = os.Chmod(unixSocketPath, 0777)
		if err != nil {
			logrus.Fatal(err)
		}
	}

	// Serve HTTP on unix socket
	go func() {
		logrus.Infof("http server listening on %s", l.Addr().String())
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatal(err)
		}
	}()

	var recal *cron.Cron
	if expr := conf.RecalibrateCron(); expr != "" {
		recal, err = d.scheduleRecalibration(expr)
		if err != nil {
			logrus.WithError(err).Error("failed to schedule recalibration")
		}
	}

	// Handle common process-killing signals, so we can gracefully shut down:
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	// Wait for a SIGINT or SIGTERM:
	sig := <-sigc
	logrus.Infof("caught signal \"%s\": shutting down.", sig)

	logrus.Info("shutting down http server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = srv.Shutdown(ctx)
	if err != nil {
		logrus.Errorf("failed to shutdown http server: %v", err)
	}
	cancel()

	if recal != nil {
		logrus.Info("stopping recalibration schedule")
		recal.Stop()
	}

	logrus.Info("stopping detection sessions")
	registry.StopAll()

	logrus.Info("closing sensor")
	if err := src.Close(); err != nil {
		logrus.Errorf("failed to close sensor: %v", err)
	}

	logrus.Info("exiting")
	return nil
}
