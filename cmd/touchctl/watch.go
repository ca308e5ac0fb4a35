package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/darrenmsmith/FT-2025-sub001/pkg/events"
)

func NewWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "watch",
		GroupID: gTuning,
		Short:   "Stream live engine events to the terminal",
		Long: `Stream live engine events.

This is the interactive tuning console: start a session, watch touches
come in with their magnitudes, and adjust the threshold from another
terminal until taps register cleanly. Ctrl-C to quit.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigc := make(chan os.Signal, 1)
			signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigc
				cancel()
			}()

			cmd.Println("Watching engine events, Ctrl-C to quit...")

			err := apiClient.StreamEvents(ctx, func(ev events.Event) {
				printEvent(cmd, ev)
			})
			if ctx.Err() != nil {
				return nil
			}
			return err
		},
	}
}

func printEvent(cmd *cobra.Command, ev events.Event) {
	now := time.Now().Format("15:04:05")

	switch ev.Name {
	case events.TouchDetected:
		payload, err := events.DecodeAs[events.TouchDetectedEvent](ev)
		if err != nil {
			logrus.WithError(err).Error("failed to decode touch.detected event")
			return
		}
		cmd.Printf("%s  %s  magnitude %s  (touch #%d on %s)\n",
			now,
			color.New(color.Bold, color.FgGreen).Sprint("TOUCH"),
			bold("%.3f g", payload.Magnitude),
			payload.TouchCount,
			payload.Device)
	case events.SessionStarted, events.SessionStopped:
		payload, err := events.DecodeAs[events.SessionEvent](ev)
		if err != nil {
			logrus.WithError(err).Error("failed to decode session event")
			return
		}
		kind := "interactive"
		if payload.Bounded {
			kind = "bounded"
		}
		cmd.Printf("%s  %s %s session on %s\n", now, ev.Name, kind, payload.Device)
	case events.CalibrationDone:
		payload, err := events.DecodeAs[events.CalibrationDoneEvent](ev)
		if err != nil {
			logrus.WithError(err).Error("failed to decode calibration.done event")
			return
		}
		cmd.Printf("%s  calibrated %s: threshold %s over %d samples\n",
			now, payload.Device, bold("%.3f g", payload.Threshold), payload.Samples)
	case events.ThresholdChanged:
		payload, err := events.DecodeAs[events.ThresholdChangedEvent](ev)
		if err != nil {
			logrus.WithError(err).Error("failed to decode threshold.changed event")
			return
		}
		cmd.Printf("%s  threshold on %s changed to %s\n",
			now, payload.Device, bold("%.3f g", payload.Threshold))
	default:
		cmd.Printf("%s  %s %s\n", now, ev.Name, ev.Data)
	}
}
