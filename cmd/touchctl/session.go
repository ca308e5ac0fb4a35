package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func NewTestCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "test <seconds>",
		GroupID: gBasic,
		Short:   "Run a bounded detection test and report statistics",
		Long: `Run a bounded detection test.

The engine samples for the given window, counts detected touches, and
reports max and average magnitude over every sample in the window. Tap
the pad while it runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seconds, err := parseIntArg(args, "test window")
			if err != nil {
				return err
			}
			if seconds <= 0 {
				return fmt.Errorf("test window must be positive, got %d", seconds)
			}

			cmd.Printf("Testing for %d seconds, tap the pad...\n", seconds)

			result, err := apiClient.Test(seconds)
			if err != nil {
				return fmt.Errorf("failed to run detection test: %w", err)
			}

			cmd.Printf("Touches detected: %s\n", bold("%d", result.TouchesDetected))
			cmd.Printf("Max magnitude: %s\n", bold("%.3f g", result.MaxMagnitude))
			cmd.Printf("Avg magnitude: %s\n", bold("%.4f g", result.AvgMagnitude))
			cmd.Printf("Window: %s\n", bold("%.1f s", result.WindowSeconds))
			return nil
		},
	}
}

func NewStartCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "start",
		GroupID: gBasic,
		Short:   "Start an unbounded interactive detection session",
		RunE: func(_ *cobra.Command, _ []string) error {
			ret, err := apiClient.Start()
			if err != nil {
				return fmt.Errorf("failed to start session: %w", err)
			}
			if ret != "" {
				logrus.Infof("daemon responded: %s", ret)
			}
			logrus.Infof("session started; use 'touchctl watch' to follow events, 'touchctl stop' to end it")
			return nil
		},
	}
}

func NewStopCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "stop",
		GroupID: gBasic,
		Short:   "Stop the running detection session",
		RunE: func(_ *cobra.Command, _ []string) error {
			ret, err := apiClient.Stop()
			if err != nil {
				return fmt.Errorf("failed to stop session: %w", err)
			}
			if ret != "" {
				logrus.Infof("daemon responded: %s", ret)
			}
			logrus.Infof("session stopped")
			return nil
		},
	}
}

func NewProbeCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "probe",
		GroupID: gAdvanced,
		Short:   "Re-probe the accelerometer hardware",
		Long:    `Re-probe the accelerometer after fixing wiring or power. The engine marks the hardware unavailable permanently after a failed read until a probe succeeds again.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			ret, err := apiClient.Probe()
			if err != nil {
				return fmt.Errorf("probe failed: %w", err)
			}
			if ret != "" {
				logrus.Infof("daemon responded: %s", ret)
			}
			return nil
		},
	}
}
