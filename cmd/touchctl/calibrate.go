package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewCalibrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "calibrate [seconds]",
		GroupID: gBasic,
		Short:   "Calibrate the noise floor and derive a detection threshold",
		Long: `Calibrate the touch engine.

Keep the pad completely at rest while this runs. The engine samples the
accelerometer for the given window (default from the daemon config),
measures the noise floor, and sets the detection threshold to
mean + k*stddev of the at-rest magnitude.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seconds := 0
			if len(args) == 1 {
				var err error
				seconds, err = parseIntArg(args, "calibration window")
				if err != nil {
					return err
				}
				if seconds <= 0 {
					return fmt.Errorf("calibration window must be positive, got %d", seconds)
				}
			}

			cmd.Println("Calibrating, keep the pad still...")

			profile, err := apiClient.Calibrate(seconds)
			if err != nil {
				return fmt.Errorf("failed to calibrate: %w", err)
			}

			cmd.Printf("Calibration complete over %d samples.\n", profile.Samples)
			cmd.Printf("  Noise floor: mean %s, stddev %s\n",
				bold("%.4f g", profile.BaselineMean), bold("%.4f g", profile.BaselineStdDev))
			cmd.Printf("  New threshold: %s\n", bold("%.3f g", profile.Threshold))
			return nil
		},
	}
}
