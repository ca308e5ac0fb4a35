package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const defaultTuneStep = 0.1

func NewThresholdCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "threshold",
		Aliases: []string{"tune"},
		GroupID: gTuning,
		Short:   "Show or tune the detection threshold",
		Long: `Show or tune the detection threshold.

Tuning takes effect on the next poll cycle and never interrupts a running
session. Lowering the threshold is clamped to the configured floor so the
engine can never reach a threshold that triggers on every sample.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := apiClient.GetThreshold()
			if err != nil {
				return fmt.Errorf("failed to get threshold: %w", err)
			}
			cmd.Printf("Threshold: %s\n", bold("%.3f g", v))
			return nil
		},
	}

	upCmd := &cobra.Command{
		Use:   "up [delta]",
		Short: "Raise the threshold (less sensitive)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			delta, err := tuneDelta(args)
			if err != nil {
				return err
			}
			v, err := apiClient.IncreaseThreshold(delta)
			if err != nil {
				return fmt.Errorf("failed to increase threshold: %w", err)
			}
			cmd.Printf("Threshold is now %s\n", bold("%.3f g", v))
			return nil
		},
	}

	downCmd := &cobra.Command{
		Use:   "down [delta]",
		Short: "Lower the threshold (more sensitive), clamped to the floor",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			delta, err := tuneDelta(args)
			if err != nil {
				return err
			}
			v, err := apiClient.DecreaseThreshold(delta)
			if err != nil {
				return fmt.Errorf("failed to decrease threshold: %w", err)
			}
			cmd.Printf("Threshold is now %s\n", bold("%.3f g", v))
			return nil
		},
	}

	setCmd := &cobra.Command{
		Use:   "set <value>",
		Short: "Set the threshold to an explicit value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := parseFloatArg(args, "threshold")
			if err != nil {
				return err
			}
			v, err := apiClient.SetThreshold(value)
			if err != nil {
				return fmt.Errorf("failed to set threshold: %w", err)
			}
			cmd.Printf("Threshold is now %s\n", bold("%.3f g", v))
			return nil
		},
	}

	cmd.AddCommand(upCmd, downCmd, setCmd)

	return cmd
}

func tuneDelta(args []string) (float64, error) {
	if len(args) == 0 {
		return defaultTuneStep, nil
	}
	delta, err := parseFloatArg(args, "delta")
	if err != nil {
		return 0, err
	}
	if delta <= 0 {
		return 0, fmt.Errorf("delta must be positive, got %v", delta)
	}
	return delta, nil
}
