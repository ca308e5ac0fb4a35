package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/darrenmsmith/FT-2025-sub001/pkg/config"
	"github.com/darrenmsmith/FT-2025-sub001/pkg/touch"
)

type statusData struct {
	state  *touch.EngineState
	config *config.RawFileConfig
}

// fetchStatusData gathers everything the status command prints.
func fetchStatusData() (*statusData, error) {
	st, err := apiClient.GetStatus()
	if err != nil {
		return nil, fmt.Errorf("failed to get engine status: %w", err)
	}

	conf, err := apiClient.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to get config: %w", err)
	}

	return &statusData{
		state:  st,
		config: conf,
	}, nil
}

func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		GroupID: gBasic,
		Short:   "Get the current status of the touch engine",
		Long:    `Get hardware availability, calibration state, threshold, and session counters.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := fetchStatusData()
			if err != nil {
				return err
			}

			st := data.state
			conf := config.NewFileFromConfig(data.config, "")

			cmd.Println(bold("Engine status:"))
			cmd.Println("  Hardware available: " + bool2Text(st.HardwareAvailable))
			if !st.HardwareAvailable {
				cmd.Println("    The accelerometer could not be reached. Check wiring, then run 'touchctl probe'.")
			}
			cmd.Println("  Calibrated: " + bool2Text(st.Calibrated))
			if !st.Calibrated {
				cmd.Println("    The threshold is still the configured default. Run 'touchctl calibrate' with the pad at rest.")
			}
			cmd.Printf("  Threshold: %s\n", bold("%.3f g", st.Threshold))
			cmd.Println("  Session running: " + bool2Text(st.Running))
			cmd.Printf("  Touches this session: %s\n", bold("%d", st.TouchCount))
			if st.LastTouch != nil {
				cmd.Printf("  Last touch: %s (%s ago)\n",
					bold(st.LastTouch.Format(time.RFC3339)),
					time.Since(*st.LastTouch).Round(time.Second))
			}

			cmd.Println()

			cmd.Println(bold("Engine configuration:"))
			cmd.Printf("  Device: %s\n", bold(conf.Device()))
			cmd.Printf("  Sensor: %s @ %#02x\n", bold(conf.I2CDevice()), conf.I2CAddr())
			cmd.Printf("  Poll interval: %s\n", bold(conf.PollInterval().String()))
			cmd.Printf("  Debounce: %s\n", bold(conf.Debounce().String()))
			cmd.Printf("  Sensitivity (k): %s\n", bold("%.1f", conf.Sensitivity()))
			cmd.Printf("  Threshold floor: %s\n", bold("%.2f g", conf.ThresholdFloor()))
			if cronExpr := conf.RecalibrateCron(); cronExpr != "" {
				cmd.Printf("  Scheduled recalibration: %s\n", bold(cronExpr))
			}
			return nil
		},
	}
}
