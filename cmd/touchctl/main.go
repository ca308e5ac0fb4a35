package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/darrenmsmith/FT-2025-sub001/pkg/client"
)

var (
	logLevel       = "info"
	unixSocketPath = "/var/run/touchctl.sock"
	configPath     = "/etc/touchctl.json"
	deviceName     = ""
)

var (
	gBasic        = "Basic:"
	gTuning       = "Tuning:"
	gAdvanced     = "Advanced:"
	commandGroups = []string{
		gBasic,
		gTuning,
		gAdvanced,
	}
)

var apiClient = client.NewClient(unixSocketPath)

func setupLogger() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{})
	if term.IsTerminal(int(os.Stderr.Fd())) {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.Kitchen,
		})
	}

	return nil
}

func handleCmdError(err error) {
	if errors.Is(err, client.ErrDaemonNotRunning) {
		fmt.Fprintln(os.Stderr, "\nError: touchctl daemon is not running")
		fmt.Fprintln(os.Stderr, "Is the daemon running on this device? Have you installed it?")
	} else if errors.Is(err, client.ErrPermissionDenied) {
		fmt.Fprintln(os.Stderr, "\nError: Permission Denied")
		fmt.Fprintln(os.Stderr, "  - Try running the command again with 'sudo'")
		fmt.Fprintln(os.Stderr, "  - Or run the daemon with '--allow-non-root-access' to grant permissions to your user")
	}
}

func main() {
	// The training pads are small boards; the control CLI does not need
	// more than this.
	if os.Getenv("GOMAXPROCS") == "" {
		runtime.GOMAXPROCS(2)
	}

	cmd := NewCommand()
	if err := cmd.Execute(); err != nil {
		handleCmdError(err)
		os.Exit(1)
	}
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "touchctl",
		Short:        "touchctl controls the touch detection engine on a field-training pad",
		Long:         `touchctl controls the touch detection and calibration engine on a networked field-training pad: calibrate the noise floor, tune the trigger threshold, run bounded detection tests, and drive interactive sessions with live feedback.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			err := setupLogger()
			if err != nil {
				return err
			}

			apiClient = client.NewClient(unixSocketPath).WithDevice(deviceName)

			if clientVersion, daemonVersion, err := getVersions(); err == nil {
				if daemonVersion != clientVersion {
					logrus.WithFields(logrus.Fields{
						"clientVersion": clientVersion,
						"daemonVersion": daemonVersion,
					}).Warn("Version mismatch between client and daemon. touchctl may not work as expected.")
				}
			}

			return nil
		},
	}

	globalFlags := cmd.PersistentFlags()
	globalFlags.StringVarP(&logLevel, "log-level", "l", "info", "log level (trace, debug, info, warn, error, fatal, panic)")
	globalFlags.StringVar(&configPath, "config", configPath, "config file path")
	globalFlags.StringVar(&unixSocketPath, "daemon-socket", unixSocketPath, "touchctl daemon unix socket path")
	globalFlags.StringVar(&deviceName, "device", "", "target device name (defaults to the daemon's own device)")

	for _, i := range commandGroups {
		cmd.AddGroup(&cobra.Group{
			ID:    i,
			Title: i,
		})
	}

	cmd.AddCommand(
		NewDaemonCommand(),
		NewVersionCommand(),
		NewStatusCommand(),
		NewCalibrateCommand(),
		NewThresholdCommand(),
		NewTestCommand(),
		NewStartCommand(),
		NewStopCommand(),
		NewWatchCommand(),
		NewProbeCommand(),
	)

	return cmd
}
