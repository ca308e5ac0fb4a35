package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/darrenmsmith/FT-2025-sub001/pkg/daemon"
	"github.com/darrenmsmith/FT-2025-sub001/pkg/version"
)

var (
	// alwaysAllowNonRootAccess indicates whether to always allow non-root users to access the daemon.
	alwaysAllowNonRootAccess = false
	// simulateSensor runs the daemon against a simulated accelerometer.
	simulateSensor = false
)

// NewDaemonCommand .
func NewDaemonCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "daemon",
		Hidden:  true,
		Short:   "Run the touchctl daemon in the foreground",
		GroupID: gAdvanced,
		RunE: func(_ *cobra.Command, _ []string) error {
			logrus.WithFields(logrus.Fields{
				"version": version.Version,
				"commit":  version.GitCommit,
			}).Info("touchctl daemon starting")
			return daemon.Run(configPath, unixSocketPath, alwaysAllowNonRootAccess, simulateSensor)
		},
	}

	f := cmd.Flags()

	f.BoolVar(&alwaysAllowNonRootAccess, "always-allow-non-root-access", false,
		"Always allow non-root users to access the daemon.")
	f.BoolVar(&simulateSensor, "simulate", false,
		"Use a simulated accelerometer instead of the I2C hardware.")

	return cmd
}
