package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the persisted controller snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closer, err := openServices(cmd)
		if err != nil {
			return err
		}
		defer closeQuietly(closer)

		snap, err := svc.GetStatus(cmd.Context())
		if err != nil {
			return err
		}

		fan := "off"
		if snap.FanOn {
			fan = "on"
		}
		fmt.Printf("state:           %s\n", snap.State)
		fmt.Printf("last pmv:        %+.3f (converged: %t)\n", snap.LastPMV, snap.PMVConverged)
		fmt.Printf("overheat count:  %d\n", snap.OverheatCount)
		fmt.Printf("failed attempts: %d\n", snap.FailedAttempts)
		fmt.Printf("fan:             %s\n", fan)
		fmt.Printf("updated:         %s\n", snap.UpdatedAt.Format(time.RFC3339))
		return nil
	},
}
