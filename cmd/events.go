package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rhony-martinez/proyecto-ac/internal/service"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List recorded audit events",
	Long: "events prints the append-only audit trail (transitions, auth\n" +
		"attempts, tag activity, overheat strikes), optionally filtered by a\n" +
		"time range and an event type.",
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := timeFlag(cmd, "from")
		if err != nil {
			return err
		}
		to, err := timeFlag(cmd, "to")
		if err != nil {
			return err
		}
		typ, _ := cmd.Flags().GetString("type")

		svc, closer, err := openServices(cmd)
		if err != nil {
			return err
		}
		defer closeQuietly(closer)

		events, err := svc.List(cmd.Context(), service.LogFilter{From: from, To: to, Type: typ})
		if err != nil {
			return err
		}
		for _, e := range events {
			line := fmt.Sprintf("%s  %-12s %s",
				e.OccurredAt.Format(time.RFC3339), e.Type, e.Description)
			if e.Metadata != nil {
				if raw, merr := json.Marshal(e.Metadata); merr == nil {
					line += "  " + string(raw)
				}
			}
			fmt.Println(line)
		}
		if len(events) == 0 {
			fmt.Println("no events recorded")
		}
		return nil
	},
}

func init() {
	eventsCmd.Flags().String("from", "", "start of the time range, RFC3339")
	eventsCmd.Flags().String("to", "", "end of the time range, RFC3339")
	eventsCmd.Flags().String("type", "", "event type filter, e.g. TRANSITION")
}

// timeFlag parses an optional RFC3339 flag; empty means unbounded.
func timeFlag(cmd *cobra.Command, name string) (time.Time, error) {
	s, err := cmd.Flags().GetString(name)
	if err != nil || s == "" {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: %w", name, err)
	}
	return t, nil
}
