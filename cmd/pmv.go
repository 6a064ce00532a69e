package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rhony-martinez/proyecto-ac/internal/comfort"
)

var pmvCmd = &cobra.Command{
	Use:   "pmv",
	Short: "Compute one Fanger PMV sample",
	Long: "pmv evaluates the comfort model once for the given environment and\n" +
		"prints the vote, its comfort band, and the solver diagnostics.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ta, _ := cmd.Flags().GetFloat64("ta")
		rh, _ := cmd.Flags().GetFloat64("rh")
		vel, _ := cmd.Flags().GetFloat64("vel")
		met, _ := cmd.Flags().GetFloat64("met")
		clo, _ := cmd.Flags().GetFloat64("clo")

		tr := ta
		if cmd.Flags().Changed("tr") {
			tr, _ = cmd.Flags().GetFloat64("tr")
		}

		res := comfort.Compute(comfort.Sample{
			AirTemp:      ta,
			RadiantTemp:  tr,
			RelHumidity:  rh,
			AirVelocity:  vel,
			Metabolic:    met * comfort.MetUnit,
			ExternalWork: comfort.DefaultExternalWork,
			Clothing:     clo,
		})

		fmt.Printf("pmv:        %+.3f (%s)\n", res.PMV, comfort.BandOf(res.PMV))
		fmt.Printf("tcl:        %.2f C\n", res.Tcl)
		fmt.Printf("iterations: %d\n", res.Iterations)
		if !res.Converged {
			fmt.Println("warning: surface temperature solve did not converge")
		}
		return nil
	},
}

func init() {
	pmvCmd.Flags().Float64("ta", 26, "air temperature, C")
	pmvCmd.Flags().Float64("tr", 26, "mean radiant temperature, C (defaults to --ta)")
	pmvCmd.Flags().Float64("rh", 50, "relative humidity, %")
	pmvCmd.Flags().Float64("vel", comfort.DefaultAirVelocity, "air velocity, m/s")
	pmvCmd.Flags().Float64("met", 1.2, "metabolic rate, met")
	pmvCmd.Flags().Float64("clo", comfort.DefaultClothing, "clothing insulation, clo")
}
