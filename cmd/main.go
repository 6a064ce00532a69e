// Command proyecto-ac runs the thermal comfort controller: a finite-state
// supervisor that authenticates an occupant, registers RFID tags, evaluates
// Fanger PMV comfort on a fixed cadence, and drives the room's actuators.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
