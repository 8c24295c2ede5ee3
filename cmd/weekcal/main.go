package main

import (
	"os"
	_ "time/tzdata"

	"weekcal/cmd/weekcal/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
