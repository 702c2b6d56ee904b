package main

import (
	"os"

	"SignalScout/cmd/signalscout/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
