package main

import (
	"os"

	"github.com/spigell/bewatu/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
