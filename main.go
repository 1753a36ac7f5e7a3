package main

import (
	"os"

	"github.com/edugen/edugen/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
