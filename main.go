package main

import (
	"os"

	"github.com/gorulex/gorulex/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
