package main

import (
	"os"

	"github.com/quantfold/dripsim/cmd/dripsim/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
