package main

import (
	"os"

	"github.com/d1vyadharsh1n1/MetroX/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
