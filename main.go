package main

import (
	"os"

	"github.com/warebotics/warebot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
