package main

import (
	"os"

	"github.com/hiresage/hiresage/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
