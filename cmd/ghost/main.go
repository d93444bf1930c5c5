package main

import (
	"os"

	"github.com/bnema/ghostreel/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
