package main

import (
	"os"

	"github.com/asle-chain/asle/cmd/asled/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
