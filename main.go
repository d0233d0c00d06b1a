package main

import (
	"os"

	"github.com/harborops/recvplan/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
