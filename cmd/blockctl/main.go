package main

import (
	"os"

	"ai-sitebuilder-be/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
