package main

import (
	"errors"
	"os"

	"go-cvd-inspector/cmd/cvdinspect/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		if errors.Is(err, commands.ErrIssuesFound) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
