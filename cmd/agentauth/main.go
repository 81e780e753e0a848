package main

import (
	"os"

	"github.com/thesystem/agentauth/cmd/agentauth/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
