package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/agentcost/internal/config"
)

func main() {
	if os.Getenv("AGENTCOST_DEBUG") != "" {
		log.SetOutput(os.Stderr)
	} else {
		log.SetOutput(io.Discard)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		fmt.Fprintf(os.Stderr, "Config path: %s\n", config.ConfigPath())
		os.Exit(1)
	}

	root := cobra.Command{
		Use:   "agentcost",
		Short: "agentcost tracks sessions, token usage and spend across local AI coding tools.",
	}

	root.AddCommand(
		newSessionsCommand(cfg),
		newActiveCommand(cfg),
		newCostCommand(cfg),
		newModelsCommand(cfg),
		newSyncCommand(cfg),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
