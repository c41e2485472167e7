package main

import (
	"log"

	"github.com/sobadon/cyberd/cmd/cyberd/run"
	"github.com/sobadon/cyberd/cmd/cyberd/version"
	"github.com/spf13/cobra"
)

func main() {
	execute()
}

func execute() {
	var rootCmd = &cobra.Command{
		Use:   "cyberd",
		Short: "cybersecurity news agent",
	}

	rootCmd.AddCommand(run.Command())
	rootCmd.AddCommand(version.Command())

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("%+v", err)
	}
}
