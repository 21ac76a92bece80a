package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/platwave/unogpt/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "unogptd",
		Short: "UnoAfp GPT daemon",
		Long:  "UnoAfp GPT daemon for running the answering API and managing document ingestion",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(cli.ServeCmd())
	rootCmd.AddCommand(cli.IngestCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
