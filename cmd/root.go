package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "billing",
	Short: "Mercado Pago billing adapter",
	Long:  "An HTTP adapter for Mercado Pago plans, subscriptions, checkout preferences, card tokenization, and webhook ingestion.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
