package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mercato",
	Short: "Mercato is a conversational commerce bot for WhatsApp",
	Long: `Mercato lets customers browse a product catalog, place orders and track them,
and lets registered shop owners add products, all over a chat channel.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "", "YAML configuration file (environment variables override it)")
}
