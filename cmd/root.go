package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"safecss/internal/ui"
)

// Version is set by ldflags during build
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "safecss",
	Short: "Safe CSS minifier and bundler",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Long = ui.Divider() + "\n" + ui.Banner() + "\n" + " Version: " + Version + "\n\n" + ui.Divider() +
		"\n\n  Minifies CSS without reordering or rewriting rules, then merges and compresses bundles"
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("safecss %s\n", Version)
	},
}
