package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string

	rootCmd := &cobra.Command{
		Use:   "lineagectl",
		Short: "Inspect and query vampire lineages",
		Long: `lineagectl loads a lineages YAML file and answers structural
queries against it without running the server: generation depth,
seniority, descendants, filtering by year converted and closest
common ancestor.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "configs/lineages.yaml", "Path to lineages YAML config")

	rootCmd.AddCommand(
		validateCmd(&cfgPath),
		treeCmd(&cfgPath),
		queryCmd(&cfgPath),
		versionCmd(),
	)
	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "lineagectl %s (%s)\n", version, commit)
		},
	}
}
