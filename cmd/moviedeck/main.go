package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

var configPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styleError.Render(err.Error()))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "moviedeck",
		Short: "Browse TMDb movie and TV lists",
		Long: "MovieDeck pages through TMDb lists of movies and TV shows.\n" +
			"Browse them in the terminal, from Telegram, over HTTP or as MCP tools.",
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/moviedeck.yaml", "path to configuration file")

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	rootCmd.AddCommand(
		newVersionCmd(),
		newBrowseCmd(),
		newListCmd(),
		newShowCmd(),
		newGenresCmd(),
		newServeCmd(),
		newBotCmd(),
		newMCPServeCmd(),
		newSignupCmd(),
		newLoginCmd(),
		newConfigCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("MovieDeck v%s\n", version)
		},
	}
}
