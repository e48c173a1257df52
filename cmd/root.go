package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagConfig   string
	flagCategory string
	flagProvider string
	flagInterval string
)

var rootCmd = &cobra.Command{
	Use:   "news-terminal",
	Short: "Terminal news reader",
	Long: `news-terminal lists live headlines in your terminal and reads full articles
in place. When a publisher blocks the page, it looks for the same story on
another site.`,
	PersistentPreRunE: loadEnv,
	RunE:              runTUI,
	SilenceUsage:      true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&flagProvider, "provider", "", "news provider: newsapi or rss")
	rootCmd.Flags().StringVar(&flagCategory, "category", "", "start category (headlines, business, technology, sports, health)")
	rootCmd.Flags().StringVar(&flagInterval, "interval", "", "auto-refresh interval (e.g., 5m, 90s)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(headlinesCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(keyCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(statsCmd)
}

// loadEnv reads a .env file from the working directory if there is one.
// Variables already set in the environment win.
func loadEnv(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "news-terminal %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
