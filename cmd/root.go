package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/gitlab-todotxt-sync/internal/config"
)

var (
	cfgPath string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "gitlab-todotxt-sync",
	Short: "Sync your GitLab To-Do list into a todo.txt file",
	Long: `gitlab-todotxt-sync mirrors the GitLab To-Do list into a local todo.txt file.
Synced items carry an id:<n> tag and a context (@gitlab by default); every
other line in the file is left as it is.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Config file (default <user config dir>/gitlab-todotxt-sync/config.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configCmd)
}

// configFile returns the --config value or the default location.
func configFile() (string, error) {
	if cfgPath != "" {
		return cfgPath, nil
	}
	return config.FilePath()
}

func loadConfig() (config.Config, error) {
	path, err := configFile()
	if err != nil {
		return config.Config{}, err
	}
	return config.Load(path)
}
