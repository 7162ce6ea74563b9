package main

import (
	"fmt"
	"os"

	"termfolio/internal/platform"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "termfolio",
	Short: "A terminal-shaped portfolio served over NATS and SSE",
	Long: `termfolio serves a browser terminal. Typed lines travel over an embedded
NATS server to a per-session command engine; state streams back over SSE.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("content-dir", "", "Directory with portfolio.json and documents (default: embedded)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
}

// loadConfig reads the environment, then applies persistent flags.
func loadConfig(cmd *cobra.Command) (*platform.AppConfig, error) {
	cfg, err := platform.LoadAppConfig()
	if err != nil {
		return nil, err
	}
	if dir, _ := cmd.Flags().GetString("content-dir"); dir != "" {
		cfg.ContentDir = dir
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(lvl)); err != nil {
			return nil, fmt.Errorf("--log-level: %w", err)
		}
	}
	return cfg, nil
}
