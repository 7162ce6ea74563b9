package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"termfolio/internal/runtime"
	"termfolio/internal/shell"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var execCmd = &cobra.Command{
	Use:   "exec <line>...",
	Short: "Run command lines against a local engine and print the transcript",
	Example: `  termfolio exec about "projects termfolio"
  termfolio exec --path /projects projects`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		path, _ := cmd.Flags().GetString("path")

		content, err := runtime.LoadContent(runtime.ContentFS(cfg.ContentDir))
		if err != nil {
			return fmt.Errorf("content: %w", err)
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
		reg := runtime.NewBuiltins(content, nil).Registry()
		return runLines(cmd.OutOrStdout(), reg, path, args, logger)
	},
}

func init() {
	rootCmd.AddCommand(execCmd)
	execCmd.Flags().String("path", "/", "Page path used to classify url-triggered lines")
}

// runLines executes each line in order, waiting for async work and timers
// between lines, then prints the transcript.
func runLines(w io.Writer, reg shell.Registry, path string, lines []string, logger *slog.Logger) error {
	e := shell.New(reg, shell.WithLogger(logger), shell.WithPagePath(path))
	defer e.Dispose()

	for _, line := range lines {
		e.Execute(line)
		e.Wait()
	}

	// Non-terminal writers get the ASCII profile and render unstyled.
	r := lipgloss.NewRenderer(w)
	promptStyle := r.NewStyle().Bold(true).Foreground(lipgloss.Color("#7FD962"))
	errorStyle := r.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))

	for _, entry := range e.Snapshot().Transcript {
		prefix := promptStyle.Render("$")
		if entry.Error {
			prefix = errorStyle.Render("!")
		}
		if _, err := fmt.Fprintf(w, "%s %s\n", prefix, entry.Command); err != nil {
			return err
		}
		if entry.Output != "" {
			if _, err := fmt.Fprintln(w, entry.Output); err != nil {
				return err
			}
		}
	}
	return nil
}
