package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "safescreen",
	Short: "Content blocking decision engine",
	Long: "Classifies sites and apps against a blocked-pattern catalog, merges\n" +
		"on-screen detection signals into blur/block decisions, and gates\n" +
		"continuation behind a mandatory reflection countdown.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// configDir is the default home for catalog, schedule, policy, and the
// feedback database. Overridable per file via SAFESCREEN_* env vars.
func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "safescreen")
	}
	return filepath.Join(home, ".safescreen")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func catalogPath() string {
	return envOr("SAFESCREEN_CATALOG", filepath.Join(configDir(), "catalog.yaml"))
}

func schedulePath() string {
	return envOr("SAFESCREEN_SCHEDULE", filepath.Join(configDir(), "schedule.yaml"))
}

func policyPath() string {
	return envOr("SAFESCREEN_POLICY", filepath.Join(configDir(), "policy.yaml"))
}

func feedbackPath() string {
	return envOr("SAFESCREEN_DB", filepath.Join(configDir(), "feedback.db"))
}
