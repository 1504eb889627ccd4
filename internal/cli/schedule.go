package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ormund/safescreen/internal/schedule"
)

var (
	scheduleTarget string
	scheduleAt     string
	schedulePathF  string
)

func init() {
	rootCmd.AddCommand(scheduleCmd)
	scheduleCmd.Flags().StringVar(&scheduleTarget, "target", "", "App package or site hash to check (required)")
	scheduleCmd.Flags().StringVar(&scheduleAt, "at", "", "Reference time, RFC 3339 (default: now)")
	scheduleCmd.Flags().StringVar(&schedulePathF, "rules", "", "Path to schedule YAML")
	scheduleCmd.MarkFlagRequired("target")
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Check whether a target is blocked by schedule right now",
	Long: "Loads the schedule rules and reports whether any rule blocks the\n" +
		"target at the reference time. Invalid rules count as never-active.",
	RunE: runSchedule,
}

func runSchedule(cmd *cobra.Command, args []string) error {
	path := schedulePathF
	if path == "" {
		path = schedulePath()
	}
	rules, err := schedule.Load(path)
	if err != nil {
		return err
	}

	now := time.Now()
	if scheduleAt != "" {
		now, err = time.Parse(time.RFC3339, scheduleAt)
		if err != nil {
			return fmt.Errorf("parse --at: %w", err)
		}
	}

	ev := schedule.NewEvaluator(nil)
	if ev.AnyBlocked(rules, scheduleTarget, now) {
		fmt.Printf("%s: blocked at %s\n", scheduleTarget, now.Format(time.RFC3339))
	} else {
		fmt.Printf("%s: not blocked at %s\n", scheduleTarget, now.Format(time.RFC3339))
	}
	return nil
}
