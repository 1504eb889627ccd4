package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ormund/safescreen/internal/catalog"
	"github.com/ormund/safescreen/internal/feedback"
)

var reportNote string

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVar(&reportNote, "note", "", "Why the block was wrong")
}

var reportCmd = &cobra.Command{
	Use:   "report <identifier>",
	Short: "File a false-positive report for a blocked identifier",
	Long: "Records that the identifier was blocked in error. The report lands\n" +
		"in the feedback database together with the pattern that matched,\n" +
		"so the catalog can be corrected.",
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func runReport(cmd *cobra.Command, args []string) error {
	identifier := args[0]

	store, err := feedback.Open(feedbackPath())
	if err != nil {
		return err
	}
	defer store.Close()

	fp := feedback.FalsePositive{Identifier: identifier, Note: reportNote}

	// Attach the matching pattern when the catalog still matches, so
	// the report names what to fix.
	if c, err := catalog.Load(catalogPath()); err == nil {
		if res := c.Match(identifier); res != nil {
			fp.Pattern = res.MatchedPattern
			fp.Category = res.Category
		}
	}

	if err := store.AddFalsePositive(fp); err != nil {
		return err
	}
	fmt.Printf("reported %s\n", identifier)
	return nil
}
