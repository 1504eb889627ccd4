package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ormund/safescreen/internal/catalog"
)

var matchCatalogPath string

func init() {
	rootCmd.AddCommand(matchCmd)
	matchCmd.Flags().StringVar(&matchCatalogPath, "catalog", "", "Path to catalog YAML (defaults to SAFESCREEN_CATALOG)")
}

var matchCmd = &cobra.Command{
	Use:   "match <identifier>",
	Short: "Classify a hostname or app package against the catalog",
	Long: "Looks the identifier up in the blocked-pattern catalog and prints\n" +
		"the winning match as JSON, or \"no match\".\n\n" +
		"Exit code 0 on no match, 2 on a match — usable from scripts.",
	Args: cobra.ExactArgs(1),
	RunE: runMatch,
}

func runMatch(cmd *cobra.Command, args []string) error {
	path := matchCatalogPath
	if path == "" {
		path = catalogPath()
	}
	c, err := catalog.Load(path)
	if err != nil {
		return err
	}

	res := c.Match(args[0])
	if res == nil {
		fmt.Println("no match")
		return nil
	}

	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	os.Exit(2)
	return nil
}
