package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ormund/safescreen/internal/catalog"
	"github.com/ormund/safescreen/internal/engine"
	"github.com/ormund/safescreen/internal/model"
	"github.com/ormund/safescreen/internal/policy"
	"github.com/ormund/safescreen/internal/schedule"
)

var (
	decideIdentifier string
	decideDensity    float64
	decidePolicyPath string
)

func init() {
	rootCmd.AddCommand(decideCmd)
	decideCmd.Flags().StringVar(&decideIdentifier, "identifier", "", "Hostname or app package to classify")
	decideCmd.Flags().Float64Var(&decideDensity, "density", -1, "NSFW content density override in [0,1]")
	decideCmd.Flags().StringVar(&decidePolicyPath, "policy", "", "Path to policy YAML")
}

var decideCmd = &cobra.Command{
	Use:   "decide",
	Short: "Evaluate one detection signal into a blocking decision",
	Long: "Reads a DetectionSignal as JSON on stdin (or builds one from flags)\n" +
		"and prints the aggregator's BlockingDecision as JSON.\n\n" +
		"Example:\n" +
		"  echo '{\"nsfw_content_density\":0.45}' | safescreen decide\n" +
		"  safescreen decide --identifier bet365.com",
	RunE: runDecide,
}

func runDecide(cmd *cobra.Command, args []string) error {
	var sig model.DetectionSignal

	stat, _ := os.Stdin.Stat()
	if stat != nil && stat.Mode()&os.ModeCharDevice == 0 {
		if err := json.NewDecoder(os.Stdin).Decode(&sig); err != nil {
			return fmt.Errorf("parse signal from stdin: %w", err)
		}
	}
	if decideDensity >= 0 {
		sig.NSFWContentDensity = decideDensity
	}

	pPath := decidePolicyPath
	if pPath == "" {
		pPath = policyPath()
	}
	pol, err := policy.Load(pPath)
	if err != nil {
		return err
	}
	cat, err := catalog.Load(catalogPath())
	if err != nil {
		return err
	}
	rules, err := schedule.Load(schedulePath())
	if err != nil {
		return err
	}

	e := engine.New(engine.Config{
		Catalog: catalog.NewStore(cat, nil),
		Policy:  pol,
		Rules:   rules,
	})

	res := e.Evaluate(engine.Request{Identifier: decideIdentifier, Signal: sig})
	out, err := json.MarshalIndent(res.Decision, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
