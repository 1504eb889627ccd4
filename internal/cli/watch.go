package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ormund/safescreen/internal/catalog"
	"github.com/ormund/safescreen/internal/engine"
	"github.com/ormund/safescreen/internal/feedback"
	"github.com/ormund/safescreen/internal/policy"
	"github.com/ormund/safescreen/internal/reload"
	"github.com/ormund/safescreen/internal/schedule"
)

func init() {
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the decision engine against a signal stream",
	Long: "Reads newline-delimited JSON decision requests on stdin, processes\n" +
		"them in arrival order, and prints each delivered result as JSON.\n" +
		"Catalog, schedule, and policy files hot-reload on change; pattern\n" +
		"hits and invalid rules are recorded in the feedback database.",
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	store, err := feedback.Open(feedbackPath())
	if err != nil {
		return err
	}
	defer store.Close()
	recorder := feedback.NewRecorder(store)
	defer recorder.Close()

	cat, err := catalog.Load(catalogPath())
	if err != nil {
		return err
	}
	rules, err := schedule.Load(schedulePath())
	if err != nil {
		return err
	}
	pol, err := policy.Load(policyPath())
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	e := engine.New(engine.Config{
		Catalog:  catalog.NewStore(cat, recorder),
		Policy:   pol,
		Rules:    rules,
		Feedback: recorder,
		Sink: func(res engine.Result) {
			if err := enc.Encode(res); err != nil {
				fmt.Fprintf(os.Stderr, "watch: encode result: %v\n", err)
			}
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r, err := reload.New(e, reload.Paths{
		Catalog:  catalogPath(),
		Schedule: schedulePath(),
		Policy:   policyPath(),
	})
	if err != nil {
		return err
	}
	go func() {
		if err := r.Run(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "watch: reloader: %v\n", err)
		}
	}()
	go e.Run(ctx)
	select {
	case <-e.Started():
	case <-ctx.Done():
		return nil
	}

	fmt.Fprintf(os.Stderr, "watch: engine running, %d catalog entries, %d schedule rules\n",
		cat.Size(), len(rules))

	if err := engine.Consume(ctx, engine.NewJSONSource(os.Stdin), e); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
