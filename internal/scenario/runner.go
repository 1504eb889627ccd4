// Package scenario runs decision assertions from YAML files through the
// full match + schedule + aggregation pipeline. Used by `safescreen
// check` to gate catalog and policy changes in CI.
package scenario

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ormund/safescreen/internal/catalog"
	"github.com/ormund/safescreen/internal/engine"
	"github.com/ormund/safescreen/internal/policy"
	"github.com/ormund/safescreen/internal/schedule"
)

// Run evaluates all cases against the given catalog, rules, and policy.
// Cases are independent; each may pin its own reference time.
func Run(s *Scenario, cat *catalog.Catalog, rules []schedule.Rule, pol policy.Policy) *RunResult {
	result := &RunResult{Name: s.Name, Total: len(s.Cases)}

	for i, c := range s.Cases {
		now := time.Now()
		if c.At != "" {
			if parsed, err := time.Parse(time.RFC3339, c.At); err == nil {
				now = parsed
			}
		}

		e := engine.New(engine.Config{
			Catalog: catalog.NewStore(cat, nil),
			Policy:  pol,
			Rules:   rules,
			Now:     func() time.Time { return now },
		})

		res := e.Evaluate(engine.Request{Identifier: c.Identifier, Signal: c.Signal})
		actual := string(res.Decision.RecommendedAction)
		expected := strings.ToLower(strings.TrimSpace(c.Expect))

		cr := CaseResult{
			Index:      i + 1,
			Identifier: c.Identifier,
			Expected:   expected,
			Actual:     actual,
		}
		if actual == expected {
			cr.Passed = true
			result.Passed++
		} else {
			result.Failed++
		}
		result.Cases = append(result.Cases, cr)
	}

	return result
}

// LoadAndRun loads a scenario YAML file plus the catalog, schedule, and
// policy files, and runs every case.
func LoadAndRun(path, catalogPath, schedulePath, policyPath string) (*RunResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: read %s: %w", path, err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("scenario: parse %s: %w", path, err)
	}

	cat, err := catalog.Load(catalogPath)
	if err != nil {
		return nil, err
	}
	rules, err := schedule.Load(schedulePath)
	if err != nil {
		return nil, err
	}
	pol, err := policy.Load(policyPath)
	if err != nil {
		return nil, err
	}

	result := Run(&s, cat, rules, pol)
	result.File = path
	return result, nil
}
