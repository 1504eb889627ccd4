package scenario

import "github.com/ormund/safescreen/internal/model"

// Case is one decision assertion within a scenario.
type Case struct {
	Identifier string                `yaml:"identifier,omitempty"`
	Signal     model.DetectionSignal `yaml:"signal,omitempty"`
	At         string                `yaml:"at,omitempty"` // RFC 3339 reference time for schedule gating
	Expect     string                `yaml:"expect"`       // expected recommended action
}

// Scenario is a named collection of decision test cases, typically one
// YAML file checked in next to the catalog.
type Scenario struct {
	Name  string `yaml:"name"`
	Cases []Case `yaml:"cases"`
}

// CaseResult is the outcome of evaluating one test case.
type CaseResult struct {
	Index      int    `json:"index"`
	Passed     bool   `json:"passed"`
	Identifier string `json:"identifier"`
	Expected   string `json:"expected"`
	Actual     string `json:"actual"`
}

// RunResult is the outcome of running all cases in one scenario file.
type RunResult struct {
	File   string       `json:"file"`
	Name   string       `json:"name"`
	Total  int          `json:"total"`
	Passed int          `json:"passed"`
	Failed int          `json:"failed"`
	Cases  []CaseResult `json:"cases"`
}
