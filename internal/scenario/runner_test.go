package scenario

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ormund/safescreen/internal/catalog"
	"github.com/ormund/safescreen/internal/model"
	"github.com/ormund/safescreen/internal/policy"
)

func testCatalog() *catalog.Catalog {
	return catalog.New([]catalog.PatternEntry{
		{Pattern: "blocked.example", Category: model.Gambling, Confidence: 0.9, IsActive: true},
	})
}

func TestRunMixedCases(t *testing.T) {
	s := &Scenario{
		Name: "baseline",
		Cases: []Case{
			{Identifier: "blocked.example", Expect: "block_navigation"},
			{Identifier: "safe.example", Expect: "allow"},
			{Signal: model.DetectionSignal{NSFWContentDensity: 0.9}, Expect: "full_screen_blur"},
			{Identifier: "safe.example", Expect: "block_navigation"}, // deliberately wrong
		},
	}

	r := Run(s, testCatalog(), nil, policy.Default())
	if r.Passed != 3 || r.Failed != 1 {
		t.Errorf("passed/failed = %d/%d, want 3/1", r.Passed, r.Failed)
	}
	if r.Cases[3].Passed {
		t.Error("case 4 should have failed")
	}
}

func TestLoadAndRun(t *testing.T) {
	dir := t.TempDir()

	catPath := filepath.Join(dir, "catalog.yaml")
	os.WriteFile(catPath, []byte(`patterns:
  - pattern: blocked.example
    category: gambling
    confidence: 0.9
    active: true
`), 0644)

	scenPath := filepath.Join(dir, "baseline.yaml")
	os.WriteFile(scenPath, []byte(`name: baseline
cases:
  - identifier: blocked.example
    expect: block_navigation
  - signal:
      nsfw_content_density: 0.45
    expect: full_screen_blur
`), 0644)

	r, err := LoadAndRun(scenPath, catPath, "", "")
	if err != nil {
		t.Fatal(err)
	}
	if r.Failed != 0 {
		t.Errorf("failed = %d, want 0: %+v", r.Failed, r.Cases)
	}
	if !AllPassed([]*RunResult{r}) {
		t.Error("AllPassed = false, want true")
	}
}

func TestFormatTextReportsFailures(t *testing.T) {
	s := &Scenario{
		Name:  "failing",
		Cases: []Case{{Identifier: "safe.example", Expect: "block_navigation"}},
	}
	r := Run(s, testCatalog(), nil, policy.Default())

	text := FormatText([]*RunResult{r})
	if !strings.Contains(text, "FAIL") {
		t.Errorf("expected FAIL in output:\n%s", text)
	}
	if !strings.Contains(text, "expected block_navigation, got allow") {
		t.Errorf("expected diff line in output:\n%s", text)
	}
}
