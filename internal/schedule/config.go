package schedule

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk schedule document.
type File struct {
	Rules []Rule `yaml:"rules"`
}

// Load reads schedule rules from a YAML file. A missing file means no
// rules; a malformed file is an error. Invalid rules are kept — the
// evaluator treats them as never-active and reports them — so one bad
// row cannot disable the rest of the schedule.
func Load(path string) ([]Rule, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("schedule: read %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("schedule: parse %s: %w", path, err)
	}
	return f.Rules, nil
}
