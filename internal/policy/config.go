package policy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ormund/safescreen/internal/model"
)

// Reflection countdown clip range. User settings outside this range are
// corrected, not rejected.
const (
	MinReflectionSeconds = 5
	MaxReflectionSeconds = 30
)

// Policy holds the aggregator's tunable thresholds. All confidence and
// density values are fractions in [0,1]; out-of-range values are
// clamped at load.
type Policy struct {
	GenderConfidenceThreshold  float64 `yaml:"gender_confidence_threshold"`
	NSFWConfidenceThreshold    float64 `yaml:"nsfw_confidence_threshold"`
	ContentDensityThreshold    float64 `yaml:"content_density_threshold"`
	MinSiteConfidence          float64 `yaml:"min_site_confidence"`
	MandatoryReflectionSeconds int     `yaml:"mandatory_reflection_seconds"`
	BlurMales                  bool    `yaml:"blur_males"`
	BlurFemales                bool    `yaml:"blur_females"`
}

// Default returns the shipped policy. The 0.40 density threshold is a
// product calibration target, configurable rather than hardcoded into
// the decision logic.
func Default() Policy {
	return Policy{
		GenderConfidenceThreshold:  0.8,
		NSFWConfidenceThreshold:    0.7,
		ContentDensityThreshold:    0.4,
		MinSiteConfidence:          0.5,
		MandatoryReflectionSeconds: 10,
		BlurMales:                  false,
		BlurFemales:                true,
	}
}

// Load reads a policy YAML file, falling back to defaults when the file
// is absent. Unset numeric fields inherit the default value so a
// partial file stays sane.
func Load(path string) (Policy, error) {
	p := Default()
	if path == "" {
		return p, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return p, fmt.Errorf("policy: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Default(), fmt.Errorf("policy: parse %s: %w", path, err)
	}
	return p.normalized(), nil
}

// normalized returns a copy with every threshold clamped to its domain.
func (p Policy) normalized() Policy {
	p.GenderConfidenceThreshold = model.Clamp01(p.GenderConfidenceThreshold)
	p.NSFWConfidenceThreshold = model.Clamp01(p.NSFWConfidenceThreshold)
	p.ContentDensityThreshold = model.Clamp01(p.ContentDensityThreshold)
	p.MinSiteConfidence = model.Clamp01(p.MinSiteConfidence)
	if p.MandatoryReflectionSeconds < 0 {
		p.MandatoryReflectionSeconds = 0
	}
	return p
}

// ClipReflection bounds a reflection duration to the user-configurable
// range.
func ClipReflection(seconds int) int {
	if seconds < MinReflectionSeconds {
		return MinReflectionSeconds
	}
	if seconds > MaxReflectionSeconds {
		return MaxReflectionSeconds
	}
	return seconds
}
