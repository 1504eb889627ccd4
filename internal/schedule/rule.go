// Package schedule decides whether a blocking rule is in effect at a
// point in time. Rules come in three kinds: a one-shot duration, a
// daily time range (which may wrap midnight), and a recurring range
// gated by weekday. Inconsistent rules fail safe: they are never
// active and get reported, not thrown.
package schedule

import (
	"fmt"
	"time"
)

// Kind selects the rule's activation semantics.
type Kind string

const (
	KindDuration  Kind = "duration"
	KindTimeRange Kind = "time_range"
	KindRecurring Kind = "recurring"
)

// Rule is one time-window blocking rule. Exactly one of AppPackage or
// SiteHash identifies the target.
type Rule struct {
	ID              int64      `yaml:"id,omitempty"`
	AppPackage      string     `yaml:"app_package,omitempty"`
	SiteHash        string     `yaml:"site_hash,omitempty"`
	Kind            Kind       `yaml:"type"`
	DurationMinutes int        `yaml:"duration_minutes,omitempty"`
	StartHour       *int       `yaml:"start_hour,omitempty"`
	StartMinute     int        `yaml:"start_minute,omitempty"`
	EndHour         *int       `yaml:"end_hour,omitempty"`
	EndMinute       int        `yaml:"end_minute,omitempty"`
	DaysOfWeek      []int      `yaml:"days_of_week,omitempty"` // 0=Sunday .. 6=Saturday
	IsActive        bool       `yaml:"active"`
	LastAppliedAt   *time.Time `yaml:"last_applied_at,omitempty"`
	NextScheduledAt *time.Time `yaml:"next_scheduled_at,omitempty"`
}

// Validate checks the rule's internal consistency. An invalid rule is
// treated as never-active by the evaluator; Validate exists so callers
// and the feedback path can name the reason.
func (r *Rule) Validate() error {
	hasApp := r.AppPackage != ""
	hasSite := r.SiteHash != ""
	if hasApp == hasSite {
		return fmt.Errorf("schedule: rule %d: exactly one of app_package or site_hash required", r.ID)
	}

	switch r.Kind {
	case KindDuration:
		if r.DurationMinutes <= 0 {
			return fmt.Errorf("schedule: rule %d: duration_minutes must be positive", r.ID)
		}
		if r.LastAppliedAt == nil {
			return fmt.Errorf("schedule: rule %d: duration rule has never been applied", r.ID)
		}
	case KindTimeRange, KindRecurring:
		if r.StartHour == nil || r.EndHour == nil {
			return fmt.Errorf("schedule: rule %d: time range requires start_hour and end_hour", r.ID)
		}
		if *r.StartHour < 0 || *r.StartHour > 23 || *r.EndHour < 0 || *r.EndHour > 23 {
			return fmt.Errorf("schedule: rule %d: hour out of range", r.ID)
		}
		if r.StartMinute < 0 || r.StartMinute > 59 || r.EndMinute < 0 || r.EndMinute > 59 {
			return fmt.Errorf("schedule: rule %d: minute out of range", r.ID)
		}
		if r.Kind == KindRecurring {
			if len(r.DaysOfWeek) == 0 {
				return fmt.Errorf("schedule: rule %d: recurring rule requires days_of_week", r.ID)
			}
			for _, d := range r.DaysOfWeek {
				if d < 0 || d > 6 {
					return fmt.Errorf("schedule: rule %d: day %d out of range 0-6", r.ID, d)
				}
			}
		}
	default:
		return fmt.Errorf("schedule: rule %d: unknown type %q", r.ID, r.Kind)
	}
	return nil
}

// Target returns the rule's target identifier, whichever kind is set.
func (r *Rule) Target() string {
	if r.AppPackage != "" {
		return r.AppPackage
	}
	return r.SiteHash
}
