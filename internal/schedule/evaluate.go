package schedule

import "time"

// Reporter receives invalid-rule reports. Calls must not block; the
// evaluator treats reporting as fire-and-forget.
type Reporter interface {
	RecordInvalidRule(ruleID int64, reason string)
}

// Evaluator answers "is this target blocked right now". It holds no
// rule state; callers pass the current rule set on every query so a
// reloaded snapshot takes effect immediately.
type Evaluator struct {
	feedback Reporter
}

// NewEvaluator creates an Evaluator. feedback may be nil.
func NewEvaluator(feedback Reporter) *Evaluator {
	return &Evaluator{feedback: feedback}
}

// IsBlockedNow reports whether a single rule is in effect at now.
// Disabled rules and rules that fail validation are never active;
// invalid rules are additionally reported once per query.
func (ev *Evaluator) IsBlockedNow(r *Rule, now time.Time) bool {
	if !r.IsActive {
		return false
	}
	if err := r.Validate(); err != nil {
		if ev.feedback != nil {
			ev.feedback.RecordInvalidRule(r.ID, err.Error())
		}
		return false
	}

	switch r.Kind {
	case KindDuration:
		end := r.LastAppliedAt.Add(time.Duration(r.DurationMinutes) * time.Minute)
		return !now.Before(*r.LastAppliedAt) && now.Before(end)
	case KindTimeRange:
		return inRange(r, now)
	case KindRecurring:
		return dayEnabled(r, now) && inRange(r, now)
	}
	return false
}

// AnyBlocked ORs a target's rules: any active rule blocks.
func (ev *Evaluator) AnyBlocked(rules []Rule, target string, now time.Time) bool {
	for i := range rules {
		if rules[i].Target() != target {
			continue
		}
		if ev.IsBlockedNow(&rules[i], now) {
			return true
		}
	}
	return false
}

// Expired reports whether a duration rule has run out, so the caller
// may deactivate it. Non-duration rules never expire.
func Expired(r *Rule, now time.Time) bool {
	if r.Kind != KindDuration || r.LastAppliedAt == nil {
		return false
	}
	return !now.Before(r.LastAppliedAt.Add(time.Duration(r.DurationMinutes) * time.Minute))
}

// inRange tests now's local wall time against [start, end) in minutes
// of the day. When the range wraps midnight (start > end), active means
// at-or-after start OR before end. Start is inclusive and end exclusive
// on both arms, so consecutive wrapping ranges neither gap nor overlap
// at the boundary.
func inRange(r *Rule, now time.Time) bool {
	cur := now.Hour()*60 + now.Minute()
	start := *r.StartHour*60 + r.StartMinute
	end := *r.EndHour*60 + r.EndMinute

	if start == end {
		// Degenerate empty range.
		return false
	}
	if start < end {
		return cur >= start && cur < end
	}
	return cur >= start || cur < end
}

func dayEnabled(r *Rule, now time.Time) bool {
	day := int(now.Weekday())
	for _, d := range r.DaysOfWeek {
		if d == day {
			return true
		}
	}
	return false
}
