package catalog

import "github.com/ormund/safescreen/internal/model"

// DefaultEntries returns the shipped baseline catalog. Deployments are
// expected to replace or extend it via the YAML catalog file; the
// baseline exists so a fresh install blocks the obvious cases.
func DefaultEntries() []PatternEntry {
	mk := func(pattern string, regex bool, cat model.Category, conf float64) PatternEntry {
		return PatternEntry{
			Pattern:    pattern,
			IsRegex:    regex,
			Category:   cat,
			Confidence: conf,
			Source:     model.SourceDefault,
			IsActive:   true,
		}
	}

	return []PatternEntry{
		// Literal domains
		mk("pornhub.com", false, model.ExplicitContent, 0.99),
		mk("xvideos.com", false, model.ExplicitContent, 0.99),
		mk("onlyfans.com", false, model.AdultEntertainment, 0.95),
		mk("chaturbate.com", false, model.AdultEntertainment, 0.95),
		mk("bet365.com", false, model.Gambling, 0.9),
		mk("stake.com", false, model.Gambling, 0.9),
		mk("tinder.com", false, model.DatingSites, 0.8),
		mk("badoo.com", false, model.DatingSites, 0.8),
		mk("com.tinder", false, model.DatingSites, 0.8),

		// Structural regexes
		mk(`(^|\.)porn[a-z0-9-]*\.`, true, model.ExplicitContent, 0.9),
		mk(`(^|\.)xxx([.-]|$)`, true, model.ExplicitContent, 0.85),
		mk(`(^|\.)(sex|adult)cam`, true, model.AdultEntertainment, 0.85),
		mk(`(casino|slots?|poker)[a-z0-9-]*\.(com|net|io)$`, true, model.Gambling, 0.75),
		mk(`(^|\.)hookup`, true, model.DatingSites, 0.7),
		mk(`escort[a-z]*\.`, true, model.AdultEntertainment, 0.8),
	}
}
