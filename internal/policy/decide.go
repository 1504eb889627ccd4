// Package policy turns one frame's detection signals into a blocking
// decision. The aggregator is pure: no I/O, no clock, no state beyond
// the signal and policy passed in.
package policy

import "github.com/ormund/safescreen/internal/model"

// nsfwSyntheticSeverity is the severity assigned to a full-screen NSFW
// density trigger when ranked against a site-match category.
const nsfwSyntheticSeverity = 4

// Decide evaluates a detection signal under a policy.
//
// Evaluation order (must not be changed):
//  1. Site match — a catalog hit at or above min_site_confidence drives
//     the decision, unless a qualifying NSFW density outranks it by
//     severity.
//  2. NSFW density — at or above the density threshold, full-screen
//     blur with a warning level scaling 3→5 across the remaining
//     density range.
//  3. Gender-gated region blur — per-face policy with the
//     fail-safe-to-restrictive rule for unresolved faces.
//  4. Allow.
func Decide(sig model.DetectionSignal, p Policy) model.BlockingDecision {
	p = p.normalized()

	density := model.Clamp01(sig.NSFWContentDensity)
	site := sig.SiteMatch
	siteQualifies := site != nil && model.Clamp01(site.Confidence) >= p.MinSiteConfidence
	densityQualifies := density >= p.ContentDensityThreshold

	regions, shouldBlur := blurTargets(sig, p)

	switch {
	case siteQualifies && densityQualifies:
		// Both warrant a warning: the higher severity wins and sets the
		// reflection duration. On a tie the site category is the more
		// specific signal.
		if site.Category.Severity() >= nsfwSyntheticSeverity {
			return siteDecision(site, p)
		}
		return densityDecision(density, p)
	case siteQualifies:
		return siteDecision(site, p)
	case densityQualifies:
		return densityDecision(density, p)
	case shouldBlur:
		return model.BlockingDecision{
			ShouldBlur:        true,
			BlurRegions:       regions,
			RecommendedAction: model.BlurRegions,
			Confidence:        model.Clamp01(sig.GenderConfidence),
			WarningLevel:      1,
		}
	default:
		return model.BlockingDecision{RecommendedAction: model.Allow}
	}
}

// siteDecision blocks navigation based on a catalog match. Severity 5
// categories get at least the mandatory reflection floor; everything
// else is clipped to the configurable range.
func siteDecision(site *model.MatchResult, p Policy) model.BlockingDecision {
	secs := site.Category.DefaultReflectionSeconds()
	if site.Category.Severity() >= 5 {
		if p.MandatoryReflectionSeconds > secs {
			secs = p.MandatoryReflectionSeconds
		}
	} else {
		secs = ClipReflection(secs)
	}

	return model.BlockingDecision{
		ShouldBlur:        true,
		RecommendedAction: model.BlockNavigation,
		Category:          site.Category,
		Confidence:        model.Clamp01(site.Confidence),
		ReflectionSeconds: secs,
		WarningLevel:      float64(site.Category.Severity()),
	}
}

// densityDecision full-screen-blurs on NSFW density. The warning level
// scales linearly from 3 at the threshold to 5 at density 1.0.
func densityDecision(density float64, p Policy) model.BlockingDecision {
	level := 5.0
	if p.ContentDensityThreshold < 1 {
		level = 3 + 2*(density-p.ContentDensityThreshold)/(1-p.ContentDensityThreshold)
	}
	if level < 3 {
		level = 3
	}
	if level > 5 {
		level = 5
	}

	return model.BlockingDecision{
		ShouldBlur:        true,
		RecommendedAction: model.FullScreenBlur,
		Category:          model.InappropriateImagery,
		Confidence:        density,
		ReflectionSeconds: ClipReflection(model.InappropriateImagery.DefaultReflectionSeconds()),
		WarningLevel:      level,
	}
}

// blurTargets applies the gender blur policy to the signal's faces.
// A face whose gender is unresolved, or whose confidence is below the
// gender threshold, falls back to the restrictive default: blurred
// whenever any blur flag is enabled. That is a deliberate policy
// choice, not an accuracy compromise.
func blurTargets(sig model.DetectionSignal, p Policy) ([]model.Region, bool) {
	anyFlag := p.BlurMales || p.BlurFemales

	if len(sig.Faces) > 0 {
		var regions []model.Region
		for _, f := range sig.Faces {
			if faceBlurred(f.Gender, model.Clamp01(f.Confidence), p, anyFlag) {
				regions = append(regions, f.Bounds)
			}
		}
		return regions, len(regions) > 0
	}

	// Count-only signal: no regions to return, but the blur verdict
	// still follows the same per-face rules.
	conf := model.Clamp01(sig.GenderConfidence)
	blurred := 0
	if conf >= p.GenderConfidenceThreshold {
		if p.BlurMales {
			blurred += sig.MaleCount
		}
		if p.BlurFemales {
			blurred += sig.FemaleCount
		}
		if anyFlag {
			blurred += sig.UnknownCount
		}
	} else if anyFlag {
		blurred = sig.MaleCount + sig.FemaleCount + sig.UnknownCount
	}
	return nil, blurred > 0
}

func faceBlurred(g model.Gender, conf float64, p Policy, anyFlag bool) bool {
	if g == model.GenderUnknown || conf < p.GenderConfidenceThreshold {
		return anyFlag
	}
	return (g == model.GenderMale && p.BlurMales) || (g == model.GenderFemale && p.BlurFemales)
}
