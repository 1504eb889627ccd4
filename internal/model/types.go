package model

import "fmt"

// Category classifies why a site or app is blocked.
type Category string

const (
	ExplicitContent          Category = "explicit_content"
	AdultEntertainment       Category = "adult_entertainment"
	Gambling                 Category = "gambling"
	DatingSites              Category = "dating_sites"
	InappropriateImagery     Category = "inappropriate_imagery"
	SuspiciousContent        Category = "suspicious_content"
	SocialMediaInappropriate Category = "social_media_inappropriate"
	Violence                 Category = "violence"
	HateSpeech               Category = "hate_speech"
	SubstanceAbuse           Category = "substance_abuse"
)

// categorySeverity ranks categories 1-5. Severity >= 4 removes the
// Continue option from the reflection dialog entirely.
var categorySeverity = map[Category]int{
	ExplicitContent:          5,
	HateSpeech:               5,
	AdultEntertainment:       4,
	InappropriateImagery:     4,
	Violence:                 4,
	Gambling:                 3,
	SubstanceAbuse:           3,
	DatingSites:              2,
	SocialMediaInappropriate: 2,
	SuspiciousContent:        2,
}

// Severity returns the category's severity rank (1-5).
// Unknown categories rank lowest rather than failing.
func (c Category) Severity() int {
	if s, ok := categorySeverity[c]; ok {
		return s
	}
	return 1
}

// DefaultReflectionSeconds returns the baseline countdown length for a
// warning triggered by this category, before policy clipping.
func (c Category) DefaultReflectionSeconds() int {
	switch c.Severity() {
	case 5:
		return 30
	case 4:
		return 20
	case 3:
		return 15
	case 2:
		return 10
	default:
		return 5
	}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	_, ok := categorySeverity[c]
	return ok
}

// ParseCategory validates a raw string as a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("model: unknown category %q", s)
	}
	return c, nil
}

// Gender is the resolved gender of a detected face.
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderUnknown Gender = "unknown"
)

// PatternSource records where a catalog entry came from.
type PatternSource string

const (
	SourceDefault   PatternSource = "default"
	SourceUserAdded PatternSource = "user_added"
	SourceCommunity PatternSource = "community"
)

// sourceRank orders pattern sources for match tie-breaking. User-added
// entries beat community entries, which beat shipped defaults.
var sourceRank = map[PatternSource]int{
	SourceUserAdded: 2,
	SourceCommunity: 1,
	SourceDefault:   0,
}

// Rank returns the tie-break priority of the source. Higher wins.
func (s PatternSource) Rank() int {
	return sourceRank[s]
}

// Action is the enforcement outcome recommended by the aggregator.
type Action string

const (
	Allow           Action = "allow"
	BlurRegions     Action = "blur_regions"
	FullScreenBlur  Action = "full_screen_blur"
	BlockNavigation Action = "block_navigation"
)

// RequiresReflection reports whether the action gates continuation
// behind a reflection countdown.
func (a Action) RequiresReflection() bool {
	return a == FullScreenBlur || a == BlockNavigation
}
