// Package catalog classifies site and app identifiers against a set of
// blocked patterns. Literal entries are indexed by identifier hash for
// O(1) lookup; regex entries are scanned. The compiled catalog is
// immutable — reloads build a new Catalog and swap it wholesale.
package catalog

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/ormund/safescreen/internal/model"
)

// File is the on-disk catalog document.
type File struct {
	Patterns []PatternEntry `yaml:"patterns"`
}

// compiledRegex pairs an entry with its compiled pattern.
type compiledRegex struct {
	entry PatternEntry
	re    *regexp.Regexp
}

// Catalog holds the compiled pattern set for fast matching.
type Catalog struct {
	literals map[string]PatternEntry // domain_hash → entry, active non-regex only
	regexes  []compiledRegex         // active regex entries, compile order
}

// New compiles a Catalog from raw entries. Inactive entries are dropped.
// A malformed regex is skipped with a diagnostic, never fatal. When two
// active literal entries hash the same identifier, the higher-confidence
// one wins to keep the hash index unique.
func New(entries []PatternEntry) *Catalog {
	c := &Catalog{literals: make(map[string]PatternEntry)}

	var nextID int64 = 1
	for _, e := range entries {
		if e.ID >= nextID {
			nextID = e.ID + 1
		}
	}

	for _, e := range entries {
		if !e.IsActive {
			continue
		}
		if e.ID == 0 {
			e.ID = nextID
			nextID++
		}
		if e.Source == "" {
			e.Source = model.SourceDefault
		}
		e.Confidence = model.Clamp01(e.Confidence)

		if e.IsRegex {
			re, err := regexp.Compile("(?i)" + e.Pattern)
			if err != nil {
				fmt.Fprintf(os.Stderr, "catalog: skipping malformed regex %q: %v\n", e.Pattern, err)
				continue
			}
			c.regexes = append(c.regexes, compiledRegex{entry: e, re: re})
			continue
		}

		if e.DomainHash == "" {
			e.DomainHash = HashIdentifier(e.Pattern)
		}
		if prev, ok := c.literals[e.DomainHash]; ok && !betterThan(e, prev) {
			continue
		}
		c.literals[e.DomainHash] = e
	}

	return c
}

// NewDefault compiles the shipped default pattern set.
func NewDefault() *Catalog {
	return New(DefaultEntries())
}

// Load reads a catalog YAML file. A missing file falls back to the
// shipped defaults; a malformed file is an error.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return NewDefault(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewDefault(), nil
		}
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalog: parse %s: %w", path, err)
	}
	return New(f.Patterns), nil
}

// Match classifies an identifier (lowercase hostname or app package id)
// against the catalog. Returns nil when nothing matches. Literal hits
// are found by hash; regex entries are scanned and all hits collected;
// the winner is selected per betterThan.
func (c *Catalog) Match(identifier string) *model.MatchResult {
	norm := normalize(identifier)
	if norm == "" {
		return nil
	}

	var hits []PatternEntry

	if e, ok := c.literals[HashIdentifier(norm)]; ok {
		hits = append(hits, e)
	}
	for _, cr := range c.regexes {
		if cr.re.MatchString(norm) {
			hits = append(hits, cr.entry)
		}
	}
	if len(hits) == 0 {
		return nil
	}

	best := hits[0]
	for _, h := range hits[1:] {
		if betterThan(h, best) {
			best = h
		}
	}

	return &model.MatchResult{
		Category:       best.Category,
		Confidence:     best.Confidence,
		MatchedPattern: best.Pattern,
		Source:         best.Source,
		IsCustom:       best.IsCustom,
		EntryID:        best.ID,
	}
}

// Size returns the number of active compiled entries.
func (c *Catalog) Size() int {
	return len(c.literals) + len(c.regexes)
}

// betterThan ranks a over b for match selection: higher confidence wins;
// ties fall to higher category severity, then to source rank
// (user_added > community > default).
func betterThan(a, b PatternEntry) bool {
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	if sa, sb := a.Category.Severity(), b.Category.Severity(); sa != sb {
		return sa > sb
	}
	return a.Source.Rank() > b.Source.Rank()
}
