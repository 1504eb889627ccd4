package catalog

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ormund/safescreen/internal/model"
)

func entry(pattern string, regex bool, cat model.Category, conf float64, src model.PatternSource) PatternEntry {
	return PatternEntry{
		Pattern:    pattern,
		IsRegex:    regex,
		Category:   cat,
		Confidence: conf,
		Source:     src,
		IsActive:   true,
	}
}

func TestLiteralMatch(t *testing.T) {
	c := New([]PatternEntry{
		entry("example-casino.com", false, model.Gambling, 0.9, model.SourceDefault),
	})

	res := c.Match("example-casino.com")
	if res == nil {
		t.Fatal("expected literal match")
	}
	if res.Category != model.Gambling {
		t.Errorf("category = %s, want gambling", res.Category)
	}
	if res.Confidence != 0.9 {
		t.Errorf("confidence = %v, want 0.9", res.Confidence)
	}
}

func TestLiteralMatchCaseInsensitive(t *testing.T) {
	c := New([]PatternEntry{
		entry("example-casino.com", false, model.Gambling, 0.9, model.SourceDefault),
	})

	if c.Match("Example-Casino.COM") == nil {
		t.Error("expected case-insensitive literal match")
	}
	if c.Match("  example-casino.com  ") == nil {
		t.Error("expected whitespace-trimmed literal match")
	}
}

func TestEmptyIdentifier(t *testing.T) {
	c := NewDefault()
	if res := c.Match(""); res != nil {
		t.Errorf("empty identifier matched %+v", res)
	}
	if res := c.Match("   "); res != nil {
		t.Errorf("blank identifier matched %+v", res)
	}
}

func TestNoMatch(t *testing.T) {
	c := NewDefault()
	if res := c.Match("docs.golang.org"); res != nil {
		t.Errorf("expected no match, got %+v", res)
	}
}

func TestRegexMatch(t *testing.T) {
	c := New([]PatternEntry{
		entry(`(casino|slots?)[a-z0-9-]*\.com$`, true, model.Gambling, 0.7, model.SourceDefault),
	})

	res := c.Match("bigslots24.com")
	if res == nil {
		t.Fatal("expected regex match")
	}
	if res.MatchedPattern == "" {
		t.Error("expected matched pattern to be reported")
	}
}

func TestHigherConfidenceWins(t *testing.T) {
	c := New([]PatternEntry{
		entry("site.example", false, model.DatingSites, 0.6, model.SourceDefault),
		entry(`site\.example`, true, model.Gambling, 0.9, model.SourceDefault),
	})

	res := c.Match("site.example")
	if res == nil {
		t.Fatal("expected match")
	}
	if res.Category != model.Gambling {
		t.Errorf("expected higher-confidence regex entry to win, got %s", res.Category)
	}
}

func TestEqualConfidenceSeverityWins(t *testing.T) {
	c := New([]PatternEntry{
		entry(`shared\.example`, true, model.DatingSites, 0.8, model.SourceDefault),      // severity 2
		entry(`shared\.examp.*`, true, model.ExplicitContent, 0.8, model.SourceDefault), // severity 5
	})

	res := c.Match("shared.example")
	if res == nil {
		t.Fatal("expected match")
	}
	if res.Category != model.ExplicitContent {
		t.Errorf("expected higher-severity category to win tie, got %s", res.Category)
	}
}

func TestEqualConfidenceAndSeveritySourceWins(t *testing.T) {
	c := New([]PatternEntry{
		entry(`dual\.example`, true, model.Gambling, 0.8, model.SourceDefault),
		entry(`dual\.examp.*`, true, model.SubstanceAbuse, 0.8, model.SourceUserAdded), // same severity 3
	})

	res := c.Match("dual.example")
	if res == nil {
		t.Fatal("expected match")
	}
	if res.Source != model.SourceUserAdded {
		t.Errorf("expected user_added source to win tie, got %s", res.Source)
	}
}

func TestMalformedRegexSkipped(t *testing.T) {
	c := New([]PatternEntry{
		entry(`[unclosed`, true, model.SuspiciousContent, 0.9, model.SourceDefault),
		entry("good.example", false, model.Gambling, 0.9, model.SourceDefault),
	})

	if c.Size() != 1 {
		t.Errorf("expected malformed regex dropped, size = %d", c.Size())
	}
	if c.Match("good.example") == nil {
		t.Error("well-formed entry must survive a malformed sibling")
	}
}

func TestInactiveEntriesIgnored(t *testing.T) {
	e := entry("inactive.example", false, model.Gambling, 0.9, model.SourceDefault)
	e.IsActive = false
	c := New([]PatternEntry{e})

	if c.Match("inactive.example") != nil {
		t.Error("inactive entry must not match")
	}
}

func TestDuplicateLiteralHashKeepsHigherConfidence(t *testing.T) {
	c := New([]PatternEntry{
		entry("dup.example", false, model.DatingSites, 0.5, model.SourceDefault),
		entry("dup.example", false, model.Gambling, 0.9, model.SourceCommunity),
	})

	res := c.Match("dup.example")
	if res == nil {
		t.Fatal("expected match")
	}
	if res.Confidence != 0.9 {
		t.Errorf("expected higher-confidence duplicate kept, got %v", res.Confidence)
	}
}

func TestConfidenceClamped(t *testing.T) {
	c := New([]PatternEntry{
		entry("over.example", false, model.Gambling, 1.7, model.SourceDefault),
	})

	res := c.Match("over.example")
	if res == nil {
		t.Fatal("expected match")
	}
	if res.Confidence != 1 {
		t.Errorf("confidence = %v, want clamped to 1", res.Confidence)
	}
}

func TestAppPackageMatch(t *testing.T) {
	c := NewDefault()
	if c.Match("com.tinder") == nil {
		t.Error("expected app package id to match literal entry")
	}
}

func TestLoadMissingFileFallsBack(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file must fall back to defaults: %v", err)
	}
	if c.Size() == 0 {
		t.Error("expected default entries")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	doc := `patterns:
  - pattern: team-poker.example
    category: gambling
    confidence: 0.85
    active: true
  - pattern: '(^|\.)dice[a-z]*\.example$'
    regex: true
    category: gambling
    confidence: 0.6
    active: true
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Size() != 2 {
		t.Errorf("size = %d, want 2", c.Size())
	}
	if c.Match("dicemaster.example") == nil {
		t.Error("expected regex entry from file to match")
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("patterns: {nope"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error for malformed file")
	}
}

type captureHitter struct {
	mu   sync.Mutex
	hits []int64
}

func (h *captureHitter) RecordHit(id int64, _ string, _ model.Category) {
	h.mu.Lock()
	h.hits = append(h.hits, id)
	h.mu.Unlock()
}

func TestStoreRecordsHits(t *testing.T) {
	h := &captureHitter{}
	s := NewStore(New([]PatternEntry{
		entry("hit.example", false, model.Gambling, 0.9, model.SourceDefault),
	}), h)

	if s.Match("hit.example") == nil {
		t.Fatal("expected match")
	}
	s.Match("miss.example")

	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.hits) != 1 {
		t.Errorf("expected exactly one hit recorded, got %d", len(h.hits))
	}
}

func TestStoreSwap(t *testing.T) {
	s := NewStore(New([]PatternEntry{
		entry("old.example", false, model.Gambling, 0.9, model.SourceDefault),
	}), nil)

	s.Swap(New([]PatternEntry{
		entry("new.example", false, model.Gambling, 0.9, model.SourceDefault),
	}))

	if s.Match("old.example") != nil {
		t.Error("old entry visible after swap")
	}
	if s.Match("new.example") == nil {
		t.Error("new entry missing after swap")
	}
}

func TestStoreSwapNilIgnored(t *testing.T) {
	s := NewStore(NewDefault(), nil)
	s.Swap(nil)
	if s.Snapshot() == nil {
		t.Error("nil swap must not clear the snapshot")
	}
}

func TestHashIdentifierStable(t *testing.T) {
	if HashIdentifier("Example.COM") != HashIdentifier("example.com") {
		t.Error("hash must be case-insensitive")
	}
	if HashIdentifier("a.example") == HashIdentifier("b.example") {
		t.Error("distinct identifiers must not collide trivially")
	}
}
