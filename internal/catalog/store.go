package catalog

import (
	"sync/atomic"

	"github.com/ormund/safescreen/internal/model"
)

// Hitter receives block-count increments for winning entries. The call
// must not block: recording is fire-and-forget and never sits on the
// decision path.
type Hitter interface {
	RecordHit(entryID int64, pattern string, category model.Category)
}

// Store is the concurrently-readable catalog handle. Readers always see
// a complete snapshot; reloads swap the whole compiled catalog at once.
type Store struct {
	current atomic.Pointer[Catalog]
	hits    Hitter
}

// NewStore creates a Store around an initial catalog. hits may be nil.
func NewStore(c *Catalog, hits Hitter) *Store {
	s := &Store{hits: hits}
	if c == nil {
		c = New(nil)
	}
	s.current.Store(c)
	return s
}

// Snapshot returns the current compiled catalog.
func (s *Store) Snapshot() *Catalog {
	return s.current.Load()
}

// Swap replaces the catalog wholesale. In-flight matches finish against
// the snapshot they started with.
func (s *Store) Swap(c *Catalog) {
	if c == nil {
		return
	}
	s.current.Store(c)
}

// Match classifies an identifier against the current snapshot and, on a
// hit, reports the winning entry to the Hitter.
func (s *Store) Match(identifier string) *model.MatchResult {
	res := s.current.Load().Match(identifier)
	if res != nil && s.hits != nil {
		s.hits.RecordHit(res.EntryID, res.MatchedPattern, res.Category)
	}
	return res
}
