package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/ormund/safescreen/internal/model"
)

// PatternEntry is one catalog row: a literal hostname/app id or a regex,
// tagged with a harm category and a match confidence.
type PatternEntry struct {
	ID          int64                `yaml:"id,omitempty"`
	DomainHash  string               `yaml:"domain_hash,omitempty"`
	Pattern     string               `yaml:"pattern"`
	IsRegex     bool                 `yaml:"regex,omitempty"`
	Category    model.Category       `yaml:"category"`
	Confidence  float64              `yaml:"confidence"`
	Source      model.PatternSource  `yaml:"source,omitempty"`
	IsActive    bool                 `yaml:"active"`
	IsCustom    bool                 `yaml:"custom,omitempty"`
	AddedByUser bool                 `yaml:"added_by_user,omitempty"`
	BlockCount  int64                `yaml:"block_count,omitempty"`
	LastUpdated time.Time            `yaml:"last_updated,omitempty"`
}

// HashIdentifier returns the stable lookup key for a literal pattern:
// the SHA-256 hex of the lowercased, trimmed identifier. Hashing the
// lowercased form keeps literal matching case-insensitive and
// deterministic.
func HashIdentifier(identifier string) string {
	norm := strings.ToLower(strings.TrimSpace(identifier))
	sum := sha256.Sum256([]byte(norm))
	return hex.EncodeToString(sum[:])
}

// normalize applies the same canonical form used for hashing.
func normalize(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}
