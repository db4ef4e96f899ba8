// Package learning maintains the per-organization memory of human
// corrections that feeds boost scores back into matching.
package learning

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/buildscope/assetmatch/internal/model"
	"github.com/buildscope/assetmatch/internal/normalize"
	"github.com/buildscope/assetmatch/internal/service"
)

// Clock abstracts time for decay calculations.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }

// Config holds configuration options for the learning store.
type Config struct {
	// DecayWindow is how long a correction keeps influence after its last
	// reinforcement. The record itself is never deleted.
	DecayWindow time.Duration
	// MaxEntries caps how many corrections are mirrored in memory.
	MaxEntries int
	// MinFrequency filters out corrections below this reinforcement count.
	MinFrequency int
	// MaxBoost is the boost of a correction reinforced just now. It is large
	// enough that a fresh correction alone carries a candidate to full
	// confidence.
	MaxBoost float64
}

// DefaultConfig returns the default learning configuration.
func DefaultConfig() Config {
	return Config{
		DecayWindow:  90 * 24 * time.Hour,
		MaxEntries:   200,
		MinFrequency: 1,
		MaxBoost:     0.70,
	}
}

// Store mirrors persisted corrections for one organization at a time.
// Reads during scoring take the read lock only; correction writes are
// visible to subsequent reads within the process.
type Store struct {
	corrections service.CorrectionStore
	clock       Clock
	cfg         Config

	mu        sync.RWMutex
	loadedOrg string
	byText    map[string]*model.LearningCorrection // keyed by normalized text
	byRawText map[string]string                    // lowercase raw text -> normalized key
}

// New creates a learning store with the default configuration.
func New(corrections service.CorrectionStore) *Store {
	return NewWithConfig(corrections, DefaultConfig(), nil)
}

// NewWithConfig creates a learning store with custom configuration. A nil
// clock falls back to the system clock.
func NewWithConfig(corrections service.CorrectionStore, cfg Config, clock Clock) *Store {
	if cfg.DecayWindow <= 0 {
		cfg.DecayWindow = DefaultConfig().DecayWindow
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultConfig().MaxEntries
	}
	if cfg.MaxBoost <= 0 {
		cfg.MaxBoost = DefaultConfig().MaxBoost
	}
	if clock == nil {
		clock = SystemClock()
	}
	return &Store{
		corrections: corrections,
		clock:       clock,
		cfg:         cfg,
		byText:      make(map[string]*model.LearningCorrection),
		byRawText:   make(map[string]string),
	}
}

// Load populates the in-memory mirror from persisted corrections for an
// organization. Previously loaded state is replaced.
func (s *Store) Load(ctx context.Context, organizationID string) error {
	corrections, err := s.corrections.LoadCorrections(ctx, organizationID)
	if err != nil {
		return fmt.Errorf("failed to load corrections: %w", err)
	}

	byText := make(map[string]*model.LearningCorrection, len(corrections))
	byRawText := make(map[string]string, len(corrections))

	count := 0
	for i := range corrections {
		if count == s.cfg.MaxEntries {
			break
		}
		c := corrections[i]
		if c.Frequency < s.cfg.MinFrequency {
			continue
		}
		if c.NormalizedText == "" {
			c.NormalizedText = normalize.Normalize(c.UploadedText)
		}
		if _, exists := byText[c.NormalizedText]; exists {
			continue
		}
		byText[c.NormalizedText] = &c
		byRawText[strings.ToLower(strings.TrimSpace(c.UploadedText))] = c.NormalizedText
		count++
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadedOrg = organizationID
	s.byText = byText
	s.byRawText = byRawText

	return nil
}

// Reset drops the in-memory mirror, leaving persisted corrections untouched.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadedOrg = ""
	s.byText = make(map[string]*model.LearningCorrection)
	s.byRawText = make(map[string]string)
}

// Boost returns the learning boost in [0, MaxBoost] that a stored correction
// contributes to scoring assetID against uploadedText. A correction only ever
// boosts the exact asset it names.
func (s *Store) Boost(uploadedText, assetID string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	correction := s.lookup(uploadedText)
	if correction != nil && correction.AssetID != assetID {
		correction = nil
	}
	if correction == nil {
		correction = s.fuzzyLookup(uploadedText, assetID)
	}
	if correction == nil {
		return 0
	}

	return s.cfg.MaxBoost * DecayFactor(s.clock.Now(), correction.LastUsed, s.cfg.DecayWindow)
}

// LearnedAssetID returns the asset a fresh correction directly maps this text
// to, allowing resolution to short-circuit scoring entirely. Decayed
// corrections are ignored.
func (s *Store) LearnedAssetID(uploadedText string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	correction := s.lookup(uploadedText)
	if correction == nil {
		return "", false
	}
	if DecayFactor(s.clock.Now(), correction.LastUsed, s.cfg.DecayWindow) == 0 {
		return "", false
	}
	return correction.AssetID, true
}

// RecordCorrection persists a human correction and, on success, updates the
// in-memory mirror. The mirror is untouched when persistence fails.
func (s *Store) RecordCorrection(ctx context.Context, organizationID, uploadedText, assetID string) error {
	normalized := normalize.Normalize(uploadedText)

	if err := s.corrections.UpsertCorrection(ctx, organizationID, uploadedText, normalized, assetID); err != nil {
		return fmt.Errorf("failed to record correction: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loadedOrg != "" && s.loadedOrg != organizationID {
		return nil
	}
	if s.loadedOrg == "" {
		s.loadedOrg = organizationID
	}

	now := s.clock.Now()
	if existing, ok := s.byText[normalized]; ok && existing.AssetID == assetID {
		existing.Frequency++
		existing.LastUsed = now
	} else {
		s.byText[normalized] = &model.LearningCorrection{
			OrganizationID: organizationID,
			UploadedText:   uploadedText,
			NormalizedText: normalized,
			AssetID:        assetID,
			Frequency:      1,
			LastUsed:       now,
		}
	}
	s.byRawText[strings.ToLower(strings.TrimSpace(uploadedText))] = normalized

	return nil
}

// lookup resolves a correction by exact normalized key, then by exact raw
// lowercase key. Callers hold at least the read lock.
func (s *Store) lookup(uploadedText string) *model.LearningCorrection {
	if c, ok := s.byText[normalize.Normalize(uploadedText)]; ok {
		return c
	}
	if key, ok := s.byRawText[strings.ToLower(strings.TrimSpace(uploadedText))]; ok {
		return s.byText[key]
	}
	return nil
}

// fuzzyLookup scans corrections pointing at the same asset and accepts one
// whose token set is a subset of the query's, or vice versa.
func (s *Store) fuzzyLookup(uploadedText, assetID string) *model.LearningCorrection {
	queryTokens := tokenSet(normalize.Normalize(uploadedText))
	if len(queryTokens) == 0 {
		return nil
	}

	for _, correction := range s.byText {
		if correction.AssetID != assetID {
			continue
		}
		storedTokens := tokenSet(correction.NormalizedText)
		if len(storedTokens) == 0 {
			continue
		}
		if isSubset(storedTokens, queryTokens) || isSubset(queryTokens, storedTokens) {
			return correction
		}
	}
	return nil
}

// DecayFactor is the pure recency decay of a correction: 1.0 when reinforced
// just now, linearly down to 0 at the decay window, and 0 beyond it.
func DecayFactor(now, lastUsed time.Time, window time.Duration) float64 {
	if window <= 0 {
		return 0
	}
	elapsed := now.Sub(lastUsed)
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > window {
		return 0
	}
	return 1 - float64(elapsed)/float64(window)
}

func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, token := range strings.Fields(text) {
		set[token] = struct{}{}
	}
	return set
}

func isSubset(smaller, larger map[string]struct{}) bool {
	if len(smaller) > len(larger) {
		return false
	}
	for token := range smaller {
		if _, ok := larger[token]; !ok {
			return false
		}
	}
	return true
}
