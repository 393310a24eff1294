package drafts

import (
	"time"

	"github.com/lexpravo/intake-api/internal/models"
	"github.com/lexpravo/intake-api/pkg/logger"
	"github.com/lexpravo/intake-api/pkg/metrics"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Store keeps wizard snapshots between visits so a reload does not lose
// progress. Snapshots expire after the configured TTL (24h by default);
// an expired snapshot is discarded on load and never handed back.
//
// Persistence here is best-effort by design: a failed save degrades to
// "no autosave" and must never surface as a hard failure to the client.
type Store struct {
	cache *gocache.Cache
	ttl   time.Duration
}

// NewStore creates a snapshot store with the given time-to-live
func NewStore(ttl time.Duration) *Store {
	return &Store{
		cache: gocache.New(ttl, 10*time.Minute),
		ttl:   ttl,
	}
}

// Save persists the wizard state under the session key, stamping
// LastPersistedAt. Failures are logged and swallowed.
func (s *Store) Save(sessionKey string, state *models.WizardState) {
	if state == nil {
		return
	}
	state.LastPersistedAt = time.Now()

	s.cache.Set(sessionKey, state, s.ttl)
	metrics.DraftSaves.WithLabelValues("success").Inc()
	logger.Debug("Draft snapshot saved",
		zap.String("session", sessionKey),
		zap.Int("step", state.CurrentStep))
}

// Load returns the stored wizard state for a session key, or (nil, false)
// when nothing usable is stored. A snapshot older than the TTL is treated
// as absent even if the cache still holds it.
func (s *Store) Load(sessionKey string) (*models.WizardState, bool) {
	val, found := s.cache.Get(sessionKey)
	if !found {
		metrics.DraftRestores.WithLabelValues("empty").Inc()
		return nil, false
	}

	state, valid := val.(*models.WizardState)
	if !valid {
		logger.Error("Invalid draft snapshot type in cache", zap.String("session", sessionKey))
		s.cache.Delete(sessionKey)
		metrics.DraftRestores.WithLabelValues("empty").Inc()
		return nil, false
	}

	if time.Since(state.LastPersistedAt) > s.ttl {
		s.cache.Delete(sessionKey)
		metrics.DraftRestores.WithLabelValues("expired").Inc()
		logger.Info("Draft snapshot expired, starting fresh",
			zap.String("session", sessionKey),
			zap.Time("last_persisted_at", state.LastPersistedAt))
		return nil, false
	}

	metrics.DraftRestores.WithLabelValues("restored").Inc()
	return state, true
}

// Clear removes the snapshot. Called after a confirmed submission or an
// explicit reset.
func (s *Store) Clear(sessionKey string) {
	s.cache.Delete(sessionKey)
	logger.Debug("Draft snapshot cleared", zap.String("session", sessionKey))
}

// Count returns the number of live snapshots
func (s *Store) Count() int {
	return s.cache.ItemCount()
}
