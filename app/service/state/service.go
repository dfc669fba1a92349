package state

import (
	"sync"
	"time"

	"gembot/app/config"

	"github.com/samber/do"
)

// Service coordinates all shared runtime state between the message processing
// loop and the status server: per-user rate windows, bounded conversation
// contexts and usage counters. Every access goes through its methods; the
// internal maps are never handed out. One lock guards all three structures,
// and no critical section spans I/O.
type Service struct {
	mu      sync.RWMutex
	limiter *rateWindow
	history *contextLog
	stats   *usageStats
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return NewWithLimits(
		time.Duration(cfg.Limits.RateWindowSeconds)*time.Second,
		cfg.Limits.RateMaxMessages,
		cfg.Limits.HistorySize,
	), nil
}

func NewWithLimits(rateWindowDur time.Duration, rateMax, historySize int) *Service {
	return &Service{
		limiter: newRateWindow(rateWindowDur, rateMax),
		history: newContextLog(historySize),
		stats:   newUsageStats(time.Now()),
	}
}

// TryHandleMessage performs the admission check for an inbound user message.
// When admitted it appends the user turn, bumps the processed counter and
// returns a snapshot of the conversation for building the AI request. When
// rate limited nothing is mutated and the returned context is nil.
//
// Admission and recording happen under the same critical section, so two
// concurrent calls for one identity can never both take the last free slot.
func (s *Service) TryHandleMessage(identity int64, text string, now time.Time) (Outcome, []Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.limiter.admit(identity, now) {
		return RateLimited, nil
	}

	s.history.append(identity, Turn{
		Role:      RoleUser,
		Text:      text,
		Timestamp: now,
	})
	s.stats.increment(counterMessages)

	return Admitted, s.history.snapshot(identity)
}

// AdmitRequest performs the admission check alone, for operations that count
// against the rate window without contributing a conversation turn (image
// generation, photo analysis).
func (s *Service) AdmitRequest(identity int64, now time.Time) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.limiter.admit(identity, now) {
		return RateLimited
	}

	return Admitted
}

// RecordAssistantTurn appends the assistant reply after a successful backend
// call. A later snapshot always observes it after the user turn it answers.
func (s *Service) RecordAssistantTurn(identity int64, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history.append(identity, Turn{
		Role:      RoleAssistant,
		Text:      text,
		Timestamp: time.Now(),
	})
}

func (s *Service) RecordImageEvent(event ImageEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch event {
	case ImageAnalyzed:
		s.stats.increment(counterImagesAnalyzed)
	case ImageGenerated:
		s.stats.increment(counterImagesGenerated)
	}
}

func (s *Service) RecordError() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.increment(counterErrors)
}

// ResetConversation drops all context for the identity. Idempotent.
func (s *Service) ResetConversation(identity int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history.clear(identity)
}

// ContextSnapshot returns a read-only copy of the identity's conversation,
// empty for unknown identities.
func (s *Service) ContextSnapshot(identity int64) []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.history.snapshot(identity)
}

// StatusSnapshot returns a consistent point-in-time copy of all counters and
// derived fields. Counters are read under the lock, so a reader never sees a
// torn value from a concurrent increment.
func (s *Service) StatusSnapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		StartedAt:         s.stats.startedAt,
		UptimeSeconds:     int64(time.Since(s.stats.startedAt).Seconds()),
		MessagesProcessed: s.stats.messagesProcessed,
		ImagesAnalyzed:    s.stats.imagesAnalyzed,
		ImagesGenerated:   s.stats.imagesGenerated,
		Errors:            s.stats.errors,
		ActiveUsers:       s.history.activeCount(),
		ContextSizeTotal:  s.history.totalTurns(),
	}
}
