package state

import (
	"fmt"
	"time"
)

type counter int

const (
	counterMessages counter = iota
	counterImagesAnalyzed
	counterImagesGenerated
	counterErrors
)

// usageStats holds monotonic counters and the process start time. Counters
// are never decremented; they reset only when the process restarts. Not safe
// for concurrent use on its own; the owning Service serializes access.
type usageStats struct {
	startedAt         time.Time
	messagesProcessed uint64
	imagesAnalyzed    uint64
	imagesGenerated   uint64
	errors            uint64
}

func newUsageStats(startedAt time.Time) *usageStats {
	return &usageStats{startedAt: startedAt}
}

func (s *usageStats) increment(c counter) {
	switch c {
	case counterMessages:
		s.messagesProcessed++
	case counterImagesAnalyzed:
		s.imagesAnalyzed++
	case counterImagesGenerated:
		s.imagesGenerated++
	case counterErrors:
		s.errors++
	default:
		panic(fmt.Sprintf("unknown counter %d", c))
	}
}
