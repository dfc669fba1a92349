package state

// contextLog holds a bounded, per-identity ordered log of conversation turns.
// Oldest turns are dropped first once the bound is reached. Not safe for
// concurrent use on its own; the owning Service serializes access.
type contextLog struct {
	bound    int
	contexts map[int64][]Turn
}

func newContextLog(bound int) *contextLog {
	return &contextLog{
		bound:    bound,
		contexts: make(map[int64][]Turn),
	}
}

func (l *contextLog) append(identity int64, turn Turn) {
	turns := l.contexts[identity]

	if len(turns) >= l.bound {
		turns = append(turns[len(turns)-l.bound+1:], turn)
	} else {
		turns = append(turns, turn)
	}

	l.contexts[identity] = turns
}

// snapshot returns a copy of the identity's turns. Unknown identities yield
// an empty slice, never an error.
func (l *contextLog) snapshot(identity int64) []Turn {
	turns := l.contexts[identity]

	result := make([]Turn, len(turns))
	copy(result, turns)

	return result
}

func (l *contextLog) clear(identity int64) {
	delete(l.contexts, identity)
}

func (l *contextLog) activeCount() int {
	return len(l.contexts)
}

func (l *contextLog) totalTurns() int {
	total := 0
	for _, turns := range l.contexts {
		total += len(turns)
	}

	return total
}
