package state

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestService() *Service {
	return NewWithLimits(time.Minute, 10, 20)
}

func TestTryHandleMessageAdmitsAndRecords(t *testing.T) {
	s := newTestService()

	outcome, ctx := s.TryHandleMessage(1, "hello", time.Now())

	require.Equal(t, Admitted, outcome)
	require.Len(t, ctx, 1)
	require.Equal(t, RoleUser, ctx[0].Role)
	require.Equal(t, "hello", ctx[0].Text)

	snap := s.StatusSnapshot()
	require.Equal(t, uint64(1), snap.MessagesProcessed)
	require.Equal(t, 1, snap.ActiveUsers)
}

func TestTryHandleMessageRateLimitedMutatesNothing(t *testing.T) {
	s := NewWithLimits(time.Minute, 1, 20)
	now := time.Now()

	outcome, _ := s.TryHandleMessage(1, "first", now)
	require.Equal(t, Admitted, outcome)

	outcome, ctx := s.TryHandleMessage(1, "second", now.Add(time.Second))
	require.Equal(t, RateLimited, outcome)
	require.Nil(t, ctx)

	snap := s.StatusSnapshot()
	require.Equal(t, uint64(1), snap.MessagesProcessed)
	require.Zero(t, snap.Errors)
	require.Len(t, s.ContextSnapshot(1), 1)
}

func TestAssistantTurnObservedAfterUserTurn(t *testing.T) {
	s := newTestService()

	s.TryHandleMessage(1, "question", time.Now())
	s.RecordAssistantTurn(1, "answer")

	ctx := s.ContextSnapshot(1)
	require.Len(t, ctx, 2)
	require.Equal(t, RoleUser, ctx[0].Role)
	require.Equal(t, RoleAssistant, ctx[1].Role)
	require.Equal(t, "answer", ctx[1].Text)
}

func TestResetConversationThenSnapshotIsEmpty(t *testing.T) {
	s := newTestService()

	s.TryHandleMessage(1, "one", time.Now())
	s.RecordAssistantTurn(1, "two")
	s.ResetConversation(1)

	require.Empty(t, s.ContextSnapshot(1))
	require.Zero(t, s.StatusSnapshot().ActiveUsers)

	// Stats survive a conversation reset.
	require.Equal(t, uint64(1), s.StatusSnapshot().MessagesProcessed)
}

func TestRecordImageEventsAndErrors(t *testing.T) {
	s := newTestService()

	s.RecordImageEvent(ImageAnalyzed)
	s.RecordImageEvent(ImageAnalyzed)
	s.RecordImageEvent(ImageGenerated)
	s.RecordError()

	snap := s.StatusSnapshot()
	require.Equal(t, uint64(2), snap.ImagesAnalyzed)
	require.Equal(t, uint64(1), snap.ImagesGenerated)
	require.Equal(t, uint64(1), snap.Errors)
}

func TestConcreteRateLimitScenario(t *testing.T) {
	s := NewWithLimits(60*time.Second, 2, 20)
	base := time.Now()

	outcome, _ := s.TryHandleMessage(1, "t0", base)
	require.Equal(t, Admitted, outcome)
	outcome, _ = s.TryHandleMessage(1, "t1", base.Add(1*time.Second))
	require.Equal(t, Admitted, outcome)
	outcome, _ = s.TryHandleMessage(1, "t2", base.Add(2*time.Second))
	require.Equal(t, RateLimited, outcome)
	outcome, _ = s.TryHandleMessage(1, "t61", base.Add(61*time.Second))
	require.Equal(t, Admitted, outcome)
}

func TestMessagesProcessedEqualsAdmittedUnderConcurrency(t *testing.T) {
	const (
		workers        = 8
		callsPerWorker = 200
	)

	// Window large enough that nothing is pruned; exactly maxCount calls per
	// identity may win.
	s := NewWithLimits(time.Hour, 50, 20)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		admitted uint64
	)

	for worker := 0; worker < workers; worker++ {
		wg.Add(1)

		go func(identity int64) {
			defer wg.Done()

			local := uint64(0)
			for i := 0; i < callsPerWorker; i++ {
				outcome, _ := s.TryHandleMessage(identity%4, "msg", time.Now())
				if outcome == Admitted {
					local++
				}
			}

			mu.Lock()
			admitted += local
			mu.Unlock()
		}(int64(worker))
	}

	wg.Wait()

	snap := s.StatusSnapshot()
	require.Equal(t, admitted, snap.MessagesProcessed)

	// 4 identities, 50 slots each.
	require.Equal(t, uint64(200), admitted)
}

func TestSnapshotsAreConsistentDuringConcurrentWrites(t *testing.T) {
	s := newTestService()

	done := make(chan struct{})
	go func() {
		defer close(done)

		for i := 0; i < 500; i++ {
			s.TryHandleMessage(int64(i%3), "msg", time.Now())
			s.RecordAssistantTurn(int64(i%3), "reply")
		}
	}()

	for i := 0; i < 200; i++ {
		snap := s.StatusSnapshot()

		// Every admitted user turn gets an assistant turn eventually, so the
		// total can never exceed twice the processed count mid-flight.
		require.LessOrEqual(t, snap.ContextSizeTotal, int(snap.MessagesProcessed)*2)
		require.LessOrEqual(t, snap.ActiveUsers, 3)
	}

	<-done
}
