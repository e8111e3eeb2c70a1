package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examhall/backend/internal/model"
	"github.com/examhall/backend/internal/store"
)

func newTestManager(t *testing.T, kv store.KeyStore, fake *fakeResultStore) *Manager {
	t.Helper()
	return NewManager(kv, newTestAggregator(t, fake), zerolog.Nop())
}

func TestFreshSessionFullLifecycle(t *testing.T) {
	kv := store.NewMemoryStore()
	fake := newFakeResultStore()
	mgr := newTestManager(t, kv, fake)
	ctx := context.Background()

	s, err := mgr.Enter(ctx, "s1", "Math Final", "00:01:30")
	require.NoError(t, err)
	assert.Equal(t, model.SessionAwaitingParticipant, s.State())

	require.NoError(t, s.SubmitParticipantName(ctx, "Alice"))
	assert.Equal(t, model.SessionRunning, s.State())

	view := s.View()
	assert.InDelta(t, 90, view.RemainingSeconds, 1)
	assert.Equal(t, "Alice", view.ParticipantName)

	// One correct, one incorrect.
	res, err := s.SelectAnswer(ctx, "1", 2, 2)
	require.NoError(t, err)
	assert.True(t, res.Correct)
	res, err = s.SelectAnswer(ctx, "2", 0, 3)
	require.NoError(t, err)
	assert.False(t, res.Correct)
	assert.Equal(t, 1, res.Score)

	require.NoError(t, s.RequestFinalize(ctx))
	assert.Equal(t, model.SessionFinished, s.State())

	stored := fake.snapshot()
	require.Len(t, stored, 1)
	assert.Equal(t, "Math Final", stored[0].ExamName)
	assert.Equal(t, []model.ParticipantResult{{Name: "Alice", Mark: 1}}, stored[0].Results)

	// Successful finalize leaves no residual snapshot keys.
	assert.Zero(t, kv.Len())
}

func TestFinalizeAppendsToExistingAggregate(t *testing.T) {
	kv := store.NewMemoryStore()
	fake := newFakeResultStore(model.ExamResultAggregate{
		ID:       "7",
		ExamName: "Math Final",
		Results:  []model.ParticipantResult{{Name: "Bob", Mark: 2}},
	})
	mgr := newTestManager(t, kv, fake)
	ctx := context.Background()

	s, err := mgr.Enter(ctx, "s1", "Math Final", "00:01:30")
	require.NoError(t, err)
	require.NoError(t, s.SubmitParticipantName(ctx, "Alice"))
	_, err = s.SelectAnswer(ctx, "1", 1, 1)
	require.NoError(t, err)

	require.NoError(t, s.RequestFinalize(ctx))

	stored := fake.snapshot()
	require.Len(t, stored, 1)
	assert.Equal(t, []model.ParticipantResult{
		{Name: "Bob", Mark: 2},
		{Name: "Alice", Mark: 1},
	}, stored[0].Results)
}

func TestRecoveryResumesRunningSession(t *testing.T) {
	kv := store.NewMemoryStore()
	ctx := context.Background()

	// Persisted snapshot of an interrupted attempt.
	require.NoError(t, kv.Set(ctx, store.Key(store.FieldName, "s9"), "Alice"))
	require.NoError(t, kv.Set(ctx, store.Key(store.FieldAnswers, "s9"), `{"1":2}`))
	require.NoError(t, kv.Set(ctx, store.Key(store.FieldTimer, "s9"), "45"))
	require.NoError(t, kv.Set(ctx, store.Key(store.FieldScore, "s9"), "1"))

	mgr := newTestManager(t, kv, newFakeResultStore())

	s, err := mgr.Enter(ctx, "s9", "Math Final", "00:02:00")
	require.NoError(t, err)
	defer s.Abandon()

	// Straight to RUNNING, no name re-prompt, with the persisted snapshot.
	assert.Equal(t, model.SessionRunning, s.State())
	view := s.View()
	assert.Equal(t, "Alice", view.ParticipantName)
	assert.Equal(t, 45, view.RemainingSeconds)
	assert.Equal(t, 1, view.Score)
	assert.Equal(t, map[string]int{"1": 2}, view.Answers)

	// The recovered question stays write-once.
	res, err := s.SelectAnswer(ctx, "1", 0, 0)
	require.NoError(t, err)
	assert.True(t, res.AlreadyAnswered)
	assert.Equal(t, 2, res.RecordedIndex)
}

func TestRecoveryWithoutTimerFallsBackToFullDuration(t *testing.T) {
	kv := store.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, store.Key(store.FieldName, "s2"), "Alice"))

	mgr := newTestManager(t, kv, newFakeResultStore())
	s, err := mgr.Enter(ctx, "s2", "Math Final", "00:02:00")
	require.NoError(t, err)
	defer s.Abandon()

	assert.Equal(t, model.SessionRunning, s.State())
	assert.Equal(t, 120, s.View().RemainingSeconds)
}

func TestSubmitParticipantNameValidation(t *testing.T) {
	mgr := newTestManager(t, store.NewMemoryStore(), newFakeResultStore())
	ctx := context.Background()

	s, err := mgr.Enter(ctx, "s1", "Math Final", "00:01:00")
	require.NoError(t, err)
	defer s.Abandon()

	var ve *ValidationError
	require.ErrorAs(t, s.SubmitParticipantName(ctx, ""), &ve)
	require.ErrorAs(t, s.SubmitParticipantName(ctx, "   \t "), &ve)
	assert.Equal(t, model.SessionAwaitingParticipant, s.State(), "rejected name must not advance the state")

	require.NoError(t, s.SubmitParticipantName(ctx, "  Alice  "))
	assert.Equal(t, "Alice", s.View().ParticipantName)

	// A second name submission hits the state guard.
	assert.ErrorIs(t, s.SubmitParticipantName(ctx, "Mallory"), ErrNotAwaitingParticipant)
}

func TestSelectAnswerRequiresRunningState(t *testing.T) {
	mgr := newTestManager(t, store.NewMemoryStore(), newFakeResultStore())
	ctx := context.Background()

	s, err := mgr.Enter(ctx, "s1", "Math Final", "00:01:00")
	require.NoError(t, err)

	_, err = s.SelectAnswer(ctx, "1", 0, 0)
	assert.ErrorIs(t, err, ErrNotRunning)
}

func TestFinalizeIsSingleFlight(t *testing.T) {
	kv := store.NewMemoryStore()
	fake := newFakeResultStore()
	mgr := newTestManager(t, kv, fake)
	ctx := context.Background()

	s, err := mgr.Enter(ctx, "s1", "Math Final", "00:01:00")
	require.NoError(t, err)
	require.NoError(t, s.SubmitParticipantName(ctx, "Alice"))

	// Manual submit racing timer expiry: both triggers call RequestFinalize.
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.RequestFinalize(ctx)
		}()
	}
	wg.Wait()

	assert.Equal(t, model.SessionFinished, s.State())
	assert.Equal(t, 1, fake.writes(), "exactly one finalize must reach the store")
	require.Len(t, fake.snapshot(), 1)
}

// gatedStore blocks the first write to gateKey until released, passing
// everything else straight through to the underlying store.
type gatedStore struct {
	*store.MemoryStore
	gateKey string
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedStore(gateKey string) *gatedStore {
	return &gatedStore{
		MemoryStore: store.NewMemoryStore(),
		gateKey:     gateKey,
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
}

func (g *gatedStore) Set(ctx context.Context, key, value string) error {
	if key == g.gateKey {
		g.once.Do(func() {
			close(g.entered)
			<-g.release
		})
	}
	return g.MemoryStore.Set(ctx, key, value)
}

func TestFinalizeLeavesNoKeysDespiteConcurrentAnswer(t *testing.T) {
	kv := newGatedStore(store.Key(store.FieldAnswers, "s1"))
	fake := newFakeResultStore()
	mgr := newTestManager(t, kv, fake)
	ctx := context.Background()

	s, err := mgr.Enter(ctx, "s1", "Math Final", "00:01:00")
	require.NoError(t, err)
	require.NoError(t, s.SubmitParticipantName(ctx, "Alice"))

	// An answer whose store write is still in flight when finalize starts.
	answered := make(chan error, 1)
	go func() {
		_, err := s.SelectAnswer(ctx, "1", 1, 1)
		answered <- err
	}()
	<-kv.entered

	finalized := make(chan error, 1)
	go func() { finalized <- s.RequestFinalize(ctx) }()

	require.Eventually(t, func() bool {
		st := s.State()
		return st == model.SessionFinalizing || st == model.SessionFinished
	}, time.Second, testTick, "finalize should start while the answer write is stalled")
	close(kv.release)

	require.NoError(t, <-answered)
	require.NoError(t, <-finalized)
	assert.Equal(t, model.SessionFinished, s.State())

	// The late answer write must not resurrect any session keys.
	assert.Zero(t, kv.Len(), "finalize must leave no snapshot keys behind")
}

func TestFinalizeFailureParksSessionInFinalizing(t *testing.T) {
	kv := store.NewMemoryStore()
	fake := newFakeResultStore()
	fake.failWrites = true
	mgr := newTestManager(t, kv, fake)
	ctx := context.Background()

	s, err := mgr.Enter(ctx, "s1", "Math Final", "00:01:00")
	require.NoError(t, err)
	require.NoError(t, s.SubmitParticipantName(ctx, "Alice"))

	var fe *FinalizeError
	require.ErrorAs(t, s.RequestFinalize(ctx), &fe)
	assert.Equal(t, model.SessionFinalizing, s.State())

	// Persisted keys survive the failed finalize.
	_, err = kv.Get(ctx, store.Key(store.FieldName, "s1"))
	assert.NoError(t, err)

	// Re-triggering while FINALIZING is a no-op, not a retry.
	writesBefore := fake.writes()
	require.NoError(t, s.RequestFinalize(ctx))
	assert.Equal(t, writesBefore, fake.writes())
	assert.Equal(t, model.SessionFinalizing, s.State())
}

func TestCountdownExpiryTriggersFinalize(t *testing.T) {
	kv := store.NewMemoryStore()
	fake := newFakeResultStore()
	mgr := newTestManager(t, kv, fake)
	ctx := context.Background()

	s, err := mgr.Enter(ctx, "s1", "Math Final", "00:00:02")
	require.NoError(t, err)
	s.countdown.interval = testTick

	require.NoError(t, s.SubmitParticipantName(ctx, "Alice"))
	_, err = s.SelectAnswer(ctx, "1", 1, 1)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return s.State() == model.SessionFinished
	}, time.Second, testTick, "expiry should drive the session to FINISHED")

	stored := fake.snapshot()
	require.Len(t, stored, 1)
	assert.Equal(t, []model.ParticipantResult{{Name: "Alice", Mark: 1}}, stored[0].Results)
	assert.Zero(t, kv.Len())
}

func TestManagerReusesLiveSession(t *testing.T) {
	mgr := newTestManager(t, store.NewMemoryStore(), newFakeResultStore())
	ctx := context.Background()

	s1, err := mgr.Enter(ctx, "s1", "Math Final", "00:01:00")
	require.NoError(t, err)
	s2, err := mgr.Enter(ctx, "s1", "Math Final", "00:05:00")
	require.NoError(t, err)
	assert.Same(t, s1, s2)

	got, ok := mgr.Get("s1")
	require.True(t, ok)
	assert.Same(t, s1, got)
}

func TestManagerAbandonKeepsSnapshot(t *testing.T) {
	kv := store.NewMemoryStore()
	mgr := newTestManager(t, kv, newFakeResultStore())
	ctx := context.Background()

	s, err := mgr.Enter(ctx, "s1", "Math Final", "00:01:00")
	require.NoError(t, err)
	require.NoError(t, s.SubmitParticipantName(ctx, "Alice"))
	_, err = s.SelectAnswer(ctx, "1", 1, 1)
	require.NoError(t, err)

	require.True(t, mgr.Abandon("s1"))
	_, ok := mgr.Get("s1")
	assert.False(t, ok)
	assert.False(t, mgr.Abandon("s1"))

	// Snapshot still there: a later enter recovers the attempt.
	s2, err := mgr.Enter(ctx, "s1", "Math Final", "00:01:00")
	require.NoError(t, err)
	defer s2.Abandon()
	assert.Equal(t, model.SessionRunning, s2.State())
	assert.Equal(t, "Alice", s2.View().ParticipantName)
	assert.Equal(t, 1, s2.View().Score)
}

func TestManagerRejectsMalformedDuration(t *testing.T) {
	mgr := newTestManager(t, store.NewMemoryStore(), newFakeResultStore())

	_, err := mgr.Enter(context.Background(), "s1", "Math Final", "ninety seconds")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	_, ok := mgr.Get("s1")
	assert.False(t, ok, "failed enter must not leave a session behind")
}
