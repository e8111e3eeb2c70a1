package session

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/examhall/backend/internal/model"
	"github.com/examhall/backend/internal/store"
)

// Session is the state machine for one assessment attempt:
//
//	AWAITING_PARTICIPANT → RUNNING → FINALIZING → FINISHED
//
// It owns the attempt's Countdown and AnswerLedger and drives recovery from
// the persisted snapshot on entry. Finalize is single-flight: whether
// triggered by timer expiry or by the learner, it runs at most once; a
// second trigger while FINALIZING or FINISHED is a no-op.
type Session struct {
	id              string
	examName        string
	durationSeconds int

	kv         store.KeyStore
	countdown  *Countdown
	ledger     *AnswerLedger
	aggregator *ResultAggregator
	log        zerolog.Logger

	mu          sync.Mutex
	state       model.SessionState
	participant string

	// opMu orders answer persistence against finalize cleanup: records hold
	// it shared across their store writes, cleanup holds it exclusively, so
	// no answer write can land after the session keys are deleted.
	opMu sync.RWMutex
}

// NewSession constructs a session. Call Start to restore or begin the
// attempt.
func NewSession(id, examName string, durationSeconds int, kv store.KeyStore, aggregator *ResultAggregator, log zerolog.Logger) *Session {
	slog := log.With().
		Str("component", "session").
		Str("session_id", id).
		Str("exam", examName).
		Logger()

	return &Session{
		id:              id,
		examName:        examName,
		durationSeconds: durationSeconds,
		kv:              kv,
		countdown:       NewCountdown(kv, id, log),
		ledger:          NewAnswerLedger(kv, id, log),
		aggregator:      aggregator,
		log:             slog,
	}
}

// Start restores any persisted snapshot for the session id. With a persisted
// participant name the session resumes straight into RUNNING — answers,
// score and remaining time come from the snapshot and the countdown resumes
// from the persisted remaining value. Otherwise the session waits in
// AWAITING_PARTICIPANT. Calling Start on an already started session changes
// nothing.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != "" {
		return nil
	}

	name := s.restoreString(ctx, store.FieldName)
	if name == "" {
		s.state = model.SessionAwaitingParticipant
		return nil
	}

	answers := s.restoreAnswers(ctx)
	score := s.restoreInt(ctx, store.FieldScore, 0)
	remaining := s.restoreInt(ctx, store.FieldTimer, s.durationSeconds)

	s.participant = name
	s.ledger.Restore(answers, score)
	s.state = model.SessionRunning
	s.countdown.Start(remaining, s.onExpire)

	s.log.Info().
		Str("participant", name).
		Int("remaining_seconds", remaining).
		Int("score", score).
		Int("answered", len(answers)).
		Msg("Session recovered")
	return nil
}

// SubmitParticipantName accepts the learner's name, starts the countdown
// from the full exam duration and moves the session to RUNNING. Valid only
// in AWAITING_PARTICIPANT; empty or whitespace-only names are rejected.
func (s *Session) SubmitParticipantName(ctx context.Context, name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return &ValidationError{Reason: "participant name is required"}
	}

	s.mu.Lock()
	if s.state != model.SessionAwaitingParticipant {
		s.mu.Unlock()
		return ErrNotAwaitingParticipant
	}
	s.participant = trimmed
	s.state = model.SessionRunning
	s.mu.Unlock()

	if err := s.kv.Set(ctx, store.Key(store.FieldName, s.id), trimmed); err != nil {
		s.log.Warn().Err(err).Msg("Name persist failed")
	}

	s.countdown.Start(s.durationSeconds, s.onExpire)

	s.log.Info().
		Str("participant", trimmed).
		Int("duration_seconds", s.durationSeconds).
		Msg("Session started")
	return nil
}

// SelectAnswer records an answer while the session is RUNNING. Repeat
// answers for a question are no-ops reporting the original choice.
func (s *Session) SelectAnswer(ctx context.Context, questionID string, chosenIndex, correctIndex int) (model.RecordAnswerResult, error) {
	s.opMu.RLock()
	defer s.opMu.RUnlock()

	s.mu.Lock()
	if s.state != model.SessionRunning {
		s.mu.Unlock()
		return model.RecordAnswerResult{}, ErrNotRunning
	}
	s.mu.Unlock()

	return s.ledger.Record(ctx, questionID, chosenIndex, correctIndex)
}

// onExpire is the countdown's expiry callback.
func (s *Session) onExpire() {
	s.log.Info().Msg("Countdown expired, finalizing")
	if err := s.RequestFinalize(context.Background()); err != nil {
		s.log.Error().Err(err).Msg("Finalize after expiry failed")
	}
}

// RequestFinalize moves the session to FINALIZING and merges the final score
// into the remote aggregate. On success all persisted keys for the session
// are deleted and the session is FINISHED. On failure the session stays in
// FINALIZING with its keys intact and the error is returned; there is no
// automatic retry. Repeat triggers while FINALIZING or FINISHED are no-ops.
func (s *Session) RequestFinalize(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case model.SessionFinalizing, model.SessionFinished:
		s.mu.Unlock()
		return nil
	case model.SessionRunning:
		// Fall through and take the single flight.
	default:
		s.mu.Unlock()
		return ErrNotRunning
	}
	s.state = model.SessionFinalizing
	name := s.participant
	s.mu.Unlock()

	s.countdown.Cancel()

	participant := model.ParticipantResult{Name: name, Mark: s.ledger.Score()}
	if err := s.aggregator.Finalize(ctx, s.examName, participant); err != nil {
		s.log.Error().Err(err).Msg("Finalize failed, session parked in FINALIZING")
		return err
	}

	// Cleanup waits for in-flight answer writes; the countdown's queued
	// timer writes were drained by Cancel above.
	s.opMu.Lock()
	if err := s.kv.Delete(ctx, store.SessionKeys(s.id)...); err != nil {
		s.log.Warn().Err(err).Msg("Snapshot cleanup failed after finalize")
	}
	s.opMu.Unlock()

	s.mu.Lock()
	s.state = model.SessionFinished
	s.mu.Unlock()

	s.log.Info().
		Str("participant", participant.Name).
		Int("mark", participant.Mark).
		Msg("Session finalized")
	return nil
}

// Abandon stops the countdown without touching persisted state, so a later
// entry for the same session id can recover the attempt.
func (s *Session) Abandon() {
	s.countdown.Cancel()
	s.log.Info().Msg("Session abandoned")
}

// State returns the current lifecycle state.
func (s *Session) State() model.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// View returns the externally visible snapshot of the session.
func (s *Session) View() model.SessionView {
	s.mu.Lock()
	state := s.state
	participant := s.participant
	s.mu.Unlock()

	return model.SessionView{
		SessionID:        s.id,
		ExamName:         s.examName,
		State:            state,
		ParticipantName:  participant,
		RemainingSeconds: s.countdown.Remaining(),
		Score:            s.ledger.Score(),
		Answers:          s.ledger.Answers(),
	}
}

// restoreString reads one snapshot field, treating store errors as absent.
// Local persistence failures are logged, never surfaced.
func (s *Session) restoreString(ctx context.Context, field string) string {
	val, err := s.kv.Get(ctx, store.Key(field, s.id))
	if err != nil {
		if !errors.Is(err, store.ErrKeyNotFound) {
			s.log.Warn().Err(err).Str("field", field).Msg("Snapshot read failed")
		}
		return ""
	}
	return val
}

func (s *Session) restoreInt(ctx context.Context, field string, fallback int) int {
	raw := s.restoreString(ctx, field)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		s.log.Warn().Str("field", field).Str("value", raw).Msg("Corrupt snapshot field, using fallback")
		return fallback
	}
	return n
}

func (s *Session) restoreAnswers(ctx context.Context) map[string]int {
	raw := s.restoreString(ctx, store.FieldAnswers)
	if raw == "" {
		return nil
	}
	var answers map[string]int
	if err := json.Unmarshal([]byte(raw), &answers); err != nil {
		s.log.Warn().Err(err).Msg("Corrupt answer snapshot, starting empty")
		return nil
	}
	return answers
}
