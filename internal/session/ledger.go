package session

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/examhall/backend/internal/model"
	"github.com/examhall/backend/internal/store"
)

// AnswerLedger records one answer per question and keeps the running score.
// Answers are write-once: the first choice for a question wins and later
// calls are no-ops. The score is maintained incrementally — +1 for each
// newly recorded correct answer — never recomputed from the full set.
type AnswerLedger struct {
	kv         store.KeyStore
	answersKey string
	scoreKey   string
	log        zerolog.Logger

	mu      sync.Mutex
	answers map[string]int
	score   int
}

// NewAnswerLedger creates an empty ledger for one session.
func NewAnswerLedger(kv store.KeyStore, sessionID string, log zerolog.Logger) *AnswerLedger {
	return &AnswerLedger{
		kv:         kv,
		answersKey: store.Key(store.FieldAnswers, sessionID),
		scoreKey:   store.Key(store.FieldScore, sessionID),
		log: log.With().
			Str("component", "answer_ledger").
			Str("session_id", sessionID).
			Logger(),
		answers: make(map[string]int),
	}
}

// Restore seeds the ledger from a recovered snapshot. Call before the
// session starts accepting answers.
func (l *AnswerLedger) Restore(answers map[string]int, score int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.answers = make(map[string]int, len(answers))
	for q, idx := range answers {
		l.answers[q] = idx
	}
	l.score = score
}

// Record stores the learner's choice for a question. If the question was
// already answered it returns the original choice with AlreadyAnswered set
// and changes nothing. Otherwise it records the choice, bumps the score on a
// correct answer, and persists the answer set and score before returning.
// The two keys are written separately, not atomically.
func (l *AnswerLedger) Record(ctx context.Context, questionID string, chosenIndex, correctIndex int) (model.RecordAnswerResult, error) {
	if questionID == "" {
		return model.RecordAnswerResult{}, &ValidationError{Reason: "question id is required"}
	}
	if chosenIndex < 0 || correctIndex < 0 {
		return model.RecordAnswerResult{}, &ValidationError{Reason: "option index out of range"}
	}

	l.mu.Lock()
	if existing, ok := l.answers[questionID]; ok {
		res := model.RecordAnswerResult{
			QuestionID:      questionID,
			RecordedIndex:   existing,
			Correct:         existing == correctIndex,
			AlreadyAnswered: true,
			Score:           l.score,
		}
		l.mu.Unlock()
		return res, nil
	}

	l.answers[questionID] = chosenIndex
	correct := chosenIndex == correctIndex
	if correct {
		l.score++
	}
	snapshot := make(map[string]int, len(l.answers))
	for q, idx := range l.answers {
		snapshot[q] = idx
	}
	score := l.score
	l.mu.Unlock()

	l.persist(ctx, snapshot, score)

	return model.RecordAnswerResult{
		QuestionID:    questionID,
		RecordedIndex: chosenIndex,
		Correct:       correct,
		Score:         score,
	}, nil
}

// persist writes the answer set and score. The write is awaited at this
// record boundary so the durable snapshot keeps up with memory, but store
// failures are only logged: answer recording never fails on persistence.
func (l *AnswerLedger) persist(ctx context.Context, answers map[string]int, score int) {
	raw, err := json.Marshal(answers)
	if err != nil {
		l.log.Error().Err(err).Msg("Marshal answers failed")
		return
	}
	if err := l.kv.Set(ctx, l.answersKey, string(raw)); err != nil {
		l.log.Warn().Err(err).Msg("Answers persist failed")
	}
	if err := l.kv.Set(ctx, l.scoreKey, strconv.Itoa(score)); err != nil {
		l.log.Warn().Err(err).Msg("Score persist failed")
	}
}

// Answers returns a copy of the recorded answer set.
func (l *AnswerLedger) Answers() map[string]int {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]int, len(l.answers))
	for q, idx := range l.answers {
		out[q] = idx
	}
	return out
}

// Score returns the running score.
func (l *AnswerLedger) Score() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.score
}
