package session

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/examhall/backend/internal/model"
	"github.com/examhall/backend/internal/remote"
)

// ResultAggregator merges a finished session's result into the remote
// aggregate for its exam: append when a record for the exam name exists,
// create otherwise.
//
// The read-then-write here carries a documented race window: the result
// store has no version token, so two finalizes racing on the same exam name
// can create duplicate aggregates or lose an append. One device runs one
// session at a time in practice, so the risk is accepted rather than
// remediated.
type ResultAggregator struct {
	results *remote.ResultClient
	log     zerolog.Logger
}

// NewResultAggregator creates a ResultAggregator over the given result store.
func NewResultAggregator(results *remote.ResultClient, log zerolog.Logger) *ResultAggregator {
	return &ResultAggregator{
		results: results,
		log:     log.With().Str("component", "result_aggregator").Logger(),
	}
}

// Finalize merges one participant result into the aggregate for examName.
// Either the read or the write failing yields a *FinalizeError; the read
// case additionally wraps a *FetchError. There is no retry.
func (a *ResultAggregator) Finalize(ctx context.Context, examName string, participant model.ParticipantResult) error {
	existing, _, err := a.results.FindByExamName(ctx, examName)
	if err != nil {
		return &FinalizeError{Err: &FetchError{Resource: "resultData", Err: err}}
	}

	if existing != nil {
		existing.Results = append(existing.Results, participant)
		if err := a.results.Replace(ctx, existing.ID, *existing); err != nil {
			return &FinalizeError{Err: err}
		}
		a.log.Info().
			Str("exam", examName).
			Str("participant", participant.Name).
			Int("mark", participant.Mark).
			Int("total_results", len(existing.Results)).
			Msg("Result appended to aggregate")
		return nil
	}

	created, err := a.results.Create(ctx, model.ExamResultAggregate{
		ExamName: examName,
		Results:  []model.ParticipantResult{participant},
	})
	if err != nil {
		return &FinalizeError{Err: err}
	}
	a.log.Info().
		Str("exam", examName).
		Str("aggregate_id", created.ID).
		Str("participant", participant.Name).
		Int("mark", participant.Mark).
		Msg("Result aggregate created")
	return nil
}
