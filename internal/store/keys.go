package store

import "fmt"

// Snapshot field names. Each maps to one persisted key per session.
const (
	FieldTimer   = "timer"
	FieldAnswers = "answers"
	FieldName    = "name"
	FieldScore   = "score"
)

// Key builds the persisted key for one snapshot field of one session.
// All session keys go through this single encoding point.
func Key(field, sessionID string) string {
	return fmt.Sprintf("%s_%s", field, sessionID)
}

// SessionKeys returns every persisted key for a session, in the order they
// are deleted on finalize.
func SessionKeys(sessionID string) []string {
	return []string{
		Key(FieldTimer, sessionID),
		Key(FieldAnswers, sessionID),
		Key(FieldName, sessionID),
		Key(FieldScore, sessionID),
	}
}
