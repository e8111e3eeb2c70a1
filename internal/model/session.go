package model

// SessionState enumerates the lifecycle of an assessment attempt.
type SessionState string

const (
	SessionAwaitingParticipant SessionState = "AWAITING_PARTICIPANT"
	SessionRunning             SessionState = "RUNNING"
	SessionFinalizing          SessionState = "FINALIZING"
	SessionFinished            SessionState = "FINISHED"
)

// SessionView is the externally visible snapshot of a live session.
type SessionView struct {
	SessionID        string         `json:"session_id"`
	ExamName         string         `json:"exam_name"`
	State            SessionState   `json:"state"`
	ParticipantName  string         `json:"participant_name,omitempty"`
	RemainingSeconds int            `json:"remaining_seconds"`
	Score            int            `json:"score"`
	Answers          map[string]int `json:"answers"`
}

// EnterSessionRequest is the payload for entering (or re-entering) a session.
type EnterSessionRequest struct {
	ExamName string `json:"exam_name" binding:"required,min=1,max=200"`
	Duration string `json:"duration" binding:"required"`
}

// SubmitNameRequest is the payload for submitting the participant name.
type SubmitNameRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// RecordAnswerRequest is the payload for answering one question.
type RecordAnswerRequest struct {
	QuestionID   string `json:"question_id" binding:"required"`
	ChosenIndex  *int   `json:"chosen_index" binding:"required"`
	CorrectIndex *int   `json:"correct_index" binding:"required"`
}

// RecordAnswerResult reports the outcome of an answer submission. When the
// question was already answered, RecordedIndex holds the original choice and
// AlreadyAnswered is true.
type RecordAnswerResult struct {
	QuestionID      string `json:"question_id"`
	RecordedIndex   int    `json:"recorded_index"`
	Correct         bool   `json:"correct"`
	AlreadyAnswered bool   `json:"already_answered"`
	Score           int    `json:"score"`
}
