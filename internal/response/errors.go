package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"
	ErrNameRequired   ErrCode = "NAME_REQUIRED"

	// ─── Session lifecycle ─────────────────────────────────────────────
	ErrSessionNotFound    ErrCode = "SESSION_NOT_FOUND"
	ErrSessionNotRunning  ErrCode = "SESSION_NOT_RUNNING"
	ErrParticipantAlready ErrCode = "PARTICIPANT_ALREADY_SET"
	ErrFinalizeFailed     ErrCode = "FINALIZE_FAILED"

	// ─── Remote stores ─────────────────────────────────────────────────
	ErrFetchFailed  ErrCode = "FETCH_FAILED"
	ErrUpstreamSave ErrCode = "UPSTREAM_SAVE_FAILED"
	ErrNotFound     ErrCode = "NOT_FOUND"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid id format."
	case ErrInvalidPayload:
		return "Invalid request payload."
	case ErrNameRequired:
		return "Please enter your name."

	// ─── Session lifecycle ─────────────────────────────────────────────
	case ErrSessionNotFound:
		return "No active session with this id."
	case ErrSessionNotRunning:
		return "The session does not accept this action in its current state."
	case ErrParticipantAlready:
		return "This session already has a participant."
	case ErrFinalizeFailed:
		return "Failed to save result. Try again!"

	// ─── Remote stores ─────────────────────────────────────────────────
	case ErrFetchFailed:
		return "Failed to load data from the remote store."
	case ErrUpstreamSave:
		return "Failed to save data to the remote store."
	case ErrNotFound:
		return "Resource not found."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
