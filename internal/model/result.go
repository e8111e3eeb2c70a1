package model

// ParticipantResult is one learner's final mark within an exam aggregate.
type ParticipantResult struct {
	Name string `json:"name"`
	Mark int    `json:"mark"`
}

// ExamResultAggregate is the remote record holding every participant result
// for one exam, keyed by an opaque id assigned by the result store. The
// store keeps at most one aggregate per distinct exam name; results keep
// insertion order.
type ExamResultAggregate struct {
	ID       string              `json:"id,omitempty"`
	ExamName string              `json:"exam"`
	Results  []ParticipantResult `json:"results"`
}
