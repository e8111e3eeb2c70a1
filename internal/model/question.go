package model

// Question represents a single multiple-choice question as served by the
// catalog API. Options are ordered; CorrectIndex points into Options.
type Question struct {
	ID           string   `json:"id"`
	TestID       string   `json:"testId"`
	Prompt       string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
}

// CreateQuestionRequest is the payload for authoring a new question.
type CreateQuestionRequest struct {
	TestID       string   `json:"testId" binding:"required"`
	Prompt       string   `json:"question" binding:"required,min=1,max=2000"`
	Options      []string `json:"options" binding:"required,min=2,dive,required"`
	CorrectIndex int      `json:"correctIndex" binding:"min=0"`
}
