package model

// Test is a question bank a learner can attempt.
type Test struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Level string `json:"level"`
}

// Exam is a scheduled, timed instance of a test. ExamDate is RFC 3339;
// ExamDuration is an HH:MM:SS string parsed by the session countdown.
type Exam struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Level        string `json:"level"`
	ExamDate     string `json:"examDate"`
	ExamDuration string `json:"examDuration"`
}

// CreateTestRequest is the payload for creating a test.
type CreateTestRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=200"`
	Level string `json:"level" binding:"required"`
}

// CreateExamRequest is the payload for scheduling an exam.
type CreateExamRequest struct {
	Name         string `json:"name" binding:"required,min=1,max=200"`
	Level        string `json:"level" binding:"required"`
	ExamDate     string `json:"examDate" binding:"required"`
	ExamDuration string `json:"examDuration" binding:"required"`
}
