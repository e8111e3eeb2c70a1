package remote

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/examhall/backend/internal/model"
)

// CatalogClient talks to the catalog store holding tests, exams and
// questions. Questions are immutable once authored; the session core only
// reads them.
type CatalogClient struct {
	client
}

// NewCatalogClient creates a client for the catalog store at baseURL.
func NewCatalogClient(baseURL string, timeout time.Duration) *CatalogClient {
	return &CatalogClient{client: newClient(baseURL, timeout)}
}

// ListQuestions fetches the ordered question list for a test.
func (c *CatalogClient) ListQuestions(ctx context.Context, testID string) ([]model.Question, error) {
	var questions []model.Question
	path := "/questions?testId=" + url.QueryEscape(testID)
	if err := c.do(ctx, http.MethodGet, path, nil, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// CreateQuestion authors a new question.
func (c *CatalogClient) CreateQuestion(ctx context.Context, q model.Question) (*model.Question, error) {
	q.ID = ""
	var created model.Question
	if err := c.do(ctx, http.MethodPost, "/questions", q, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteQuestion removes a question.
func (c *CatalogClient) DeleteQuestion(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/questions/"+url.PathEscape(id), nil, nil)
}

// ListTests fetches all tests.
func (c *CatalogClient) ListTests(ctx context.Context) ([]model.Test, error) {
	var tests []model.Test
	if err := c.do(ctx, http.MethodGet, "/tests", nil, &tests); err != nil {
		return nil, err
	}
	return tests, nil
}

// CreateTest creates a test.
func (c *CatalogClient) CreateTest(ctx context.Context, t model.Test) (*model.Test, error) {
	t.ID = ""
	var created model.Test
	if err := c.do(ctx, http.MethodPost, "/tests", t, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteTest removes a test.
func (c *CatalogClient) DeleteTest(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/tests/"+url.PathEscape(id), nil, nil)
}

// ListExams fetches all scheduled exams.
func (c *CatalogClient) ListExams(ctx context.Context) ([]model.Exam, error) {
	var exams []model.Exam
	if err := c.do(ctx, http.MethodGet, "/exams", nil, &exams); err != nil {
		return nil, err
	}
	return exams, nil
}

// CreateExam schedules an exam.
func (c *CatalogClient) CreateExam(ctx context.Context, e model.Exam) (*model.Exam, error) {
	e.ID = ""
	var created model.Exam
	if err := c.do(ctx, http.MethodPost, "/exams", e, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteExam removes an exam and all of its questions.
func (c *CatalogClient) DeleteExam(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/exams/"+url.PathEscape(id), nil, nil)
}
