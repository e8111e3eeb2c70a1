package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/examhall/backend/internal/model"
	"github.com/examhall/backend/internal/remote"
	"github.com/examhall/backend/internal/response"
	"github.com/examhall/backend/internal/validator"
)

// CatalogHandler proxies the tests/exams/questions catalog store.
type CatalogHandler struct {
	catalog *remote.CatalogClient
	log     zerolog.Logger
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalog *remote.CatalogClient, log zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		log:     log.With().Str("component", "catalog_handler").Logger(),
	}
}

// failRemote maps a remote client error onto the response envelope.
func failRemote(c *gin.Context, err error, write bool) {
	var se *remote.StatusError
	if errors.As(err, &se) && se.Code == http.StatusNotFound {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	if write {
		response.Fail(c, http.StatusBadGateway, response.ErrUpstreamSave)
		return
	}
	response.Fail(c, http.StatusBadGateway, response.ErrFetchFailed)
}

// ListTests godoc
// GET /api/v1/tests
func (h *CatalogHandler) ListTests(c *gin.Context) {
	tests, err := h.catalog.ListTests(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("List tests failed")
		failRemote(c, err, false)
		return
	}
	if tests == nil {
		tests = []model.Test{}
	}
	response.Success(c, http.StatusOK, gin.H{"tests": tests})
}

// CreateTest godoc
// POST /api/v1/tests
func (h *CatalogHandler) CreateTest(c *gin.Context) {
	var req model.CreateTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	created, err := h.catalog.CreateTest(c.Request.Context(), model.Test{Name: req.Name, Level: req.Level})
	if err != nil {
		h.log.Error().Err(err).Str("name", req.Name).Msg("Create test failed")
		failRemote(c, err, true)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"test": created})
}

// DeleteTest godoc
// DELETE /api/v1/tests/:id
func (h *CatalogHandler) DeleteTest(c *gin.Context) {
	if err := h.catalog.DeleteTest(c.Request.Context(), c.Param("id")); err != nil {
		failRemote(c, err, true)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// ListExams godoc
// GET /api/v1/exams
func (h *CatalogHandler) ListExams(c *gin.Context) {
	exams, err := h.catalog.ListExams(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("List exams failed")
		failRemote(c, err, false)
		return
	}
	if exams == nil {
		exams = []model.Exam{}
	}
	response.Success(c, http.StatusOK, gin.H{"exams": exams})
}

// CreateExam godoc
// POST /api/v1/exams
func (h *CatalogHandler) CreateExam(c *gin.Context) {
	var req model.CreateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	created, err := h.catalog.CreateExam(c.Request.Context(), model.Exam{
		Name:         req.Name,
		Level:        req.Level,
		ExamDate:     req.ExamDate,
		ExamDuration: req.ExamDuration,
	})
	if err != nil {
		h.log.Error().Err(err).Str("name", req.Name).Msg("Create exam failed")
		failRemote(c, err, true)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"exam": created})
}

// DeleteExam godoc
// DELETE /api/v1/exams/:id
// Removes the exam's questions first, then the exam itself.
func (h *CatalogHandler) DeleteExam(c *gin.Context) {
	ctx := c.Request.Context()
	examID := c.Param("id")

	questions, err := h.catalog.ListQuestions(ctx, examID)
	if err == nil {
		for _, q := range questions {
			if derr := h.catalog.DeleteQuestion(ctx, q.ID); derr != nil {
				h.log.Warn().Err(derr).Str("question_id", q.ID).Msg("Orphaned question left behind")
			}
		}
	}

	if err := h.catalog.DeleteExam(ctx, examID); err != nil {
		failRemote(c, err, true)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// ListQuestions godoc
// GET /api/v1/questions?testId={id}
func (h *CatalogHandler) ListQuestions(c *gin.Context) {
	testID := c.Query("testId")
	if testID == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	questions, err := h.catalog.ListQuestions(c.Request.Context(), testID)
	if err != nil {
		h.log.Error().Err(err).Str("test_id", testID).Msg("List questions failed")
		failRemote(c, err, false)
		return
	}
	if questions == nil {
		questions = []model.Question{}
	}
	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// CreateQuestion godoc
// POST /api/v1/questions
func (h *CatalogHandler) CreateQuestion(c *gin.Context) {
	var req model.CreateQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	if req.CorrectIndex >= len(req.Options) {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"correctIndex": "must point into options"})
		return
	}

	created, err := h.catalog.CreateQuestion(c.Request.Context(), model.Question{
		TestID:       req.TestID,
		Prompt:       req.Prompt,
		Options:      req.Options,
		CorrectIndex: req.CorrectIndex,
	})
	if err != nil {
		h.log.Error().Err(err).Str("test_id", req.TestID).Msg("Create question failed")
		failRemote(c, err, true)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"question": created})
}
