package handler

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/examhall/backend/internal/model"
	"github.com/examhall/backend/internal/remote"
	"github.com/examhall/backend/internal/response"
)

// ResultHandler serves the exam result aggregates.
type ResultHandler struct {
	results *remote.ResultClient
	log     zerolog.Logger
}

// NewResultHandler creates a new ResultHandler.
func NewResultHandler(results *remote.ResultClient, log zerolog.Logger) *ResultHandler {
	return &ResultHandler{
		results: results,
		log:     log.With().Str("component", "result_handler").Logger(),
	}
}

// List godoc
// GET /api/v1/results
// Returns every aggregate with each results list sorted by mark descending.
func (h *ResultHandler) List(c *gin.Context) {
	aggregates, err := h.results.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("List results failed")
		failRemote(c, err, false)
		return
	}

	for i := range aggregates {
		results := aggregates[i].Results
		sort.SliceStable(results, func(a, b int) bool {
			return results[a].Mark > results[b].Mark
		})
	}
	if aggregates == nil {
		aggregates = []model.ExamResultAggregate{}
	}

	response.Success(c, http.StatusOK, gin.H{"results": aggregates})
}

// DeleteAggregate godoc
// DELETE /api/v1/results/:id
func (h *ResultHandler) DeleteAggregate(c *gin.Context) {
	if err := h.results.Delete(c.Request.Context(), c.Param("id")); err != nil {
		failRemote(c, err, true)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// RemoveParticipant godoc
// DELETE /api/v1/results/:id/participants/:index
// Drops one participant from an aggregate via a full-record replace — the
// store has no partial update.
func (h *ResultHandler) RemoveParticipant(c *gin.Context) {
	ctx := c.Request.Context()
	aggregateID := c.Param("id")

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	aggregates, err := h.results.List(ctx)
	if err != nil {
		failRemote(c, err, false)
		return
	}

	var target *model.ExamResultAggregate
	for i := range aggregates {
		if aggregates[i].ID == aggregateID {
			target = &aggregates[i]
			break
		}
	}
	if target == nil || index >= len(target.Results) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	target.Results = append(target.Results[:index], target.Results[index+1:]...)
	if err := h.results.Replace(ctx, target.ID, *target); err != nil {
		failRemote(c, err, true)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": target})
}
