package job

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rohanmehta-dev/finqueue/common"
	"github.com/rohanmehta-dev/finqueue/internal/config"
	"github.com/rohanmehta-dev/finqueue/internal/dto"
	"github.com/rohanmehta-dev/finqueue/middleware"
)

type JobHandler struct {
	service JobServiceInterface
}

func NewJobHandler(s JobServiceInterface) *JobHandler {
	return &JobHandler{service: s}
}

var _ JobHandlerInterface = (*JobHandler)(nil)

// Create handles POST /jobs/create. The response carries the new job's
// identity and status, never the payload.
func (h *JobHandler) Create(c *gin.Context) {
	var req dto.JobCreateDTO

	if !middleware.Bind(c, &req) {
		c.Abort()
		return
	}

	summary, err := h.service.Enqueue(c.Request.Context(), &req, config.ActorAPI)
	if err != nil {
		c.Error(mapDomainError(err))
		c.Abort()
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":         summary.ID,
		"status":     summary.Status,
		"created_at": summary.CreatedAt,
	})
}

// Get handles GET /jobs/:id.
func (h *JobHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	summary, err := h.service.GetJobByID(c.Request.Context(), id)
	if err != nil {
		c.Error(mapDomainError(err))
		return
	}

	c.JSON(http.StatusOK, summary)
}

// Replay handles PUT /jobs/:id/replay. Execution happens synchronously,
// so a 200 means the replayed job already ran.
func (h *JobHandler) Replay(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.Replay(c.Request.Context(), id, config.ActorAPI); err != nil {
		c.Error(mapDomainError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "job replayed"})
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id < 1 {
		c.Error(common.Errf(http.StatusBadRequest, "invalid job id"))
		return 0, false
	}
	return uint(id), true
}

// mapDomainError translates domain errors into API errors. Anything
// unrecognized becomes a 500 without leaking internals.
func mapDomainError(err error) error {
	var apiErr common.APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	switch {
	case errors.Is(err, common.ErrNotFound):
		return common.Errf(http.StatusNotFound, "job not found")
	case errors.Is(err, common.ErrInvalidState):
		return common.Errf(http.StatusBadRequest, "%s", common.ErrInvalidState.Error())
	case errors.Is(err, common.ErrInvalidPayload):
		return common.Errf(http.StatusBadRequest, "%s", err.Error())
	}

	return common.Errf(http.StatusInternalServerError, "internal server error")
}
