package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"discovery-backend/models"
	"discovery-backend/pipeline"
	"discovery-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DiscoveryHandler handles HTTP requests for discovery assembly
type DiscoveryHandler struct {
	discoveryService *service.DiscoveryService
}

// NewDiscoveryHandler creates a new discovery handler
func NewDiscoveryHandler(discoveryService *service.DiscoveryService) *DiscoveryHandler {
	return &DiscoveryHandler{
		discoveryService: discoveryService,
	}
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// respondPipelineError maps case validation errors to 422 and everything else to status
func respondPipelineError(c *gin.Context, err error, status int, code string) {
	var ve *pipeline.ValidationError
	switch {
	case errors.As(err, &ve):
		respondError(c, http.StatusUnprocessableEntity, "INVALID_CASE", ve.Error())
	case errors.Is(err, service.ErrServiceNotAvailable):
		respondError(c, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", err.Error())
	default:
		respondError(c, status, code, err.Error())
	}
}

// GenerateDiscovery handles POST /api/cases/:id/discovery
func (h *DiscoveryHandler) GenerateDiscovery(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid case ID format")
		return
	}

	// Create job (synchronous, fast)
	result, err := h.discoveryService.GenerateDiscovery(c.Request.Context(), service.GenerateDiscoveryRequest{CaseID: id})
	if err != nil {
		if errors.Is(err, service.ErrCaseNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Case not found")
			return
		}
		respondPipelineError(c, err, http.StatusInternalServerError, "GENERATION_FAILED")
		return
	}

	// Background context so the run outlives the request
	go func() {
		if err := h.discoveryService.ProcessDiscovery(context.Background(), result.JobID); err != nil {
			log.Printf("Discovery job %s failed: %v", result.JobID, err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"data": gin.H{
			"job_id":  result.JobID,
			"status":  models.JobStatusPending,
			"message": "Discovery job created. Poll /api/jobs/:id for updates.",
		},
	})
}

// GetJobStatus handles GET /api/jobs/:id
func (h *DiscoveryHandler) GetJobStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid job ID format")
		return
	}

	result, err := h.discoveryService.GetJobStatus(c.Request.Context(), service.GetJobStatusRequest{JobID: id})
	if err != nil {
		if errors.Is(err, service.ErrJobNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Discovery job not found")
			return
		}
		respondPipelineError(c, err, http.StatusInternalServerError, "RETRIEVAL_FAILED")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result.Job,
	})
}

// PreviewDiscovery handles POST /api/discovery/preview. The body is a case
// with its parties; nothing is stored.
func (h *DiscoveryHandler) PreviewDiscovery(c *gin.Context) {
	var req models.Case
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	result, err := h.discoveryService.PreviewDiscovery(c.Request.Context(), service.PreviewDiscoveryRequest{Case: &req})
	if err != nil {
		respondPipelineError(c, err, http.StatusInternalServerError, "PREVIEW_FAILED")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}
