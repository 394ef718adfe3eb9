package handlers

import (
	"errors"
	"net/http"

	"discovery-backend/models"
	"discovery-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CaseHandler handles HTTP requests for cases
type CaseHandler struct {
	caseService *service.CaseService
}

// NewCaseHandler creates a new case handler
func NewCaseHandler(caseService *service.CaseService) *CaseHandler {
	return &CaseHandler{
		caseService: caseService,
	}
}

// CreateCase handles POST /api/cases
func (h *CaseHandler) CreateCase(c *gin.Context) {
	var req models.Case
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	result, err := h.caseService.CreateCase(c.Request.Context(), service.CreateCaseRequest{Case: &req})
	if err != nil {
		if errors.Is(err, service.ErrInvalidCase) {
			respondError(c, http.StatusUnprocessableEntity, "INVALID_CASE", err.Error())
			return
		}
		respondPipelineError(c, err, http.StatusInternalServerError, "CREATE_FAILED")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    result.Case,
	})
}

// GetCase handles GET /api/cases/:id
func (h *CaseHandler) GetCase(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid case ID format")
		return
	}

	result, err := h.caseService.GetCase(c.Request.Context(), service.GetCaseRequest{ID: id})
	if err != nil {
		if errors.Is(err, service.ErrCaseNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Case not found")
			return
		}
		respondPipelineError(c, err, http.StatusInternalServerError, "RETRIEVAL_FAILED")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result.Case,
	})
}
