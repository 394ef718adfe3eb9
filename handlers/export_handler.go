package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"discovery-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ExportHandler handles HTTP requests for stored discovery exports
type ExportHandler struct {
	discoveryService *service.DiscoveryService
}

// NewExportHandler creates a new export handler
func NewExportHandler(discoveryService *service.DiscoveryService) *ExportHandler {
	return &ExportHandler{
		discoveryService: discoveryService,
	}
}

// ListExports handles GET /api/cases/:id/exports
func (h *ExportHandler) ListExports(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid case ID format")
		return
	}

	result, err := h.discoveryService.ListExports(c.Request.Context(), service.ListExportsRequest{CaseID: id})
	if err != nil {
		respondPipelineError(c, err, http.StatusInternalServerError, "RETRIEVAL_FAILED")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result.Exports,
	})
}

// GetExport handles GET /api/exports/:id
func (h *ExportHandler) GetExport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid export ID format")
		return
	}

	export, reader, err := h.discoveryService.OpenExport(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrExportNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Export not found")
			return
		}
		respondPipelineError(c, err, http.StatusInternalServerError, "DOWNLOAD_FAILED")
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	c.DataFromReader(http.StatusOK, export.Size, export.MimeType, reader, nil)
}
