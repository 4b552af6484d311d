package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/supplier_fte_dashboard/internal/domain"
	"github.com/locvowork/supplier_fte_dashboard/internal/service"
	"github.com/locvowork/supplier_fte_dashboard/internal/service/serviceutils"
)

type ConsolidatedHandler struct {
	svc *service.SessionService
}

// NewConsolidatedHandler creates a new ConsolidatedHandler
func NewConsolidatedHandler(svc *service.SessionService) *ConsolidatedHandler {
	return &ConsolidatedHandler{svc: svc}
}

// UploadHandler handles POST /api/consolidated/upload
func (h *ConsolidatedHandler) UploadHandler(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Missing file field", err)
	}
	src, err := file.Open()
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Failed to open uploaded file", err)
	}
	defer src.Close()

	view, err := h.svc.UploadConsolidated(c.Request().Context(), sessionID(c), file.Filename, src, c.FormValue("status_column"))
	if err != nil {
		return respondServiceError(c, err, "Failed to analyse consolidated report")
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Consolidated report uploaded successfully", view)
}

// ViewHandler handles GET /api/consolidated/view
func (h *ConsolidatedHandler) ViewHandler(c echo.Context) error {
	view, err := h.svc.Consolidated(c.Request().Context(), sessionID(c), c.QueryParam("status_column"))
	if err != nil {
		return respondServiceError(c, err, "Failed to analyse consolidated report")
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Consolidated view retrieved successfully", view)
}

// ExportHandler handles GET /api/consolidated/export/:kind
func (h *ConsolidatedHandler) ExportHandler(c echo.Context) error {
	kind := domain.ExportKind(c.Param("kind"))
	switch kind {
	case domain.ExportAnalysisWorkbook, domain.ExportSelectionWorkbook, domain.ExportSelectionPDF:
	default:
		return serviceutils.ResponseError(c, http.StatusNotFound, "Unknown export", nil)
	}

	doc, err := h.svc.ExportConsolidated(c.Request().Context(), sessionID(c), kind, c.QueryParam("filename"), c.QueryParam("status_column"))
	if err != nil {
		return respondServiceError(c, err, "Failed to export consolidated report")
	}
	return serviceutils.ResponseFile(c, doc)
}
