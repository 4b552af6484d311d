package handler

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/supplier_fte_dashboard/internal/domain"
	"github.com/locvowork/supplier_fte_dashboard/internal/service"
	"github.com/locvowork/supplier_fte_dashboard/internal/service/serviceutils"
)

type EditorHandler struct {
	svc *service.SessionService
}

// NewEditorHandler creates a new EditorHandler
func NewEditorHandler(svc *service.SessionService) *EditorHandler {
	return &EditorHandler{svc: svc}
}

// UploadHandler handles POST /api/editor/upload
func (h *EditorHandler) UploadHandler(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Missing file field", err)
	}
	src, err := file.Open()
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Failed to open uploaded file", err)
	}
	defer src.Close()

	view, err := h.svc.UploadEditor(c.Request().Context(), sessionID(c), file.Filename, src)
	if err != nil {
		return respondServiceError(c, err, "Failed to load workbook")
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Workbook uploaded successfully", view)
}

// ViewHandler handles GET /api/editor
func (h *EditorHandler) ViewHandler(c echo.Context) error {
	view, err := h.svc.Editor(c.Request().Context(), sessionID(c))
	if err != nil {
		return respondServiceError(c, err, "Failed to build editor view")
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Editor view retrieved successfully", view)
}

// GetSheetHandler handles GET /api/editor/sheets/:sheet
func (h *EditorHandler) GetSheetHandler(c echo.Context) error {
	view, err := h.svc.SelectSheet(c.Request().Context(), sessionID(c), sheetParam(c))
	if err != nil {
		return respondServiceError(c, err, "Failed to select sheet")
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Sheet retrieved successfully", view)
}

// UpdateSheetHandler handles PUT /api/editor/sheets/:sheet
func (h *EditorHandler) UpdateSheetHandler(c echo.Context) error {
	var req domain.GridUpdate
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}

	view, err := h.svc.UpdateSheet(c.Request().Context(), sessionID(c), sheetParam(c), req)
	if err != nil {
		return respondServiceError(c, err, "Failed to update sheet")
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Sheet updated successfully", view)
}

// ExportHandler handles GET /api/editor/export
func (h *EditorHandler) ExportHandler(c echo.Context) error {
	doc, err := h.svc.ExportEditor(c.Request().Context(), sessionID(c), c.QueryParam("filename"))
	if err != nil {
		return respondServiceError(c, err, "Failed to export workbook")
	}
	return serviceutils.ResponseFile(c, doc)
}

// sheetParam returns the :sheet path parameter as a sheet name. echo matches
// on the escaped path only when the request carries a RawPath, and only then
// is the value still escaped.
func sheetParam(c echo.Context) string {
	raw := c.Param("sheet")
	if c.Request().URL.RawPath == "" {
		return raw
	}
	if name, err := url.PathUnescape(raw); err == nil {
		return name
	}
	return raw
}
