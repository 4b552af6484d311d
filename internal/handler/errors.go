package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/supplier_fte_dashboard/internal/domain"
	"github.com/locvowork/supplier_fte_dashboard/internal/service/serviceutils"
	"github.com/locvowork/supplier_fte_dashboard/pkg/simpleexcel"
)

const msgInvalidWorkbook = "Il file caricato non è un file Excel (.xlsx) valido."

// respondServiceError maps service errors to HTTP answers. fallback is the
// message used for unexpected failures.
func respondServiceError(c echo.Context, err error, fallback string) error {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return serviceutils.ResponseError(c, http.StatusUnprocessableEntity, verr.Message, err)
	case errors.Is(err, simpleexcel.ErrInvalidWorkbook):
		return serviceutils.ResponseError(c, http.StatusBadRequest, msgInvalidWorkbook, err)
	case errors.Is(err, domain.ErrNoUpload):
		return serviceutils.ResponseError(c, http.StatusNotFound, "No file uploaded yet", err)
	case errors.Is(err, domain.ErrSheetNotFound):
		return serviceutils.ResponseError(c, http.StatusNotFound, "Sheet not found", err)
	case errors.Is(err, domain.ErrNoSession):
		return serviceutils.ResponseError(c, http.StatusNotFound, "Session not found", err)
	case errors.Is(err, domain.ErrEmptySelection):
		return serviceutils.ResponseError(c, http.StatusConflict, domain.MsgEmptySelection, nil)
	default:
		return serviceutils.ResponseError(c, http.StatusInternalServerError, fallback, err)
	}
}
