package serviceutils

import (
	"mime"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/supplier_fte_dashboard/internal/domain"
	"github.com/locvowork/supplier_fte_dashboard/internal/logger"
)

// Response is the JSON envelope of every API answer.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func ResponseSuccess(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, Response{Success: true, Message: message, Data: data})
}

// ResponseError answers with message. Server errors are logged with the
// underlying cause; only client errors expose it.
func ResponseError(c echo.Context, status int, message string, err error) error {
	resp := Response{Success: false, Message: message}
	if status >= http.StatusInternalServerError {
		logger.ErrorLog(c.Request().Context(), message, err)
	} else if err != nil {
		resp.Error = err.Error()
	}
	return c.JSON(status, resp)
}

// ResponseFile streams a generated document as an attachment.
func ResponseFile(c echo.Context, doc domain.Document) error {
	header := c.Response().Header()
	header.Set(echo.HeaderContentType, doc.ContentType)
	header.Set(echo.HeaderContentDisposition, mime.FormatMediaType("attachment", map[string]string{"filename": doc.Name}))
	header.Set(echo.HeaderContentLength, strconv.Itoa(len(doc.Data)))
	c.Response().WriteHeader(http.StatusOK)

	_, err := c.Response().Write(doc.Data)
	return err
}
