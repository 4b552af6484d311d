package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/locvowork/supplier_fte_dashboard/internal/service"
)

// RegisterRoutes mounts the dashboard API under /api.
func RegisterRoutes(e *echo.Echo, svc *service.SessionService) {
	sessionHandler := NewSessionHandler(svc)
	editorHandler := NewEditorHandler(svc)
	consolidatedHandler := NewConsolidatedHandler(svc)

	api := e.Group("/api", SessionMiddleware(svc))
	api.GET("/workflows", sessionHandler.WorkflowsHandler)
	api.DELETE("/session", sessionHandler.EndHandler)

	editorGroup := api.Group("/editor")
	editorGroup.GET("", editorHandler.ViewHandler)
	editorGroup.POST("/upload", editorHandler.UploadHandler)
	editorGroup.GET("/sheets/:sheet", editorHandler.GetSheetHandler)
	editorGroup.PUT("/sheets/:sheet", editorHandler.UpdateSheetHandler)
	editorGroup.GET("/export", editorHandler.ExportHandler)

	consolidatedGroup := api.Group("/consolidated")
	consolidatedGroup.POST("/upload", consolidatedHandler.UploadHandler)
	consolidatedGroup.GET("/view", consolidatedHandler.ViewHandler)
	consolidatedGroup.GET("/export/:kind", consolidatedHandler.ExportHandler)
}
