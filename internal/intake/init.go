package intake

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/revops/intake-service/internal/system/constants"
)

// Initialize sets up the intake module and registers its routes
func Initialize(router gin.IRouter, store IntakeStore, forwarder TicketForwarder, sink AttachmentSink,
	logger *logrus.Logger, maxUploadBytes int64) IntakeService {
	service := NewIntakeService(store, forwarder, sink, logger)
	handler := newIntakeHandler(service, logger, maxUploadBytes)

	registerRoutes(router, handler)

	return service
}

// registerRoutes registers all intake routes
func registerRoutes(router gin.IRouter, handler *intakeHandler) {
	router.GET("/health", handler.health)

	// POST /submit - Intake form submission
	router.POST("/submit", handler.submit)

	api := router.Group(constants.APIBasePath)
	{
		api.GET("/intake", handler.listRequests)
		api.GET("/intake/:id", handler.getRequest)
		api.PUT("/intake/:id", handler.updateStatus)
		api.DELETE("/intake/:id", handler.deleteRequest)

		api.GET("/export", handler.export)
		api.GET("/backlog", handler.backlog)
	}
}
