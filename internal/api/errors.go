package api

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/hypernova-labs/fattura-service/internal/models"
	"github.com/hypernova-labs/fattura-service/internal/services"
	"github.com/sirupsen/logrus"
)

// respondError maps a service error to its HTTP status and writes {"error": msg}.
// Unknown errors are logged with a stack trace and hidden from the client.
func (api *API) respondError(c *gin.Context, err error) {
	var svcErr *services.Error
	message := models.InternalErrorMessage
	if errors.As(err, &svcErr) {
		message = svcErr.Message
	}

	switch {
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(message))
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, models.NewErrorResponse(message))
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, models.NewErrorResponse(message))
	case errors.Is(err, services.ErrRender):
		api.logger.WithFields(logrus.Fields{
			"path":  c.Request.URL.Path,
			"error": err.Error(),
		}).Error("Invoice document render failed")
		c.JSON(http.StatusInternalServerError, models.NewErrorResponse(message))
	case errors.Is(err, services.ErrDelivery):
		c.JSON(http.StatusBadGateway, models.NewErrorResponse(message))
	default:
		api.logger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"error":  err.Error(),
			"stack":  string(debug.Stack()),
		}).Error("Unhandled error")
		c.JSON(http.StatusInternalServerError, models.NewErrorResponse(models.InternalErrorMessage))
	}
}

// recoverPanic is the gin recovery handler
func (api *API) recoverPanic(c *gin.Context, recovered any) {
	api.logger.WithFields(logrus.Fields{
		"method":    c.Request.Method,
		"path":      c.Request.URL.Path,
		"recovered": recovered,
		"stack":     string(debug.Stack()),
	}).Error("Recovered from panic")
	c.AbortWithStatusJSON(http.StatusInternalServerError, models.NewErrorResponse(models.InternalErrorMessage))
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, models.NewErrorResponse(message))
}
