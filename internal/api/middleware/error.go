package middleware

import (
	"fmt"
	"net/http"

	"heatpump-economics/internal/api/models"
	"heatpump-economics/internal/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler middleware turns panics into INTERNAL_ERROR responses
func ErrorHandler() gin.HandlerFunc {
	log := logger.WithComponent("api")
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		msg := "An unexpected error occurred"
		if s, ok := recovered.(string); ok {
			msg = s
		}
		log.WithFields(logger.Fields{
			"path":       c.Request.URL.Path,
			"request_id": c.GetString(RequestIDKey),
			"panic":      fmt.Sprint(recovered),
		}).Error("request panicked")

		c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INTERNAL_ERROR",
				Message: msg,
			},
		})
	})
}
