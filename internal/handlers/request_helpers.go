package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// dbContext is the per-operation deadline for storage calls.
func dbContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

// handlePanic converts a handler panic into a 500 envelope instead of
// letting the request die mid-write.
func handlePanic(c *gin.Context, tag string) {
	if r := recover(); r != nil {
		logrus.WithFields(logrus.Fields{
			"handler":   tag,
			"panic":     r,
			"requestId": c.GetString("requestId"),
		}).Error("recovered from panic")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "internal server error",
		})
	}
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// respondBindingError renders validator failures field-by-field; anything
// else falls back to a plain 400.
func respondBindingError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make([]string, 0, len(validationErrors))
		for _, fieldError := range validationErrors {
			details = append(details, fieldError.Field()+" failed on "+fieldError.Tag())
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation failed",
			"details": details,
		})
		return
	}
	respondError(c, http.StatusBadRequest, "invalid request body")
}

// withRetries runs op up to attempts times, sleeping delay between
// failures, and returns the last error when every attempt fails.
func withRetries(attempts int, delay time.Duration, op func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = op(); err == nil {
			return nil
		}
		if i < attempts-1 {
			time.Sleep(delay)
		}
	}
	return err
}

func logHandlerError(c *gin.Context, tag string, err error) {
	logrus.WithFields(logrus.Fields{
		"handler":   tag,
		"requestId": c.GetString("requestId"),
	}).WithError(err).Error("handler error")
}
