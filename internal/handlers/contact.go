package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type contactInput struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message" binding:"required"`
}

// Contact validates and records a storefront contact request. Delivery is
// a log line for now; the frontend only needs the acknowledgment.
func Contact() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "Contact")

		var input contactInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindingError(c, err)
			return
		}

		logrus.WithFields(logrus.Fields{
			"name":  input.Name,
			"email": input.Email,
		}).Info("contact request received")

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "thanks for reaching out, we will get back to you soon",
		})
	}
}
