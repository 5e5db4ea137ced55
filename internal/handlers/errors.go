package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

var errorMessages = map[int]string{
	http.StatusBadRequest:          "bad request",
	http.StatusNotFound:            "resource not found",
	http.StatusMethodNotAllowed:    "method not allowed",
	http.StatusUnprocessableEntity: "unprocessable",
	http.StatusInternalServerError: "internal server error",
}

// respondError aborts with the {"success": false, "error", "message"} body.
func respondError(c *gin.Context, status int) {
	message, ok := errorMessages[status]
	if !ok {
		message = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error":   status,
		"message": message,
	})
}

// NotFound handles unmatched routes.
func NotFound(c *gin.Context) {
	respondError(c, http.StatusNotFound)
}

// MethodNotAllowed handles known routes hit with an unsupported method.
func MethodNotAllowed(c *gin.Context) {
	respondError(c, http.StatusMethodNotAllowed)
}
