package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSON writes a JSON response with the given status.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// OK writes a 200 OK JSON response.
func OK(c *gin.Context, payload interface{}) {
	JSON(c, http.StatusOK, payload)
}

// Created writes a 201 response.
func Created(c *gin.Context, payload interface{}) {
	JSON(c, http.StatusCreated, payload)
}

// Message writes {"message": msg, key: value}, the shape used by mutating endpoints.
func Message(c *gin.Context, status int, msg, key string, value interface{}) {
	body := gin.H{"message": msg}
	if key != "" {
		body[key] = value
	}
	JSON(c, status, body)
}
