package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/laucv/gcuest-api/pkg/errors"
)

// StatusContentReturned is the non-standard status used for successful
// updates that return the updated resource body. Part of the API contract.
const StatusContentReturned = 209

// JSON sends a success response with the given payload.
func JSON(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data)
}

// ContentReturned responds with 209 and the updated resource.
func ContentReturned(c *gin.Context, data interface{}) {
	JSON(c, StatusContentReturned, data)
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error converts the error to the structured `{code, message}` body.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.JSON(appErr.Code, appErr)
}
