package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/laucv/gcuest-api/internal/middleware"
	"github.com/laucv/gcuest-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// pathID parses a numeric path parameter. A non-numeric value behaves
// like a path that matches no resource.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 0 {
		return 0, false
	}
	return id, true
}
