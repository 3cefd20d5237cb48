package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/laucv/gcuest-api/internal/models"
	"github.com/laucv/gcuest-api/internal/service"
	appErrors "github.com/laucv/gcuest-api/pkg/errors"
	"github.com/laucv/gcuest-api/pkg/response"
)

// LoginHandler wires the login endpoint to the auth service.
type LoginHandler struct {
	service *service.AuthService
}

// NewLoginHandler creates a new handler.
func NewLoginHandler(svc *service.AuthService) *LoginHandler {
	return &LoginHandler{service: svc}
}

// Login authenticates a user by username and password and returns a
// signed access token. The token is also exposed through the X-Token
// response header. Unknown users and bad passwords are indistinguishable
// from the outside.
func (h *LoginHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.ErrNotFound)
		return
	}

	res, _, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("X-Token", res.Token)
	response.JSON(c, http.StatusOK, res)
}
