package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/laucv/gcuest-api/internal/models"
	"github.com/laucv/gcuest-api/internal/service"
	appErrors "github.com/laucv/gcuest-api/pkg/errors"
	"github.com/laucv/gcuest-api/pkg/response"
)

// UserHandler wires the usuarios endpoints to the user service.
type UserHandler struct {
	service *service.UserService
}

// NewUserHandler creates a new handler.
func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{service: svc}
}

// List returns the users visible to the caller. Admins see every user,
// everyone else only their own record.
func (h *UserHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	usuarios, err := h.service.List(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, models.NewUsuariosList(usuarios))
}

// Get returns a single user by id.
func (h *UserHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		response.Error(c, appErrors.ErrNotFound)
		return
	}

	usuario, err := h.service.Get(c.Request.Context(), claims, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, usuario.Envelope())
}

// GetByUsername answers the anonymous username-existence probe with an
// empty 204 when the user exists.
func (h *UserHandler) GetByUsername(c *gin.Context) {
	username := c.Param("username")
	if err := h.service.UsernameExists(c.Request.Context(), username); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Create registers a new user. Admin only.
func (h *UserHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreateUsuarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.ErrUnprocessableEntity)
		return
	}

	usuario, err := h.service.Create(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, usuario.Envelope())
}

// Update applies a partial update and answers 209 with the updated
// resource.
func (h *UserHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		response.Error(c, appErrors.ErrNotFound)
		return
	}

	var req service.UpdateUsuarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.ErrBadRequest)
		return
	}

	usuario, err := h.service.Update(c.Request.Context(), claims, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.ContentReturned(c, usuario.Envelope())
}

// Delete removes a user.
func (h *UserHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		response.Error(c, appErrors.ErrNotFound)
		return
	}

	if err := h.service.Delete(c.Request.Context(), claims, id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// OptionsCollection advertises the methods of the users collection.
func (h *UserHandler) OptionsCollection(c *gin.Context) {
	c.Header("Allow", "GET, POST")
	c.Status(http.StatusOK)
}

// OptionsItem advertises the methods of a single user resource.
func (h *UserHandler) OptionsItem(c *gin.Context) {
	c.Header("Allow", "GET, PUT, DELETE")
	c.Status(http.StatusOK)
}
