package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/laucv/gcuest-api/internal/models"
	"github.com/laucv/gcuest-api/internal/service"
	appErrors "github.com/laucv/gcuest-api/pkg/errors"
	"github.com/laucv/gcuest-api/pkg/response"
)

// QuestionHandler wires the cuestiones endpoints to the question service.
type QuestionHandler struct {
	service *service.QuestionService
}

// NewQuestionHandler creates a new handler.
func NewQuestionHandler(svc *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{service: svc}
}

// List returns the questions visible to the caller. Admins see all,
// everyone else the questions they created.
func (h *QuestionHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	cuestiones, err := h.service.List(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, models.NewCuestionesList(cuestiones))
}

// Get returns a single question by id. Any authenticated caller.
func (h *QuestionHandler) Get(c *gin.Context) {
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

	cuestion, err := h.service.Get(c.Request.Context(), claims, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, cuestion.Envelope())
}

// Create registers a new question. Teachers only.
func (h *QuestionHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreateCuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.ErrBadRequest)
		return
	}

	cuestion, err := h.service.Create(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, cuestion.Envelope())
}

// Update applies a partial update and answers 209 with the updated
// resource.
func (h *QuestionHandler) Update(c *gin.Context) {
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

	var req service.UpdateCuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.ErrBadRequest)
		return
	}

	cuestion, err := h.service.Update(c.Request.Context(), claims, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.ContentReturned(c, cuestion.Envelope())
}

// Delete removes a question and its category links.
func (h *QuestionHandler) Delete(c *gin.Context) {
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

// OptionsCollection advertises the methods of the questions collection.
func (h *QuestionHandler) OptionsCollection(c *gin.Context) {
	c.Header("Allow", "GET, POST")
	c.Status(http.StatusOK)
}

// OptionsItem advertises the methods of a single question resource.
func (h *QuestionHandler) OptionsItem(c *gin.Context) {
	c.Header("Allow", "GET, PUT, DELETE")
	c.Status(http.StatusOK)
}
