package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gruenhof/schoolyard-api/internal/service"
	appErrors "github.com/gruenhof/schoolyard-api/pkg/errors"
	"github.com/gruenhof/schoolyard-api/pkg/response"
)

// ActivityHandler wires HTTP endpoints to the activity service.
type ActivityHandler struct {
	service *service.ActivityService
}

// NewActivityHandler creates a new handler.
func NewActivityHandler(svc *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{service: svc}
}

// List godoc
// @Summary List the class activity feed
// @Description Return feed entries newest first
// @Tags Activities
// @Produce json
// @Param id path string true "Class ID"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /classes/{id}/activities [get]
func (h *ActivityHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	feed, err := h.service.List(c.Request.Context(), c.Param("id"), claims.UserID,
		queryInt(c, "page", 1), queryInt(c, "page_size", 0))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, feed.Activities, feed.Pagination)
}
