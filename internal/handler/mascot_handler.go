package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gruenhof/schoolyard-api/internal/service"
	appErrors "github.com/gruenhof/schoolyard-api/pkg/errors"
	"github.com/gruenhof/schoolyard-api/pkg/response"
)

// MascotHandler wires HTTP endpoints to the mascot service.
type MascotHandler struct {
	service *service.MascotService
}

// NewMascotHandler creates a new handler.
func NewMascotHandler(svc *service.MascotService) *MascotHandler {
	return &MascotHandler{service: svc}
}

// Get godoc
// @Summary Get the class mascot
// @Description Return the mascot with stat decay applied up to now
// @Tags Mascot
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /classes/{id}/mascot [get]
func (h *MascotHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	mascot, err := h.service.Get(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mascot, nil)
}
