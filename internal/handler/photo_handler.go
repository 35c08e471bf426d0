package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/gruenhof/schoolyard-api/pkg/errors"
	"github.com/gruenhof/schoolyard-api/pkg/response"
	"github.com/gruenhof/schoolyard-api/pkg/storage"
)

// PhotoHandler serves submission photos through signed, expiring tokens.
// The route is unauthenticated; the token itself carries the grant.
type PhotoHandler struct {
	store  *storage.LocalStorage
	signer *storage.SignedURLSigner
}

// NewPhotoHandler creates a new handler.
func NewPhotoHandler(store *storage.LocalStorage, signer *storage.SignedURLSigner) *PhotoHandler {
	return &PhotoHandler{store: store, signer: signer}
}

// Serve godoc
// @Summary Download a submission photo
// @Description Stream the photo referenced by a signed token
// @Tags Photos
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /photos/{token} [get]
func (h *PhotoHandler) Serve(c *gin.Context) {
	_, relPath, _, err := h.signer.Parse(c.Param("token"))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid or expired photo token"))
		return
	}

	file, err := h.store.Open(relPath)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "photo not found"))
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat photo"))
		return
	}

	c.DataFromReader(http.StatusOK, info.Size(), "application/octet-stream", file, nil)
}
