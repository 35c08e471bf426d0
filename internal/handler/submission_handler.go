package handler

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/gruenhof/schoolyard-api/internal/models"
	"github.com/gruenhof/schoolyard-api/internal/service"
	"github.com/gruenhof/schoolyard-api/pkg/config"
	appErrors "github.com/gruenhof/schoolyard-api/pkg/errors"
	"github.com/gruenhof/schoolyard-api/pkg/response"
	"github.com/gruenhof/schoolyard-api/pkg/storage"
)

// SubmissionHandler wires HTTP endpoints to the submission service.
type SubmissionHandler struct {
	service *service.SubmissionService
	signer  *storage.SignedURLSigner
	photos  config.PhotosConfig
}

// NewSubmissionHandler creates a new handler.
func NewSubmissionHandler(svc *service.SubmissionService, signer *storage.SignedURLSigner, photos config.PhotosConfig) *SubmissionHandler {
	return &SubmissionHandler{service: svc, signer: signer, photos: photos}
}

// Accept godoc
// @Summary Accept a mission
// @Description Create a pending submission for the authenticated student
// @Tags Submissions
// @Produce json
// @Param id path string true "Mission ID"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /missions/{id}/submissions [post]
func (h *SubmissionHandler) Accept(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	sub, err := h.service.Accept(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, sub)
}

// List godoc
// @Summary List submissions
// @Description Students see their own submissions, teachers the whole class
// @Tags Submissions
// @Produce json
// @Param class_id query string true "Class ID"
// @Param mission_id query string false "Mission ID"
// @Param status query string false "Status filter"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /submissions [get]
func (h *SubmissionHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter := models.SubmissionFilter{
		ClassID:   c.Query("class_id"),
		MissionID: c.Query("mission_id"),
		Status:    models.SubmissionStatus(c.Query("status")),
		Page:      queryInt(c, "page", 1),
		PageSize:  queryInt(c, "page_size", 20),
	}

	subs, pagination, err := h.service.List(c.Request.Context(), claims.UserID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subs, pagination)
}

// Get godoc
// @Summary Get a submission
// @Tags Submissions
// @Produce json
// @Param id path string true "Submission ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /submissions/{id} [get]
func (h *SubmissionHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	sub, err := h.service.Get(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sub, nil)
}

// UploadPhoto godoc
// @Summary Attach a proof photo
// @Description Upload a photo for a pending submission owned by the caller
// @Tags Submissions
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Submission ID"
// @Param photo formData file true "Photo file"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /submissions/{id}/photo [post]
func (h *SubmissionHandler) UploadPhoto(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "photo file is required"))
		return
	}
	if h.photos.MaxFileSizeBytes > 0 && fileHeader.Size > h.photos.MaxFileSizeBytes {
		msg := fmt.Sprintf("photo exceeds the %d byte limit", h.photos.MaxFileSizeBytes)
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, msg))
		return
	}
	if !h.mimeAllowed(fileHeader.Header.Get("Content-Type")) {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unsupported photo content type"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return
	}
	defer file.Close()

	filename := filepath.Base(fileHeader.Filename)
	sub, err := h.service.AttachPhoto(c.Request.Context(), c.Param("id"), claims.UserID, filename, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sub, nil)
}

// PhotoURL godoc
// @Summary Get a signed photo URL
// @Description Return a short-lived download link for the submission photo
// @Tags Submissions
// @Produce json
// @Param id path string true "Submission ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /submissions/{id}/photo [get]
func (h *SubmissionHandler) PhotoURL(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	sub, err := h.service.Get(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if sub.PhotoURL == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "submission has no photo"))
		return
	}

	token, expiresAt, err := h.signer.Generate(sub.ID, *sub.PhotoURL)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign photo url"))
		return
	}

	response.JSON(c, http.StatusOK, gin.H{
		"url":        "/photos/" + token,
		"expires_at": expiresAt,
	}, nil)
}

// Review godoc
// @Summary Review a submission
// @Description Approve or reject a pending submission; approval rewards the mascot
// @Tags Submissions
// @Accept json
// @Produce json
// @Param id path string true "Submission ID"
// @Param payload body service.ReviewRequest true "Review decision"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /submissions/{id}/review [post]
func (h *SubmissionHandler) Review(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid review payload"))
		return
	}

	result, err := h.service.Review(c.Request.Context(), c.Param("id"), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

func (h *SubmissionHandler) mimeAllowed(contentType string) bool {
	if len(h.photos.AllowedMIMEs) == 0 {
		return true
	}
	for _, allowed := range h.photos.AllowedMIMEs {
		if contentType == allowed {
			return true
		}
	}
	return false
}
