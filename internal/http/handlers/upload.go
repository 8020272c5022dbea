package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/studyforge-backend/internal/http/response"
	"github.com/yungbote/studyforge-backend/internal/services"
)

type UploadHandler struct {
	uploads  services.UploadService
	maxBytes int64
	// notify wakes the upload worker; nil is fine.
	notify func()
}

func NewUploadHandler(uploads services.UploadService, maxBytes int64, notify func()) *UploadHandler {
	return &UploadHandler{uploads: uploads, maxBytes: maxBytes, notify: notify}
}

// POST /api/uploads (multipart, field "file")
func (h *UploadHandler) CreateUpload(c *gin.Context) {
	uid, ok := caller(c)
	if !ok {
		return
	}
	if h.maxBytes > 0 {
		// Headroom for multipart framing; the store enforces the exact cap.
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+1<<20)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_file", errors.New("multipart field \"file\" is required"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_file", err)
		return
	}
	defer f.Close()

	u, err := h.uploads.CreateUpload(c.Request.Context(), uid, fh.Filename, f)
	if err != nil {
		response.RespondServiceError(c, err, "upload_failed")
		return
	}
	if h.notify != nil {
		h.notify()
	}
	response.RespondCreated(c, gin.H{"upload": u})
}

// GET /api/uploads/:id
func (h *UploadHandler) GetUpload(c *gin.Context) {
	uid, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	detail, err := h.uploads.GetUpload(c.Request.Context(), uid, id)
	if err != nil {
		response.RespondServiceError(c, err, "upload_lookup_failed")
		return
	}
	response.RespondOK(c, detail)
}

// GET /api/uploads/:id/chapters
func (h *UploadHandler) ListChapters(c *gin.Context) {
	uid, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	chapters, err := h.uploads.ListChapters(c.Request.Context(), uid, id)
	if err != nil {
		response.RespondServiceError(c, err, "chapter_list_failed")
		return
	}
	response.RespondOK(c, gin.H{"chapters": chapters})
}

// DELETE /api/chapters/:id
func (h *UploadHandler) DeleteChapter(c *gin.Context) {
	uid, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.uploads.DeleteChapter(c.Request.Context(), uid, id); err != nil {
		response.RespondServiceError(c, err, "chapter_delete_failed")
		return
	}
	c.Status(http.StatusNoContent)
}
