package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/studyforge-backend/internal/http/response"
	"github.com/yungbote/studyforge-backend/internal/services"
)

type AttemptHandler struct {
	attempts services.AttemptService
}

func NewAttemptHandler(attempts services.AttemptService) *AttemptHandler {
	return &AttemptHandler{attempts: attempts}
}

type attemptRequest struct {
	Answer        *string `json:"answer" binding:"required"`
	ExamSessionID *uint   `json:"exam_session_id"`
}

// POST /api/questions/:id/attempts
func (h *AttemptHandler) Submit(c *gin.Context) {
	uid, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req attemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := h.attempts.GradeAndRecord(c.Request.Context(), id, uid, *req.Answer, req.ExamSessionID)
	if err != nil {
		response.RespondServiceError(c, err, "attempt_failed")
		return
	}
	response.RespondCreated(c, gin.H{"result": res})
}

// GET /api/attempts?offset=&limit=
func (h *AttemptHandler) List(c *gin.Context) {
	uid, ok := caller(c)
	if !ok {
		return
	}
	out, err := h.attempts.ListAttempts(c.Request.Context(), uid, queryInt(c, "offset", 0), queryInt(c, "limit", 0))
	if err != nil {
		response.RespondServiceError(c, err, "attempt_list_failed")
		return
	}
	response.RespondOK(c, gin.H{"attempts": out})
}
