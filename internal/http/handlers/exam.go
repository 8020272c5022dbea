package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/studyforge-backend/internal/http/response"
	"github.com/yungbote/studyforge-backend/internal/services"
)

type ExamHandler struct {
	exams services.ExamService
}

func NewExamHandler(exams services.ExamService) *ExamHandler {
	return &ExamHandler{exams: exams}
}

// POST /api/chapters/:id/exam-sessions
func (h *ExamHandler) Start(c *gin.Context) {
	uid, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	sess, err := h.exams.StartSession(c.Request.Context(), uid, id)
	if err != nil {
		response.RespondServiceError(c, err, "exam_start_failed")
		return
	}
	response.RespondOK(c, gin.H{"session": sess})
}

// POST /api/exam-sessions/:id/complete
func (h *ExamHandler) Complete(c *gin.Context) {
	uid, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	sess, err := h.exams.CompleteSession(c.Request.Context(), uid, id)
	if err != nil {
		response.RespondServiceError(c, err, "exam_complete_failed")
		return
	}
	response.RespondOK(c, gin.H{
		"session":                sess,
		"performance_percentage": sess.PerformancePercentage(),
	})
}

// GET /api/exam-sessions?offset=&limit=
func (h *ExamHandler) History(c *gin.Context) {
	uid, ok := caller(c)
	if !ok {
		return
	}
	items, err := h.exams.History(c.Request.Context(), uid, queryInt(c, "offset", 0), queryInt(c, "limit", 0))
	if err != nil {
		response.RespondServiceError(c, err, "exam_history_failed")
		return
	}
	response.RespondOK(c, gin.H{"sessions": items})
}
