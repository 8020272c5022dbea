package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/studyforge-backend/internal/domain"
	"github.com/yungbote/studyforge-backend/internal/http/response"
	"github.com/yungbote/studyforge-backend/internal/services"
)

type QuestionHandler struct {
	questions    services.QuestionService
	defaultCount int
}

func NewQuestionHandler(questions services.QuestionService, defaultCount int) *QuestionHandler {
	if defaultCount <= 0 {
		defaultCount = 10
	}
	return &QuestionHandler{questions: questions, defaultCount: defaultCount}
}

type generateRequest struct {
	Count      int      `json:"count"`
	Difficulty string   `json:"difficulty"`
	Kinds      []string `json:"kinds"`
}

// POST /api/chapters/:id/questions
func (h *QuestionHandler) Generate(c *gin.Context) {
	uid, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req generateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
	}
	if req.Count == 0 {
		req.Count = h.defaultCount
	}
	kinds := make([]types.QuestionType, 0, len(req.Kinds))
	for _, k := range req.Kinds {
		kinds = append(kinds, types.QuestionType(k))
	}

	ids, err := h.questions.GenerateForUser(c.Request.Context(), uid, id, req.Count, req.Difficulty, kinds...)
	if err != nil {
		response.RespondServiceError(c, err, "question_generation_failed")
		return
	}
	response.RespondCreated(c, gin.H{
		"question_ids": ids,
		"requested":    req.Count,
		"generated":    len(ids),
	})
}

// GET /api/chapters/:id/questions
func (h *QuestionHandler) List(c *gin.Context) {
	uid, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	qs, err := h.questions.ListQuestions(c.Request.Context(), uid, id)
	if err != nil {
		response.RespondServiceError(c, err, "question_list_failed")
		return
	}
	response.RespondOK(c, gin.H{"questions": qs})
}
