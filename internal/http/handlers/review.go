package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/studyforge-backend/internal/http/response"
	"github.com/yungbote/studyforge-backend/internal/modules/learning/review"
	"github.com/yungbote/studyforge-backend/internal/services"
)

type ReviewHandler struct {
	reviews services.ReviewService
}

func NewReviewHandler(reviews services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// GET /api/reviews/due
func (h *ReviewHandler) Due(c *gin.Context) {
	uid, ok := caller(c)
	if !ok {
		return
	}
	due, err := h.reviews.ListDue(c.Request.Context(), uid)
	if err != nil {
		response.RespondServiceError(c, err, "review_list_failed")
		return
	}
	response.RespondOK(c, gin.H{"reviews": due})
}

// POST /api/reviews/:id/complete
func (h *ReviewHandler) Complete(c *gin.Context) { h.advance(c, review.ActionComplete) }

// POST /api/reviews/:id/skip
func (h *ReviewHandler) Skip(c *gin.Context) { h.advance(c, review.ActionSkip) }

func (h *ReviewHandler) advance(c *gin.Context, action review.Action) {
	uid, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	rec, err := h.reviews.AdvanceReview(c.Request.Context(), uid, id, action)
	if err != nil {
		response.RespondServiceError(c, err, "review_update_failed")
		return
	}
	response.RespondOK(c, gin.H{"recommendation": rec, "retired": rec == nil})
}
