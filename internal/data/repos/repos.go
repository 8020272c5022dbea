package repos

import (
	"github.com/yungbote/studyforge-backend/internal/data/repos/learning"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type UploadRepo = learning.UploadRepo
type ChapterRepo = learning.ChapterRepo
type QuestionRepo = learning.QuestionRepo
type AttemptRepo = learning.AttemptRepo
type ExamSessionRepo = learning.ExamSessionRepo
type ReviewRecommendationRepo = learning.ReviewRecommendationRepo

func NewUploadRepo(db *gorm.DB, baseLog *logger.Logger) UploadRepo {
	return learning.NewUploadRepo(db, baseLog)
}
func NewChapterRepo(db *gorm.DB, baseLog *logger.Logger) ChapterRepo {
	return learning.NewChapterRepo(db, baseLog)
}
func NewQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuestionRepo {
	return learning.NewQuestionRepo(db, baseLog)
}
func NewAttemptRepo(db *gorm.DB, baseLog *logger.Logger) AttemptRepo {
	return learning.NewAttemptRepo(db, baseLog)
}
func NewExamSessionRepo(db *gorm.DB, baseLog *logger.Logger) ExamSessionRepo {
	return learning.NewExamSessionRepo(db, baseLog)
}
func NewReviewRecommendationRepo(db *gorm.DB, baseLog *logger.Logger) ReviewRecommendationRepo {
	return learning.NewReviewRecommendationRepo(db, baseLog)
}

// Set bundles every repo over one connection.
type Set struct {
	Upload               UploadRepo
	Chapter              ChapterRepo
	Question             QuestionRepo
	Attempt              AttemptRepo
	ExamSession          ExamSessionRepo
	ReviewRecommendation ReviewRecommendationRepo
}

func NewSet(db *gorm.DB, baseLog *logger.Logger) Set {
	return Set{
		Upload:               NewUploadRepo(db, baseLog),
		Chapter:              NewChapterRepo(db, baseLog),
		Question:             NewQuestionRepo(db, baseLog),
		Attempt:              NewAttemptRepo(db, baseLog),
		ExamSession:          NewExamSessionRepo(db, baseLog),
		ReviewRecommendation: NewReviewRecommendationRepo(db, baseLog),
	}
}
