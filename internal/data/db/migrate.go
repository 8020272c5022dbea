package db

import (
	types "github.com/yungbote/studyforge-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// Uploads + processing trail
		&types.Upload{},
		&types.UploadLogEntry{},

		// Content
		&types.Chapter{},
		&types.Question{},

		// Learner state
		&types.Attempt{},
		&types.ExamSession{},
		&types.ReviewRecommendation{},
	)
}
