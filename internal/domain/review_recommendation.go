package domain

import "time"

// ReviewRecommendation tracks spaced-repetition state for one (user, question).
// Rows are hard-deleted on retirement or skip so the pair can be re-created later.
type ReviewRecommendation struct {
	ID             uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         uint       `gorm:"not null;uniqueIndex:idx_review_user_question;index:idx_review_due,priority:1" json:"user_id"`
	QuestionID     uint       `gorm:"not null;uniqueIndex:idx_review_user_question" json:"question_id"`
	ReviewStage    int        `gorm:"column:review_stage;not null" json:"review_stage"`
	LastReviewedAt *time.Time `gorm:"column:last_reviewed_at" json:"last_reviewed_at,omitempty"`
	NextReviewAt   time.Time  `gorm:"column:next_review_at;not null;index:idx_review_due,priority:2" json:"next_review_at"`
	CreatedAt      time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"not null" json:"updated_at"`
}

func (ReviewRecommendation) TableName() string { return "review_recommendation" }
