package domain

import "time"

// ExamSession groups attempts for one (user, chapter). Active while CompletedAt is nil.
type ExamSession struct {
	ID             uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         uint       `gorm:"not null;index:idx_exam_user_chapter" json:"user_id"`
	ChapterID      uint       `gorm:"not null;index:idx_exam_user_chapter" json:"chapter_id"`
	Score          int        `gorm:"column:score;not null;default:0" json:"score"`
	TotalQuestions int        `gorm:"column:total_questions;not null" json:"total_questions"`
	StartedAt      time.Time  `gorm:"column:started_at;not null" json:"started_at"`
	CompletedAt    *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt      time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"not null" json:"updated_at"`
}

func (ExamSession) TableName() string { return "exam_session" }

func (s *ExamSession) Active() bool { return s != nil && s.CompletedAt == nil }

// PerformancePercentage is score/total*100, or 0 for an empty session.
func (s *ExamSession) PerformancePercentage() float64 {
	if s == nil || s.TotalQuestions <= 0 {
		return 0
	}
	return float64(s.Score) / float64(s.TotalQuestions) * 100
}
