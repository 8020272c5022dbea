package domain

import "time"

// Attempt is one graded submission. IsCorrect is frozen at creation.
type Attempt struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	QuestionID    uint      `gorm:"not null;index" json:"question_id"`
	ExamSessionID *uint     `gorm:"index" json:"exam_session_id,omitempty"`
	ChosenAnswer  string    `gorm:"column:chosen_answer;not null" json:"chosen_answer"`
	IsCorrect     bool      `gorm:"column:is_correct;not null" json:"is_correct"`
	AttemptedAt   time.Time `gorm:"column:attempted_at;not null" json:"attempted_at"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
}

func (Attempt) TableName() string { return "attempt" }
