package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionTrueFalse      QuestionType = "true_false"
	QuestionShortAnswer    QuestionType = "short_answer"
)

func (t QuestionType) Valid() bool {
	switch t {
	case QuestionMultipleChoice, QuestionTrueFalse, QuestionShortAnswer:
		return true
	}
	return false
}

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
	// DifficultyMixed is accepted on generation requests only; questions are labelled medium.
	DifficultyMixed = "mixed"
)

// Question is immutable after creation apart from soft deletion with its chapter.
type Question struct {
	ID            uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	ChapterID     uint           `gorm:"not null;index" json:"chapter_id"`
	QuestionText  string         `gorm:"column:question_text;type:text;not null" json:"question_text"`
	QuestionType  QuestionType   `gorm:"column:question_type;not null" json:"question_type"`
	Options       datatypes.JSON `gorm:"column:options" json:"options"`
	CorrectAnswer string         `gorm:"column:correct_answer;not null" json:"-"`
	Difficulty    string         `gorm:"column:difficulty;not null" json:"difficulty"`
	Explanation   string         `gorm:"column:explanation;type:text" json:"explanation,omitempty"`
	CreatedAt     time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Question) TableName() string { return "question" }

// OptionList decodes the stored option list. A null or empty column decodes to nil.
func (q *Question) OptionList() ([]string, error) {
	if q == nil || len(q.Options) == 0 || string(q.Options) == "null" {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal(q.Options, &out); err != nil {
		return nil, fmt.Errorf("decode options for question %d: %w", q.ID, err)
	}
	return out, nil
}

func (q *Question) SetOptions(options []string) error {
	if options == nil {
		options = []string{}
	}
	raw, err := json.Marshal(options)
	if err != nil {
		return err
	}
	q.Options = datatypes.JSON(raw)
	return nil
}
