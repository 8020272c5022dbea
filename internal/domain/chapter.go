package domain

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Chapter is an ordered unit of an upload. ChapterNo is 1-based and contiguous per upload.
type Chapter struct {
	ID           uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	UploadID     uint           `gorm:"not null;uniqueIndex:idx_chapter_upload_no" json:"upload_id"`
	ChapterNo    int            `gorm:"column:chapter_no;not null;uniqueIndex:idx_chapter_upload_no" json:"chapter_no"`
	Title        string         `gorm:"column:title;not null" json:"title"`
	Content      string         `gorm:"column:content;type:text;not null" json:"content"`
	Summary      string         `gorm:"column:summary;type:text" json:"summary,omitempty"`
	Keywords     datatypes.JSON `gorm:"column:keywords" json:"keywords,omitempty"`
	HasQuestions bool           `gorm:"column:has_questions;not null;default:false" json:"has_questions"`
	CreatedAt    time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Chapter) TableName() string { return "chapter" }

func (c *Chapter) KeywordList() []string {
	if c == nil || len(c.Keywords) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(c.Keywords, &out); err != nil {
		return nil
	}
	return out
}

func (c *Chapter) SetKeywords(keywords []string) error {
	raw, err := json.Marshal(keywords)
	if err != nil {
		return err
	}
	c.Keywords = datatypes.JSON(raw)
	return nil
}
