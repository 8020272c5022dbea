package domain

import "time"

type UploadStatus string

const (
	UploadStatusPending    UploadStatus = "pending"
	UploadStatusProcessing UploadStatus = "processing"
	UploadStatusCompleted  UploadStatus = "completed"
	UploadStatusFailed     UploadStatus = "failed"
)

// Upload is a source document owned by one user. Chapters hang off it.
// SegmentedAt is set once every chapter is stored; until then the stored chapters are only a prefix.
type Upload struct {
	ID          uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uint         `gorm:"not null;index" json:"user_id"`
	Filename    string       `gorm:"column:filename;not null" json:"filename"`
	StoragePath string       `gorm:"column:storage_path;not null" json:"-"`
	Status      UploadStatus `gorm:"column:status;not null;index" json:"status"`
	ErrorCode   string       `gorm:"column:error_code" json:"error_code,omitempty"`
	SegmentedAt *time.Time   `gorm:"column:segmented_at" json:"segmented_at,omitempty"`
	CreatedAt   time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null" json:"updated_at"`
}

func (Upload) TableName() string { return "upload" }

// UploadLogEntry is one line of the user-facing processing trail. Rows are append-only.
type UploadLogEntry struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UploadID  uint      `gorm:"not null;index" json:"upload_id"`
	Level     string    `gorm:"column:level;not null" json:"level"`
	Message   string    `gorm:"column:message;not null" json:"message"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (UploadLogEntry) TableName() string { return "upload_log_entry" }
