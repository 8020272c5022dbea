package testutil

import (
	"context"
	"testing"
	"time"

	types "github.com/yungbote/studyforge-backend/internal/domain"
	"gorm.io/gorm"
)

func SeedUpload(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uint, status types.UploadStatus) *types.Upload {
	tb.Helper()
	u := &types.Upload{
		UserID:      userID,
		Filename:    "book.pdf",
		StoragePath: "/tmp/book.pdf",
		Status:      status,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed upload: %v", err)
	}
	return u
}

func SeedChapter(tb testing.TB, ctx context.Context, tx *gorm.DB, uploadID uint, no int, content string) *types.Chapter {
	tb.Helper()
	c := &types.Chapter{
		UploadID:  uploadID,
		ChapterNo: no,
		Title:     "Chapter",
		Content:   content,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed chapter: %v", err)
	}
	return c
}

// SeedMCQuestion stores a multiple-choice question whose correct answer is option A.
func SeedMCQuestion(tb testing.TB, ctx context.Context, tx *gorm.DB, chapterID uint, options []string) *types.Question {
	tb.Helper()
	q := &types.Question{
		ChapterID:     chapterID,
		QuestionText:  "Which of the following is correct?",
		QuestionType:  types.QuestionMultipleChoice,
		CorrectAnswer: "A",
		Difficulty:    types.DifficultyMedium,
	}
	if err := q.SetOptions(options); err != nil {
		tb.Fatalf("seed question options: %v", err)
	}
	if err := tx.WithContext(ctx).Create(q).Error; err != nil {
		tb.Fatalf("seed question: %v", err)
	}
	return q
}

func SeedSession(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, chapterID uint, total int, completedAt *time.Time) *types.ExamSession {
	tb.Helper()
	s := &types.ExamSession{
		UserID:         userID,
		ChapterID:      chapterID,
		TotalQuestions: total,
		StartedAt:      time.Now().UTC(),
		CompletedAt:    completedAt,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed session: %v", err)
	}
	return s
}

func PtrUint(v uint) *uint { return &v }

func PtrTime(v time.Time) *time.Time { return &v }
