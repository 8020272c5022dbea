package learning

import (
	"gorm.io/gorm"

	types "github.com/yungbote/studyforge-backend/internal/domain"
	"github.com/yungbote/studyforge-backend/internal/platform/dbctx"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

type QuestionRepo interface {
	Create(dbc dbctx.Context, questions []*types.Question) ([]*types.Question, error)
	GetByID(dbc dbctx.Context, id uint) (*types.Question, error)
	GetByIDsWithDeleted(dbc dbctx.Context, ids []uint) ([]*types.Question, error)
	ListByChapter(dbc dbctx.Context, chapterID uint) ([]*types.Question, error)
	CountByChapter(dbc dbctx.Context, chapterID uint) (int64, error)
	SoftDeleteByChapterIDs(dbc dbctx.Context, chapterIDs []uint) error
}

type questionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuestionRepo {
	return &questionRepo{db: db, log: baseLog.With("repo", "QuestionRepo")}
}

func (r *questionRepo) Create(dbc dbctx.Context, questions []*types.Question) ([]*types.Question, error) {
	transaction := dbc.Or(r.db)
	if len(questions) == 0 {
		return []*types.Question{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *questionRepo) GetByID(dbc dbctx.Context, id uint) (*types.Question, error) {
	transaction := dbc.Or(r.db)
	if id == 0 {
		return nil, nil
	}
	var out types.Question
	if err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if out.ID == 0 {
		return nil, nil
	}
	return &out, nil
}

func (r *questionRepo) GetByIDsWithDeleted(dbc dbctx.Context, ids []uint) ([]*types.Question, error) {
	transaction := dbc.Or(r.db)
	var out []*types.Question
	if len(ids) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Unscoped().
		Where("id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *questionRepo) ListByChapter(dbc dbctx.Context, chapterID uint) ([]*types.Question, error) {
	transaction := dbc.Or(r.db)
	var out []*types.Question
	if err := transaction.WithContext(dbc.Ctx).
		Where("chapter_id = ?", chapterID).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *questionRepo) CountByChapter(dbc dbctx.Context, chapterID uint) (int64, error) {
	transaction := dbc.Or(r.db)
	var n int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Question{}).
		Where("chapter_id = ?", chapterID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *questionRepo) SoftDeleteByChapterIDs(dbc dbctx.Context, chapterIDs []uint) error {
	transaction := dbc.Or(r.db)
	if len(chapterIDs) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Where("chapter_id IN ?", chapterIDs).
		Delete(&types.Question{}).Error
}
