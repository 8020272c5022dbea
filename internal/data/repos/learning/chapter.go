package learning

import (
	"time"

	"gorm.io/gorm"

	types "github.com/yungbote/studyforge-backend/internal/domain"
	"github.com/yungbote/studyforge-backend/internal/platform/dbctx"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

type ChapterRepo interface {
	Create(dbc dbctx.Context, chapter *types.Chapter) error
	GetByID(dbc dbctx.Context, id uint) (*types.Chapter, error)
	// GetByIDsWithDeleted includes soft-deleted chapters, for history views.
	GetByIDsWithDeleted(dbc dbctx.Context, ids []uint) ([]*types.Chapter, error)
	ListByUpload(dbc dbctx.Context, uploadID uint) ([]*types.Chapter, error)
	// ListByUploadWithDeleted includes soft-deleted chapters; chapter numbers stay reserved after deletion.
	ListByUploadWithDeleted(dbc dbctx.Context, uploadID uint) ([]*types.Chapter, error)
	UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error
	SoftDeleteByIDs(dbc dbctx.Context, ids []uint) error
}

type chapterRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChapterRepo(db *gorm.DB, baseLog *logger.Logger) ChapterRepo {
	return &chapterRepo{db: db, log: baseLog.With("repo", "ChapterRepo")}
}

func (r *chapterRepo) Create(dbc dbctx.Context, chapter *types.Chapter) error {
	transaction := dbc.Or(r.db)
	return transaction.WithContext(dbc.Ctx).Create(chapter).Error
}

func (r *chapterRepo) GetByID(dbc dbctx.Context, id uint) (*types.Chapter, error) {
	transaction := dbc.Or(r.db)
	if id == 0 {
		return nil, nil
	}
	var out types.Chapter
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

func (r *chapterRepo) GetByIDsWithDeleted(dbc dbctx.Context, ids []uint) ([]*types.Chapter, error) {
	transaction := dbc.Or(r.db)
	var out []*types.Chapter
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

func (r *chapterRepo) ListByUpload(dbc dbctx.Context, uploadID uint) ([]*types.Chapter, error) {
	transaction := dbc.Or(r.db)
	var out []*types.Chapter
	if err := transaction.WithContext(dbc.Ctx).
		Where("upload_id = ?", uploadID).
		Order("chapter_no ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *chapterRepo) ListByUploadWithDeleted(dbc dbctx.Context, uploadID uint) ([]*types.Chapter, error) {
	transaction := dbc.Or(r.db)
	var out []*types.Chapter
	if err := transaction.WithContext(dbc.Ctx).
		Unscoped().
		Where("upload_id = ?", uploadID).
		Order("chapter_no ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *chapterRepo) UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error {
	transaction := dbc.Or(r.db)
	if len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.Chapter{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *chapterRepo) SoftDeleteByIDs(dbc dbctx.Context, ids []uint) error {
	transaction := dbc.Or(r.db)
	if len(ids) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Delete(&types.Chapter{}).Error
}
