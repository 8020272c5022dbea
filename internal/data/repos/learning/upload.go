package learning

import (
	"time"

	"gorm.io/gorm"

	types "github.com/yungbote/studyforge-backend/internal/domain"
	"github.com/yungbote/studyforge-backend/internal/platform/dbctx"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

type UploadRepo interface {
	Create(dbc dbctx.Context, upload *types.Upload) error
	GetByID(dbc dbctx.Context, id uint) (*types.Upload, error)
	GetByIDs(dbc dbctx.Context, ids []uint) ([]*types.Upload, error)
	ClaimNextPending(dbc dbctx.Context) (*types.Upload, error)
	UpdateStatus(dbc dbctx.Context, id uint, status types.UploadStatus, errorCode string) error
	MarkSegmented(dbc dbctx.Context, id uint, at time.Time) error
	RequeueProcessing(dbc dbctx.Context, staleBefore time.Time) (int64, error)
	AppendLog(dbc dbctx.Context, uploadID uint, level, message string) error
	ListLog(dbc dbctx.Context, uploadID uint) ([]*types.UploadLogEntry, error)
}

type uploadRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUploadRepo(db *gorm.DB, baseLog *logger.Logger) UploadRepo {
	return &uploadRepo{db: db, log: baseLog.With("repo", "UploadRepo")}
}

func (r *uploadRepo) Create(dbc dbctx.Context, upload *types.Upload) error {
	transaction := dbc.Or(r.db)
	if upload.Status == "" {
		upload.Status = types.UploadStatusPending
	}
	return transaction.WithContext(dbc.Ctx).Create(upload).Error
}

func (r *uploadRepo) GetByID(dbc dbctx.Context, id uint) (*types.Upload, error) {
	transaction := dbc.Or(r.db)
	if id == 0 {
		return nil, nil
	}
	var out types.Upload
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

func (r *uploadRepo) GetByIDs(dbc dbctx.Context, ids []uint) ([]*types.Upload, error) {
	transaction := dbc.Or(r.db)
	var out []*types.Upload
	if len(ids) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ClaimNextPending moves the oldest pending upload to processing. The conditional
// update makes concurrent claimers race safely: the loser sees zero rows and gets nil.
func (r *uploadRepo) ClaimNextPending(dbc dbctx.Context) (*types.Upload, error) {
	transaction := dbc.Or(r.db)
	var next types.Upload
	if err := transaction.WithContext(dbc.Ctx).
		Where("status = ?", types.UploadStatusPending).
		Order("created_at ASC, id ASC").
		Limit(1).
		Find(&next).Error; err != nil {
		return nil, err
	}
	if next.ID == 0 {
		return nil, nil
	}
	now := time.Now().UTC()
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.Upload{}).
		Where("id = ? AND status = ?", next.ID, types.UploadStatusPending).
		Updates(map[string]interface{}{
			"status":     types.UploadStatusProcessing,
			"updated_at": now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	next.Status = types.UploadStatusProcessing
	next.UpdatedAt = now
	return &next, nil
}

func (r *uploadRepo) UpdateStatus(dbc dbctx.Context, id uint, status types.UploadStatus, errorCode string) error {
	transaction := dbc.Or(r.db)
	return transaction.WithContext(dbc.Ctx).
		Model(&types.Upload{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"error_code": errorCode,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *uploadRepo) MarkSegmented(dbc dbctx.Context, id uint, at time.Time) error {
	transaction := dbc.Or(r.db)
	return transaction.WithContext(dbc.Ctx).
		Model(&types.Upload{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"segmented_at": at.UTC(),
			"updated_at":   time.Now().UTC(),
		}).Error
}

// RequeueProcessing returns uploads stuck in processing since before staleBefore to pending.
func (r *uploadRepo) RequeueProcessing(dbc dbctx.Context, staleBefore time.Time) (int64, error) {
	transaction := dbc.Or(r.db)
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.Upload{}).
		Where("status = ? AND updated_at < ?", types.UploadStatusProcessing, staleBefore).
		Updates(map[string]interface{}{
			"status":     types.UploadStatusPending,
			"updated_at": time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}

func (r *uploadRepo) AppendLog(dbc dbctx.Context, uploadID uint, level, message string) error {
	transaction := dbc.Or(r.db)
	entry := &types.UploadLogEntry{
		UploadID:  uploadID,
		Level:     level,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	return transaction.WithContext(dbc.Ctx).Create(entry).Error
}

func (r *uploadRepo) ListLog(dbc dbctx.Context, uploadID uint) ([]*types.UploadLogEntry, error) {
	transaction := dbc.Or(r.db)
	var out []*types.UploadLogEntry
	if err := transaction.WithContext(dbc.Ctx).
		Where("upload_id = ?", uploadID).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
