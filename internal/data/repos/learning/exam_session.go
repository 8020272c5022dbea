package learning

import (
	"time"

	"gorm.io/gorm"

	types "github.com/yungbote/studyforge-backend/internal/domain"
	"github.com/yungbote/studyforge-backend/internal/platform/dbctx"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

type ExamSessionRepo interface {
	Create(dbc dbctx.Context, session *types.ExamSession) error
	GetByID(dbc dbctx.Context, id uint) (*types.ExamSession, error)
	GetActive(dbc dbctx.Context, userID, chapterID uint) (*types.ExamSession, error)
	// Complete stamps completion only if the session is still active; it reports whether it did.
	Complete(dbc dbctx.Context, id uint, score int, completedAt time.Time) (bool, error)
	ListCompletedByUser(dbc dbctx.Context, userID uint, offset, limit int) ([]*types.ExamSession, error)
}

type examSessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewExamSessionRepo(db *gorm.DB, baseLog *logger.Logger) ExamSessionRepo {
	return &examSessionRepo{db: db, log: baseLog.With("repo", "ExamSessionRepo")}
}

func (r *examSessionRepo) Create(dbc dbctx.Context, session *types.ExamSession) error {
	transaction := dbc.Or(r.db)
	if session.StartedAt.IsZero() {
		session.StartedAt = time.Now().UTC()
	}
	return transaction.WithContext(dbc.Ctx).Create(session).Error
}

func (r *examSessionRepo) GetByID(dbc dbctx.Context, id uint) (*types.ExamSession, error) {
	transaction := dbc.Or(r.db)
	if id == 0 {
		return nil, nil
	}
	var out types.ExamSession
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

func (r *examSessionRepo) GetActive(dbc dbctx.Context, userID, chapterID uint) (*types.ExamSession, error) {
	transaction := dbc.Or(r.db)
	var out types.ExamSession
	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ? AND chapter_id = ? AND completed_at IS NULL", userID, chapterID).
		Order("started_at DESC, id DESC").
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if out.ID == 0 {
		return nil, nil
	}
	return &out, nil
}

func (r *examSessionRepo) Complete(dbc dbctx.Context, id uint, score int, completedAt time.Time) (bool, error) {
	transaction := dbc.Or(r.db)
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.ExamSession{}).
		Where("id = ? AND completed_at IS NULL", id).
		Updates(map[string]interface{}{
			"score":        score,
			"completed_at": completedAt,
			"updated_at":   time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *examSessionRepo) ListCompletedByUser(dbc dbctx.Context, userID uint, offset, limit int) ([]*types.ExamSession, error) {
	transaction := dbc.Or(r.db)
	var out []*types.ExamSession
	q := transaction.WithContext(dbc.Ctx).
		Where("user_id = ? AND completed_at IS NOT NULL", userID).
		Order("completed_at DESC, id DESC").
		Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
