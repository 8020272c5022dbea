package learning

import (
	"gorm.io/gorm"

	types "github.com/yungbote/studyforge-backend/internal/domain"
	"github.com/yungbote/studyforge-backend/internal/platform/dbctx"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

// AttemptRepo is append-only; attempts are never updated once graded.
type AttemptRepo interface {
	Create(dbc dbctx.Context, attempt *types.Attempt) error
	ListBySession(dbc dbctx.Context, sessionID uint) ([]*types.Attempt, error)
	ListBySessionIDs(dbc dbctx.Context, sessionIDs []uint) ([]*types.Attempt, error)
	ListByUser(dbc dbctx.Context, userID uint, offset, limit int) ([]*types.Attempt, error)
}

type attemptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAttemptRepo(db *gorm.DB, baseLog *logger.Logger) AttemptRepo {
	return &attemptRepo{db: db, log: baseLog.With("repo", "AttemptRepo")}
}

func (r *attemptRepo) Create(dbc dbctx.Context, attempt *types.Attempt) error {
	transaction := dbc.Or(r.db)
	return transaction.WithContext(dbc.Ctx).Create(attempt).Error
}

func (r *attemptRepo) ListBySession(dbc dbctx.Context, sessionID uint) ([]*types.Attempt, error) {
	return r.ListBySessionIDs(dbc, []uint{sessionID})
}

func (r *attemptRepo) ListBySessionIDs(dbc dbctx.Context, sessionIDs []uint) ([]*types.Attempt, error) {
	transaction := dbc.Or(r.db)
	var out []*types.Attempt
	if len(sessionIDs) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("exam_session_id IN ?", sessionIDs).
		Order("attempted_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *attemptRepo) ListByUser(dbc dbctx.Context, userID uint, offset, limit int) ([]*types.Attempt, error) {
	transaction := dbc.Or(r.db)
	var out []*types.Attempt
	q := transaction.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("attempted_at DESC, id DESC").
		Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
