package learning

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/studyforge-backend/internal/domain"
	"github.com/yungbote/studyforge-backend/internal/platform/dbctx"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

type ReviewRecommendationRepo interface {
	// Upsert inserts or, on an existing (user, question) pair, overwrites the schedule in place.
	Upsert(dbc dbctx.Context, rec *types.ReviewRecommendation) error
	GetByID(dbc dbctx.Context, id uint) (*types.ReviewRecommendation, error)
	GetByUserQuestion(dbc dbctx.Context, userID, questionID uint) (*types.ReviewRecommendation, error)
	UpdateSchedule(dbc dbctx.Context, id uint, stage int, lastReviewedAt *time.Time, nextReviewAt time.Time) error
	Delete(dbc dbctx.Context, id uint) error
	ListDue(dbc dbctx.Context, userID uint, now time.Time) ([]*types.ReviewRecommendation, error)
}

type reviewRecommendationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReviewRecommendationRepo(db *gorm.DB, baseLog *logger.Logger) ReviewRecommendationRepo {
	return &reviewRecommendationRepo{db: db, log: baseLog.With("repo", "ReviewRecommendationRepo")}
}

func (r *reviewRecommendationRepo) Upsert(dbc dbctx.Context, rec *types.ReviewRecommendation) error {
	t := dbc.Or(r.db)
	if rec == nil || rec.UserID == 0 || rec.QuestionID == 0 {
		return nil
	}
	rec.UpdatedAt = time.Now().UTC()

	return t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "question_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"review_stage",
				"last_reviewed_at",
				"next_review_at",
				"updated_at",
			}),
		}).
		Create(rec).Error
}

func (r *reviewRecommendationRepo) GetByID(dbc dbctx.Context, id uint) (*types.ReviewRecommendation, error) {
	transaction := dbc.Or(r.db)
	if id == 0 {
		return nil, nil
	}
	var out types.ReviewRecommendation
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

func (r *reviewRecommendationRepo) GetByUserQuestion(dbc dbctx.Context, userID, questionID uint) (*types.ReviewRecommendation, error) {
	transaction := dbc.Or(r.db)
	var out types.ReviewRecommendation
	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ? AND question_id = ?", userID, questionID).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if out.ID == 0 {
		return nil, nil
	}
	return &out, nil
}

func (r *reviewRecommendationRepo) UpdateSchedule(dbc dbctx.Context, id uint, stage int, lastReviewedAt *time.Time, nextReviewAt time.Time) error {
	transaction := dbc.Or(r.db)
	return transaction.WithContext(dbc.Ctx).
		Model(&types.ReviewRecommendation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"review_stage":     stage,
			"last_reviewed_at": lastReviewedAt,
			"next_review_at":   nextReviewAt,
			"updated_at":       time.Now().UTC(),
		}).Error
}

func (r *reviewRecommendationRepo) Delete(dbc dbctx.Context, id uint) error {
	transaction := dbc.Or(r.db)
	return transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Delete(&types.ReviewRecommendation{}).Error
}

func (r *reviewRecommendationRepo) ListDue(dbc dbctx.Context, userID uint, now time.Time) ([]*types.ReviewRecommendation, error) {
	transaction := dbc.Or(r.db)
	var out []*types.ReviewRecommendation
	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ? AND next_review_at <= ?", userID, now).
		Order("next_review_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
