package aggregates

import (
	"context"

	"gorm.io/gorm"

	domainagg "github.com/yungbote/studyforge-backend/internal/domain/aggregates"
	"github.com/yungbote/studyforge-backend/internal/observability"
	"github.com/yungbote/studyforge-backend/internal/platform/dbctx"
)

// TxRunner is the write boundary for services that touch several repos at once
// (attempt + recommendation, session + recommendations, questions + chapter flag).
type TxRunner interface {
	// InTx runs fn in one transaction. An InTx call made with the ctx handed to fn
	// joins the outer transaction instead of opening a second one.
	InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
}

type txKey struct{}

type gormTxRunner struct {
	db *gorm.DB
}

func NewGormTxRunner(db *gorm.DB) TxRunner {
	return &gormTxRunner{db: db}
}

func (r *gormTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) (err error) {
	if fn == nil {
		return nil
	}
	if outer, ok := ctx.Value(txKey{}).(*gorm.DB); ok && outer != nil {
		return fn(dbctx.Context{Ctx: ctx, Tx: outer})
	}
	if r == nil || r.db == nil {
		return domainagg.NewError(domainagg.CodeInternal, "aggregate.tx", "transaction runner has nil db", nil)
	}
	ctx, span := observability.StartSpan(ctx, "db.tx")
	defer func() { observability.EndSpan(span, err) }()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: context.WithValue(ctx, txKey{}, tx), Tx: tx})
	})
}
