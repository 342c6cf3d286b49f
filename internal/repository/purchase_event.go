package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sceneit/viewer-relay-go/internal/model"
)

type PurchaseEventRepository interface {
	Create(ctx context.Context, params model.CreatePurchaseEventParams) error
	FindRecent(ctx context.Context, limit int) ([]model.PurchaseEvent, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type purchaseEventRepo struct {
	db *sqlx.DB
}

func NewPurchaseEventRepository(db *sqlx.DB) PurchaseEventRepository {
	return &purchaseEventRepo{db: db}
}

func (r *purchaseEventRepo) Create(ctx context.Context, params model.CreatePurchaseEventParams) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO purchase_events (product_id, variant_id, quantity, global_purchase_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, params.ProductID, params.VariantID, params.Quantity, params.GlobalPurchaseID, time.Now())
	return err
}

func (r *purchaseEventRepo) FindRecent(ctx context.Context, limit int) ([]model.PurchaseEvent, error) {
	events := []model.PurchaseEvent{}
	err := r.db.SelectContext(ctx, &events, `
		SELECT * FROM purchase_events ORDER BY created_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *purchaseEventRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM purchase_events WHERE created_at < $1
	`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
