package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/sceneit/viewer-relay-go/internal/model"
)

type VendorProductRepository interface {
	FindByID(ctx context.Context, id string) (*model.VendorProduct, error)
	FindAll(ctx context.Context) ([]model.VendorProduct, error)
}

type vendorProductRepo struct {
	db *sqlx.DB
}

func NewVendorProductRepository(db *sqlx.DB) VendorProductRepository {
	return &vendorProductRepo{db: db}
}

func (r *vendorProductRepo) FindByID(ctx context.Context, id string) (*model.VendorProduct, error) {
	var product model.VendorProduct
	err := r.db.GetContext(ctx, &product, `
		SELECT * FROM vendor_products WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *vendorProductRepo) FindAll(ctx context.Context) ([]model.VendorProduct, error) {
	products := []model.VendorProduct{}
	err := r.db.SelectContext(ctx, &products, `
		SELECT * FROM vendor_products ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	return products, nil
}
