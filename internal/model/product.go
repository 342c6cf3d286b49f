package model

import "time"

// Money mirrors the storefront price shape used across cart payloads.
type Money struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

type PriceRange struct {
	MaxVariantPrice Money `json:"maxVariantPrice"`
	MinVariantPrice Money `json:"minVariantPrice"`
}

type Image struct {
	URL     string `json:"url"`
	AltText string `json:"altText"`
	Height  int    `json:"height"`
	Width   int    `json:"width"`
}

type ProductVariant struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Product is the catalog shape consumed by the purchase flow, whether it
// came from the storefront catalog, the vendor store, or a fallback.
type Product struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	Handle        string           `json:"handle"`
	Description   string           `json:"description"`
	PriceRange    PriceRange       `json:"priceRange"`
	FeaturedImage Image            `json:"featuredImage"`
	Variants      []ProductVariant `json:"variants"`
}

// Price returns the minimum variant price, the amount quoted in cart lines.
func (p *Product) Price() string {
	return p.PriceRange.MinVariantPrice.Amount
}

// FirstVariantID returns the variant used for voice purchases. Products
// without variants get a synthesized one so the cart line is still usable.
func (p *Product) FirstVariantID() string {
	if len(p.Variants) > 0 {
		return p.Variants[0].ID
	}
	return p.ID + "-variant-1"
}

// VendorProduct is a row in the vendor self-service store. Vendor-created
// product ids are prefixed "product_" to keep them apart from catalog ids.
type VendorProduct struct {
	ID          string    `db:"id"`
	Title       string    `db:"title"`
	Handle      string    `db:"handle"`
	Description string    `db:"description"`
	Price       string    `db:"price"`
	ImageURL    string    `db:"image_url"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// ToProduct converts a vendor row into the catalog shape.
func (v *VendorProduct) ToProduct() *Product {
	price := Money{Amount: v.Price, CurrencyCode: "USD"}
	return &Product{
		ID:          v.ID,
		Title:       v.Title,
		Handle:      v.Handle,
		Description: v.Description,
		PriceRange:  PriceRange{MaxVariantPrice: price, MinVariantPrice: price},
		FeaturedImage: Image{
			URL:     v.ImageURL,
			AltText: v.Title,
			Height:  400,
			Width:   400,
		},
		Variants: []ProductVariant{{ID: v.ID + "-variant-1", Title: v.Title}},
	}
}

// PurchaseEvent is the audit record written for every broadcast cart command.
type PurchaseEvent struct {
	ID               int64     `db:"id"`
	ProductID        string    `db:"product_id"`
	VariantID        string    `db:"variant_id"`
	Quantity         int       `db:"quantity"`
	GlobalPurchaseID string    `db:"global_purchase_id"`
	CreatedAt        time.Time `db:"created_at"`
}

type CreatePurchaseEventParams struct {
	ProductID        string
	VariantID        string
	Quantity         int
	GlobalPurchaseID string
}
