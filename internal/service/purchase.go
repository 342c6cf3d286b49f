package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sceneit/viewer-relay-go/internal/model"
	"github.com/sceneit/viewer-relay-go/internal/repository"
)

const (
	vendorProductPrefix = "product_"
	fallbackPrice       = "99.99"
	fallbackImageURL    = "/placeholder-product.jpg"
)

// ProductFinder is the catalog collaborator: lookup by id or handle,
// (nil, nil) on a miss. Implemented by catalog.Client.
type ProductFinder interface {
	ProductByHandle(ctx context.Context, handle string) (*model.Product, error)
}

// purchaseRecord is one recently-processed purchase, kept for duplicate
// suppression. Structured on purpose: the window predicate compares
// timestamps instead of parsing them back out of a key string.
type purchaseRecord struct {
	productID  string
	quantity   int
	insertedAt time.Time
}

// PurchaseService resolves purchase tool calls into cart broadcasts and
// suppresses rapid duplicates from the voice agent. The dedup window is a
// best-effort guard against retried tool calls, not a correctness
// guarantee against true duplicates.
type PurchaseService struct {
	hub        Broadcaster
	vendorRepo repository.VendorProductRepository
	catalog    ProductFinder
	eventRepo  repository.PurchaseEventRepository

	window time.Duration
	ttl    time.Duration

	mu      sync.Mutex
	records []purchaseRecord

	now   func() time.Time
	newID func() string
}

func NewPurchaseService(
	hub Broadcaster,
	vendorRepo repository.VendorProductRepository,
	catalog ProductFinder,
	eventRepo repository.PurchaseEventRepository,
	window, ttl time.Duration,
) *PurchaseService {
	return &PurchaseService{
		hub:        hub,
		vendorRepo: vendorRepo,
		catalog:    catalog,
		eventRepo:  eventRepo,
		window:     window,
		ttl:        ttl,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// ProcessPurchase handles one processPurchase tool call. The flow always
// produces some cart line when a product id is present: vendor store for
// "product_" ids, catalog otherwise, synthesized placeholder as the last
// resort. Only an entirely absent product id fails.
func (s *PurchaseService) ProcessPurchase(ctx context.Context, args map[string]any) model.ToolResult {
	productID := stringArg(args, "productId")
	quantity := quantityArg(args, "quantity")

	if productID == "" {
		return model.ToolResult{
			Success: false,
			Message: "Product ID is required for purchase",
		}
	}

	log.Info().Str("productId", productID).Int("quantity", quantity).Msg("processing purchase")

	if s.isDuplicate(productID, quantity) {
		log.Info().Str("productId", productID).Int("quantity", quantity).Msg("duplicate purchase request ignored")
		return model.ToolResult{
			Success: true,
			Message: "Purchase already processed",
		}
	}

	s.record(productID, quantity)

	product := s.resolveProduct(ctx, productID)
	variantID := product.FirstVariantID()
	globalPurchaseID := fmt.Sprintf("purchase-%s-%d-%s", productID, quantity, s.newID())

	command := model.CartCommand{
		Type:             model.MessageTypeAddToCart,
		Action:           model.CartActionAddItem,
		ProductID:        product.ID,
		VariantID:        variantID,
		Quantity:         quantity,
		CartItem:         buildCartItem(product, variantID, quantity, s.now()),
		GlobalPurchaseID: globalPurchaseID,
	}

	s.hub.Broadcast(command)

	if s.eventRepo != nil {
		if err := s.eventRepo.Create(ctx, model.CreatePurchaseEventParams{
			ProductID:        product.ID,
			VariantID:        variantID,
			Quantity:         quantity,
			GlobalPurchaseID: globalPurchaseID,
		}); err != nil {
			log.Warn().Err(err).Str("globalPurchaseId", globalPurchaseID).Msg("failed to record purchase event")
		}
	}

	return model.ToolResult{
		Success: true,
		Message: fmt.Sprintf("Added %d item(s) to cart successfully!", quantity),
	}
}

// isDuplicate scans records inserted within the duplicate window for the
// same product and quantity.
func (s *PurchaseService) isDuplicate(productID string, quantity int) bool {
	cutoff := s.now().Add(-s.window)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.records {
		if rec.insertedAt.After(cutoff) && rec.productID == productID && rec.quantity == quantity {
			return true
		}
	}
	return false
}

func (s *PurchaseService) record(productID string, quantity int) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	s.records = append(s.records, purchaseRecord{
		productID:  productID,
		quantity:   quantity,
		insertedAt: now,
	})
}

// PruneRecords drops purchase records past their TTL and returns how many
// were removed. Called opportunistically on insert and by the cleanup job.
func (s *PurchaseService) PruneRecords() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pruneLocked(s.now())
}

func (s *PurchaseService) pruneLocked(now time.Time) int {
	cutoff := now.Add(-s.ttl)
	kept := s.records[:0]
	for _, rec := range s.records {
		if rec.insertedAt.After(cutoff) {
			kept = append(kept, rec)
		}
	}
	removed := len(s.records) - len(kept)
	s.records = kept
	return removed
}

// resolveProduct never fails: a lookup miss or error falls back to a
// placeholder so the conversational purchase flow stays unbroken.
func (s *PurchaseService) resolveProduct(ctx context.Context, productID string) *model.Product {
	if strings.HasPrefix(productID, vendorProductPrefix) {
		if s.vendorRepo != nil {
			vendor, err := s.vendorRepo.FindByID(ctx, productID)
			if err != nil {
				log.Warn().Err(err).Str("productId", productID).Msg("vendor product lookup failed")
			} else if vendor != nil {
				log.Info().Str("productId", productID).Str("title", vendor.Title).Msg("found vendor product")
				return vendor.ToProduct()
			}
		}
	} else if s.catalog != nil {
		product, err := s.catalog.ProductByHandle(ctx, productID)
		if err != nil {
			log.Warn().Err(err).Str("productId", productID).Msg("catalog lookup failed")
		} else if product != nil {
			log.Info().Str("productId", productID).Str("title", product.Title).Msg("found catalog product")
			return product
		}
	}

	log.Info().Str("productId", productID).Msg("no product data found, synthesizing fallback")
	return fallbackProduct(productID)
}

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)

// fallbackProduct derives a minimal product record from the id string.
func fallbackProduct(productID string) *model.Product {
	title := titleCase(strings.NewReplacer("-", " ", "_", " ").Replace(productID))
	handle := strings.Trim(nonAlnumRe.ReplaceAllString(strings.ToLower(productID), "-"), "-")
	price := model.Money{Amount: fallbackPrice, CurrencyCode: "USD"}

	return &model.Product{
		ID:          productID,
		Title:       title,
		Handle:      handle,
		Description: fmt.Sprintf("Custom product: %s", productID),
		PriceRange:  model.PriceRange{MaxVariantPrice: price, MinVariantPrice: price},
		FeaturedImage: model.Image{
			URL:     fallbackImageURL,
			AltText: title,
			Height:  400,
			Width:   400,
		},
		Variants: []model.ProductVariant{{ID: productID + "-variant-1", Title: title}},
	}
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

func buildCartItem(product *model.Product, variantID string, quantity int, now time.Time) model.CartItem {
	price := model.Money{Amount: product.Price(), CurrencyCode: "USD"}

	return model.CartItem{
		ID:       fmt.Sprintf("temp-%d", now.UnixMilli()),
		Quantity: quantity,
		Cost:     model.CartLineCost{TotalAmount: price},
		Merchandise: model.CartMerchandise{
			ID:              variantID,
			Title:           product.Title,
			SelectedOptions: []string{},
			Product: model.CartItemProduct{
				ID:              product.ID,
				Title:           product.Title,
				Handle:          product.Handle,
				Description:     product.Description,
				DescriptionHTML: product.Description,
				FeaturedImage:   product.FeaturedImage,
				CurrencyCode:    "USD",
				PriceRange:      model.PriceRange{MaxVariantPrice: price, MinVariantPrice: price},
			},
		},
	}
}

func stringArg(args map[string]any, key string) string {
	value, _ := args[key].(string)
	return strings.TrimSpace(value)
}

// quantityArg defaults to 1 when the argument is absent or non-numeric.
func quantityArg(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case float64:
		if v >= 1 {
			return int(v)
		}
	case string:
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			return n
		}
	}
	return 1
}
