package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sceneit/viewer-relay-go/internal/model"
	redisclient "github.com/sceneit/viewer-relay-go/internal/redis"
)

const (
	requestTimeout = 5 * time.Second
	apiVersion     = "2024-01"
)

const productQuery = `
query product($handle: String!) {
  product(handle: $handle) {
    id
    title
    handle
    description
    priceRange {
      maxVariantPrice { amount currencyCode }
      minVariantPrice { amount currencyCode }
    }
    featuredImage { url altText height width }
    variants(first: 10) {
      edges { node { id title } }
    }
  }
}`

// Client looks products up in the storefront catalog by handle, with a
// short-lived redis cache in front of the GraphQL API.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
	cache    *redisclient.Client
	cacheTTL time.Duration
}

func NewClient(storeDomain, token string, cache *redisclient.Client, cacheTTL time.Duration) *Client {
	return &Client{
		endpoint: fmt.Sprintf("https://%s/api/%s/graphql.json", storeDomain, apiVersion),
		token:    token,
		http:     &http.Client{Timeout: requestTimeout},
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// Configured reports whether catalog lookups are usable. An unconfigured
// client makes every lookup a miss, which the purchase flow recovers from.
func (c *Client) Configured() bool {
	return c.token != ""
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type productResponse struct {
	Data struct {
		Product *struct {
			ID            string           `json:"id"`
			Title         string           `json:"title"`
			Handle        string           `json:"handle"`
			Description   string           `json:"description"`
			PriceRange    model.PriceRange `json:"priceRange"`
			FeaturedImage model.Image      `json:"featuredImage"`
			Variants      struct {
				Edges []struct {
					Node model.ProductVariant `json:"node"`
				} `json:"edges"`
			} `json:"variants"`
		} `json:"product"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// ProductByHandle fetches one product. A missing product returns (nil, nil);
// the purchase flow treats that as a recoverable miss, not an error.
func (c *Client) ProductByHandle(ctx context.Context, handle string) (*model.Product, error) {
	if !c.Configured() {
		return nil, nil
	}

	if cached := c.fromCache(ctx, handle); cached != nil {
		return cached, nil
	}

	body, err := json.Marshal(graphqlRequest{
		Query:     productQuery,
		Variables: map[string]any{"handle": handle},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Storefront-Access-Token", c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("catalog request failed with status %d", resp.StatusCode)
	}

	var parsed productResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode catalog response: %w", err)
	}

	if len(parsed.Errors) > 0 {
		return nil, fmt.Errorf("catalog query error: %s", parsed.Errors[0].Message)
	}

	raw := parsed.Data.Product
	if raw == nil {
		return nil, nil
	}

	product := &model.Product{
		ID:            raw.ID,
		Title:         raw.Title,
		Handle:        raw.Handle,
		Description:   raw.Description,
		PriceRange:    raw.PriceRange,
		FeaturedImage: raw.FeaturedImage,
	}
	for _, edge := range raw.Variants.Edges {
		product.Variants = append(product.Variants, edge.Node)
	}

	c.toCache(ctx, handle, product)
	return product, nil
}

func (c *Client) fromCache(ctx context.Context, handle string) *model.Product {
	if c.cache == nil {
		return nil
	}

	data, err := c.cache.Get(ctx, redisclient.ProductCacheKey(handle)).Bytes()
	if err != nil {
		return nil
	}

	var product model.Product
	if err := json.Unmarshal(data, &product); err != nil {
		log.Warn().Err(err).Str("handle", handle).Msg("corrupt catalog cache entry, ignoring")
		return nil
	}
	return &product
}

func (c *Client) toCache(ctx context.Context, handle string, product *model.Product) {
	if c.cache == nil {
		return
	}

	data, err := json.Marshal(product)
	if err != nil {
		return
	}

	if err := c.cache.Set(ctx, redisclient.ProductCacheKey(handle), data, c.cacheTTL).Err(); err != nil {
		log.Warn().Err(err).Str("handle", handle).Msg("failed to cache catalog product")
	}
}
