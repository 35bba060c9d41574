// Package catalog is a thin read-only client for the product endpoints.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/groupe1-react/storefront-client/internal/api"
	"github.com/groupe1-react/storefront-client/internal/domain"
)

var ErrProductNotFound = errors.New("product not found")

type Service struct {
	client *api.Client
}

func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// List fetches all products. The collection envelope is normalized the same
// way the cart payload is.
func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	var raw json.RawMessage
	if err := s.client.Get(ctx, "/products", &raw); err != nil {
		return nil, err
	}
	var products []domain.Product
	api.ExtractList(raw, &products)
	return products, nil
}

// Get fetches a single product, bare or wrapped under data.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Product, error) {
	var raw json.RawMessage
	if err := s.client.Get(ctx, fmt.Sprintf("/products/%d", id), &raw); err != nil {
		return nil, err
	}

	var product domain.Product
	if err := json.Unmarshal(raw, &product); err != nil || product.ID == 0 {
		var env struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &env); err != nil || len(env.Data) == 0 {
			return nil, ErrProductNotFound
		}
		if err := json.Unmarshal(env.Data, &product); err != nil || product.ID == 0 {
			return nil, ErrProductNotFound
		}
	}
	if product.ImageURL == "" {
		product.ImageURL = domain.PlaceholderImage
	}
	return &product, nil
}
