package menu

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tillpointhq/tillpoint-backend/pkg/db/models"
	pkgerrors "github.com/tillpointhq/tillpoint-backend/pkg/errors"
)

// Item is the storefront view of a sellable menu item.
type Item struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	PriceCents int       `json:"price_cents"`
}

// Service serves the active menu for a store.
type Service struct {
	repo Repository
}

func NewService(repo Repository) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("menu repository required")
	}
	return &Service{repo: repo}, nil
}

// ListActive returns the store's active items sorted by name.
func (s *Service) ListActive(ctx context.Context, tenantID, storeID uuid.UUID) ([]Item, error) {
	records, err := s.repo.ListActive(ctx, tenantID, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing menu items")
	}
	return toItems(records), nil
}

func toItems(records []models.MenuItem) []Item {
	items := make([]Item, 0, len(records))
	for _, record := range records {
		items = append(items, Item{ID: record.ID, Name: record.Name, PriceCents: record.PriceCents})
	}
	return items
}
