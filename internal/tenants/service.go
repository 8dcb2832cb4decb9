package tenants

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/tillpointhq/tillpoint-backend/pkg/errors"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9-]{3,}$`)

// Scope is the resolved tenancy of a request: the tenant plus the store all
// of its reads and writes are confined to.
type Scope struct {
	TenantID uuid.UUID
	StoreID  uuid.UUID
	Slug     string
}

// Service resolves tenant slugs into request scopes.
type Service struct {
	repo Repository
}

func NewService(repo Repository) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("tenants repository required")
	}
	return &Service{repo: repo}, nil
}

// Resolve maps a tenant slug, and optionally an explicit store id, to a
// scope. An empty store id selects the tenant's oldest store.
func (s *Service) Resolve(ctx context.Context, slug, storeID string) (*Scope, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if !slugPattern.MatchString(slug) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid tenant slug")
	}

	tenant, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "tenant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolving tenant")
	}

	store, err := s.resolveStore(ctx, tenant.ID, storeID)
	if err != nil {
		return nil, err
	}

	return &Scope{TenantID: tenant.ID, StoreID: store, Slug: tenant.Slug}, nil
}

func (s *Service) resolveStore(ctx context.Context, tenantID uuid.UUID, storeID string) (uuid.UUID, error) {
	storeID = strings.TrimSpace(storeID)
	if storeID == "" {
		store, err := s.repo.FirstStore(ctx, tenantID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return uuid.Nil, pkgerrors.New(pkgerrors.CodeStateConflict, "tenant has no stores")
			}
			return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolving default store")
		}
		return store.ID, nil
	}

	parsed, err := uuid.Parse(storeID)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid store id")
	}
	store, err := s.repo.FindStore(ctx, tenantID, parsed)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolving store")
	}
	return store.ID, nil
}
