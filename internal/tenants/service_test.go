package tenants

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tillpointhq/tillpoint-backend/pkg/db/models"
	pkgerrors "github.com/tillpointhq/tillpoint-backend/pkg/errors"
)

func setupTenantsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS tenants (
  id TEXT PRIMARY KEY,
  slug TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS stores (
  id TEXT PRIMARY KEY,
  tenant_id TEXT NOT NULL,
  name TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(schema).Error)
	return conn
}

func seedTenant(t *testing.T, conn *gorm.DB, slug string) models.Tenant {
	t.Helper()
	tenant := models.Tenant{ID: uuid.New(), Slug: slug, Name: slug}
	require.NoError(t, conn.Create(&tenant).Error)
	return tenant
}

func seedStore(t *testing.T, conn *gorm.DB, tenantID uuid.UUID, name string, createdAt time.Time) models.Store {
	t.Helper()
	store := models.Store{ID: uuid.New(), TenantID: tenantID, Name: name, CreatedAt: createdAt}
	require.NoError(t, conn.Create(&store).Error)
	return store
}

func uniqueSlug(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}

func TestResolveDefaultsToOldestStore(t *testing.T) {
	conn := setupTenantsTestDB(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)

	slug := uniqueSlug("brand")
	tenant := seedTenant(t, conn, slug)
	base := time.Now().UTC().Add(-time.Hour)
	oldest := seedStore(t, conn, tenant.ID, "downtown", base)
	seedStore(t, conn, tenant.ID, "uptown", base.Add(time.Minute))

	scope, err := svc.Resolve(context.Background(), slug, "")
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, scope.TenantID)
	assert.Equal(t, oldest.ID, scope.StoreID)
	assert.Equal(t, slug, scope.Slug)
}

func TestResolveExplicitStore(t *testing.T) {
	conn := setupTenantsTestDB(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)

	slug := uniqueSlug("brand")
	tenant := seedTenant(t, conn, slug)
	base := time.Now().UTC()
	seedStore(t, conn, tenant.ID, "downtown", base)
	uptown := seedStore(t, conn, tenant.ID, "uptown", base.Add(time.Minute))

	scope, err := svc.Resolve(context.Background(), slug, uptown.ID.String())
	require.NoError(t, err)
	assert.Equal(t, uptown.ID, scope.StoreID)
}

func TestResolveRejectsBadSlug(t *testing.T) {
	conn := setupTenantsTestDB(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)

	for _, slug := range []string{"", "ab", "Bad Slug", "UPPER"} {
		_, err := svc.Resolve(context.Background(), slug, "")
		assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), "slug %q", slug)
	}
}

func TestResolveUnknownTenant(t *testing.T) {
	conn := setupTenantsTestDB(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)

	_, err = svc.Resolve(context.Background(), uniqueSlug("ghost"), "")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestResolveTenantWithoutStores(t *testing.T) {
	conn := setupTenantsTestDB(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)

	slug := uniqueSlug("empty")
	seedTenant(t, conn, slug)

	_, err = svc.Resolve(context.Background(), slug, "")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))
}

func TestResolveStoreFromOtherTenant(t *testing.T) {
	conn := setupTenantsTestDB(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)

	slug := uniqueSlug("brand")
	tenant := seedTenant(t, conn, slug)
	seedStore(t, conn, tenant.ID, "downtown", time.Now().UTC())

	other := seedTenant(t, conn, uniqueSlug("other"))
	foreign := seedStore(t, conn, other.ID, "foreign", time.Now().UTC())

	_, err = svc.Resolve(context.Background(), slug, foreign.ID.String())
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}
