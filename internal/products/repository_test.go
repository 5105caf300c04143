package products

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ParzivalXIII/inventory-management-system/pkg/db/models"
	"github.com/ParzivalXIII/inventory-management-system/pkg/pagination"
)

func setupProductsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	products := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  organization_id TEXT NOT NULL,
  name TEXT NOT NULL,
  description TEXT,
  price NUMERIC NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  organization_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  total_price NUMERIC NOT NULL,
  is_fulfilled INTEGER NOT NULL DEFAULT 0,
  order_date DATETIME NOT NULL,
  fulfilled_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(products).Error)
	require.NoError(t, db.Exec(orders).Error)
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, orgID uuid.UUID, name string, createdAt time.Time) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Name:           name,
		Price:          decimal.RequireFromString("19.99"),
		Quantity:       10,
		CreatedAt:      createdAt,
		UpdatedAt:      createdAt,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func TestRepositoryFindByIDScopedToOrganization(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	orgID := uuid.New()
	product := seedProduct(t, db, orgID, "Widget", time.Now().UTC())

	found, err := repo.FindByID(ctx, orgID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.ID, found.ID)
	assert.Equal(t, "Widget", found.Name)

	_, err = repo.FindByID(ctx, uuid.New(), product.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryListPaginatesNewestFirst(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	orgID := uuid.New()
	base := time.Now().UTC().Truncate(time.Second)
	oldest := seedProduct(t, db, orgID, "oldest", base.Add(-2*time.Hour))
	middle := seedProduct(t, db, orgID, "middle", base.Add(-1*time.Hour))
	newest := seedProduct(t, db, orgID, "newest", base)
	seedProduct(t, db, uuid.New(), "other-org", base)

	page, cursor, err := repo.List(ctx, orgID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, newest.ID, page[0].ID)
	assert.Equal(t, middle.ID, page[1].ID)
	require.NotEmpty(t, cursor)

	rest, next, err := repo.List(ctx, orgID, pagination.Params{Limit: 2, Cursor: cursor})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, oldest.ID, rest[0].ID)
	assert.Empty(t, next)
}

func TestRepositoryListRejectsMalformedCursor(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)

	_, _, err := repo.List(context.Background(), uuid.New(), pagination.Params{Cursor: "not-a-cursor"})
	assert.Error(t, err)
}

func TestRepositoryDeleteScopedToOrganization(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	orgID := uuid.New()
	product := seedProduct(t, db, orgID, "Doomed", time.Now().UTC())

	affected, err := repo.Delete(ctx, uuid.New(), product.ID)
	require.NoError(t, err)
	assert.Zero(t, affected)

	affected, err = repo.Delete(ctx, orgID, product.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)
}

func TestRepositoryCountOrderReferences(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	orgID := uuid.New()
	product := seedProduct(t, db, orgID, "Referenced", time.Now().UTC())

	count, err := repo.CountOrderReferences(ctx, product.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	order := &models.Order{
		ID:             uuid.New(),
		OrganizationID: orgID,
		ProductID:      product.ID,
		Quantity:       2,
		TotalPrice:     decimal.RequireFromString("39.98"),
		OrderDate:      time.Now().UTC(),
	}
	require.NoError(t, db.Create(order).Error)

	count, err = repo.CountOrderReferences(ctx, product.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestRepositoryUpdatePersistsChanges(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	orgID := uuid.New()
	product := seedProduct(t, db, orgID, "Before", time.Now().UTC())

	product.Name = "After"
	product.Quantity = 3
	require.NoError(t, repo.Update(ctx, product))

	found, err := repo.FindByID(ctx, orgID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "After", found.Name)
	assert.Equal(t, 3, found.Quantity)
}
