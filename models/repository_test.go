package models_test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mytheresa/parts-catalog/app/database"
	"github.com/mytheresa/parts-catalog/models"
)

// openTestDB connects to TEST_DATABASE_URL, creating the schema and demo rows.
// The repository tests are skipped when it is not set.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	sqlDB, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	defer sqlDB.Close()
	require.NoError(t, database.Seed(ctx, sqlDB))

	db, err := database.Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })
	return db
}

func ptr[T any](v T) *T { return &v }

// unique suffixes names so reruns against the same database do not collide.
func unique(name string) string {
	return fmt.Sprintf("%s %d", name, time.Now().UnixNano())
}

func TestCategoriesRepository(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	categories := models.NewCategoriesRepository(db)
	products := models.NewProductsRepository(db)

	name := unique("Frames")
	created, err := categories.Create(ctx, models.CategoryInput{Name: name, ImageURL: ptr("/uploads/image-1-1.png")})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	_, err = categories.Create(ctx, models.CategoryInput{Name: name})
	assert.ErrorIs(t, err, models.ErrUniqueViolation)

	product, err := products.Create(ctx, models.ProductInput{
		Name:       unique("Frame"),
		PartNumber: unique("FR"),
		Status:     models.StatusPrototype,
		CategoryID: &created.ID,
	})
	require.NoError(t, err)
	if assert.NotNil(t, product.CategoryName) {
		assert.Equal(t, name, *product.CategoryName)
	}

	got, err := categories.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ProductCount)

	all, err := categories.List(ctx)
	require.NoError(t, err)
	for i := 1; i < len(all); i++ {
		assert.LessOrEqual(t, all[i-1].Name, all[i].Name)
	}

	updated, err := categories.Update(ctx, created.ID, models.CategoryInput{Name: name, Description: ptr("Airframes")})
	require.NoError(t, err)
	assert.Nil(t, updated.ImageURL)
	assert.Equal(t, int64(1), updated.ProductCount)

	_, err = categories.Update(ctx, 0, models.CategoryInput{Name: unique("Nothing")})
	assert.ErrorIs(t, err, models.ErrCategoryNotFound)

	deleted, err := categories.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, name, deleted.Name)

	orphan, err := products.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Nil(t, orphan.CategoryID)
	assert.Nil(t, orphan.CategoryName)

	_, err = categories.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = products.Delete(ctx, product.ID)
	require.NoError(t, err)
}

func TestProductsRepository(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	products := models.NewProductsRepository(db)
	materials := models.NewMaterialsRepository(db)

	_, err := products.Create(ctx, models.ProductInput{
		Name:       unique("Ghost"),
		PartNumber: unique("GH"),
		Status:     models.StatusPrototype,
		CategoryID: ptr(uint(1 << 30)),
	})
	assert.ErrorIs(t, err, models.ErrInvalidReference)

	_, err = products.Create(ctx, models.ProductInput{Name: unique("Dup"), PartNumber: "DRONE-X1", Status: models.StatusPrototype})
	assert.ErrorIs(t, err, models.ErrUniqueViolation)

	in := models.ProductInput{Name: unique("Probe"), PartNumber: unique("PR"), Status: models.StatusInProduction}
	created, err := products.Create(ctx, in)
	require.NoError(t, err)
	assert.Nil(t, created.CategoryID)

	in.Description = ptr("Mk2")
	in.ImageURL = ptr("/uploads/image-2-2.png")
	updated, err := products.Update(ctx, created.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Mk2", *updated.Description)
	assert.Equal(t, "/uploads/image-2-2.png", updated.ImageRef())

	list, err := products.List(ctx, models.ProductFilters{})
	require.NoError(t, err)
	for i := 1; i < len(list); i++ {
		assert.False(t, list[i-1].CreatedAt.Before(list[i].CreatedAt))
	}

	none, err := products.List(ctx, models.ProductFilters{CategoryID: ptr(uint(1 << 30))})
	require.NoError(t, err)
	assert.Empty(t, none)

	lines, err := materials.ListForProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)

	deleted, err := products.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/image-2-2.png", deleted.ImageRef())

	_, err = products.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, models.ErrProductNotFound)
	_, err = products.Update(ctx, created.ID, in)
	assert.ErrorIs(t, err, models.ErrProductNotFound)
}

func TestMaterialsRepository(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	all, err := models.NewMaterialsRepository(db).List(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, all)

	var productID uint
	require.NoError(t, db.Raw("SELECT id FROM products WHERE part_number = 'DRONE-X1'").Scan(&productID).Error)

	lines, err := models.NewMaterialsRepository(db).ListForProduct(ctx, productID)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "Carbon Fiber Composite", lines[0].MaterialName)
	assert.Equal(t, "kg", lines[0].Unit)
	assert.Equal(t, "1166.625", lines[0].LineCost().String())

	_, err = models.NewProductsRepository(db).Delete(ctx, productID)
	assert.ErrorIs(t, err, models.ErrInUse)
}
