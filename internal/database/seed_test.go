package database

import (
	"context"
	"testing"

	"catalog/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func listProducts(t *testing.T, gw *Gateway) []models.Product {
	t.Helper()

	var products []models.Product
	err := gw.View(context.Background(), func(tx *gorm.DB) error {
		return tx.Order("id").Find(&products).Error
	})
	require.NoError(t, err)
	return products
}

func TestSeed_EmptyTableGetsDefaults(t *testing.T) {
	gw, err := Open(context.Background(), memoryConfig(), zerolog.Nop())
	require.NoError(t, err)
	defer gw.Close()

	result, err := Seed(context.Background(), gw, DefaultProducts(), zerolog.Nop())
	require.NoError(t, err)

	assert.False(t, result.Skipped)
	assert.Equal(t, 4, result.Inserted)
	assert.Zero(t, result.Existing)
	assert.Equal(t, DefaultProducts(), listProducts(t, gw))
	assert.Zero(t, gw.Active())
}

func TestSeed_IsIdempotent(t *testing.T) {
	gw := openTestGateway(t)
	ctx := context.Background()

	_, err := Seed(ctx, gw, DefaultProducts(), zerolog.Nop())
	require.NoError(t, err)

	result, err := Seed(ctx, gw, DefaultProducts(), zerolog.Nop())
	require.NoError(t, err)

	assert.True(t, result.Skipped)
	assert.Equal(t, int64(4), result.Existing)
	assert.Zero(t, result.Inserted)
	assert.Len(t, listProducts(t, gw), 4)
}

func TestSeed_NonEmptyTableLeftUntouched(t *testing.T) {
	gw := openTestGateway(t)
	ctx := context.Background()

	existing := models.Product{ID: 42, Name: "Lamp", Description: "Desk lamp", Price: 30, Quantity: 3, Category: "Home"}
	require.NoError(t, gw.Update(ctx, func(tx *gorm.DB) error {
		return tx.Create(&existing).Error
	}))

	result, err := Seed(ctx, gw, DefaultProducts(), zerolog.Nop())
	require.NoError(t, err)

	assert.True(t, result.Skipped)
	assert.Equal(t, []models.Product{existing}, listProducts(t, gw))
}

func TestSeed_DoesNotMutateInput(t *testing.T) {
	gw := openTestGateway(t)

	defaults := DefaultProducts()
	_, err := Seed(context.Background(), gw, defaults, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, DefaultProducts(), defaults)
}

func TestSeed_SurfacesStoreFailure(t *testing.T) {
	gw, err := Open(context.Background(), memoryConfig(), zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, gw.Close())

	_, err = Seed(context.Background(), gw, DefaultProducts(), zerolog.Nop())
	assert.Error(t, err)
	assert.Zero(t, gw.Active())
}
