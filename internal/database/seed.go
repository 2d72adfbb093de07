package database

import (
	"context"
	"fmt"

	"catalog/internal/models"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// SeedResult reports what the seed loader did.
type SeedResult struct {
	Existing int64
	Inserted int
	Skipped  bool
}

// DefaultProducts returns the dataset inserted into an empty catalog.
func DefaultProducts() []models.Product {
	return []models.Product{
		{ID: 1, Name: "phone", Description: "A smartphone", Price: 699.99, Quantity: 50, Category: "Electronic device"},
		{ID: 2, Name: "Laptop", Description: "A powerful laptop", Price: 999.99, Quantity: 30, Category: "Electronic device"},
		{ID: 5, Name: "Pen", Description: "A blue ink pen", Price: 1.99, Quantity: 100, Category: "Study material"},
		{ID: 6, Name: "Table", Description: "A wooden table", Price: 199.99, Quantity: 50, Category: "Wooden Material"},
	}
}

// Seed creates the products table if absent and inserts products only when the table is empty.
// Counting and inserting share one transaction.
func Seed(ctx context.Context, gw *Gateway, products []models.Product, logger zerolog.Logger) (SeedResult, error) {
	logger = logger.With().Str("component", "seed").Logger()

	if err := gw.EnsureSchema(ctx, &models.Product{}); err != nil {
		return SeedResult{}, fmt.Errorf("failed to ensure schema: %w", err)
	}

	var result SeedResult
	err := gw.Update(ctx, func(tx *gorm.DB) error {
		if err := tx.Model(&models.Product{}).Count(&result.Existing).Error; err != nil {
			return fmt.Errorf("failed to count products: %w", err)
		}
		if result.Existing > 0 || len(products) == 0 {
			result.Skipped = true
			return nil
		}

		rows := make([]models.Product, len(products))
		copy(rows, products)
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to insert default products: %w", err)
		}
		result.Inserted = len(rows)
		return nil
	})
	if err != nil {
		return SeedResult{}, err
	}

	if result.Skipped {
		logger.Info().Int64("existing", result.Existing).Msg("catalog not empty, seeding skipped")
	} else {
		logger.Info().Int("inserted", result.Inserted).Msg("default products seeded")
	}
	return result, nil
}
