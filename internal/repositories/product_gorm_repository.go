package repositories

import (
	"context"
	"errors"
	"fmt"

	"catalog/internal/models"

	"gorm.io/gorm"
)

// Sessions hands out scoped database sessions. *database.Gateway implements it.
type Sessions interface {
	View(ctx context.Context, fn func(tx *gorm.DB) error) error
	Update(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// GORMProductRepository is a GORM implementation of ProductRepository.
// Every call runs in its own session; mutations commit exactly once.
type GORMProductRepository struct {
	sessions Sessions
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(sessions Sessions) *GORMProductRepository {
	return &GORMProductRepository{
		sessions: sessions,
	}
}

// GetAll retrieves all products ordered by id.
func (r *GORMProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	products := []models.Product{}
	err := r.sessions.View(ctx, func(tx *gorm.DB) error {
		return tx.Order("id").Find(&products).Error
	})
	if err != nil {
		return nil, storeError("get all products", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its ID.
func (r *GORMProductRepository) GetByID(ctx context.Context, id int) (*models.Product, error) {
	var product models.Product
	err := r.sessions.View(ctx, func(tx *gorm.DB) error {
		return findByID(tx, id, &product)
	})
	if err != nil {
		return nil, storeError(fmt.Sprintf("get product by ID %d", id), err)
	}
	return &product, nil
}

// Create inserts a product with a caller-supplied ID and reloads the stored row into product.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	err := r.sessions.Update(ctx, func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&models.Product{}).Where("id = ?", product.ID).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return fmt.Errorf("product with ID %d: %w", product.ID, ErrProductExists)
		}

		if err := tx.Create(product).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("product with ID %d: %w", product.ID, ErrProductExists)
			}
			return err
		}
		return findByID(tx, product.ID, product)
	})
	return storeError("create product", err)
}

// Update overwrites every field except the ID of an existing product.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	err := r.sessions.Update(ctx, func(tx *gorm.DB) error {
		var existing models.Product
		if err := findByID(tx, product.ID, &existing); err != nil {
			return err
		}
		// Save writes all columns, zero values included.
		if err := tx.Save(product).Error; err != nil {
			return err
		}
		return findByID(tx, product.ID, product)
	})
	return storeError("update product", err)
}

// Delete removes a product by its ID.
func (r *GORMProductRepository) Delete(ctx context.Context, id int) error {
	err := r.sessions.Update(ctx, func(tx *gorm.DB) error {
		var existing models.Product
		if err := findByID(tx, id, &existing); err != nil {
			return err
		}
		return tx.Delete(&models.Product{}, "id = ?", id).Error
	})
	return storeError("delete product", err)
}

// Count returns the number of stored products.
func (r *GORMProductRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.sessions.View(ctx, func(tx *gorm.DB) error {
		return tx.Model(&models.Product{}).Count(&count).Error
	})
	if err != nil {
		return 0, storeError("count products", err)
	}
	return count, nil
}

func findByID(tx *gorm.DB, id int, dest *models.Product) error {
	if err := tx.First(dest, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("product with ID %d: %w", id, ErrProductNotFound)
		}
		return err
	}
	return nil
}
