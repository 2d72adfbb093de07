//go:build integration

package database

import (
	"context"
	"testing"
	"time"

	"catalog/internal/config"
	"catalog/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

// setupPostgres starts a PostgreSQL container and opens a gateway against it.
func setupPostgres(t *testing.T) *Gateway {
	t.Helper()

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("catalog"),
		postgres.WithUsername("catalog"),
		postgres.WithPassword("catalog"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err, "failed to start postgres container")

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	gw, err := Open(ctx, config.DatabaseConfig{
		URL:             connStr,
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
	}, zerolog.Nop())
	require.NoError(t, err)

	t.Cleanup(func() {
		gw.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return gw
}

func TestPostgres_SeedAndSessions(t *testing.T) {
	gw := setupPostgres(t)
	ctx := context.Background()

	assert.Equal(t, config.DriverPostgres, gw.Driver())

	result, err := Seed(ctx, gw, DefaultProducts(), zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 4, result.Inserted)

	result, err = Seed(ctx, gw, DefaultProducts(), zerolog.Nop())
	require.NoError(t, err)
	assert.True(t, result.Skipped)

	err = gw.Update(ctx, func(tx *gorm.DB) error {
		return tx.Create(&models.Product{ID: 1, Name: "dup", Description: "dup"}).Error
	})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	assert.Zero(t, gw.Active())

	var products []models.Product
	require.NoError(t, gw.View(ctx, func(tx *gorm.DB) error {
		return tx.Order("id").Find(&products).Error
	}))
	assert.Equal(t, DefaultProducts(), products)
}
