package handlers_test

import (
	"database/sql"
	"errors"
	"net/http"
	"testing"

	"catalog/internal/repositories"

	"github.com/stretchr/testify/assert"
)

func TestRoot(t *testing.T) {
	resp := doRequest(t, seededApp(), http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Welcome to the product catalog", decode[string](t, resp))
}

func TestHealth(t *testing.T) {
	checker := fakeChecker{active: 2, stats: sql.DBStats{OpenConnections: 3, InUse: 2, Idle: 1}}
	app := setupApp(repositories.NewMockProductRepository(), checker)

	resp := doRequest(t, app, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[map[string]interface{}](t, resp)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "up", body["database"])
	assert.Equal(t, float64(0), body["products"])
	assert.Equal(t, float64(2), body["sessions"])
	assert.Equal(t, map[string]interface{}{"open": float64(3), "in_use": float64(2), "idle": float64(1)}, body["pool"])
	assert.NotEmpty(t, body["time"])
}

func TestHealth_CountsProducts(t *testing.T) {
	resp := doRequest(t, seededApp(), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), decode[map[string]interface{}](t, resp)["products"])
}

func TestHealth_DatabaseDown(t *testing.T) {
	app := setupApp(repositories.NewMockProductRepository(), fakeChecker{err: errors.New("connection refused")})

	resp := doRequest(t, app, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	body := decode[map[string]interface{}](t, resp)
	assert.Equal(t, "unhealthy", body["status"])
	assert.Equal(t, "down", body["database"])
	assert.NotContains(t, body, "products")
}

func TestHealth_CountFails(t *testing.T) {
	resp := doRequest(t, setupApp(unavailableRepo{}, fakeChecker{}), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	body := decode[map[string]interface{}](t, resp)
	assert.Equal(t, "unhealthy", body["status"])
	assert.Equal(t, "up", body["database"])
	assert.NotContains(t, body, "products")
}
