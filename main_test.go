package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"catalog/internal/config"
	"catalog/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setTestEnv points the process at a fresh sqlite file and returns its URL.
func setTestEnv(t *testing.T) string {
	t.Helper()

	databaseURL := "sqlite://" + filepath.Join(t.TempDir(), "catalog.db")
	t.Setenv("DATABASE_URL", databaseURL)
	t.Setenv("RABBITMQ_URL", "")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("SEED_ON_START", "true")
	t.Setenv("SEED_STRICT", "false")
	return databaseURL
}

func runCommand(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newCommand()
	cmd.Writer = &out
	err := cmd.Run(ctx, append([]string{"catalog", "--env-file", filepath.Join(t.TempDir(), "missing.env")}, args...))
	return out.String(), err
}

func TestSeedCommand(t *testing.T) {
	setTestEnv(t)

	out, err := runCommand(t, context.Background(), "seed")
	require.NoError(t, err)
	assert.Equal(t, "seeded 4 products\n", out)

	// A second run leaves the catalog untouched
	out, err = runCommand(t, context.Background(), "seed")
	require.NoError(t, err)
	assert.Equal(t, "catalog already holds 4 products, nothing seeded\n", out)
}

func TestSeedCommand_EnvFile(t *testing.T) {
	// t.Setenv restores the previous value; the variable must be truly unset for godotenv.
	t.Setenv("DATABASE_URL", "")
	require.NoError(t, os.Unsetenv("DATABASE_URL"))
	t.Setenv("RABBITMQ_URL", "")
	t.Setenv("LOG_LEVEL", "error")

	envFile := filepath.Join(t.TempDir(), ".env")
	databaseURL := "sqlite://" + filepath.Join(t.TempDir(), "catalog.db")
	require.NoError(t, os.WriteFile(envFile, []byte("DATABASE_URL="+databaseURL+"\n"), 0o600))

	var out bytes.Buffer
	cmd := newCommand()
	cmd.Writer = &out
	require.NoError(t, cmd.Run(context.Background(), []string{"catalog", "--env-file", envFile, "seed"}))
	assert.Equal(t, "seeded 4 products\n", out.String())
}

func TestMissingDatabaseURLIsConfigurationError(t *testing.T) {
	setTestEnv(t)
	t.Setenv("DATABASE_URL", "")

	for _, command := range []string{"seed", "serve"} {
		_, err := runCommand(t, context.Background(), command)

		var cfgErr *config.ConfigurationError
		require.ErrorAs(t, err, &cfgErr, command)
		assert.Equal(t, "DATABASE_URL", cfgErr.Key)
		assert.Equal(t, exitConfiguration, exitCode(err))
	}
}

func TestEventsCommandRequiresRabbitMQ(t *testing.T) {
	setTestEnv(t)

	_, err := runCommand(t, context.Background(), "events")
	assert.Equal(t, exitConfiguration, exitCode(err))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitFailure, exitCode(fmt.Errorf("boom")))
	assert.Equal(t, exitConfiguration, exitCode(fmt.Errorf("wrapped: %w", &config.ConfigurationError{Key: "APP_PORT"})))
}

func freePort(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestServeCommand_StartupAndShutdown(t *testing.T) {
	setTestEnv(t)
	addr := freePort(t)
	t.Setenv("APP_PORT", addr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := runCommand(t, ctx, "serve")
		done <- err
	}()

	// Wait for the server to come up
	var resp *http.Response
	require.Eventually(t, func() bool {
		r, err := http.Get("http://" + addr + "/health")
		if err != nil {
			return false
		}
		resp = r
		return true
	}, 5*time.Second, 50*time.Millisecond)

	bodyBytes, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(bodyBytes), `"status":"healthy"`)

	// Startup seeding filled the empty catalog
	resp, err = http.Get("http://" + addr + "/products/6")
	require.NoError(t, err)
	bodyBytes, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(bodyBytes), `"name":"Table"`)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestLogEvent(t *testing.T) {
	var buf bytes.Buffer
	handler := logEvent(zerolog.New(&buf))

	require.NoError(t, handler(models.NewProductEvent(models.ProductDeleted, 3, nil)))
	assert.Contains(t, buf.String(), `"event_type":"product.deleted"`)
	assert.Contains(t, buf.String(), `"product_id":3`)
}
