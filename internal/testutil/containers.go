// Package testutil starts the catalog index database and the catalog object
// store in containers for integration and e2e tests.
package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/cloo-solutions/partsdesk/internal/database"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	pgvectorImage = "pgvector/pgvector:0.8.1-pg18"
	rustfsImage   = "rustfs/rustfs:latest"

	dbName     = "partsdesk"
	dbUser     = "partsdesk"
	dbPassword = "partsdesk"

	// ObjectStoreAccessKey and ObjectStoreSecretKey are the RustFS credentials.
	ObjectStoreAccessKey = "rustfsadmin"
	ObjectStoreSecretKey = "rustfsadmin"
	ObjectStoreRegion    = "us-east-1"
)

// MigrationsSource returns the file:// URL of the repository's migrations
// directory, independent of the test's working directory.
func MigrationsSource() string {
	_, file, _, _ := runtime.Caller(0)
	root := filepath.Join(filepath.Dir(file), "..", "..")
	return "file://" + filepath.ToSlash(filepath.Join(root, "migrations"))
}

// CatalogDB is a migrated pgvector database holding the catalog_chunks table.
type CatalogDB struct {
	Container testcontainers.Container
	URL       string
	Pool      *pgxpool.Pool
}

// StartCatalogDB starts pgvector, applies migrations with the same migrator
// partsdeskd uses and opens a pool. Both are released when the test ends.
func StartCatalogDB(ctx context.Context, t *testing.T) *CatalogDB {
	t.Helper()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        pgvectorImage,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     dbUser,
				"POSTGRES_PASSWORD": dbPassword,
				"POSTGRES_DB":       dbName,
			},
			WaitingFor: wait.ForAll(
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
				wait.ForListeningPort("5432/tcp"),
			).WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "start pgvector container")
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	url := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", dbUser, dbPassword, host, port.Port(), dbName)

	require.NoError(t, retry(5, func() error { return database.Migrate(url, MigrationsSource()) }), "apply migrations")

	var pool *pgxpool.Pool
	require.NoError(t, retry(5, func() (err error) {
		pool, err = database.NewPool(ctx, database.Config{URL: url, MaxConns: 4})
		return err
	}), "open pool")
	t.Cleanup(pool.Close)

	return &CatalogDB{Container: container, URL: url, Pool: pool}
}

// ObjectStore is an S3-compatible RustFS server for catalog exports.
type ObjectStore struct {
	Container testcontainers.Container
	Endpoint  string
}

// StartObjectStore starts RustFS; it is terminated when the test ends.
func StartObjectStore(ctx context.Context, t *testing.T) *ObjectStore {
	t.Helper()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        rustfsImage,
			ExposedPorts: []string{"9000/tcp"},
			Env: map[string]string{
				"RUSTFS_ACCESS_KEY": ObjectStoreAccessKey,
				"RUSTFS_SECRET_KEY": ObjectStoreSecretKey,
			},
			WaitingFor: wait.ForListeningPort("9000/tcp").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "start rustfs container")
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "9000")
	require.NoError(t, err)

	return &ObjectStore{Container: container, Endpoint: fmt.Sprintf("http://%s:%s", host, port.Port())}
}

// The first connections right after the ready log are sometimes refused
// while postgres restarts into normal mode.
func retry(attempts int, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		time.Sleep(time.Duration(i+1) * 500 * time.Millisecond)
	}
	return err
}
