// Package testing holds helpers shared by the PostgreSQL integration tests.
package testing

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/bestiary/internal/db"
	"github.com/vvka-141/bestiary/internal/store/postgres"
	"github.com/vvka-141/bestiary/internal/testinfra"
	"github.com/vvka-141/bestiary/pkg/bestiary"
)

var (
	testContainerOnce sync.Once
	testContainerConn string
	testContainerErr  error
)

func getOrStartTestContainer() (string, error) {
	testContainerOnce.Do(func() {
		container, err := testinfra.StartSimplePostgres(context.Background())
		if err != nil {
			testContainerErr = err
			return
		}
		testContainerConn = container.ConnString
	})
	return testContainerConn, testContainerErr
}

// GetTestConnectionString returns the test server connection string.
// Priority: BESTIARY_TEST_CONN env var > auto-started testcontainer > skip test.
func GetTestConnectionString(t *testing.T) string {
	t.Helper()

	if connString := os.Getenv("BESTIARY_TEST_CONN"); connString != "" {
		return connString
	}

	connString, err := getOrStartTestContainer()
	if err != nil {
		t.Skipf("BESTIARY_TEST_CONN not set and Docker unavailable: %v", err)
	}
	return connString
}

// SkipIfShort skips the test if running in short mode (-short flag).
func SkipIfShort(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}

// RequireDatabase combines SkipIfShort and GetTestConnectionString for convenience.
func RequireDatabase(t *testing.T) string {
	t.Helper()

	SkipIfShort(t)
	return GetTestConnectionString(t)
}

// CreateTestDB creates a uniquely named database, registers its removal with
// t.Cleanup, and returns a connection string for it.
func CreateTestDB(t *testing.T, connString string) string {
	t.Helper()
	ctx := context.Background()

	dbName := "bestiary_test_" + uuid.NewString()[:8]

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		t.Fatalf("Failed to connect for test DB creation: %v", err)
	}
	_, err = pool.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{dbName}.Sanitize())
	pool.Close()
	if err != nil {
		t.Fatalf("Failed to create test database %s: %v", dbName, err)
	}

	t.Cleanup(func() { CleanupTestDB(t, connString, dbName) })

	cfg, err := db.ParseConnectionString(connString)
	if err != nil {
		t.Fatalf("Failed to parse connection string: %v", err)
	}
	cfg.Database = dbName
	return db.BuildConnectionString(cfg)
}

// CleanupTestDB drops the test database.
// Safe to call multiple times (uses DROP DATABASE IF EXISTS).
func CleanupTestDB(t *testing.T, connString, dbName string) {
	t.Helper()
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		t.Logf("Warning: Failed to connect for cleanup: %v", err)
		return
	}
	defer pool.Close()

	_, err = pool.Exec(ctx, `
		SELECT pg_terminate_backend(pid)
		FROM pg_stat_activity
		WHERE datname = $1 AND pid <> pg_backend_pid()`, dbName)
	if err != nil {
		t.Logf("Warning: Failed to terminate connections to %s: %v", dbName, err)
	}

	if _, err := pool.Exec(ctx, "DROP DATABASE IF EXISTS "+pgx.Identifier{dbName}.Sanitize()); err != nil {
		t.Logf("Warning: Failed to drop database %s: %v", dbName, err)
	}
}

// GetTestPool opens a pool on connString, closed when the test completes.
func GetTestPool(t *testing.T, connString string) *pgxpool.Pool {
	t.Helper()

	pool, err := pgxpool.New(context.Background(), connString)
	if err != nil {
		t.Fatalf("Failed to create connection pool: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

// Fixture seeds one row per reference table: klass "fire", race "dragon",
// trait "brave" and sources "book-a", "book-b", in that id order.
type Fixture struct {
	KlassID, RaceID, TraitID int64
	SourceA, SourceB         int64
}

// SeedReferences creates the importer's tables and seeds the Fixture rows.
func SeedReferences(t *testing.T, pool *pgxpool.Pool, tables bestiary.TableNames) Fixture {
	t.Helper()
	ctx := context.Background()
	tables = tables.WithDefaults()

	if _, err := pool.Exec(ctx, postgres.Schema(tables)); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	insert := func(table, slug string) int64 {
		var id int64
		q := fmt.Sprintf("INSERT INTO %s (slug, name) VALUES ($1, $1) RETURNING id", postgres.QuoteTable(table))
		if err := pool.QueryRow(ctx, q, slug).Scan(&id); err != nil {
			t.Fatalf("Failed to seed %s: %v", table, err)
		}
		return id
	}

	return Fixture{
		KlassID: insert(tables.Klass, "fire"),
		RaceID:  insert(tables.Race, "dragon"),
		TraitID: insert(tables.Trait, "brave"),
		SourceA: insert(tables.Source, "book-a"),
		SourceB: insert(tables.Source, "book-b"),
	}
}
