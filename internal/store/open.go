// Package store selects and opens the bestiary.Store an import runs against.
package store

import (
	"context"
	"fmt"
	"io"

	"github.com/vvka-141/bestiary/internal/db"
	"github.com/vvka-141/bestiary/internal/store/postgres"
	"github.com/vvka-141/bestiary/internal/store/sqlite"
	"github.com/vvka-141/bestiary/pkg/bestiary"
)

// Open returns the SQLite store when cfg.SQLitePath is set and a PostgreSQL
// store over cfg.Connection otherwise. A single connection attempt is made.
func Open(ctx context.Context, cfg *bestiary.ImportConfig, logger bestiary.Logger) (bestiary.Store, error) {
	if cfg.SQLitePath != "" {
		logger.Verbose("Opening SQLite store %s", cfg.SQLitePath)
		s, err := sqlite.Open(ctx, cfg.SQLitePath, cfg.Tables)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	if cfg.Connection == nil {
		return nil, fmt.Errorf("no store configured: %w", bestiary.ErrInvalidConfig)
	}

	connector, err := db.NewConnector(cfg.Connection, logger)
	if err != nil {
		return nil, err
	}

	pool, err := connector.Connect(ctx)
	if err != nil {
		return nil, err
	}

	var release func() error
	if c, ok := connector.(io.Closer); ok {
		release = c.Close
	}
	return postgres.NewFromPool(pool, cfg.Tables, release), nil
}
