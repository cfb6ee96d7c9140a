package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/multierr"

	"github.com/google/bundletool-sub016/internal/config"
	"github.com/google/bundletool-sub016/internal/engine"
)

type Store struct {
	pool    *pgxpool.Pool
	channel string
}

// ArchiveRow is the latest archive published for one app.
type ArchiveRow struct {
	AppID       string
	VersionCode int64
	Archive     *engine.Archive
}

func New(ctx context.Context, cfg config.Config) (*Store, error) {
	dsn := cfg.DSN()
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres DSN: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.Postgres.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.Postgres.MaxIdleConns)
	poolCfg.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	return &Store{pool: pool, channel: cfg.Listener.Channel}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// LoadArchives loads the highest version of every active app archive.
// Manifests that fail to decode are skipped and reported in the returned
// error alongside the rows that did decode.
func (s *Store) LoadArchives(ctx context.Context) ([]ArchiveRow, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT ON (app_id) app_id, version_code, manifest
		FROM archives
		WHERE active
		ORDER BY app_id, version_code DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query archives: %w", err)
	}
	defer rows.Close()

	var (
		out     []ArchiveRow
		decoded error
	)
	for rows.Next() {
		var (
			appID    string
			version  int64
			manifest []byte
		)
		if err := rows.Scan(&appID, &version, &manifest); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		var a engine.Archive
		if err := json.Unmarshal(manifest, &a); err != nil {
			decoded = multierr.Append(decoded, fmt.Errorf("decode manifest of %s@%d: %w", appID, version, err))
			continue
		}
		out = append(out, ArchiveRow{AppID: appID, VersionCode: version, Archive: &a})
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, decoded
}

func (s *Store) ListenChannel() string {
	if s.channel != "" {
		return s.channel
	}
	return "archives_changed"
}

func (s *Store) PgxPool() *pgxpool.Pool {
	if s.pool == nil {
		panic(errors.New("pgx pool is nil"))
	}
	return s.pool
}
