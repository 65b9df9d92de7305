package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

type DB struct {
	Pool *sql.DB
}

func Open(path string) (*DB, error) {
	// modernc sqlite DSN: file:foo.db?_pragma=busy_timeout(5000)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)

	pool, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	pool.SetMaxOpenConns(1) // sqlite wants a single writer
	pool.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, err
	}

	db := &DB{Pool: pool}
	if err := db.migrate(); err != nil {
		_ = pool.Close()
		return nil, err
	}
	return db, nil
}

func (d *DB) Close() error {
	if d == nil || d.Pool == nil {
		return nil
	}
	return d.Pool.Close()
}

func (d *DB) migrate() error {
	_, err := d.Pool.Exec(`
CREATE TABLE IF NOT EXISTS runs (
  id TEXT PRIMARY KEY,
  started_at TEXT NOT NULL,
  finished_at TEXT NOT NULL,
  jobs_loaded INTEGER NOT NULL,
  jobs_skipped INTEGER NOT NULL,
  mapped INTEGER NOT NULL,
  unresolved INTEGER NOT NULL,
  unmatched INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS mappings (
  run_id TEXT NOT NULL,
  job_id TEXT NOT NULL,
  status TEXT NOT NULL,
  programs TEXT NOT NULL DEFAULT '[]',
  confidence REAL NOT NULL DEFAULT 0,
  reasoning TEXT NOT NULL DEFAULT '',
  keywords TEXT NOT NULL DEFAULT '[]',
  PRIMARY KEY (run_id, job_id)
);
CREATE TABLE IF NOT EXISTS org_nodes (
  run_id TEXT NOT NULL,
  company TEXT NOT NULL,
  program_code TEXT NOT NULL,
  node_key TEXT NOT NULL,
  title TEXT NOT NULL,
  level_rank INTEGER NOT NULL,
  location TEXT NOT NULL DEFAULT '',
  job_ids TEXT NOT NULL DEFAULT '[]',
  children TEXT NOT NULL DEFAULT '[]',
  is_root INTEGER NOT NULL DEFAULT 0,
  PRIMARY KEY (run_id, company, program_code, node_key)
);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);
CREATE INDEX IF NOT EXISTS idx_mappings_run ON mappings(run_id);
CREATE INDEX IF NOT EXISTS idx_org_nodes_run ON org_nodes(run_id);
`)
	return err
}
