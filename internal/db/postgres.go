package db

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rawblock/zzcore/pkg/models"
)

// AuditStore is an optional pgx-backed run-history sink for cmd/zzengine: it
// records that a solve happened, what it decided, and how long it took. It
// never persists the CNF body or the netlist itself (§1 Non-goals forbid
// problem/netlist persistence) — this is an audit trail, not a case
// database, exactly as optional as the teacher's dbConn (nil-safe, warns
// and continues when unreachable).
type AuditStore struct {
	pool *pgxpool.Pool
}

// Connect initializes the connection pool to PostgreSQL using pgx.
func Connect(connStr string) (*AuditStore, error) {
	pool, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("ping failed: %w", err)
	}

	log.Println("[audit] connected to PostgreSQL run-history store")
	return &AuditStore{pool: pool}, nil
}

// Close gracefully closes the connection pool.
func (s *AuditStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InitSchema loads and executes the schema.sql file.
func (s *AuditStore) InitSchema() error {
	schemaBytes, err := os.ReadFile("internal/db/schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}

	_, err = s.pool.Exec(context.Background(), string(schemaBytes))
	if err != nil {
		return fmt.Errorf("failed to execute schema migrations: %w", err)
	}

	log.Println("[audit] solve_runs schema initialized")
	return nil
}

// SaveRun persists the outcome of one /solve invocation.
func (s *AuditStore) SaveRun(ctx context.Context, run models.RunRecord) error {
	const insertSQL = `
		INSERT INTO solve_runs
			(run_id, cnf_digest, num_vars, num_clauses, outcome, conflict_count, restart_count, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (run_id) DO NOTHING;
	`
	_, err := s.pool.Exec(ctx, insertSQL,
		run.RunID, run.CNFDigest, run.NumVars, run.NumClauses,
		string(run.Outcome), run.ConflictCount, run.RestartCount, run.DurationMs, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert solve_runs row: %w", err)
	}
	return nil
}

// GetRuns returns a page of recorded runs, most recent first.
func (s *AuditStore) GetRuns(ctx context.Context, page, limit int) ([]models.RunRecord, int, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	var totalCount int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM solve_runs`).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count solve_runs: %w", err)
	}

	const dataSQL = `
		SELECT run_id, cnf_digest, num_vars, num_clauses, outcome, conflict_count, restart_count, duration_ms, created_at
		FROM solve_runs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := s.pool.Query(ctx, dataSQL, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query solve_runs: %w", err)
	}
	defer rows.Close()

	var runs []models.RunRecord
	for rows.Next() {
		var r models.RunRecord
		var outcome string
		if err := rows.Scan(&r.RunID, &r.CNFDigest, &r.NumVars, &r.NumClauses, &outcome,
			&r.ConflictCount, &r.RestartCount, &r.DurationMs, &r.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan solve_runs row: %w", err)
		}
		r.Outcome = models.SolveOutcome(outcome)
		runs = append(runs, r)
	}
	if runs == nil {
		runs = []models.RunRecord{}
	}
	return runs, totalCount, nil
}

// GetPool exposes the connection pool for callers that need raw access.
func (s *AuditStore) GetPool() *pgxpool.Pool {
	return s.pool
}
