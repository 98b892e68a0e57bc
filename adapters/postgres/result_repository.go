package postgres

import (
	"context"
	"database/sql"
	"math"

	"epmstat/domain/epm"
	"epmstat/internal/errors"
	"epmstat/ports"

	"github.com/jmoiron/sqlx"
)

// ResultRepositoryImpl persists analysis runs in PostgreSQL so past runs stay
// queryable next to the exported tables. Persistence is optional; the
// pipeline works without a database.
type ResultRepositoryImpl struct {
	db *sqlx.DB
}

// NewResultRepository creates a new PostgreSQL result repository
func NewResultRepository(db *sqlx.DB) ports.ResultRepository {
	return &ResultRepositoryImpl{db: db}
}

// EnsureSchema creates the run and result tables when absent.
func (r *ResultRepositoryImpl) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS epm_runs (
			run_id           TEXT PRIMARY KEY,
			generated_at     TIMESTAMPTZ NOT NULL,
			alpha            DOUBLE PRECISION NOT NULL,
			response_epsilon DOUBLE PRECISION NOT NULL
		);
		CREATE TABLE IF NOT EXISTS epm_results (
			run_id      TEXT NOT NULL REFERENCES epm_runs(run_id) ON DELETE CASCADE,
			parameter   TEXT NOT NULL,
			grp         TEXT NOT NULL,
			status      TEXT NOT NULL,
			test_kind   TEXT,
			statistic   DOUBLE PRECISION,
			p_raw       DOUBLE PRECISION,
			p_holm      DOUBLE PRECISION,
			significant BOOLEAN NOT NULL,
			cohens_dz   DOUBLE PRECISION,
			n           INTEGER NOT NULL,
			PRIMARY KEY (run_id, parameter, grp)
		)`)
	if err != nil {
		return errors.DatabaseError("failed to ensure schema", err)
	}
	return nil
}

// SaveReport stores the run header and every corrected result, including
// untestable and degenerate parameters; the persisted run mirrors the full
// report, not just the testable subset.
func (r *ResultRepositoryImpl) SaveReport(ctx context.Context, report *epm.AnalysisReport) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.DatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO epm_runs (run_id, generated_at, alpha, response_epsilon)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (run_id) DO NOTHING`,
		report.RunID.String(), report.GeneratedAt, report.Alpha, report.ResponseEpsilon)
	if err != nil {
		return errors.DatabaseError("failed to insert run", err)
	}

	for _, gr := range report.Groups {
		for _, res := range gr.Results {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO epm_results (
					run_id, parameter, grp, status, test_kind,
					statistic, p_raw, p_holm, significant, cohens_dz, n
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
				ON CONFLICT (run_id, parameter, grp) DO NOTHING`,
				report.RunID.String(), res.Parameter, string(gr.Group),
				string(res.Status), string(res.Kind),
				nullable(res.Statistic), nullable(res.PValue), nullable(res.PHolm),
				res.Significant, nullable(res.Dz), res.N)
			if err != nil {
				return errors.DatabaseError("failed to insert result", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.DatabaseError("failed to commit", err)
	}
	return nil
}

// nullable maps NaN statistics to SQL NULL.
func nullable(v float64) sql.NullFloat64 {
	if math.IsNaN(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}
