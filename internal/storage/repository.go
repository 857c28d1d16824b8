package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	pq "github.com/lib/pq"

	"github.com/guttosm/b3penny/internal/domain/models"
)

const referenceDateLayout = "2006-01-02"

// SnapshotRepository persists written snapshots and serves their history.
type SnapshotRepository interface {
	SaveRun(ctx context.Context, runID uuid.UUID, generatedAt time.Time, snap *models.Snapshot) error
	GetTickerHistory(ctx context.Context, ticker string, startDate *time.Time, endDate *time.Time) ([]models.HistoryPoint, error)
	ListRuns(ctx context.Context, limit int) ([]models.RunSummary, error)
}

type snapshotRepository struct {
	db *sql.DB
}

func NewSnapshotRepository(db *sql.DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

// SaveRun stores the run header and bulk-loads its records in one transaction.
func (r *snapshotRepository) SaveRun(ctx context.Context, runID uuid.UUID, generatedAt time.Time, snap *models.Snapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO snapshot_runs (id, generated_at, reference_date, source, total_count)
		VALUES ($1, $2, $3, $4, $5)
	`, runID, generatedAt, toNullDate(snap.ReferenceDate), snap.Source, snap.TotalCount); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(
		"security_records",
		"run_id",
		"ticker",
		"name",
		"price",
		"sector",
		"dividend_yield",
		"price_to_earnings",
		"price_to_book",
		"day_change_pct",
		"week_change_pct",
		"five_year_change_pct",
		"valuation_upside_pct",
		"volume",
	))
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	for _, rec := range snap.Records {
		if _, err := stmt.ExecContext(ctx,
			runID,
			string(rec.Ticker),
			rec.Name,
			rec.Price,
			rec.Sector,
			toNullFloat(rec.DividendYield),
			toNullFloat(rec.PriceToEarnings),
			toNullFloat(rec.PriceToBook),
			toNullFloat(rec.DayChangePct),
			toNullFloat(rec.WeekChangePct),
			toNullFloat(rec.FiveYearChangePct),
			toNullFloat(rec.ValuationUpsidePct),
			toNullInt(rec.Volume),
		); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return fmt.Errorf("copy %s: %w", rec.Ticker, err)
		}
	}

	if _, err := stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		_ = tx.Rollback()
		return err
	}
	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// GetTickerHistory returns the recorded state of ticker in every run whose
// generation day falls within [startDate, endDate], oldest first.
func (r *snapshotRepository) GetTickerHistory(ctx context.Context, ticker string, startDate *time.Time, endDate *time.Time) ([]models.HistoryPoint, error) {
	// $1 is always ticker. Subsequent placeholders depend on provided dates.
	conditions := "s.ticker = $1"
	args := []interface{}{ticker}
	if startDate != nil {
		conditions += fmt.Sprintf(" AND r.generated_at >= $%d", len(args)+1)
		args = append(args, *startDate)
	}
	if endDate != nil {
		// end date is inclusive: compare against the next midnight
		conditions += fmt.Sprintf(" AND r.generated_at < $%d", len(args)+1)
		args = append(args, endDate.AddDate(0, 0, 1))
	}

	query := fmt.Sprintf(`
		SELECT r.id, r.generated_at, s.price, s.volume, s.day_change_pct, s.valuation_upside_pct
		FROM security_records s
		JOIN snapshot_runs r ON r.id = s.run_id
		WHERE %s
		ORDER BY r.generated_at ASC
	`, conditions)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.HistoryPoint
	for rows.Next() {
		var (
			p         models.HistoryPoint
			volume    sql.NullInt64
			dayChange sql.NullFloat64
			upside    sql.NullFloat64
		)
		if err := rows.Scan(&p.RunID, &p.GeneratedAt, &p.Price, &volume, &dayChange, &upside); err != nil {
			return nil, err
		}
		if volume.Valid {
			p.Volume = models.Int(volume.Int64)
		}
		if dayChange.Valid {
			p.DayChangePct = models.Float(dayChange.Float64)
		}
		if upside.Valid {
			p.ValuationUpsidePct = models.Float(upside.Float64)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListRuns returns the most recent runs, newest first.
func (r *snapshotRepository) ListRuns(ctx context.Context, limit int) ([]models.RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, generated_at, COALESCE(TO_CHAR(reference_date, 'YYYY-MM-DD'), ''), source, total_count
		FROM snapshot_runs
		ORDER BY generated_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.RunSummary
	for rows.Next() {
		var s models.RunSummary
		if err := rows.Scan(&s.ID, &s.GeneratedAt, &s.ReferenceDate, &s.Source, &s.TotalCount); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// toNullDate maps an unparsable or empty YYYY-MM-DD to NULL.
func toNullDate(s string) interface{} {
	d, err := time.Parse(referenceDateLayout, s)
	if err != nil {
		return nil
	}
	return d
}

func toNullFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func toNullInt(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
