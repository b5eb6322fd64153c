package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/themeradar/internal/contracts"
)

// schemaDDL creates the ledger table. UNIQUE(signal_date, theme_id) backs the first-writer-wins insert.
const schemaDDL = `
	CREATE SCHEMA IF NOT EXISTS ledger;

	CREATE TABLE IF NOT EXISTS ledger.signal_predictions (
		id               BIGSERIAL PRIMARY KEY,
		run_id           TEXT NOT NULL,
		signal_date      DATE NOT NULL,
		target_date      DATE NOT NULL,
		theme_id         TEXT NOT NULL,
		theme_name       TEXT NOT NULL,
		rank             INTEGER NOT NULL,
		score            DOUBLE PRECISION NOT NULL,
		signal_type      TEXT NOT NULL,
		confidence       TEXT NOT NULL,
		timing           TEXT NOT NULL,
		stars            INTEGER NOT NULL,
		proxy_etf        TEXT NOT NULL DEFAULT '',
		entry_price      DOUBLE PRECISION,
		exit_price       DOUBLE PRECISION,
		exit_price_date  DATE,
		return_pct       DOUBLE PRECISION,
		evaluated_at     TIMESTAMPTZ,
		hit              SMALLINT,
		evaluation_note  TEXT NOT NULL DEFAULT '',
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (signal_date, theme_id)
	);

	CREATE INDEX IF NOT EXISTS idx_signal_predictions_pending
		ON ledger.signal_predictions (target_date)
		WHERE evaluated_at IS NULL;`

const selectColumns = `
	SELECT id, run_id, signal_date, target_date, theme_id, theme_name, rank, score,
		   signal_type, confidence, timing, stars, proxy_etf, entry_price,
		   exit_price, exit_price_date, return_pct, evaluated_at, hit, evaluation_note, created_at
	FROM ledger.signal_predictions`

// PostgresStore is the durable PredictionStore
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore 새 저장소 생성
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the ledger schema and table when missing
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("ensure ledger schema: %w", err)
	}
	return nil
}

// InsertIfAbsent 예측 일괄 저장 (기존 키는 건드리지 않음)
func (s *PostgresStore) InsertIfAbsent(ctx context.Context, rows []contracts.SignalPrediction) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO ledger.signal_predictions
			(run_id, signal_date, target_date, theme_id, theme_name, rank, score,
			 signal_type, confidence, timing, stars, proxy_etf, entry_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (signal_date, theme_id) DO NOTHING`

	for _, r := range rows {
		batch.Queue(query,
			r.RunID, r.SignalDate, r.TargetDate, r.ThemeID, r.ThemeName, r.Rank, r.Score,
			r.SignalType, r.Confidence, r.Timing, r.Stars, r.ProxyETF, r.EntryPrice, r.CreatedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	inserted := 0
	for range rows {
		tag, err := br.Exec()
		if err != nil {
			return inserted, err
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

// UpdateEvaluation 평가 결과 기록 (pending 행만)
func (s *PostgresStore) UpdateEvaluation(ctx context.Context, id int64, eval contracts.PredictionEvaluation) error {
	query := `
		UPDATE ledger.signal_predictions SET
			exit_price = $2,
			exit_price_date = $3,
			return_pct = $4,
			hit = $5,
			evaluation_note = $6,
			evaluated_at = $7
		WHERE id = $1 AND evaluated_at IS NULL`

	tag, err := s.pool.Exec(ctx, query,
		id, eval.ExitPrice, eval.ExitPriceDate, eval.ReturnPct, eval.Hit, eval.Note, eval.EvaluatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("prediction %d: %w", id, ErrNotPending)
	}
	return nil
}

// List 필터 조건으로 예측 조회
func (s *PostgresStore) List(ctx context.Context, filter contracts.PredictionFilter) ([]contracts.SignalPrediction, error) {
	query, args := buildListQuery(filter)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []contracts.SignalPrediction
	for rows.Next() {
		var p contracts.SignalPrediction
		if err := rows.Scan(
			&p.ID, &p.RunID, &p.SignalDate, &p.TargetDate, &p.ThemeID, &p.ThemeName, &p.Rank, &p.Score,
			&p.SignalType, &p.Confidence, &p.Timing, &p.Stars, &p.ProxyETF, &p.EntryPrice,
			&p.ExitPrice, &p.ExitPriceDate, &p.ReturnPct, &p.EvaluatedAt, &p.Hit, &p.EvaluationNote, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// buildListQuery renders the filter into a parameterized SELECT
func buildListQuery(f contracts.PredictionFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if f.PendingOnly {
		where = append(where, "evaluated_at IS NULL")
	}
	if f.EvaluatedOnly {
		where = append(where, "evaluated_at IS NOT NULL")
	}
	if f.TargetFrom != nil {
		add("target_date >= $%d", *f.TargetFrom)
	}
	if f.TargetTo != nil {
		add("target_date <= $%d", *f.TargetTo)
	}
	if f.Timing != "" {
		add("timing = $%d", f.Timing)
	}
	if f.Confidence != "" {
		add("confidence = $%d", f.Confidence)
	}

	var b strings.Builder
	b.WriteString(selectColumns)
	if len(where) > 0 {
		b.WriteString("\n\tWHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString("\n\tORDER BY signal_date, rank")
	if f.Limit > 0 {
		args = append(args, f.Limit)
		fmt.Fprintf(&b, "\n\tLIMIT $%d", len(args))
	}
	return b.String(), args
}
