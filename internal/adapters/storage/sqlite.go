package storage

// sqlite.go — histórico de ciclos del tracker.
//
// Estrategia:
//   - `cycles`: resumen ligero por ciclo (conteos, mejor edge). Siempre 1 fila.
//   - `quotes`: snapshot completo de cotizaciones por ciclo. Es la base de la
//     comparación con el ciclo anterior (movimientos de precio).
//   - Los instantes se guardan como unix nanos para comparar sin parsear.
//   - Prune automático al arrancar: ciclos (y sus quotes) > 90d.
//   - `launches` y `positions`/`position_legs` no caducan.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/bluabaleno/premarket-tracker/internal/domain"
	"github.com/bluabaleno/premarket-tracker/internal/ports"
)

const schema = `
-- Resumen ligero por ciclo
CREATE TABLE IF NOT EXISTS cycles (
    id             TEXT    PRIMARY KEY,
    run_at         INTEGER NOT NULL,
    poly_markets   INTEGER NOT NULL DEFAULT 0,
    lim_markets    INTEGER NOT NULL DEFAULT 0,
    matched        INTEGER NOT NULL DEFAULT 0,
    gap_candidates INTEGER NOT NULL DEFAULT 0,
    arbs           INTEGER NOT NULL DEFAULT 0,
    best_edge_pct  REAL    NOT NULL DEFAULT 0
);

-- Snapshot de cotizaciones de cada ciclo
CREATE TABLE IF NOT EXISTS quotes (
    cycle_id       TEXT    NOT NULL,
    platform       TEXT    NOT NULL,
    project        TEXT    NOT NULL,
    raw_title      TEXT,
    question       TEXT,
    slug           TEXT    NOT NULL,
    yes_price      REAL    NOT NULL,
    volume         REAL    NOT NULL DEFAULT 0,
    depth          REAL    NOT NULL DEFAULT 0,
    liquidity_type TEXT    NOT NULL DEFAULT 'amm',
    closed         INTEGER NOT NULL DEFAULT 0,
    key_kind       TEXT,
    key_amount     REAL,
    key_label      TEXT,
    key_date       TEXT
);

-- Lanzamientos detectados, uno por proyecto normalizado
CREATE TABLE IF NOT EXISTS launches (
    project_key   TEXT    PRIMARY KEY,
    project       TEXT    NOT NULL,
    tge_date      TEXT    NOT NULL,
    first_close   INTEGER NOT NULL,
    fdv_amount    REAL,
    fdv_label     TEXT,
    fdv_volume    REAL    NOT NULL DEFAULT 0,
    launch_volume REAL    NOT NULL DEFAULT 0,
    other_volume  REAL    NOT NULL DEFAULT 0,
    lim_volume    REAL    NOT NULL DEFAULT 0,
    detected_at   INTEGER NOT NULL
);

-- Posiciones del usuario y sus patas
CREATE TABLE IF NOT EXISTS positions (
    id        TEXT    PRIMARY KEY,
    name      TEXT    NOT NULL DEFAULT '',
    opened_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS position_legs (
    position_id TEXT    NOT NULL,
    leg_index   INTEGER NOT NULL,
    platform    TEXT    NOT NULL,
    slug        TEXT    NOT NULL,
    side        TEXT    NOT NULL,
    shares      REAL    NOT NULL,
    entry_price REAL    NOT NULL,
    cost        REAL    NOT NULL DEFAULT 0,
    PRIMARY KEY (position_id, leg_index)
);

CREATE INDEX IF NOT EXISTS idx_cycles_run_at ON cycles(run_at DESC);
CREATE INDEX IF NOT EXISTS idx_quotes_cycle  ON quotes(cycle_id);
`

const retentionCycles = 90 * 24 * time.Hour

// SQLiteStorage implementa ports.Storage, ports.LaunchStore y
// ports.PortfolioStore usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada.
// Aplica el schema y limpia datos antiguos.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	s := &SQLiteStorage{db: db}
	if err := s.pruneOld(context.Background(), time.Now()); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: %w", err)
	}
	return s, nil
}

// SaveCycle persiste el resumen del ciclo y todas sus cotizaciones en una transacción.
func (s *SQLiteStorage) SaveCycle(ctx context.Context, cycle domain.Cycle) error {
	sum := summarize(cycle)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveCycle: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO cycles (id, run_at, poly_markets, lim_markets, matched, gap_candidates, arbs, best_edge_pct)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sum.ID, sum.RunAt.UnixNano(), sum.PolyMarkets, sum.LimMarkets,
		sum.Matched, sum.GapCandidates, sum.Arbs, sum.BestEdgePct,
	); err != nil {
		return fmt.Errorf("storage.SaveCycle: insert cycle: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO quotes
			(cycle_id, platform, project, raw_title, question, slug, yes_price, volume,
			 depth, liquidity_type, closed, key_kind, key_amount, key_label, key_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("storage.SaveCycle: prepare: %w", err)
	}
	defer stmt.Close()

	for _, q := range cycle.Quotes() {
		closed := 0
		if q.Closed {
			closed = 1
		}
		var kind, label, date sql.NullString
		var amount sql.NullFloat64
		if q.Key != nil {
			kind = sql.NullString{String: q.Key.Kind.String(), Valid: true}
			label = sql.NullString{String: q.Key.Label, Valid: true}
			if q.Key.Kind == domain.KeyDate {
				date = sql.NullString{String: q.Key.Date, Valid: true}
			} else {
				amount = sql.NullFloat64{Float64: q.Key.Amount, Valid: true}
			}
		}

		if _, err := stmt.ExecContext(ctx,
			cycle.ID, q.Platform.String(), q.Project, q.ProjectRawTitle, q.Question, q.Slug,
			q.YesPrice, q.Volume, q.Liquidity.Depth, string(q.Liquidity.Type), closed,
			kind, amount, label, date,
		); err != nil {
			return fmt.Errorf("storage.SaveCycle: insert quote %s/%s: %w", q.Platform, q.Slug, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveCycle: commit: %w", err)
	}
	return nil
}

// PreviousQuotes devuelve las cotizaciones del ciclo más reciente anterior a before.
func (s *SQLiteStorage) PreviousQuotes(ctx context.Context, before time.Time) ([]domain.MarketQuote, error) {
	var cycleID string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM cycles WHERE run_at < ? ORDER BY run_at DESC LIMIT 1`,
		before.UnixNano(),
	).Scan(&cycleID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage.PreviousQuotes: find cycle: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT platform, project, raw_title, question, slug, yes_price, volume,
		       depth, liquidity_type, closed, key_kind, key_amount, key_label, key_date
		FROM quotes
		WHERE cycle_id = ?
		ORDER BY rowid`, cycleID)
	if err != nil {
		return nil, fmt.Errorf("storage.PreviousQuotes: query: %w", err)
	}
	defer rows.Close()

	var quotes []domain.MarketQuote
	for rows.Next() {
		var q domain.MarketQuote
		var platform, liqType string
		var rawTitle, question sql.NullString
		var closed int
		var kind, label, date sql.NullString
		var amount sql.NullFloat64

		if err := rows.Scan(
			&platform, &q.Project, &rawTitle, &question, &q.Slug, &q.YesPrice, &q.Volume,
			&q.Liquidity.Depth, &liqType, &closed, &kind, &amount, &label, &date,
		); err != nil {
			return nil, fmt.Errorf("storage.PreviousQuotes: scan row: %w", err)
		}

		if q.Platform, err = domain.ParsePlatform(platform); err != nil {
			return nil, fmt.Errorf("storage.PreviousQuotes: %w", err)
		}
		q.ProjectRawTitle = rawTitle.String
		q.Question = question.String
		q.Liquidity.Type = domain.LiquidityType(liqType)
		q.Closed = closed == 1
		q.Key = restoreKey(kind, amount, label, date)
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}

// ListCycles devuelve los últimos limit ciclos, el más reciente primero.
func (s *SQLiteStorage) ListCycles(ctx context.Context, limit int) ([]ports.CycleSummary, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_at, poly_markets, lim_markets, matched, gap_candidates, arbs, best_edge_pct
		FROM cycles
		ORDER BY run_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("storage.ListCycles: query: %w", err)
	}
	defer rows.Close()

	var out []ports.CycleSummary
	for rows.Next() {
		var c ports.CycleSummary
		var runAt int64
		if err := rows.Scan(&c.ID, &runAt, &c.PolyMarkets, &c.LimMarkets,
			&c.Matched, &c.GapCandidates, &c.Arbs, &c.BestEdgePct); err != nil {
			return nil, fmt.Errorf("storage.ListCycles: scan row: %w", err)
		}
		c.RunAt = time.Unix(0, runAt).UTC()
		out = append(out, c)
	}
	return out, rows.Err()
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// --- helpers internos ---

// pruneOld elimina ciclos (y sus quotes) más antiguos que la retención.
func (s *SQLiteStorage) pruneOld(ctx context.Context, now time.Time) error {
	cutoff := now.Add(-retentionCycles).UnixNano()
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM quotes WHERE cycle_id IN (SELECT id FROM cycles WHERE run_at < ?)`, cutoff,
	); err != nil {
		return fmt.Errorf("prune quotes: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM cycles WHERE run_at < ?`, cutoff); err != nil {
		return fmt.Errorf("prune cycles: %w", err)
	}
	return nil
}

// summarize extrae la fila de resumen de un ciclo.
func summarize(c domain.Cycle) ports.CycleSummary {
	sum := ports.CycleSummary{
		ID:            c.ID,
		RunAt:         c.RunAt,
		Matched:       c.Evaluation.Report.TotalMatched,
		GapCandidates: c.Evaluation.Report.GapCandidates,
		Arbs:          len(c.Evaluation.Arbs),
	}
	for _, p := range c.Poly {
		sum.PolyMarkets += len(p.Markets)
	}
	for _, p := range c.Lim {
		sum.LimMarkets += len(p.Markets)
	}
	if len(c.Evaluation.Arbs) > 0 {
		sum.BestEdgePct = c.Evaluation.Arbs[0].EdgePct
	}
	return sum
}

func restoreKey(kind sql.NullString, amount sql.NullFloat64, label, date sql.NullString) *domain.MatchKey {
	if !kind.Valid {
		return nil
	}
	if kind.String == domain.KeyDate.String() {
		return domain.DateKey(date.String)
	}
	return domain.ThresholdKey(amount.Float64, label.String)
}
