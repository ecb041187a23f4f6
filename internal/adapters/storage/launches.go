package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bluabaleno/premarket-tracker/internal/domain"
)

const tgeDateLayout = "2006-01-02"

// RecordLaunches inserta los lanzamientos que no existían y devuelve esos.
// Un proyecto ya registrado no se actualiza: la primera detección manda.
func (s *SQLiteStorage) RecordLaunches(ctx context.Context, launches []domain.Launch) ([]domain.Launch, error) {
	if len(launches) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("storage.RecordLaunches: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO launches
			(project_key, project, tge_date, first_close, fdv_amount, fdv_label,
			 fdv_volume, launch_volume, other_volume, lim_volume, detected_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("storage.RecordLaunches: prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UnixNano()
	var added []domain.Launch
	for _, l := range launches {
		var amount sql.NullFloat64
		var label sql.NullString
		if l.FDVResult != nil {
			amount = sql.NullFloat64{Float64: l.FDVResult.Amount, Valid: true}
			label = sql.NullString{String: l.FDVResult.Label, Valid: true}
		}
		res, err := stmt.ExecContext(ctx,
			domain.NormalizeName(l.Project), l.Project, l.TGEDate.Format(tgeDateLayout),
			l.FirstClose.UnixNano(), amount, label,
			l.FDVVolume, l.LaunchVolume, l.OtherVolume, l.LimVolume, now,
		)
		if err != nil {
			return nil, fmt.Errorf("storage.RecordLaunches: insert %s: %w", l.Project, err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			added = append(added, l)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("storage.RecordLaunches: commit: %w", err)
	}
	return added, nil
}

// ListLaunches devuelve todos los lanzamientos registrados.
func (s *SQLiteStorage) ListLaunches(ctx context.Context) ([]domain.Launch, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT project, tge_date, first_close, fdv_amount, fdv_label,
		       fdv_volume, launch_volume, other_volume, lim_volume
		FROM launches
		ORDER BY tge_date DESC, project`)
	if err != nil {
		return nil, fmt.Errorf("storage.ListLaunches: query: %w", err)
	}
	defer rows.Close()

	var out []domain.Launch
	for rows.Next() {
		var l domain.Launch
		var tge string
		var firstClose int64
		var amount sql.NullFloat64
		var label sql.NullString
		if err := rows.Scan(&l.Project, &tge, &firstClose, &amount, &label,
			&l.FDVVolume, &l.LaunchVolume, &l.OtherVolume, &l.LimVolume); err != nil {
			return nil, fmt.Errorf("storage.ListLaunches: scan row: %w", err)
		}
		if l.TGEDate, err = time.Parse(tgeDateLayout, tge); err != nil {
			return nil, fmt.Errorf("storage.ListLaunches: tge date %q: %w", tge, err)
		}
		l.FirstClose = time.Unix(0, firstClose).UTC()
		if amount.Valid {
			l.FDVResult = domain.ThresholdKey(amount.Float64, label.String)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
