package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/bluabaleno/premarket-tracker/internal/domain"
)

// SavePosition crea o reemplaza la posición con todas sus patas.
func (s *SQLiteStorage) SavePosition(ctx context.Context, pos domain.Position) error {
	if err := pos.Validate(); err != nil {
		return fmt.Errorf("storage.SavePosition: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SavePosition: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO positions (id, name, opened_at) VALUES (?, ?, ?)`,
		pos.ID, pos.Name, pos.OpenedAt.UnixNano(),
	); err != nil {
		return fmt.Errorf("storage.SavePosition: upsert %s: %w", pos.ID, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM position_legs WHERE position_id = ?`, pos.ID); err != nil {
		return fmt.Errorf("storage.SavePosition: clear legs %s: %w", pos.ID, err)
	}
	for i, l := range pos.Legs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO position_legs
				(position_id, leg_index, platform, slug, side, shares, entry_price, cost)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			pos.ID, i, l.Platform.String(), l.Slug, string(l.Side), l.Shares, l.EntryPrice, l.Cost,
		); err != nil {
			return fmt.Errorf("storage.SavePosition: insert leg %s/%d: %w", pos.ID, i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SavePosition: commit: %w", err)
	}
	return nil
}

// DeletePosition borra la posición y sus patas.
// Devuelve domain.ErrUnknownPosition si el id no existe.
func (s *SQLiteStorage) DeletePosition(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.DeletePosition: begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM positions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("storage.DeletePosition: %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("storage.DeletePosition: %w: %s", domain.ErrUnknownPosition, id)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM position_legs WHERE position_id = ?`, id); err != nil {
		return fmt.Errorf("storage.DeletePosition: legs %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.DeletePosition: commit: %w", err)
	}
	return nil
}

// ListPositions devuelve las posiciones por fecha de apertura, la más antigua primero.
func (s *SQLiteStorage) ListPositions(ctx context.Context) ([]domain.Position, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.name, p.opened_at,
		       l.platform, l.slug, l.side, l.shares, l.entry_price, l.cost
		FROM positions p
		JOIN position_legs l ON l.position_id = p.id
		ORDER BY p.opened_at, p.id, l.leg_index`)
	if err != nil {
		return nil, fmt.Errorf("storage.ListPositions: query: %w", err)
	}
	defer rows.Close()

	var out []domain.Position
	for rows.Next() {
		var id, name, platform, side string
		var openedAt int64
		var l domain.Leg
		if err := rows.Scan(&id, &name, &openedAt,
			&platform, &l.Slug, &side, &l.Shares, &l.EntryPrice, &l.Cost); err != nil {
			return nil, fmt.Errorf("storage.ListPositions: scan row: %w", err)
		}
		if l.Platform, err = domain.ParsePlatform(platform); err != nil {
			return nil, fmt.Errorf("storage.ListPositions: %w", err)
		}
		if l.Side, err = domain.ParseSide(side); err != nil {
			return nil, fmt.Errorf("storage.ListPositions: %w", err)
		}

		if n := len(out); n == 0 || out[n-1].ID != id {
			out = append(out, domain.Position{ID: id, Name: name, OpenedAt: time.Unix(0, openedAt).UTC()})
		}
		last := &out[len(out)-1]
		last.Legs = append(last.Legs, l)
	}
	return out, rows.Err()
}
