package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/bluabaleno/premarket-tracker/internal/domain"
)

// positionFile es el formato de -add-positions: un array de posiciones.
//
//	[{"name": "Zama arb", "legs": [
//	  {"platform": "limitless", "market": "zama-fdv-1b", "direction": "yes", "shares": 100, "entry_price": 0.4}
//	]}]
type positionFile struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	OpenedAt time.Time `json:"opened_at"`
	Legs     []legFile `json:"legs"`
}

type legFile struct {
	Platform   string  `json:"platform"`
	Market     string  `json:"market"`
	Direction  string  `json:"direction"`
	Shares     float64 `json:"shares"`
	EntryPrice float64 `json:"entry_price"`
	Cost       float64 `json:"cost"`
}

// positionsFromFile lee y valida las posiciones. Sin id se genera un UUID;
// sin opened_at se usa now.
func positionsFromFile(path string, now time.Time) ([]domain.Position, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read positions %q: %w", path, err)
	}
	var files []positionFile
	if err := json.Unmarshal(raw, &files); err != nil {
		return nil, fmt.Errorf("parse positions %q: %w", path, err)
	}

	out := make([]domain.Position, 0, len(files))
	for i, f := range files {
		pos := domain.Position{ID: f.ID, Name: f.Name, OpenedAt: f.OpenedAt}
		if pos.ID == "" {
			pos.ID = uuid.NewString()
		}
		if pos.OpenedAt.IsZero() {
			pos.OpenedAt = now
		}
		for j, l := range f.Legs {
			platform, err := domain.ParsePlatform(l.Platform)
			if err != nil {
				return nil, fmt.Errorf("position %d leg %d: %w", i, j, err)
			}
			side, err := domain.ParseSide(l.Direction)
			if err != nil {
				return nil, fmt.Errorf("position %d leg %d: %w", i, j, err)
			}
			pos.Legs = append(pos.Legs, domain.Leg{
				Platform:   platform,
				Slug:       l.Market,
				Side:       side,
				Shares:     l.Shares,
				EntryPrice: l.EntryPrice,
				Cost:       l.Cost,
			})
		}
		if err := pos.Validate(); err != nil {
			return nil, fmt.Errorf("position %d: %w", i, err)
		}
		out = append(out, pos)
	}
	return out, nil
}
