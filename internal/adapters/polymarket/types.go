package polymarket

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// DTOs raw de la API de Polymarket. Solo se usan dentro de este paquete.
// La conversión a domain entities se hace en mapping.go.

// --- Gamma API ---

// gammaEvent es un evento de GET /events. Cada evento agrupa los mercados
// binarios de un mismo proyecto ("Zama FDV above ... one day after launch?").
type gammaEvent struct {
	Slug      string        `json:"slug"`
	Title     string        `json:"title"`
	Volume    number        `json:"volume"`
	Liquidity number        `json:"liquidity"`
	Closed    bool          `json:"closed"`
	Markets   []gammaMarket `json:"markets"`
}

// gammaMarket es un mercado binario dentro de un evento.
// outcomePrices y clobTokenIds llegan como arrays JSON serializados en un string.
type gammaMarket struct {
	Question      string     `json:"question"`
	Slug          string     `json:"slug"`
	OutcomePrices stringList `json:"outcomePrices"`
	ClobTokenIDs  stringList `json:"clobTokenIds"`
	Volume        number     `json:"volume"`
	Closed        bool       `json:"closed"`
	ClosedTime    string     `json:"closedTime"` // "2026-01-16 23:51:26+00"
}

// --- CLOB API ---

// orderBookRequest es el body del POST /books batch.
type orderBookRequest struct {
	TokenID string `json:"token_id"`
}

// orderBookResponse es la respuesta de un item en POST /books.
type orderBookResponse struct {
	AssetID string         `json:"asset_id"`
	Bids    []bookEntryRaw `json:"bids"`
	Asks    []bookEntryRaw `json:"asks"`
}

// bookEntryRaw es un nivel de precio raw de la API (strings para mayor precisión).
type bookEntryRaw struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}

// number acepta números JSON, strings numéricos, "" y null (→ 0).
// Gamma mezcla los tres formatos según el campo y el endpoint.
type number float64

func (n *number) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse number %q: %w", s, err)
	}
	*n = number(v)
	return nil
}

// stringList acepta tanto un array JSON como un array JSON serializado en un
// string ("[\"0.62\", \"0.38\"]"). Los elementos numéricos se guardan como texto.
type stringList []string

func (l *stringList) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*l = nil
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var inner string
		if err := json.Unmarshal(b, &inner); err != nil {
			return err
		}
		if strings.TrimSpace(inner) == "" {
			*l = nil
			return nil
		}
		b = []byte(inner)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("parse list: %w", err)
	}
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		var s string
		if err := json.Unmarshal(r, &s); err != nil {
			s = string(r)
		}
		out = append(out, s)
	}
	*l = out
	return nil
}
