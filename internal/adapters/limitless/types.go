package limitless

import (
	"fmt"
	"strconv"
	"strings"
)

// DTOs raw de la API de Limitless. Solo se usan dentro de este paquete.

// marketsPage es la respuesta de GET /markets/active/{category}.
type marketsPage struct {
	Data              []market `json:"data"`
	TotalMarketsCount int      `json:"totalMarketsCount"`
}

// market es un mercado activo. volume y liquidity vienen en unidades mínimas
// del token colateral (USDC: 6 decimales).
type market struct {
	ID              int             `json:"id"`
	Title           string          `json:"title"`
	Slug            string          `json:"slug"`
	Prices          []number        `json:"prices"`
	Volume          number          `json:"volume"`
	Liquidity       number          `json:"liquidity"`
	TradeType       string          `json:"tradeType"` // "amm" | "clob"
	Status          string          `json:"status"`
	Expired         bool            `json:"expired"`
	CollateralToken collateralToken `json:"collateralToken"`
}

type collateralToken struct {
	Symbol   string `json:"symbol"`
	Decimals *int   `json:"decimals"`
}

// orderbook es la respuesta de GET /markets/{slug}/orderbook.
// Precios en [0,1]; tamaños en unidades mínimas del colateral.
type orderbook struct {
	Bids []level `json:"bids"`
	Asks []level `json:"asks"`
}

type level struct {
	Price number `json:"price"`
	Size  number `json:"size"`
}

// number acepta números JSON, strings numéricos, "" y null (→ 0).
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
