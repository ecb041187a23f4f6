package domain

import "strconv"

// OrderBook representa el libro de órdenes del lado YES de un mercado.
type OrderBook struct {
	Bids []BookEntry // ordenados mayor a menor precio
	Asks []BookEntry // ordenados menor a mayor precio
}

// BookEntry es un nivel de precio en el orderbook.
type BookEntry struct {
	Price float64
	Size  float64
}

// BestBid devuelve el mejor precio de compra (mayor bid).
// Devuelve 0 si el book está vacío.
func (ob OrderBook) BestBid() float64 {
	if len(ob.Bids) == 0 {
		return 0
	}
	return ob.Bids[0].Price
}

// BestAsk devuelve el mejor precio de venta (menor ask).
// Devuelve 0 si el book está vacío.
func (ob OrderBook) BestAsk() float64 {
	if len(ob.Asks) == 0 {
		return 0
	}
	return ob.Asks[0].Price
}

// Midpoint devuelve el punto medio entre best bid y best ask.
func (ob OrderBook) Midpoint() float64 {
	bid := ob.BestBid()
	ask := ob.BestAsk()
	if bid == 0 || ask == 0 {
		return 0
	}
	return (bid + ask) / 2
}

// SpreadPP devuelve el spread bid/ask en puntos porcentuales.
// ok=false si falta un lado o los precios están en los extremos (0 / 1).
func (ob OrderBook) SpreadPP() (float64, bool) {
	bid := ob.BestBid()
	ask := ob.BestAsk()
	if bid <= 0 || ask <= 0 || ask >= 1 {
		return 0, false
	}
	return (ask - bid) * 100, true
}

// DepthWithinUSDC calcula el valor en USDC (size × price) de las órdenes
// dentro de un spread dado respecto al midpoint.
func (ob OrderBook) DepthWithinUSDC(maxSpread float64) float64 {
	mid := ob.Midpoint()
	if mid == 0 {
		return 0
	}
	var total float64
	for _, b := range ob.Bids {
		if mid-b.Price <= maxSpread {
			total += b.Size * b.Price
		}
	}
	for _, a := range ob.Asks {
		if a.Price-mid <= maxSpread {
			total += a.Size * a.Price
		}
	}
	return total
}

// ParsePrice convierte un string de precio a float64.
// Usado en el mapping de las APIs.
func ParsePrice(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
