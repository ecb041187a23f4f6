package domain

import (
	"fmt"
	"math"
)

// KeyKind es la variante de un MatchKey.
type KeyKind int

const (
	KeyThreshold KeyKind = iota // umbral monetario ("FDV above $500M")
	KeyDate                     // fecha límite ("launch by March 31, 2026")
)

func (k KeyKind) String() string {
	if k == KeyDate {
		return "date"
	}
	return "threshold"
}

// MatchKey es el valor con el que se emparejan mercados de un mismo proyecto.
// Para KeyThreshold solo cuenta Amount; para KeyDate solo cuenta Date.
type MatchKey struct {
	Kind   KeyKind
	Amount float64 // dólares absolutos, redondeado a la unidad
	Label  string  // forma compacta original, p.ej. "$500M"
	Date   string  // YYYY-MM-DD
}

// ThresholdKey construye un MatchKey de umbral.
func ThresholdKey(amount float64, label string) *MatchKey {
	return &MatchKey{Kind: KeyThreshold, Amount: math.Round(amount), Label: label}
}

// DateKey construye un MatchKey de fecha.
func DateKey(date string) *MatchKey {
	return &MatchKey{Kind: KeyDate, Date: date, Label: date}
}

// Equal compara dos claves. Variantes distintas nunca son iguales y la
// comparación numérica es exacta: la tolerancia vive en la canonicalización.
func (k *MatchKey) Equal(other *MatchKey) bool {
	if k == nil || other == nil || k.Kind != other.Kind {
		return false
	}
	if k.Kind == KeyDate {
		return k.Date == other.Date
	}
	return k.Amount == other.Amount
}

func (k *MatchKey) String() string {
	if k == nil {
		return "-"
	}
	if k.Kind == KeyDate {
		return "by " + k.Date
	}
	if k.Label != "" {
		return k.Label
	}
	return fmt.Sprintf("$%.0f", k.Amount)
}
