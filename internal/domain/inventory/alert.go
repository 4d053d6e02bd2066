package inventory

import "github.com/shopspring/decimal"

// Level clasifica el nivel de stock de una clave frente a su umbral.
type Level string

const (
	LevelEmpty    Level = "empty"
	LevelCritical Level = "critical"
	LevelLow      Level = "low"
	LevelOK       Level = "ok"
)

var two = decimal.NewFromInt(2)

// Classify clasifica una cantidad materializada frente al umbral del producto:
// empty si qty <= 0; critical si 0 < qty <= umbral/2; low si umbral/2 < qty <= umbral;
// ok en el resto. Umbral <= 0 significa sin umbral configurado: solo se
// distingue empty/ok. Función pura, la consumen los dashboards por cada fila.
func Classify(quantity, threshold decimal.Decimal) Level {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return LevelEmpty
	}
	if threshold.LessThanOrEqual(decimal.Zero) {
		return LevelOK
	}
	if quantity.LessThanOrEqual(threshold.Div(two)) {
		return LevelCritical
	}
	if quantity.LessThanOrEqual(threshold) {
		return LevelLow
	}
	return LevelOK
}
