package inventory

import (
	"sort"

	"github.com/ntorres/acopio-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// StockKey identifica una entrada de stock materializado (producto + bodega).
type StockKey struct {
	ProductID   string
	WarehouseID string
}

// Delta es el aporte con signo de un movimiento sobre una clave de stock.
type Delta struct {
	Key      StockKey
	Quantity decimal.Decimal // positivo incrementa, negativo decrementa
}

// Deltas descompone un movimiento en sus aportes por clave:
// receipt suma en destino, issue resta en origen, transfer resta en origen
// y suma en destino. Un kind desconocido no aporta nada (el caso de uso lo
// rechaza antes de persistir).
func Deltas(m *entity.Movement) []Delta {
	switch m.Kind {
	case entity.MovementKindReceipt:
		return []Delta{
			{Key: StockKey{m.ProductID, m.DestinationWarehouseID}, Quantity: m.Quantity},
		}
	case entity.MovementKindIssue:
		return []Delta{
			{Key: StockKey{m.ProductID, m.SourceWarehouseID}, Quantity: m.Quantity.Neg()},
		}
	case entity.MovementKindTransfer:
		return []Delta{
			{Key: StockKey{m.ProductID, m.SourceWarehouseID}, Quantity: m.Quantity.Neg()},
			{Key: StockKey{m.ProductID, m.DestinationWarehouseID}, Quantity: m.Quantity},
		}
	}
	return nil
}

// ApplyFloored aplica un delta a una cantidad materializada con piso en cero.
// El piso es regla de negocio documentada: el libro registra la salida completa
// pero el stock visible nunca queda negativo.
func ApplyFloored(current, delta decimal.Decimal) decimal.Decimal {
	next := current.Add(delta)
	if next.IsNegative() {
		return decimal.Zero
	}
	return next
}

// Aggregate pliega el libro completo en cantidades por (producto, bodega).
// El replay se hace en orden de inserción (id ascendente) y el piso en cero se
// aplica en cada decremento, igual que en la aplicación incremental: rebuild e
// incremental comparten aritmética para que el resultado sea reproducible.
// Función pura, sin I/O.
func Aggregate(movements []*entity.Movement) map[StockKey]decimal.Decimal {
	ordered := make([]*entity.Movement, len(movements))
	copy(ordered, movements)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	result := make(map[StockKey]decimal.Decimal)
	for _, m := range ordered {
		for _, d := range Deltas(m) {
			result[d.Key] = ApplyFloored(result[d.Key], d.Quantity)
		}
	}
	return result
}

// SignedTotals calcula la suma con signo por clave, sin piso en cero.
// Es la vista de auditoría/exportación: puede ser negativa si el libro
// registró más salidas que entradas para una clave.
func SignedTotals(movements []*entity.Movement) map[StockKey]decimal.Decimal {
	result := make(map[StockKey]decimal.Decimal)
	for _, m := range movements {
		for _, d := range Deltas(m) {
			result[d.Key] = result[d.Key].Add(d.Quantity)
		}
	}
	return result
}
