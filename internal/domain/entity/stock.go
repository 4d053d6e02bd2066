package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stock representa el stock materializado de un producto en una bodega.
// Derivado del libro de movimientos; se mantiene para lecturas rápidas.
// Una fila en cero se conserva: distingue "agotado" de "nunca existió".
type Stock struct {
	ProductID         string
	WarehouseID       string
	QuantityAvailable decimal.Decimal
	UpdatedAt         time.Time
}
