package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del libro de existencias (value object conceptual).
const (
	MovementKindReceipt  = "receipt"  // entrada de mercancía a bodega destino
	MovementKindIssue    = "issue"    // salida de mercancía desde bodega origen
	MovementKindTransfer = "transfer" // traslado entre bodegas
)

// Movement representa un hecho inmutable del libro de existencias.
// Una vez persistido nunca se modifica: las correcciones se registran como
// movimientos compensatorios (la eliminación directa es solo una vía
// administrativa de limpieza, no un camino normal).
type Movement struct {
	ID                     int64 // asignado por la BD (BIGSERIAL), monótono por inserción
	Kind                   string
	ProductID              string
	SourceWarehouseID      string          // vacío para receipt
	DestinationWarehouseID string          // vacío para issue
	Quantity               decimal.Decimal // toneladas, siempre > 0
	OccurredAt             time.Time       // fecha del hecho físico, no de la inserción
	ReferenceDocument      string          // remisión, factura u orden asociada (opcional)
	CreatedBy              string          // UserID del operador que lo registró
	CreatedAt              time.Time
}

// TouchesWarehouse indica si el movimiento afecta a la bodega dada, como
// origen o como destino.
func (m *Movement) TouchesWarehouse(warehouseID string) bool {
	return m.SourceWarehouseID == warehouseID || m.DestinationWarehouseID == warehouseID
}
