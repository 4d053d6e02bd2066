package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SubmitMovementRequest body para POST /api/movements.
type SubmitMovementRequest struct {
	Kind                   string          `json:"kind"`
	ProductID              string          `json:"product_id"`
	SourceWarehouseID      string          `json:"source_warehouse_id,omitempty"`
	DestinationWarehouseID string          `json:"destination_warehouse_id,omitempty"`
	Quantity               decimal.Decimal `json:"quantity"`
	OccurredAt             time.Time       `json:"occurred_at"`
	ReferenceDocument      string          `json:"reference_document,omitempty"`
	CreatedBy              string          `json:"created_by"`
}

// MovementResponse respuesta al registrar o listar movimientos.
type MovementResponse struct {
	ID                     int64           `json:"id"`
	Kind                   string          `json:"kind"`
	ProductID              string          `json:"product_id"`
	SourceWarehouseID      string          `json:"source_warehouse_id,omitempty"`
	DestinationWarehouseID string          `json:"destination_warehouse_id,omitempty"`
	Quantity               decimal.Decimal `json:"quantity"`
	OccurredAt             time.Time       `json:"occurred_at"`
	ReferenceDocument      string          `json:"reference_document,omitempty"`
	CreatedBy              string          `json:"created_by"`
	CreatedAt              time.Time       `json:"created_at"`
}

// StockResponse una fila de stock materializado.
type StockResponse struct {
	ProductID         string          `json:"product_id"`
	WarehouseID       string          `json:"warehouse_id"`
	QuantityAvailable decimal.Decimal `json:"quantity_available"`
	UpdatedAt         time.Time       `json:"updated_at"`
}
