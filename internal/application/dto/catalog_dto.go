package dto

import "github.com/shopspring/decimal"

// ProductResponse una entrada del catálogo de productos.
type ProductResponse struct {
	ID             string          `json:"id"`
	SKU            string          `json:"sku"`
	Name           string          `json:"name"`
	UnitMeasure    string          `json:"unit_measure"`
	AlertThreshold decimal.Decimal `json:"alert_threshold"`
}

// WarehouseResponse una entrada del catálogo de bodegas.
type WarehouseResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}
