package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto almacenable (catálogo externo, lectura aquí).
// AlertThreshold es el umbral configurado para clasificar niveles de stock;
// cero o negativo significa que solo se distingue vacío/ok.
type Product struct {
	ID             string
	SKU            string
	Name           string
	UnitMeasure    string // toneladas en este dominio
	AlertThreshold decimal.Decimal
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
