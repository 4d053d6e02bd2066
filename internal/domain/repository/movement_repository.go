package repository

import (
	"time"

	"github.com/ntorres/acopio-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// MovementRepository define el puerto de persistencia del libro de movimientos
// (append-only: Create asigna el ID; Delete existe solo como vía administrativa
// de limpieza y siempre va seguido de un rebuild).
type MovementRepository interface {
	Create(movement *entity.Movement) error
	GetByID(id int64) (*entity.Movement, error)
	// ListAll devuelve el libro completo en orden de inserción (id ascendente),
	// para replay del agregador.
	ListAll() ([]*entity.Movement, error)
	ListByWarehouse(warehouseID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error)
	ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error)
	// ExistsReference verifica la guarda de idempotencia: mismo documento de
	// referencia, misma cantidad y misma fecha del hecho.
	ExistsReference(referenceDocument string, quantity decimal.Decimal, occurredAt time.Time) (bool, error)
	Delete(id int64) error
}
