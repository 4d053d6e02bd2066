package inventory

import (
	"context"

	"github.com/ntorres/acopio-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza la atomicidad del motor de
// conciliación: o aterrizan todas las filas de un movimiento o ninguna.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
	) error) error
	// ReadOnly ejecuta fn en una transacción de solo lectura con un único
	// snapshot para todas las consultas (REPEATABLE READ): libro y tabla se
	// leen en el mismo corte, sin tomar bloqueos.
	ReadOnly(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
	) error) error
}
