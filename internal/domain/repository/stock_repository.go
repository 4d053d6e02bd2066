package repository

import "github.com/ntorres/acopio-api/internal/domain/entity"

// StockRepository define el puerto para la tabla materializada de stock.
// Usado dentro de transacciones para garantizar consistencia.
type StockRepository interface {
	// Get devuelve la fila o nil si la clave nunca ha tenido movimientos.
	Get(productID, warehouseID string) (*entity.Stock, error)
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE); si no
	// existe la materializa en cero y la bloquea, de modo que dos
	// transacciones que estrenan la misma clave se serializan sobre la fila.
	GetForUpdate(productID, warehouseID string) (*entity.Stock, error)
	Upsert(stock *entity.Stock) error
	// List con warehouseID vacío devuelve todas las bodegas.
	List(warehouseID string, limit, offset int) ([]*entity.Stock, error)
	ListAll() ([]*entity.Stock, error)
	// DeleteAll y LockExclusive solo tienen sentido dentro de la transacción
	// de un rebuild: LockExclusive toma el bloqueo de tabla que serializa el
	// rebuild frente a los apply incrementales.
	DeleteAll() error
	LockExclusive() error
}
