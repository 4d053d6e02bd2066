package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/ntorres/acopio-api/internal/domain/entity"
	"github.com/ntorres/acopio-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con
// pool o tx). Tabla stock con clave compuesta (product_id, warehouse_id) y
// quantity_available NUMERIC(14,2).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene la fila de stock; nil si la clave nunca ha tenido movimientos.
func (r *StockRepo) Get(productID, warehouseID string) (*entity.Stock, error) {
	query := `
		SELECT product_id, warehouse_id, quantity_available, updated_at
		FROM stock WHERE product_id = $1 AND warehouse_id = $2`
	var s entity.Stock
	err := r.q.QueryRow(context.Background(), query, productID, warehouseID).Scan(
		&s.ProductID, &s.WarehouseID, &s.QuantityAvailable, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return &s, nil
}

// GetForUpdate obtiene el stock y bloquea la fila (SELECT FOR UPDATE).
// Si la fila no existe, primero la materializa en cero (ON CONFLICT DO
// NOTHING) y repite el SELECT: un FOR UPDATE sobre cero filas no bloquea
// nada, y dos transacciones que estrenan la misma clave se pisarían la
// primera escritura entre sí. Con la fila en cero ya insertada, la segunda
// transacción queda esperando el bloqueo de la primera.
func (r *StockRepo) GetForUpdate(productID, warehouseID string) (*entity.Stock, error) {
	query := `
		SELECT product_id, warehouse_id, quantity_available, updated_at
		FROM stock WHERE product_id = $1 AND warehouse_id = $2
		FOR UPDATE`
	var s entity.Stock
	err := r.q.QueryRow(context.Background(), query, productID, warehouseID).Scan(
		&s.ProductID, &s.WarehouseID, &s.QuantityAvailable, &s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		insert := `
			INSERT INTO stock (product_id, warehouse_id, quantity_available, updated_at)
			VALUES ($1, $2, 0, now())
			ON CONFLICT (product_id, warehouse_id) DO NOTHING`
		if _, err := r.q.Exec(context.Background(), insert, productID, warehouseID); err != nil {
			return nil, fmt.Errorf("init stock row: %w", err)
		}
		err = r.q.QueryRow(context.Background(), query, productID, warehouseID).Scan(
			&s.ProductID, &s.WarehouseID, &s.QuantityAvailable, &s.UpdatedAt,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return &s, nil
}

// Upsert inserta o actualiza la cantidad materializada de una clave.
func (r *StockRepo) Upsert(stock *entity.Stock) error {
	query := `
		INSERT INTO stock (product_id, warehouse_id, quantity_available, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (product_id, warehouse_id)
		DO UPDATE SET quantity_available = EXCLUDED.quantity_available, updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(context.Background(), query,
		stock.ProductID, stock.WarehouseID, stock.QuantityAvailable, stock.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert stock: %w", err)
	}
	return nil
}

// List devuelve el stock materializado; warehouseID vacío = todas las bodegas.
func (r *StockRepo) List(warehouseID string, limit, offset int) ([]*entity.Stock, error) {
	query := `
		SELECT product_id, warehouse_id, quantity_available, updated_at
		FROM stock`
	args := []any{}
	if warehouseID != "" {
		query += ` WHERE warehouse_id = $1`
		args = append(args, warehouseID)
	}
	query += fmt.Sprintf(" ORDER BY product_id, warehouse_id LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()
	return collectStock(rows)
}

// ListAll devuelve la tabla completa, para verify y rebuild.
func (r *StockRepo) ListAll() ([]*entity.Stock, error) {
	query := `
		SELECT product_id, warehouse_id, quantity_available, updated_at
		FROM stock ORDER BY product_id, warehouse_id`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list all stock: %w", err)
	}
	defer rows.Close()
	return collectStock(rows)
}

// DeleteAll vacía la tabla materializada (solo dentro de la tx de un rebuild).
func (r *StockRepo) DeleteAll() error {
	if _, err := r.q.Exec(context.Background(), `DELETE FROM stock`); err != nil {
		return fmt.Errorf("delete all stock: %w", err)
	}
	return nil
}

// LockExclusive toma el bloqueo de tabla que serializa un rebuild frente a
// los apply incrementales (que bloquean filas con FOR UPDATE). Solo tiene
// efecto dentro de una transacción; se libera en Commit/Rollback.
func (r *StockRepo) LockExclusive() error {
	if _, err := r.q.Exec(context.Background(), `LOCK TABLE stock IN EXCLUSIVE MODE`); err != nil {
		return fmt.Errorf("lock stock table: %w", err)
	}
	return nil
}

func collectStock(rows pgx.Rows) ([]*entity.Stock, error) {
	var list []*entity.Stock
	for rows.Next() {
		var s entity.Stock
		if err := rows.Scan(&s.ProductID, &s.WarehouseID, &s.QuantityAvailable, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}
