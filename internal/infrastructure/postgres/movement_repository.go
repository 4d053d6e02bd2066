package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ntorres/acopio-api/internal/domain"
	"github.com/ntorres/acopio-api/internal/domain/entity"
	"github.com/ntorres/acopio-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación del libro de movimientos sobre PostgreSQL
// (usable con pool o tx). Tabla stock_movements con id BIGSERIAL: el orden de
// inserción es el orden de replay.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, kind, product_id, source_warehouse_id, destination_warehouse_id,
		quantity, occurred_at, reference_document, created_by, created_at`

// Create persiste un movimiento y asigna el ID del BIGSERIAL.
// Con el índice único de idempotencia activo en la BD, un duplicado de
// (reference_document, quantity, occurred_at) vuelve como ErrDuplicate.
func (r *MovementRepo) Create(movement *entity.Movement) error {
	query := `
		INSERT INTO stock_movements (kind, product_id, source_warehouse_id, destination_warehouse_id,
			quantity, occurred_at, reference_document, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	err := r.q.QueryRow(context.Background(), query,
		movement.Kind, movement.ProductID,
		nullable(movement.SourceWarehouseID), nullable(movement.DestinationWarehouseID),
		movement.Quantity, movement.OccurredAt,
		nullable(movement.ReferenceDocument), movement.CreatedBy, movement.CreatedAt,
	).Scan(&movement.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID; nil si no existe.
func (r *MovementRepo) GetByID(id int64) (*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE id = $1`
	m, err := scanMovement(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// ListAll devuelve el libro completo en orden de inserción, para replay.
func (r *MovementRepo) ListAll() ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements ORDER BY id ASC`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list all movements: %w", err)
	}
	defer rows.Close()
	return collectMovements(rows)
}

// ListByWarehouse lista movimientos que tocan una bodega (como origen o
// destino) en un rango de fechas del hecho físico.
func (r *MovementRepo) ListByWarehouse(warehouseID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements
		WHERE (source_warehouse_id = $1 OR destination_warehouse_id = $1)`
	args := []any{warehouseID}
	query, args = appendDateRange(query, args, from, to)
	query += fmt.Sprintf(" ORDER BY occurred_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list by warehouse: %w", err)
	}
	defer rows.Close()
	return collectMovements(rows)
}

// ListByProduct lista movimientos de un producto en un rango de fechas.
func (r *MovementRepo) ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE product_id = $1`
	args := []any{productID}
	query, args = appendDateRange(query, args, from, to)
	query += fmt.Sprintf(" ORDER BY occurred_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list by product: %w", err)
	}
	defer rows.Close()
	return collectMovements(rows)
}

// ExistsReference verifica la guarda de idempotencia.
func (r *MovementRepo) ExistsReference(referenceDocument string, quantity decimal.Decimal, occurredAt time.Time) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM stock_movements
			WHERE reference_document = $1 AND quantity = $2 AND occurred_at = $3)`
	var exists bool
	err := r.q.QueryRow(context.Background(), query, referenceDocument, quantity, occurredAt).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists reference: %w", err)
	}
	return exists, nil
}

// Delete elimina un movimiento. Solo para la vía administrativa de limpieza;
// el caso de uso reconstruye el stock en la misma transacción.
func (r *MovementRepo) Delete(id int64) error {
	tag, err := r.q.Exec(context.Background(), `DELETE FROM stock_movements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete movement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func appendDateRange(query string, args []any, from, to *time.Time) (string, []any) {
	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(" AND occurred_at >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(" AND occurred_at <= $%d", len(args))
	}
	return query, args
}

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var m entity.Movement
	var source, destination, reference *string
	err := row.Scan(
		&m.ID, &m.Kind, &m.ProductID, &source, &destination,
		&m.Quantity, &m.OccurredAt, &reference, &m.CreatedBy, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if source != nil {
		m.SourceWarehouseID = *source
	}
	if destination != nil {
		m.DestinationWarehouseID = *destination
	}
	if reference != nil {
		m.ReferenceDocument = *reference
	}
	return &m, nil
}

func collectMovements(rows pgx.Rows) ([]*entity.Movement, error) {
	var list []*entity.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// nullable convierte cadena vacía en NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
