package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/ntorres/acopio-api/internal/domain"
	"github.com/ntorres/acopio-api/internal/domain/entity"
	domaininv "github.com/ntorres/acopio-api/internal/domain/inventory"
	"github.com/ntorres/acopio-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// SubmitMovementUseCase registra movimientos del libro de existencias de forma
// transaccional (receipt, issue, transfer) y aplica el efecto incremental sobre
// la tabla materializada con bloqueo de fila (SELECT FOR UPDATE).
//
// A diferencia de un control de inventario clásico, las salidas NO se validan
// contra el stock actual: el libro registra hechos físicos, no los bloquea.
// Un sobregiro se refleja con el piso en cero de la tabla materializada y
// queda visible para auditoría en la suma con signo.
type SubmitMovementUseCase struct {
	txRunner      TxRunner
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	dedupeEnabled bool
}

// NewSubmitMovementUseCase construye el caso de uso. dedupeEnabled activa la
// guarda de idempotencia sobre (reference_document, quantity, occurred_at).
func NewSubmitMovementUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	dedupeEnabled bool,
) *SubmitMovementUseCase {
	return &SubmitMovementUseCase{
		txRunner:      txRunner,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		dedupeEnabled: dedupeEnabled,
	}
}

// SubmitInput entrada para registrar un movimiento.
// Para receipt: ProductID, DestinationWarehouseID, Quantity.
// Para issue: ProductID, SourceWarehouseID, Quantity.
// Para transfer: ProductID, SourceWarehouseID, DestinationWarehouseID, Quantity.
type SubmitInput struct {
	Kind                   string
	ProductID              string
	SourceWarehouseID      string
	DestinationWarehouseID string
	Quantity               decimal.Decimal
	OccurredAt             time.Time
	ReferenceDocument      string
	CreatedBy              string
}

// Submit valida la entrada, persiste el movimiento en el libro y aplica el
// efecto incremental sobre el stock materializado, todo en una transacción.
// Devuelve el ID asignado por el libro. Un timeout del caller deja el
// resultado en "desconocido": consultar por reference_document o reenviar
// con la guarda de idempotencia activa, nunca reintentar a ciegas.
func (uc *SubmitMovementUseCase) Submit(ctx context.Context, in SubmitInput) (int64, error) {
	if err := uc.validate(in); err != nil {
		return 0, err
	}

	now := time.Now()
	if in.OccurredAt.IsZero() {
		in.OccurredAt = now
	}

	mov := &entity.Movement{
		Kind:                   in.Kind,
		ProductID:              in.ProductID,
		SourceWarehouseID:      in.SourceWarehouseID,
		DestinationWarehouseID: in.DestinationWarehouseID,
		Quantity:               in.Quantity,
		OccurredAt:             in.OccurredAt,
		ReferenceDocument:      in.ReferenceDocument,
		CreatedBy:              in.CreatedBy,
		CreatedAt:              now,
	}

	// Inicia transacción; Commit si todo ok, Rollback si algo falla
	// (TxRunner.Run lo hace). Un fallo entre el append y el apply deja el
	// sistema exactamente como estaba: el movimiento no se considera aplicado.
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
	) error {
		if uc.dedupeEnabled && in.ReferenceDocument != "" {
			dup, err := movRepo.ExistsReference(in.ReferenceDocument, in.Quantity, in.OccurredAt)
			if err != nil {
				return err
			}
			if dup {
				return domain.ErrDuplicate
			}
		}
		if err := movRepo.Create(mov); err != nil {
			return err
		}
		return applyIncremental(stockRepo, mov, now)
	})
	if err != nil {
		return 0, err
	}
	return mov.ID, nil
}

// validate aplica el contrato de admisión: cantidad > 0, extremos según el
// tipo, tipo conocido, y existencia de producto y bodega(s) en el catálogo.
// No valida suficiencia de stock.
func (uc *SubmitMovementUseCase) validate(in SubmitInput) error {
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	switch in.Kind {
	case entity.MovementKindReceipt:
		if in.ProductID == "" || in.DestinationWarehouseID == "" {
			return domain.ErrInvalidInput
		}
	case entity.MovementKindIssue:
		if in.ProductID == "" || in.SourceWarehouseID == "" {
			return domain.ErrInvalidInput
		}
	case entity.MovementKindTransfer:
		if in.ProductID == "" || in.SourceWarehouseID == "" || in.DestinationWarehouseID == "" {
			return domain.ErrInvalidInput
		}
		if in.SourceWarehouseID == in.DestinationWarehouseID {
			return domain.ErrInvalidInput
		}
	default:
		return domain.ErrInvalidInput
	}

	product, err := uc.productRepo.GetByID(in.ProductID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	for _, whID := range []string{in.SourceWarehouseID, in.DestinationWarehouseID} {
		if whID == "" {
			continue
		}
		wh, err := uc.warehouseRepo.GetByID(whID)
		if err != nil {
			return err
		}
		if wh == nil {
			return domain.ErrNotFound
		}
	}
	return nil
}

// applyIncremental aplica los deltas de un movimiento sobre la tabla
// materializada: bloquea las filas afectadas, aplica cada delta con piso en
// cero y hace upsert. Para transfer las dos filas viajan en la misma
// transacción; las filas se bloquean en orden determinista de bodega para
// evitar interbloqueos entre traslados cruzados (A→B y B→A concurrentes).
func applyIncremental(stockRepo repository.StockRepository, mov *entity.Movement, now time.Time) error {
	deltas := domaininv.Deltas(mov)

	ordered := make([]domaininv.Delta, len(deltas))
	copy(ordered, deltas)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Key.WarehouseID < ordered[j].Key.WarehouseID
	})

	locked := make(map[domaininv.StockKey]*entity.Stock, len(ordered))
	for _, d := range ordered {
		stock, err := stockRepo.GetForUpdate(d.Key.ProductID, d.Key.WarehouseID)
		if err != nil {
			return err
		}
		locked[d.Key] = stock
	}

	for _, d := range deltas {
		stock := locked[d.Key]
		stock.QuantityAvailable = domaininv.ApplyFloored(stock.QuantityAvailable, d.Quantity)
		stock.UpdatedAt = now
		if err := stockRepo.Upsert(stock); err != nil {
			return err
		}
	}
	return nil
}
