package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/ntorres/acopio-api/internal/domain"
	"github.com/ntorres/acopio-api/internal/domain/entity"
	domaininv "github.com/ntorres/acopio-api/internal/domain/inventory"
	"github.com/ntorres/acopio-api/internal/domain/repository"
	"github.com/ntorres/acopio-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// ReconcileUseCase orquesta las operaciones pesadas del motor de conciliación:
// rebuild completo desde el libro, verificación de deriva y la vía
// administrativa de eliminación de movimientos. Son acciones de operador,
// explícitas y logueadas; la deriva se reporta, nunca se corrige en silencio.
type ReconcileUseCase struct {
	txRunner TxRunner
	log      *logger.Logger
}

// NewReconcileUseCase construye el caso de uso.
func NewReconcileUseCase(txRunner TxRunner, log *logger.Logger) *ReconcileUseCase {
	return &ReconcileUseCase{txRunner: txRunner, log: log}
}

// RebuildReport resume un rebuild: movimientos del libro procesados y filas
// materializadas cuyo valor cambió (incluye filas huérfanas eliminadas).
type RebuildReport struct {
	EntriesProcessed int           `json:"entries_processed"`
	EntriesChanged   int           `json:"entries_changed"`
	Duration         time.Duration `json:"-"`
}

// DriftEntry describe una clave cuya cantidad materializada no coincide con
// la recomputada desde el libro.
type DriftEntry struct {
	ProductID    string          `json:"product_id"`
	WarehouseID  string          `json:"warehouse_id"`
	Materialized decimal.Decimal `json:"materialized"`
	Recomputed   decimal.Decimal `json:"recomputed"`
	Delta        decimal.Decimal `json:"delta"` // materializada - recomputada
}

// Rebuild descarta la tabla materializada y la recomputa replay-ando el libro
// completo por el agregador, bajo bloqueo exclusivo de la tabla de stock
// (ningún apply incremental puede intercalarse). Idempotente: dos rebuilds
// seguidos producen exactamente el mismo estado.
func (uc *ReconcileUseCase) Rebuild(ctx context.Context) (*RebuildReport, error) {
	runID := uuid.New().String()
	start := time.Now()
	uc.log.Info().Str("run_id", runID).Msg("rebuild de stock iniciado")

	var report *RebuildReport
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
	) error {
		var err error
		report, err = rebuildInTx(movRepo, stockRepo)
		return err
	})
	if err != nil {
		uc.log.Error().Str("run_id", runID).Err(err).Msg("rebuild de stock fallido")
		return nil, err
	}

	report.Duration = time.Since(start)
	uc.log.Info().
		Str("run_id", runID).
		Int("entries_processed", report.EntriesProcessed).
		Int("entries_changed", report.EntriesChanged).
		Dur("duration", report.Duration).
		Msg("rebuild de stock completado")
	return report, nil
}

// Verify recomputa el stock desde el libro sin mutar nada y devuelve las
// claves con deriva (materializado != recomputado), en ambas direcciones:
// filas desviadas y filas huérfanas o faltantes. Lee libro y tabla en una
// transacción de solo lectura con un único snapshot: un submit que committee
// entre las dos lecturas no puede fabricar deriva fantasma.
func (uc *ReconcileUseCase) Verify(ctx context.Context) ([]DriftEntry, error) {
	var drift []DriftEntry
	err := uc.txRunner.ReadOnly(ctx, func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
	) error {
		movements, err := movRepo.ListAll()
		if err != nil {
			return err
		}
		stocks, err := stockRepo.ListAll()
		if err != nil {
			return err
		}
		drift = diff(stocks, domaininv.Aggregate(movements))
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(drift) > 0 {
		uc.log.Warn().Int("drift_entries", len(drift)).Msg("deriva detectada entre libro y stock materializado")
	}
	return drift, nil
}

// RemoveMovement elimina un movimiento del libro (vía administrativa para
// entradas de prueba o erróneas) y reconstruye la tabla materializada en la
// misma transacción: nunca una edición silenciosa del stock.
func (uc *ReconcileUseCase) RemoveMovement(ctx context.Context, movementID int64) (*RebuildReport, error) {
	var report *RebuildReport
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
	) error {
		mov, err := movRepo.GetByID(movementID)
		if err != nil {
			return err
		}
		if mov == nil {
			return domain.ErrNotFound
		}
		if err := movRepo.Delete(movementID); err != nil {
			return err
		}
		report, err = rebuildInTx(movRepo, stockRepo)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Warn().
		Int64("movement_id", movementID).
		Int("entries_changed", report.EntriesChanged).
		Msg("movimiento eliminado por vía administrativa, stock reconstruido")
	return report, nil
}

// rebuildInTx es el cuerpo del rebuild, reutilizado por Rebuild y
// RemoveMovement: bloqueo exclusivo, replay completo, reemplazo de la tabla.
func rebuildInTx(movRepo repository.MovementRepository, stockRepo repository.StockRepository) (*RebuildReport, error) {
	if err := stockRepo.LockExclusive(); err != nil {
		return nil, err
	}

	movements, err := movRepo.ListAll()
	if err != nil {
		return nil, err
	}
	previous, err := stockRepo.ListAll()
	if err != nil {
		return nil, err
	}

	recomputed := domaininv.Aggregate(movements)
	changed := len(diff(previous, recomputed))

	if err := stockRepo.DeleteAll(); err != nil {
		return nil, err
	}

	// Escritura en orden determinista de clave; facilita diagnóstico y hace
	// reproducible el contenido de la tabla entre rebuilds.
	keys := make([]domaininv.StockKey, 0, len(recomputed))
	for key := range recomputed {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].ProductID != keys[j].ProductID {
			return keys[i].ProductID < keys[j].ProductID
		}
		return keys[i].WarehouseID < keys[j].WarehouseID
	})
	now := time.Now()
	for _, key := range keys {
		stock := &entity.Stock{
			ProductID:         key.ProductID,
			WarehouseID:       key.WarehouseID,
			QuantityAvailable: recomputed[key],
			UpdatedAt:         now,
		}
		if err := stockRepo.Upsert(stock); err != nil {
			return nil, err
		}
	}

	return &RebuildReport{
		EntriesProcessed: len(movements),
		EntriesChanged:   changed,
	}, nil
}

// diff compara tabla materializada contra valores recomputados y devuelve la
// deriva en ambas direcciones.
func diff(materialized []*entity.Stock, recomputed map[domaininv.StockKey]decimal.Decimal) []DriftEntry {
	var drift []DriftEntry
	seen := make(map[domaininv.StockKey]bool, len(materialized))
	for _, s := range materialized {
		key := domaininv.StockKey{ProductID: s.ProductID, WarehouseID: s.WarehouseID}
		seen[key] = true
		want, ok := recomputed[key]
		if !ok {
			want = decimal.Zero
		}
		if !s.QuantityAvailable.Equal(want) {
			drift = append(drift, DriftEntry{
				ProductID:    s.ProductID,
				WarehouseID:  s.WarehouseID,
				Materialized: s.QuantityAvailable,
				Recomputed:   want,
				Delta:        s.QuantityAvailable.Sub(want),
			})
		}
	}
	for key, want := range recomputed {
		if seen[key] {
			continue
		}
		drift = append(drift, DriftEntry{
			ProductID:    key.ProductID,
			WarehouseID:  key.WarehouseID,
			Materialized: decimal.Zero,
			Recomputed:   want,
			Delta:        want.Neg(),
		})
	}
	sort.Slice(drift, func(i, j int) bool {
		if drift[i].ProductID != drift[j].ProductID {
			return drift[i].ProductID < drift[j].ProductID
		}
		return drift[i].WarehouseID < drift[j].WarehouseID
	})
	return drift
}
