package inventory_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ntorres/acopio-api/internal/application/inventory"
	"github.com/ntorres/acopio-api/internal/domain"
	"github.com/ntorres/acopio-api/internal/domain/entity"
	domaininv "github.com/ntorres/acopio-api/internal/domain/inventory"
	"github.com/ntorres/acopio-api/internal/domain/repository"
	"github.com/ntorres/acopio-api/pkg/logger"
)

func stockRow(productID, warehouseID, qty string) *entity.Stock {
	return &entity.Stock{ProductID: productID, WarehouseID: warehouseID, QuantityAvailable: dec(qty)}
}

func newReconcileFixture(t *testing.T) (*fixture, *inventory.ReconcileUseCase) {
	t.Helper()
	f := newFixture(t, false)
	return f, inventory.NewReconcileUseCase(f.runner, logger.Nop())
}

// seedLedger deja un libro con actividad en varias claves:
//
//	P1/W1: 500 - 200 - 100 (transfer a W2) = 200
//	P1/W2: +100 (transfer)                 = 100
//	P2/W1: 30                              = 30
func seedLedger(t *testing.T, f *fixture) {
	t.Helper()
	f.mustSubmit(t, receiptInput("P1", "W1", "500.00"))
	f.mustSubmit(t, issueInput("P1", "W1", "200.00"))
	f.mustSubmit(t, transferInput("P1", "W1", "W2", "100.00"))
	f.mustSubmit(t, receiptInput("P2", "W1", "30.00"))
}

func stockSnapshot(t *testing.T, f *fixture) map[domaininv.StockKey]string {
	t.Helper()
	repo := &memStockRepo{store: f.store}
	rows, err := repo.ListAll()
	require.NoError(t, err)
	out := make(map[domaininv.StockKey]string, len(rows))
	for _, s := range rows {
		out[domaininv.StockKey{ProductID: s.ProductID, WarehouseID: s.WarehouseID}] = s.QuantityAvailable.StringFixed(2)
	}
	return out
}

func TestRebuild_CoincideConElIncremental(t *testing.T) {
	f, rec := newReconcileFixture(t)
	seedLedger(t, f)
	before := stockSnapshot(t, f)

	report, err := rec.Rebuild(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, report.EntriesProcessed)
	assert.Equal(t, 0, report.EntriesChanged, "sin deriva previa el rebuild no debe cambiar ninguna fila")
	assert.Equal(t, before, stockSnapshot(t, f), "rebuild y apply incremental deben converger al mismo estado")
}

func TestRebuild_EsIdempotente(t *testing.T) {
	f, rec := newReconcileFixture(t)
	seedLedger(t, f)

	_, err := rec.Rebuild(context.Background())
	require.NoError(t, err)
	first := stockSnapshot(t, f)

	report, err := rec.Rebuild(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.EntriesChanged)
	assert.Equal(t, first, stockSnapshot(t, f))
}

func TestRebuild_ReconstruyeTrasManipulacion(t *testing.T) {
	f, rec := newReconcileFixture(t)
	seedLedger(t, f)

	// Corrupción directa de la tabla (fuera de toda vía del sistema):
	// una fila borrada, otra con valor adulterado y una huérfana sin libro.
	delete(f.store.stocks, domaininv.StockKey{ProductID: "P1", WarehouseID: "W2"})
	f.store.stocks[domaininv.StockKey{ProductID: "P1", WarehouseID: "W1"}].QuantityAvailable = dec("999.00")
	f.store.stocks[domaininv.StockKey{ProductID: "P2", WarehouseID: "W3"}] = stockRow("P2", "W3", "77.00")

	report, err := rec.Rebuild(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, report.EntriesChanged)

	assert.Equal(t, map[domaininv.StockKey]string{
		{ProductID: "P1", WarehouseID: "W1"}: "200.00",
		{ProductID: "P1", WarehouseID: "W2"}: "100.00",
		{ProductID: "P2", WarehouseID: "W1"}: "30.00",
	}, stockSnapshot(t, f), "el libro es la única fuente de verdad tras el rebuild")
}

func TestVerify_SinDerivaDevuelveVacio(t *testing.T) {
	f, rec := newReconcileFixture(t)
	seedLedger(t, f)

	drift, err := rec.Verify(context.Background())
	require.NoError(t, err)
	assert.Empty(t, drift)
}

func TestVerify_DetectaDerivaSinCorregirla(t *testing.T) {
	f, rec := newReconcileFixture(t)
	seedLedger(t, f)

	f.store.stocks[domaininv.StockKey{ProductID: "P1", WarehouseID: "W1"}].QuantityAvailable = dec("250.00")
	delete(f.store.stocks, domaininv.StockKey{ProductID: "P2", WarehouseID: "W1"})

	drift, err := rec.Verify(context.Background())
	require.NoError(t, err)
	require.Len(t, drift, 2)

	// Fila adulterada: delta = materializado - recomputado.
	assert.Equal(t, "P1", drift[0].ProductID)
	assert.Equal(t, "W1", drift[0].WarehouseID)
	assert.Equal(t, "250.00", drift[0].Materialized.StringFixed(2))
	assert.Equal(t, "200.00", drift[0].Recomputed.StringFixed(2))
	assert.Equal(t, "50.00", drift[0].Delta.StringFixed(2))

	// Fila faltante: materializado cero, delta negativo.
	assert.Equal(t, "P2", drift[1].ProductID)
	assert.Equal(t, "W1", drift[1].WarehouseID)
	assert.True(t, drift[1].Materialized.Equal(decimal.Zero))
	assert.Equal(t, "30.00", drift[1].Recomputed.StringFixed(2))
	assert.Equal(t, "-30.00", drift[1].Delta.StringFixed(2))

	// Verify solo reporta: la fila adulterada sigue adulterada.
	assert.Equal(t, "250.00", f.store.stocks[domaininv.StockKey{ProductID: "P1", WarehouseID: "W1"}].QuantityAvailable.StringFixed(2))
}

// TestVerify_CorreEnSoloLectura Verify corre en una transacción de solo
// lectura con snapshot único: si intentara escribir, los repositorios lo
// rechazarían y el Verify fallaría.
func TestVerify_CorreEnSoloLectura(t *testing.T) {
	f, rec := newReconcileFixture(t)
	seedLedger(t, f)

	// La vía de solo lectura rechaza cualquier escritura.
	err := f.runner.ReadOnly(context.Background(), func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
	) error {
		return stockRepo.Upsert(stockRow("P1", "W1", "1.00"))
	})
	require.ErrorIs(t, err, errReadOnlyTx)

	// Verify pasa completo por esa vía sin tropezar con la guarda.
	drift, err := rec.Verify(context.Background())
	require.NoError(t, err)
	assert.Empty(t, drift)
}

func TestVerify_SobregiroNoEsDeriva(t *testing.T) {
	f, rec := newReconcileFixture(t)
	f.mustSubmit(t, receiptInput("P1", "W1", "100.00"))
	f.mustSubmit(t, issueInput("P1", "W1", "400.00"))

	// El piso en cero es parte del replay: la tabla en 0.00 coincide con lo
	// recomputado aunque la suma con signo sea -300.
	drift, err := rec.Verify(context.Background())
	require.NoError(t, err)
	assert.Empty(t, drift)

	totals, err := f.stock.LedgerTotals()
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.Equal(t, "-300.00", totals[0].SignedQuantity.StringFixed(2))
}

func TestRemoveMovement_EliminaYReconstruye(t *testing.T) {
	f, rec := newReconcileFixture(t)
	f.mustSubmit(t, receiptInput("P1", "W1", "500.00"))
	issueID := f.mustSubmit(t, issueInput("P1", "W1", "200.00"))

	report, err := rec.RemoveMovement(context.Background(), issueID)
	require.NoError(t, err)
	assert.Equal(t, 1, report.EntriesProcessed, "el libro queda con un solo movimiento")
	assert.Equal(t, 1, report.EntriesChanged)

	qty, err := f.stock.Get("P1", "W1")
	require.NoError(t, err)
	assert.Equal(t, "500.00", qty.StringFixed(2), "el efecto de la salida eliminada debe desaparecer del stock")

	movs, err := f.stock.ListMovements("W1", "", nil, nil, 10, 0)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, int64(1), movs[0].ID)
}

func TestRemoveMovement_InexistenteEsNotFound(t *testing.T) {
	f, rec := newReconcileFixture(t)
	seedLedger(t, f)
	before := stockSnapshot(t, f)

	_, err := rec.RemoveMovement(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, before, stockSnapshot(t, f), "un id inexistente no debe tocar nada")
}

func TestRemoveMovement_FalloDePersistenciaRevierteTodo(t *testing.T) {
	f, rec := newReconcileFixture(t)
	seedLedger(t, f)
	before := stockSnapshot(t, f)

	f.runner.failUpsertAt = 1
	_, err := rec.RemoveMovement(context.Background(), 2)
	require.ErrorIs(t, err, errUpsertFailed)
	f.runner.failUpsertAt = 0

	assert.Equal(t, before, stockSnapshot(t, f), "el rollback debe restaurar la tabla")
	movs, err := f.stock.ListMovements("W1", "", nil, nil, 10, 0)
	require.NoError(t, err)
	assert.Len(t, movs, 4, "la eliminación del libro también debe revertirse")
}
