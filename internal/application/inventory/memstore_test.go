package inventory_test

// Fakes en memoria para los casos de uso: un almacén compartido, repositorios
// sobre él y un TxRunner que emula la semántica transaccional de PostgreSQL
// (serialización bajo mutex y rollback por snapshot si el callback falla).

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ntorres/acopio-api/internal/domain"
	"github.com/ntorres/acopio-api/internal/domain/entity"
	domaininv "github.com/ntorres/acopio-api/internal/domain/inventory"
	"github.com/ntorres/acopio-api/internal/domain/repository"
)

var (
	errUpsertFailed = errors.New("upsert stock: fallo simulado de persistencia")
	errReadOnlyTx   = errors.New("escritura en transacción de solo lectura")
)

type memStore struct {
	mu        sync.Mutex
	nextID    int64
	movements []*entity.Movement
	stocks    map[domaininv.StockKey]*entity.Stock
}

func newMemStore() *memStore {
	return &memStore{nextID: 1, stocks: make(map[domaininv.StockKey]*entity.Stock)}
}

type memSnapshot struct {
	nextID    int64
	movements []*entity.Movement
	stocks    map[domaininv.StockKey]*entity.Stock
}

func (s *memStore) snapshot() memSnapshot {
	movs := make([]*entity.Movement, len(s.movements))
	copy(movs, s.movements)
	stocks := make(map[domaininv.StockKey]*entity.Stock, len(s.stocks))
	for k, v := range s.stocks {
		c := *v
		stocks[k] = &c
	}
	return memSnapshot{nextID: s.nextID, movements: movs, stocks: stocks}
}

func (s *memStore) restore(snap memSnapshot) {
	s.nextID = snap.nextID
	s.movements = snap.movements
	s.stocks = snap.stocks
}

// memTxRunner serializa las "transacciones" con el mutex del almacén y
// revierte al snapshot previo si el callback devuelve error: misma garantía
// observable que Begin/Commit/Rollback.
type memTxRunner struct {
	store *memStore
	// failUpsertAt hace fallar el n-ésimo Upsert de stock dentro de la tx
	// (0 = nunca). Simula el crash entre las dos filas de un transfer.
	failUpsertAt int
}

func (r *memTxRunner) Run(_ context.Context, fn func(
	movRepo repository.MovementRepository,
	stockRepo repository.StockRepository,
) error) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	snap := r.store.snapshot()
	stockRepo := &memStockRepo{store: r.store, failUpsertAt: r.failUpsertAt}
	if err := fn(&memMovementRepo{store: r.store}, stockRepo); err != nil {
		r.store.restore(snap)
		return err
	}
	return nil
}

// ReadOnly entrega repositorios que rechazan toda escritura: el mutex ya da
// un snapshot único para todas las lecturas del callback.
func (r *memTxRunner) ReadOnly(_ context.Context, fn func(
	movRepo repository.MovementRepository,
	stockRepo repository.StockRepository,
) error) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return fn(&memMovementRepo{store: r.store, readOnly: true}, &memStockRepo{store: r.store, readOnly: true})
}

type memMovementRepo struct {
	store    *memStore
	readOnly bool
}

var _ repository.MovementRepository = (*memMovementRepo)(nil)

func (r *memMovementRepo) Create(m *entity.Movement) error {
	if r.readOnly {
		return errReadOnlyTx
	}
	m.ID = r.store.nextID
	r.store.nextID++
	r.store.movements = append(r.store.movements, m)
	return nil
}

func (r *memMovementRepo) GetByID(id int64) (*entity.Movement, error) {
	for _, m := range r.store.movements {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, nil
}

func (r *memMovementRepo) ListAll() ([]*entity.Movement, error) {
	out := make([]*entity.Movement, len(r.store.movements))
	copy(out, r.store.movements)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memMovementRepo) ListByWarehouse(warehouseID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error) {
	var out []*entity.Movement
	for _, m := range r.store.movements {
		if !m.TouchesWarehouse(warehouseID) || !inRange(m.OccurredAt, from, to) {
			continue
		}
		out = append(out, m)
	}
	return paginate(out, limit, offset), nil
}

func (r *memMovementRepo) ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error) {
	var out []*entity.Movement
	for _, m := range r.store.movements {
		if m.ProductID != productID || !inRange(m.OccurredAt, from, to) {
			continue
		}
		out = append(out, m)
	}
	return paginate(out, limit, offset), nil
}

func (r *memMovementRepo) ExistsReference(referenceDocument string, quantity decimal.Decimal, occurredAt time.Time) (bool, error) {
	for _, m := range r.store.movements {
		if m.ReferenceDocument == referenceDocument && m.Quantity.Equal(quantity) && m.OccurredAt.Equal(occurredAt) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memMovementRepo) Delete(id int64) error {
	if r.readOnly {
		return errReadOnlyTx
	}
	for i, m := range r.store.movements {
		if m.ID == id {
			r.store.movements = append(r.store.movements[:i], r.store.movements[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}

func paginate(list []*entity.Movement, limit, offset int) []*entity.Movement {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

type memStockRepo struct {
	store        *memStore
	readOnly     bool
	failUpsertAt int
	upserts      int
}

var _ repository.StockRepository = (*memStockRepo)(nil)

func (r *memStockRepo) Get(productID, warehouseID string) (*entity.Stock, error) {
	s, ok := r.store.stocks[domaininv.StockKey{ProductID: productID, WarehouseID: warehouseID}]
	if !ok {
		return nil, nil
	}
	c := *s
	return &c, nil
}

// GetForUpdate emula el contrato de PostgreSQL: si la clave no existe se
// materializa en cero dentro de la transacción, para que el bloqueo de fila
// tenga asidero y dos estrenos concurrentes de la misma clave se serialicen.
func (r *memStockRepo) GetForUpdate(productID, warehouseID string) (*entity.Stock, error) {
	if r.readOnly {
		return nil, errReadOnlyTx
	}
	s, err := r.Get(productID, warehouseID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		s = &entity.Stock{ProductID: productID, WarehouseID: warehouseID, QuantityAvailable: decimal.Zero}
		c := *s
		r.store.stocks[domaininv.StockKey{ProductID: productID, WarehouseID: warehouseID}] = &c
	}
	return s, nil
}

func (r *memStockRepo) Upsert(stock *entity.Stock) error {
	if r.readOnly {
		return errReadOnlyTx
	}
	r.upserts++
	if r.failUpsertAt > 0 && r.upserts >= r.failUpsertAt {
		return errUpsertFailed
	}
	c := *stock
	r.store.stocks[domaininv.StockKey{ProductID: stock.ProductID, WarehouseID: stock.WarehouseID}] = &c
	return nil
}

func (r *memStockRepo) List(warehouseID string, limit, offset int) ([]*entity.Stock, error) {
	all, _ := r.ListAll()
	if warehouseID == "" {
		return all, nil
	}
	var out []*entity.Stock
	for _, s := range all {
		if s.WarehouseID == warehouseID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memStockRepo) ListAll() ([]*entity.Stock, error) {
	out := make([]*entity.Stock, 0, len(r.store.stocks))
	for _, s := range r.store.stocks {
		c := *s
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductID != out[j].ProductID {
			return out[i].ProductID < out[j].ProductID
		}
		return out[i].WarehouseID < out[j].WarehouseID
	})
	return out, nil
}

func (r *memStockRepo) DeleteAll() error {
	if r.readOnly {
		return errReadOnlyTx
	}
	r.store.stocks = make(map[domaininv.StockKey]*entity.Stock)
	return nil
}

func (r *memStockRepo) LockExclusive() error {
	// El runner en memoria ya serializa todo bajo su mutex.
	return nil
}

type memCatalog struct {
	products   map[string]*entity.Product
	warehouses map[string]*entity.Warehouse
}

func newMemCatalog() *memCatalog {
	threshold := decimal.NewFromInt(100)
	return &memCatalog{
		products: map[string]*entity.Product{
			"P1": {ID: "P1", SKU: "TRIGO-01", Name: "Trigo duro", UnitMeasure: "t", AlertThreshold: threshold},
			"P2": {ID: "P2", SKU: "MAIZ-01", Name: "Maíz amarillo", UnitMeasure: "t"},
		},
		warehouses: map[string]*entity.Warehouse{
			"W1": {ID: "W1", Name: "Bodega Norte"},
			"W2": {ID: "W2", Name: "Bodega Sur"},
			"W3": {ID: "W3", Name: "Bodega Puerto"},
		},
	}
}

type memProductRepo struct{ catalog *memCatalog }

var _ repository.ProductRepository = (*memProductRepo)(nil)

func (r *memProductRepo) GetByID(id string) (*entity.Product, error) {
	return r.catalog.products[id], nil
}

func (r *memProductRepo) List(limit, offset int) ([]*entity.Product, error) {
	out := make([]*entity.Product, 0, len(r.catalog.products))
	for _, p := range r.catalog.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out, nil
}

type memWarehouseRepo struct{ catalog *memCatalog }

var _ repository.WarehouseRepository = (*memWarehouseRepo)(nil)

func (r *memWarehouseRepo) GetByID(id string) (*entity.Warehouse, error) {
	return r.catalog.warehouses[id], nil
}

func (r *memWarehouseRepo) List(limit, offset int) ([]*entity.Warehouse, error) {
	out := make([]*entity.Warehouse, 0, len(r.catalog.warehouses))
	for _, w := range r.catalog.warehouses {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
