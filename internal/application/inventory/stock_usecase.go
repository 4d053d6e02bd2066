package inventory

import (
	"sort"
	"time"

	"github.com/ntorres/acopio-api/internal/domain"
	"github.com/ntorres/acopio-api/internal/domain/entity"
	domaininv "github.com/ntorres/acopio-api/internal/domain/inventory"
	"github.com/ntorres/acopio-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// StockUseCase lecturas sobre el stock materializado y el libro: consultas
// puntuales, listados para dashboards, alertas por umbral y totales con signo
// para auditoría/exportación.
type StockUseCase struct {
	movementRepo repository.MovementRepository
	stockRepo    repository.StockRepository
	productRepo  repository.ProductRepository
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(
	movementRepo repository.MovementRepository,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
) *StockUseCase {
	return &StockUseCase{
		movementRepo: movementRepo,
		stockRepo:    stockRepo,
		productRepo:  productRepo,
	}
}

// Get devuelve la cantidad disponible de un producto en una bodega.
// ErrNotFound si la clave nunca ha tenido movimientos (distinto de cero).
func (uc *StockUseCase) Get(productID, warehouseID string) (decimal.Decimal, error) {
	stock, err := uc.stockRepo.Get(productID, warehouseID)
	if err != nil {
		return decimal.Zero, err
	}
	if stock == nil {
		return decimal.Zero, domain.ErrNotFound
	}
	return stock.QuantityAvailable, nil
}

// List devuelve el stock materializado; warehouseID vacío = todas las bodegas.
func (uc *StockUseCase) List(warehouseID string, limit, offset int) ([]*entity.Stock, error) {
	return uc.stockRepo.List(warehouseID, limit, offset)
}

// StockAlert nivel de stock de una clave frente al umbral de su producto.
type StockAlert struct {
	ProductID         string          `json:"product_id"`
	WarehouseID       string          `json:"warehouse_id"`
	QuantityAvailable decimal.Decimal `json:"quantity_available"`
	Threshold         decimal.Decimal `json:"threshold"`
	Level             domaininv.Level `json:"level"`
}

// Alerts clasifica cada fila de stock frente al umbral configurado en el
// catálogo de productos. Consumido por los dashboards.
func (uc *StockUseCase) Alerts(warehouseID string, limit, offset int) ([]StockAlert, error) {
	stocks, err := uc.stockRepo.List(warehouseID, limit, offset)
	if err != nil {
		return nil, err
	}
	// Cache local de umbrales: el listado suele repetir productos entre bodegas.
	thresholds := make(map[string]decimal.Decimal)
	alerts := make([]StockAlert, 0, len(stocks))
	for _, s := range stocks {
		threshold, ok := thresholds[s.ProductID]
		if !ok {
			product, err := uc.productRepo.GetByID(s.ProductID)
			if err != nil {
				return nil, err
			}
			if product != nil {
				threshold = product.AlertThreshold
			}
			thresholds[s.ProductID] = threshold
		}
		alerts = append(alerts, StockAlert{
			ProductID:         s.ProductID,
			WarehouseID:       s.WarehouseID,
			QuantityAvailable: s.QuantityAvailable,
			Threshold:         threshold,
			Level:             domaininv.Classify(s.QuantityAvailable, threshold),
		})
	}
	return alerts, nil
}

// LedgerTotal suma con signo de una clave, sin piso en cero.
type LedgerTotal struct {
	ProductID      string          `json:"product_id"`
	WarehouseID    string          `json:"warehouse_id"`
	SignedQuantity decimal.Decimal `json:"signed_quantity"`
}

// LedgerTotals devuelve la suma con signo por clave replay-ando el libro
// completo. Vista de auditoría: puede diferir del stock visible cuando hubo
// sobregiros (el libro registra la salida completa, la tabla pisa en cero).
func (uc *StockUseCase) LedgerTotals() ([]LedgerTotal, error) {
	movements, err := uc.movementRepo.ListAll()
	if err != nil {
		return nil, err
	}
	signed := domaininv.SignedTotals(movements)
	totals := make([]LedgerTotal, 0, len(signed))
	for key, qty := range signed {
		totals = append(totals, LedgerTotal{
			ProductID:      key.ProductID,
			WarehouseID:    key.WarehouseID,
			SignedQuantity: qty,
		})
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].ProductID != totals[j].ProductID {
			return totals[i].ProductID < totals[j].ProductID
		}
		return totals[i].WarehouseID < totals[j].WarehouseID
	})
	return totals, nil
}

// ListMovements historial del libro filtrado por bodega o producto (rango de
// fechas opcional). Para exportes y auditoría.
func (uc *StockUseCase) ListMovements(warehouseID, productID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error) {
	switch {
	case warehouseID != "":
		return uc.movementRepo.ListByWarehouse(warehouseID, from, to, limit, offset)
	case productID != "":
		return uc.movementRepo.ListByProduct(productID, from, to, limit, offset)
	default:
		return nil, domain.ErrInvalidInput
	}
}
