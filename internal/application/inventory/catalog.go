package inventory

import (
	"github.com/ntorres/acopio-api/internal/domain/entity"
	"github.com/ntorres/acopio-api/internal/domain/repository"
)

// CatalogUseCase lecturas de los catálogos de productos y bodegas. Los
// catálogos los administra otra aplicación; aquí solo se listan para que los
// consumidores de stock y alertas resuelvan nombres y umbrales.
type CatalogUseCase struct {
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
}

// NewCatalogUseCase construye el caso de uso.
func NewCatalogUseCase(
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
) *CatalogUseCase {
	return &CatalogUseCase{productRepo: productRepo, warehouseRepo: warehouseRepo}
}

// Products lista el catálogo de productos.
func (uc *CatalogUseCase) Products(limit, offset int) ([]*entity.Product, error) {
	return uc.productRepo.List(limit, offset)
}

// Warehouses lista el catálogo de bodegas.
func (uc *CatalogUseCase) Warehouses(limit, offset int) ([]*entity.Warehouse, error) {
	return uc.warehouseRepo.List(limit, offset)
}
