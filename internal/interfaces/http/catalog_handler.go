package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/ntorres/acopio-api/internal/application/dto"
	"github.com/ntorres/acopio-api/internal/application/inventory"
)

// CatalogHandler lecturas de los catálogos de productos y bodegas.
type CatalogHandler struct {
	uc *inventory.CatalogUseCase
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(uc *inventory.CatalogUseCase) *CatalogHandler {
	return &CatalogHandler{uc: uc}
}

// Products lista el catálogo de productos (con su umbral de alerta).
func (h *CatalogHandler) Products(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page.DefaultPage()

	products, err := h.uc.Products(page.Limit, page.Offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, dto.ProductResponse{
			ID:             p.ID,
			SKU:            p.SKU,
			Name:           p.Name,
			UnitMeasure:    p.UnitMeasure,
			AlertThreshold: p.AlertThreshold,
		})
	}
	return c.JSON(out)
}

// Warehouses lista el catálogo de bodegas.
func (h *CatalogHandler) Warehouses(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page.DefaultPage()

	warehouses, err := h.uc.Warehouses(page.Limit, page.Offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.WarehouseResponse, 0, len(warehouses))
	for _, w := range warehouses {
		out = append(out, dto.WarehouseResponse{
			ID:      w.ID,
			Name:    w.Name,
			Address: w.Address,
		})
	}
	return c.JSON(out)
}
