package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/ntorres/acopio-api/internal/application/dto"
	"github.com/ntorres/acopio-api/internal/application/inventory"
	"github.com/ntorres/acopio-api/internal/domain"
)

// StockHandler maneja las lecturas de stock materializado.
type StockHandler struct {
	uc *inventory.StockUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *inventory.StockUseCase) *StockHandler {
	return &StockHandler{uc: uc}
}

// Get cantidad disponible de un producto en una bodega.
// 404 si la clave nunca ha tenido movimientos (distinto de stock en cero).
func (h *StockHandler) Get(c *fiber.Ctx) error {
	productID := c.Params("productId")
	warehouseID := c.Params("warehouseId")
	qty, err := h.uc.Get(productID, warehouseID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "sin movimientos para esa clave"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{
		"product_id":         productID,
		"warehouse_id":       warehouseID,
		"quantity_available": qty,
	})
}

// List stock materializado; warehouse_id opcional para filtrar por bodega.
func (h *StockHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page.DefaultPage()

	stocks, err := h.uc.List(c.Query("warehouse_id"), page.Limit, page.Offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.StockResponse, 0, len(stocks))
	for _, s := range stocks {
		out = append(out, dto.StockResponse{
			ProductID:         s.ProductID,
			WarehouseID:       s.WarehouseID,
			QuantityAvailable: s.QuantityAvailable,
			UpdatedAt:         s.UpdatedAt,
		})
	}
	return c.JSON(out)
}

// Alerts clasificación de niveles de stock frente al umbral por producto
// (empty/critical/low/ok). Consumido por los dashboards.
func (h *StockHandler) Alerts(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page.DefaultPage()

	alerts, err := h.uc.Alerts(c.Query("warehouse_id"), page.Limit, page.Offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(alerts)
}
