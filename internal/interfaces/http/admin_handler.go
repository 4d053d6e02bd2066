package http

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/ntorres/acopio-api/internal/application/dto"
	"github.com/ntorres/acopio-api/internal/application/inventory"
	"github.com/ntorres/acopio-api/internal/domain"
	"github.com/ntorres/acopio-api/pkg/metrics"
)

// AdminHandler operaciones administrativas del motor de conciliación:
// acciones de operador explícitas, nunca automáticas.
type AdminHandler struct {
	reconcile *inventory.ReconcileUseCase
	stock     *inventory.StockUseCase
}

// NewAdminHandler construye el handler.
func NewAdminHandler(reconcile *inventory.ReconcileUseCase, stock *inventory.StockUseCase) *AdminHandler {
	return &AdminHandler{reconcile: reconcile, stock: stock}
}

// Rebuild recomputa la tabla de stock completa desde el libro.
func (h *AdminHandler) Rebuild(c *fiber.Ctx) error {
	report, err := h.reconcile.Rebuild(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	metrics.RebuildRuns.Inc()
	return c.JSON(report)
}

// Verify chequeo de consistencia de solo lectura: devuelve las claves con
// deriva. La deriva se reporta, nunca se corrige aquí.
func (h *AdminHandler) Verify(c *fiber.Ctx) error {
	drift, err := h.reconcile.Verify(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	metrics.DriftEntries.Set(float64(len(drift)))
	if drift == nil {
		drift = []inventory.DriftEntry{}
	}
	return c.JSON(fiber.Map{"drift_entries": drift, "count": len(drift)})
}

// RemoveMovement elimina un movimiento del libro (limpieza de entradas de
// prueba o erróneas) y reconstruye el stock en la misma transacción.
func (h *AdminHandler) RemoveMovement(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "id inválido"})
	}
	report, err := h.reconcile.RemoveMovement(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "movimiento no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(report)
}

// LedgerTotals sumas con signo por clave, sin piso en cero (auditoría).
func (h *AdminHandler) LedgerTotals(c *fiber.Ctx) error {
	totals, err := h.stock.LedgerTotals()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(totals)
}
