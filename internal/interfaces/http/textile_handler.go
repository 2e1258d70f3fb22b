package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/hosteria/textil-api/internal/application/dto"
	"github.com/hosteria/textil-api/internal/application/textile"
	"github.com/hosteria/textil-api/internal/domain"
)

// TextileHandler maneja las peticiones HTTP del libro textil (protegido).
type TextileHandler struct {
	engine *textile.MovementEngine
}

// NewTextileHandler construye el handler.
func NewTextileHandler(engine *textile.MovementEngine) *TextileHandler {
	return &TextileHandler{engine: engine}
}

// textileError mapea errores del motor a respuestas HTTP. Un check-in rechazado
// por faltantes devuelve 409 con cada línea faltante, para que recepción pueda
// reducir la solicitud o pedir reposición.
func textileError(c *fiber.Ctx, err error) error {
	var insufficient *domain.InsufficientStockError
	if errors.As(err, &insufficient) {
		shortages := make([]dto.ShortageDTO, 0, len(insufficient.Shortages))
		for _, s := range insufficient.Shortages {
			shortages = append(shortages, dto.ShortageDTO{
				ItemType: s.ItemType, Color: s.Color, Required: s.Required, Available: s.Available,
			})
		}
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente en bodega", Shortages: shortages,
		})
	}
	var negative *domain.NegativeBalanceError
	if errors.As(err, &negative) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "NEGATIVE_BALANCE", Message: negative.Error()})
	}
	switch {
	case errors.Is(err, domain.ErrUnknownItem):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "UNKNOWN_ITEM", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

// InitStock godoc
// @Summary      Sembrar stock absoluto de bodega (reseteo administrativo)
// @Tags         textiles
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.InitStockRequest  true  "items: [{item_type, color, quantity}]"
// @Success      201   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/textiles/init [post]
func (h *TextileHandler) InitStock(c *fiber.Ctx) error {
	actor := GetUserID(c)
	if actor == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.InitStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.engine.InitFromRequest(c.Context(), in, actor); err != nil {
		return textileError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "bodega sembrada"})
}

// CheckIn godoc
// @Summary      Asignar textiles de bodega a una unidad (llegada de huéspedes)
// @Tags         textiles
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CheckInRequest  true  "unit_code, bedding_sets, towel_sets, robes, notes"
// @Success      201   {object}  dto.TextileCheckInResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "INSUFFICIENT_STOCK con el detalle de faltantes"
// @Router       /api/textiles/check-ins [post]
func (h *TextileHandler) CheckIn(c *fiber.Ctx) error {
	actor := GetUserID(c)
	if actor == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CheckInRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	checkIn, err := h.engine.CheckInFromRequest(c.Context(), in, actor)
	if err != nil {
		return textileError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(textile.ToCheckInResponse(checkIn))
}

// ListCheckIns godoc
// @Summary      Historial de check-ins textiles
// @Tags         textiles
// @Security     Bearer
// @Produce      json
// @Param        unit_code  query  string  false  "Filtrar por unidad"
// @Success      200  {array}  dto.TextileCheckInResponse
// @Router       /api/textiles/check-ins [get]
func (h *TextileHandler) ListCheckIns(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	list, err := h.engine.CheckIns(c.Context(), c.Query("unit_code"), page.Limit, page.Offset)
	if err != nil {
		return textileError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "check_ins": list})
}

// MarkDirty godoc
// @Summary      Mover todo el stock de una unidad a lavandería (salida de huéspedes)
// @Tags         textiles
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MarkDirtyRequest  true  "unit_code, notes"
// @Success      200   {object}  map[string]bool
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/textiles/mark-dirty [post]
func (h *TextileHandler) MarkDirty(c *fiber.Ctx) error {
	actor := GetUserID(c)
	if actor == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.MarkDirtyRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	moved, err := h.engine.MarkDirty(c.Context(), in.UnitCode, actor, in.Notes)
	if err != nil {
		return textileError(c, err)
	}
	return c.JSON(fiber.Map{"moved": moved})
}

// MarkClean godoc
// @Summary      Devolver textiles limpios de lavandería a bodega
// @Tags         textiles
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MarkCleanRequest  true  "items: [{item_type, color, quantity}], notes"
// @Success      200   {object}  map[string]string
// @Failure      409   {object}  dto.ErrorResponse  "NEGATIVE_BALANCE si una línea sobre-declara lo que hay en lavandería"
// @Router       /api/textiles/mark-clean [post]
func (h *TextileHandler) MarkClean(c *fiber.Ctx) error {
	actor := GetUserID(c)
	if actor == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.MarkCleanRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.engine.MarkCleanFromRequest(c.Context(), in, actor); err != nil {
		return textileError(c, err)
	}
	return c.JSON(fiber.Map{"message": "retorno de lavandería aplicado"})
}

// StockSummary godoc
// @Summary      Resumen global de stock por ubicación
// @Tags         textiles
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.StockSummaryResponse
// @Router       /api/textiles/stock [get]
func (h *TextileHandler) StockSummary(c *fiber.Ctx) error {
	summary, err := h.engine.StockSummary(c.Context())
	if err != nil {
		return textileError(c, err)
	}
	return c.JSON(summary)
}

// StockByLocation godoc
// @Summary      Filas del libro en una ubicación (warehouse, laundry o código de unidad)
// @Tags         textiles
// @Security     Bearer
// @Produce      json
// @Param        location  path  string  true  "warehouse | laundry | código de unidad"
// @Success      200  {array}  dto.StockEntryDTO
// @Router       /api/textiles/stock/{location} [get]
func (h *TextileHandler) StockByLocation(c *fiber.Ctx) error {
	entries, err := h.engine.StockByLocation(c.Context(), c.Params("location"))
	if err != nil {
		return textileError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(entries), "entries": entries})
}

// Events godoc
// @Summary      Eventos de auditoría más recientes
// @Tags         textiles
// @Security     Bearer
// @Produce      json
// @Param        limit     query  int     false  "Máximo de eventos (por defecto 50, tope 200)"
// @Param        location  query  string  false  "Filtrar por ubicación origen o destino"
// @Success      200  {array}  dto.MovementEventDTO
// @Router       /api/textiles/events [get]
func (h *TextileHandler) Events(c *fiber.Ctx) error {
	events, err := h.engine.Events(c.Context(), c.QueryInt("limit"), c.Query("location"))
	if err != nil {
		return textileError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(events), "events": events})
}

// Reconcile godoc
// @Summary      Verificación de consistencia: replay de eventos vs libro vivo
// @Tags         textiles
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ReconcileResponse
// @Router       /api/textiles/reconcile [get]
func (h *TextileHandler) Reconcile(c *fiber.Ctx) error {
	result, err := h.engine.Reconcile(c.Context())
	if err != nil {
		return textileError(c, err)
	}
	return c.JSON(result)
}
