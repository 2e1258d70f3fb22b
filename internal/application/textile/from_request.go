package textile

import (
	"context"

	"github.com/hosteria/textil-api/internal/application/dto"
	"github.com/hosteria/textil-api/internal/domain/entity"
)

// Adaptadores request HTTP -> entradas del motor. Usar desde los handlers;
// la validación de tipos/colores ocurre dentro del motor, antes de toda lectura.

// InitFromRequest adapta dto.InitStockRequest a InitWarehouseStock.
func (e *MovementEngine) InitFromRequest(ctx context.Context, in dto.InitStockRequest, actor string) error {
	return e.InitWarehouseStock(ctx, toLineInputs(in.Items), actor)
}

// CheckInFromRequest adapta dto.CheckInRequest a CheckIn.
func (e *MovementEngine) CheckInFromRequest(ctx context.Context, in dto.CheckInRequest, actor string) (*entity.TextileCheckIn, error) {
	sets := make([]BeddingSetInput, 0, len(in.BeddingSets))
	for _, bs := range in.BeddingSets {
		sets = append(sets, BeddingSetInput{Color: bs.Color, Count: bs.Count})
	}
	return e.CheckIn(ctx, CheckInInput{
		UnitCode:    in.UnitCode,
		BeddingSets: sets,
		TowelSets:   in.TowelSets,
		Robes:       in.Robes,
		Notes:       in.Notes,
		Actor:       actor,
	})
}

// MarkCleanFromRequest adapta dto.MarkCleanRequest a MarkClean.
func (e *MovementEngine) MarkCleanFromRequest(ctx context.Context, in dto.MarkCleanRequest, actor string) error {
	return e.MarkClean(ctx, toLineInputs(in.Items), actor, in.Notes)
}

func toLineInputs(items []dto.StockLineRequest) []StockLineInput {
	lines := make([]StockLineInput, 0, len(items))
	for _, it := range items {
		lines = append(lines, StockLineInput{ItemType: it.ItemType, Color: it.Color, Quantity: it.Quantity})
	}
	return lines
}
