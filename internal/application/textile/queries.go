package textile

import (
	"context"

	"github.com/hosteria/textil-api/internal/application/dto"
	"github.com/hosteria/textil-api/internal/domain/entity"
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 200
)

// summaryKey clave de los mapas internos del resumen: "{item_type}_{color}".
func summaryKey(itemType entity.ItemType, color entity.Color) string {
	return string(itemType) + "_" + string(color)
}

// StockSummary instantánea global agregada por ubicación. Las filas en cero se
// incluyen: una unidad que quedó vacía sigue siendo visible para recepción.
func (e *MovementEngine) StockSummary(ctx context.Context) (*dto.StockSummaryResponse, error) {
	entries, err := e.stockRepo.ListAll()
	if err != nil {
		return nil, err
	}
	out := &dto.StockSummaryResponse{
		Warehouse: map[string]int64{},
		Laundry:   map[string]int64{},
		Units:     map[string]map[string]int64{},
	}
	for _, en := range entries {
		key := summaryKey(en.ItemType, en.Color)
		switch {
		case en.Location.IsWarehouse():
			out.Warehouse[key] += en.Quantity
		case en.Location.IsLaundry():
			out.Laundry[key] += en.Quantity
		default:
			unit := en.Location.Code()
			if out.Units[unit] == nil {
				out.Units[unit] = map[string]int64{}
			}
			out.Units[unit][key] += en.Quantity
		}
	}
	return out, nil
}

// StockByLocation filas del libro en una ubicación concreta (cantidad cero incluida).
func (e *MovementEngine) StockByLocation(ctx context.Context, location string) ([]dto.StockEntryDTO, error) {
	loc, err := entity.ParseLocation(location)
	if err != nil {
		return nil, err
	}
	entries, err := e.stockRepo.ListByLocation(loc)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockEntryDTO, 0, len(entries))
	for _, en := range entries {
		out = append(out, dto.StockEntryDTO{
			Location:  en.Location.Code(),
			ItemType:  string(en.ItemType),
			Color:     string(en.Color),
			Quantity:  en.Quantity,
			UpdatedBy: en.UpdatedBy,
			UpdatedAt: en.UpdatedAt,
		})
	}
	return out, nil
}

// Events eventos de auditoría más recientes, opcionalmente filtrados por ubicación
// (coincide origen o destino).
func (e *MovementEngine) Events(ctx context.Context, limit int, location string) ([]dto.MovementEventDTO, error) {
	if limit <= 0 {
		limit = defaultEventLimit
	}
	if limit > maxEventLimit {
		limit = maxEventLimit
	}
	var (
		events []*entity.MovementEvent
		err    error
	)
	if location != "" {
		loc, perr := entity.ParseLocation(location)
		if perr != nil {
			return nil, perr
		}
		events, err = e.eventRepo.ListByLocation(loc, limit)
	} else {
		events, err = e.eventRepo.ListRecent(limit)
	}
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementEventDTO, 0, len(events))
	for _, ev := range events {
		out = append(out, toEventDTO(ev))
	}
	return out, nil
}

func toEventDTO(ev *entity.MovementEvent) dto.MovementEventDTO {
	d := dto.MovementEventDTO{
		ID:              ev.ID,
		Type:            ev.Type,
		ToLocation:      ev.ToLocation.Code(),
		RelatedUnitCode: ev.RelatedUnitCode,
		CreatedBy:       ev.CreatedBy,
		CreatedAt:       ev.CreatedAt,
		Notes:           ev.Notes,
	}
	if ev.FromLocation != nil {
		d.FromLocation = ev.FromLocation.Code()
	}
	d.Items = make([]dto.MovementLineDTO, 0, len(ev.Items))
	for _, ln := range ev.Items {
		d.Items = append(d.Items, dto.MovementLineDTO{
			ItemType: string(ln.ItemType),
			Color:    string(ln.Color),
			Quantity: ln.Quantity,
		})
	}
	return d
}

// CheckIns historial de check-ins, opcionalmente filtrado por unidad.
func (e *MovementEngine) CheckIns(ctx context.Context, unitCode string, limit, offset int) ([]dto.TextileCheckInResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	var (
		list []*entity.TextileCheckIn
		err  error
	)
	if unitCode != "" {
		unitLoc, perr := entity.UnitLocation(unitCode)
		if perr != nil {
			return nil, perr
		}
		list, err = e.checkinRepo.ListByUnit(unitLoc.Code(), limit, offset)
	} else {
		list, err = e.checkinRepo.ListRecent(limit, offset)
	}
	if err != nil {
		return nil, err
	}
	out := make([]dto.TextileCheckInResponse, 0, len(list))
	for _, ci := range list {
		out = append(out, ToCheckInResponse(ci))
	}
	return out, nil
}

// ToCheckInResponse mapea la entidad al DTO de respuesta HTTP.
func ToCheckInResponse(ci *entity.TextileCheckIn) dto.TextileCheckInResponse {
	sets := make([]dto.BeddingSetRequest, 0, len(ci.BeddingSets))
	for _, bs := range ci.BeddingSets {
		sets = append(sets, dto.BeddingSetRequest{Color: string(bs.Color), Count: bs.Count})
	}
	return dto.TextileCheckInResponse{
		ID:          ci.ID,
		UnitCode:    ci.UnitCode,
		BeddingSets: sets,
		TowelSets:   ci.TowelSets,
		Robes:       ci.Robes,
		CreatedBy:   ci.CreatedBy,
		CreatedAt:   ci.CreatedAt,
		Notes:       ci.Notes,
	}
}
