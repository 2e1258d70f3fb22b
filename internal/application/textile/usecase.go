package textile

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/hosteria/textil-api/internal/domain"
	"github.com/hosteria/textil-api/internal/domain/entity"
	"github.com/hosteria/textil-api/internal/domain/repository"
	domaintextile "github.com/hosteria/textil-api/internal/domain/textile"
	"github.com/hosteria/textil-api/pkg/logger"
)

// MovementEngine orquesta transferencias atómicas de textiles entre ubicaciones.
// Es el único punto de entrada por el que cambia el stock: valida contra el libro,
// aplica los ajustes con bloqueo de fila (SELECT FOR UPDATE) y registra un único
// evento de auditoría por operación, todo dentro de la misma transacción.
type MovementEngine struct {
	txRunner    TxRunner
	stockRepo   repository.StockRepository
	eventRepo   repository.MovementEventRepository
	checkinRepo repository.TextileCheckInRepository
	log         *logger.Logger
}

// NewMovementEngine construye el motor. stockRepo/eventRepo/checkinRepo atados al pool
// se usan solo para lecturas; toda escritura pasa por txRunner.
func NewMovementEngine(
	txRunner TxRunner,
	stockRepo repository.StockRepository,
	eventRepo repository.MovementEventRepository,
	checkinRepo repository.TextileCheckInRepository,
	log *logger.Logger,
) *MovementEngine {
	return &MovementEngine{
		txRunner:    txRunner,
		stockRepo:   stockRepo,
		eventRepo:   eventRepo,
		checkinRepo: checkinRepo,
		log:         log,
	}
}

// StockLineInput una línea (tipo, color, cantidad) recibida del exterior, sin validar.
type StockLineInput struct {
	ItemType string
	Color    string
	Quantity int64
}

// BeddingSetInput juegos de cama de un color dentro de un check-in, sin validar.
type BeddingSetInput struct {
	Color string
	Count int
}

// CheckInInput entrada para CheckIn.
type CheckInInput struct {
	UnitCode    string
	BeddingSets []BeddingSetInput
	TowelSets   int
	Robes       int
	Notes       string
	Actor       string
}

// parseLines valida tipos y colores antes de cualquier lectura (entrada malformada
// se rechaza sin tocar la BD). allowZero permite cantidad cero en siembras absolutas.
func parseLines(items []StockLineInput, allowZero bool) ([]entity.MovementLine, error) {
	if len(items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	lines := make([]entity.MovementLine, 0, len(items))
	for _, it := range items {
		itemType, err := entity.ParseItemType(it.ItemType)
		if err != nil {
			return nil, err
		}
		color, err := entity.ParseColor(it.Color)
		if err != nil {
			return nil, err
		}
		if it.Quantity < 0 || (!allowZero && it.Quantity == 0) {
			return nil, domain.ErrInvalidInput
		}
		lines = append(lines, entity.MovementLine{ItemType: itemType, Color: color, Quantity: it.Quantity})
	}
	return lines, nil
}

// sortLines ordena las líneas por (tipo, color). Todas las operaciones bloquean filas
// en este orden para que dos transacciones concurrentes sobre claves solapadas nunca
// se bloqueen en orden cruzado (deadlock).
func sortLines(lines []entity.MovementLine) []entity.MovementLine {
	sorted := make([]entity.MovementLine, len(lines))
	copy(sorted, lines)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].ItemType != sorted[j].ItemType {
			return sorted[i].ItemType < sorted[j].ItemType
		}
		return sorted[i].Color < sorted[j].Color
	})
	return sorted
}

// InitWarehouseStock siembra la bodega con cantidades absolutas (Set, no delta) y
// registra un evento init_stock sin ubicación origen. Es la única operación que
// cambia el total global por (tipo, color); en operación normal solo se invoca
// contra una bodega vacía (reseteo administrativo).
func (e *MovementEngine) InitWarehouseStock(ctx context.Context, items []StockLineInput, actor string) error {
	lines, err := parseLines(items, true)
	if err != nil {
		return err
	}
	now := time.Now()

	err = e.txRunner.Run(ctx, func(
		stockRepo repository.StockRepository,
		eventRepo repository.MovementEventRepository,
		_ repository.TextileCheckInRepository,
	) error {
		for _, ln := range sortLines(lines) {
			if _, err := stockRepo.Set(entity.LocationWarehouse, ln.ItemType, ln.Color, ln.Quantity, actor); err != nil {
				return err
			}
		}
		return eventRepo.Create(&entity.MovementEvent{
			Type:       entity.EventInitStock,
			ToLocation: entity.LocationWarehouse,
			Items:      lines,
			CreatedBy:  actor,
			CreatedAt:  now,
		})
	})
	if err != nil {
		return err
	}
	e.log.Info().Str("actor", actor).Int("lines", len(lines)).Msg("bodega sembrada (init_stock)")
	return nil
}

// CheckIn asigna textiles de bodega a una unidad de huéspedes. Expande la solicitud
// con el planificador, pre-valida TODAS las líneas contra bodega (si falta alguna,
// rechaza con InsufficientStockError enumerando cada faltante, sin aplicar nada) y
// solo entonces debita bodega y acredita la unidad, persiste el TextileCheckIn y
// registra un evento check_in. Todo o nada.
func (e *MovementEngine) CheckIn(ctx context.Context, input CheckInInput) (*entity.TextileCheckIn, error) {
	unitLoc, err := entity.UnitLocation(input.UnitCode)
	if err != nil {
		return nil, err
	}
	beddingSets := make([]entity.BeddingSetLine, 0, len(input.BeddingSets))
	for _, bs := range input.BeddingSets {
		color, err := entity.ParseColor(bs.Color)
		if err != nil {
			return nil, err
		}
		if bs.Count < 0 {
			return nil, domain.ErrInvalidInput
		}
		beddingSets = append(beddingSets, entity.BeddingSetLine{Color: color, Count: bs.Count})
	}
	lines, err := domaintextile.ExpandCheckIn(domaintextile.CheckInRequest{
		UnitCode:    unitLoc.Code(),
		BeddingSets: beddingSets,
		TowelSets:   input.TowelSets,
		Robes:       input.Robes,
		Notes:       input.Notes,
	})
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	checkIn := &entity.TextileCheckIn{
		ID:          uuid.New().String(),
		UnitCode:    unitLoc.Code(),
		BeddingSets: beddingSets,
		TowelSets:   input.TowelSets,
		Robes:       input.Robes,
		CreatedBy:   input.Actor,
		CreatedAt:   now,
		Notes:       input.Notes,
	}

	err = e.txRunner.Run(ctx, func(
		stockRepo repository.StockRepository,
		eventRepo repository.MovementEventRepository,
		checkinRepo repository.TextileCheckInRepository,
	) error {
		sorted := sortLines(lines)

		// Bloquea cada fila de bodega y acumula faltantes. La transacción serializa
		// check-ins concurrentes sobre las mismas claves: el segundo espera el lock
		// y valida contra el saldo ya debitado.
		var shortages []domain.ShortageLine
		for _, ln := range sorted {
			entry, err := stockRepo.GetForUpdate(entity.LocationWarehouse, ln.ItemType, ln.Color)
			if err != nil {
				return err
			}
			if entry.Quantity < ln.Quantity {
				shortages = append(shortages, domain.ShortageLine{
					ItemType:  string(ln.ItemType),
					Color:     string(ln.Color),
					Required:  ln.Quantity,
					Available: entry.Quantity,
				})
			}
		}
		if len(shortages) > 0 {
			return &domain.InsufficientStockError{Shortages: shortages}
		}

		for _, ln := range sorted {
			if _, err := stockRepo.AdjustBy(entity.LocationWarehouse, ln.ItemType, ln.Color, -ln.Quantity, input.Actor); err != nil {
				return err
			}
			if _, err := stockRepo.AdjustBy(unitLoc, ln.ItemType, ln.Color, ln.Quantity, input.Actor); err != nil {
				return err
			}
		}

		if err := checkinRepo.Create(checkIn); err != nil {
			return err
		}
		from := entity.LocationWarehouse
		return eventRepo.Create(&entity.MovementEvent{
			Type:            entity.EventCheckIn,
			FromLocation:    &from,
			ToLocation:      unitLoc,
			Items:           lines,
			RelatedUnitCode: unitLoc.Code(),
			CreatedBy:       input.Actor,
			CreatedAt:       now,
			Notes:           input.Notes,
		})
	})
	if err != nil {
		return nil, err
	}
	e.log.Info().Str("unit", unitLoc.Code()).Str("actor", input.Actor).Int("lines", len(lines)).Msg("check-in textil aplicado")
	return checkIn, nil
}

// MarkDirty mueve todo el stock actual de una unidad a lavandería (salida de
// huéspedes). Si la unidad no tiene stock es un no-op: no se mueve nada y no se
// registra evento. Devuelve si hubo movimiento.
func (e *MovementEngine) MarkDirty(ctx context.Context, unitCode, actor, notes string) (bool, error) {
	unitLoc, err := entity.UnitLocation(unitCode)
	if err != nil {
		return false, err
	}
	now := time.Now()
	moved := false

	err = e.txRunner.Run(ctx, func(
		stockRepo repository.StockRepository,
		eventRepo repository.MovementEventRepository,
		_ repository.TextileCheckInRepository,
	) error {
		entries, err := stockRepo.ListByLocationForUpdate(unitLoc)
		if err != nil {
			return err
		}
		var lines []entity.MovementLine
		for _, en := range entries {
			if en.Quantity > 0 {
				lines = append(lines, entity.MovementLine{ItemType: en.ItemType, Color: en.Color, Quantity: en.Quantity})
			}
		}
		if len(lines) == 0 {
			return nil
		}
		for _, ln := range sortLines(lines) {
			if _, err := stockRepo.AdjustBy(unitLoc, ln.ItemType, ln.Color, -ln.Quantity, actor); err != nil {
				return err
			}
			if _, err := stockRepo.AdjustBy(entity.LocationLaundry, ln.ItemType, ln.Color, ln.Quantity, actor); err != nil {
				return err
			}
		}
		moved = true
		from := unitLoc
		return eventRepo.Create(&entity.MovementEvent{
			Type:            entity.EventMarkDirty,
			FromLocation:    &from,
			ToLocation:      entity.LocationLaundry,
			Items:           lines,
			RelatedUnitCode: unitLoc.Code(),
			CreatedBy:       actor,
			CreatedAt:       now,
			Notes:           notes,
		})
	})
	if err != nil {
		return false, err
	}
	if moved {
		e.log.Info().Str("unit", unitLoc.Code()).Str("actor", actor).Msg("unidad marcada sucia, stock movido a lavandería")
	}
	return moved, nil
}

// MarkClean devuelve a bodega las líneas que el llamador afirma que volvieron limpias
// de lavandería. No se pre-valida contra el saldo de lavandería: una línea sobre-declarada
// falla en AdjustBy con NegativeBalanceError y revierte la operación completa.
func (e *MovementEngine) MarkClean(ctx context.Context, items []StockLineInput, actor, notes string) error {
	lines, err := parseLines(items, false)
	if err != nil {
		return err
	}
	now := time.Now()

	err = e.txRunner.Run(ctx, func(
		stockRepo repository.StockRepository,
		eventRepo repository.MovementEventRepository,
		_ repository.TextileCheckInRepository,
	) error {
		for _, ln := range sortLines(lines) {
			if _, err := stockRepo.AdjustBy(entity.LocationLaundry, ln.ItemType, ln.Color, -ln.Quantity, actor); err != nil {
				return err
			}
			if _, err := stockRepo.AdjustBy(entity.LocationWarehouse, ln.ItemType, ln.Color, ln.Quantity, actor); err != nil {
				return err
			}
		}
		from := entity.LocationLaundry
		return eventRepo.Create(&entity.MovementEvent{
			Type:         entity.EventMarkClean,
			FromLocation: &from,
			ToLocation:   entity.LocationWarehouse,
			Items:        lines,
			CreatedBy:    actor,
			CreatedAt:    now,
			Notes:        notes,
		})
	})
	if err != nil {
		return err
	}
	e.log.Info().Str("actor", actor).Int("lines", len(lines)).Msg("retorno de lavandería aplicado")
	return nil
}
