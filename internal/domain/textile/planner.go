package textile

import (
	"fmt"

	"github.com/hosteria/textil-api/internal/domain"
	"github.com/hosteria/textil-api/internal/domain/entity"
)

// Proporciones fijas de negocio por juego solicitado.
// Juego de cama: 1 sábana + 1 funda nórdica + 2 fundas de almohada, del color elegido.
// Juego de toallas: 2 toallas grandes + 2 pequeñas, siempre grises.
// Batas: siempre grises, solo si se piden.
const (
	pillowcasesPerBeddingSet = 2
	towelsLargePerSet        = 2
	towelsSmallPerSet        = 2
)

// CheckInRequest solicitud efímera de textiles para la llegada de huéspedes a una unidad.
// No se persiste tal cual; tras aplicarse queda un entity.TextileCheckIn.
type CheckInRequest struct {
	UnitCode    string
	BeddingSets []entity.BeddingSetLine
	TowelSets   int
	Robes       int
	Notes       string
}

// ExpandCheckIn traduce las cantidades de cara al huésped en líneas físicas
// (tipo, color, cantidad). Función pura, sin estado ni efectos: el motor de
// movimientos valida y aplica el resultado contra el libro de stock.
//
// Las líneas del mismo (tipo, color) se suman; colores distintos quedan como
// líneas separadas. El orden de salida es determinista: ropa de cama en el
// orden solicitado, luego toallas, luego batas.
func ExpandCheckIn(req CheckInRequest) ([]entity.MovementLine, error) {
	if req.TowelSets < 0 || req.Robes < 0 {
		return nil, fmt.Errorf("cantidades negativas en la solicitud: %w", domain.ErrInvalidInput)
	}

	var lines []entity.MovementLine
	add := func(itemType entity.ItemType, color entity.Color, qty int64) {
		if qty <= 0 {
			return
		}
		for i := range lines {
			if lines[i].ItemType == itemType && lines[i].Color == color {
				lines[i].Quantity += qty
				return
			}
		}
		lines = append(lines, entity.MovementLine{ItemType: itemType, Color: color, Quantity: qty})
	}

	for _, set := range req.BeddingSets {
		if set.Count < 0 {
			return nil, fmt.Errorf("juegos de cama con cantidad negativa: %w", domain.ErrInvalidInput)
		}
		color, err := entity.ParseColor(string(set.Color))
		if err != nil {
			return nil, err
		}
		n := int64(set.Count)
		add(entity.ItemSheets, color, n)
		add(entity.ItemDuvetCovers, color, n)
		add(entity.ItemPillowcases, color, n*pillowcasesPerBeddingSet)
	}

	towels := int64(req.TowelSets)
	add(entity.ItemTowelsLarge, entity.ColorGrey, towels*towelsLargePerSet)
	add(entity.ItemTowelsSmall, entity.ColorGrey, towels*towelsSmallPerSet)
	add(entity.ItemRobes, entity.ColorGrey, int64(req.Robes))

	return lines, nil
}
