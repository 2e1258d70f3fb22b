package entity

import (
	"fmt"
	"strings"

	"github.com/hosteria/textil-api/internal/domain"
)

// ItemType categoría de textil manejada por la hostería.
type ItemType string

const (
	ItemSheets         ItemType = "sheets"
	ItemDuvetCovers    ItemType = "duvet_covers"
	ItemPillowcases    ItemType = "pillowcases"
	ItemTowelsLarge    ItemType = "towels_large"
	ItemTowelsSmall    ItemType = "towels_small"
	ItemRobes          ItemType = "robes"
	ItemMattressCovers ItemType = "mattress_covers"
)

// Color de textil. Toallas y batas son siempre grises por regla de negocio;
// el color de la ropa de cama se elige por solicitud.
type Color string

const (
	ColorWhite Color = "white"
	ColorBeige Color = "beige"
	ColorGreen Color = "green"
	ColorGrey  Color = "grey"
)

var itemTypes = map[ItemType]bool{
	ItemSheets:         true,
	ItemDuvetCovers:    true,
	ItemPillowcases:    true,
	ItemTowelsLarge:    true,
	ItemTowelsSmall:    true,
	ItemRobes:          true,
	ItemMattressCovers: true,
}

var colors = map[Color]bool{
	ColorWhite: true,
	ColorBeige: true,
	ColorGreen: true,
	ColorGrey:  true,
}

// ParseItemType valida y normaliza un tipo de artículo recibido del exterior.
func ParseItemType(s string) (ItemType, error) {
	it := ItemType(strings.ToLower(strings.TrimSpace(s)))
	if !itemTypes[it] {
		return "", fmt.Errorf("tipo de artículo %q: %w", s, domain.ErrUnknownItem)
	}
	return it, nil
}

// ParseColor valida y normaliza un color recibido del exterior.
func ParseColor(s string) (Color, error) {
	c := Color(strings.ToLower(strings.TrimSpace(s)))
	if !colors[c] {
		return "", fmt.Errorf("color %q: %w", s, domain.ErrUnknownItem)
	}
	return c, nil
}

// Claves reservadas del espacio de ubicaciones. Cualquier otro código es una unidad.
const (
	warehouseCode = "warehouse"
	laundryCode   = "laundry"
)

// Location lugar físico donde puede residir stock textil: bodega central,
// lavandería o una unidad de huéspedes (cabaña D1, D2, ...). El tipo hace
// irrepresentables las ubicaciones ilegales; internamente se persiste como
// clave de texto plano.
type Location struct {
	code string
}

var (
	LocationWarehouse = Location{code: warehouseCode}
	LocationLaundry   = Location{code: laundryCode}
)

// UnitLocation construye la ubicación de una unidad de huéspedes.
// Rechaza códigos vacíos, con espacios o que colisionen con las claves reservadas.
func UnitLocation(code string) (Location, error) {
	code = strings.TrimSpace(code)
	if code == "" || strings.ContainsAny(code, " \t\n") {
		return Location{}, fmt.Errorf("código de unidad %q: %w", code, domain.ErrInvalidInput)
	}
	if code == warehouseCode || code == laundryCode {
		return Location{}, fmt.Errorf("código de unidad %q reservado: %w", code, domain.ErrInvalidInput)
	}
	return Location{code: code}, nil
}

// ParseLocation interpreta una clave de ubicación persistida o recibida del exterior.
func ParseLocation(s string) (Location, error) {
	s = strings.TrimSpace(s)
	switch s {
	case warehouseCode:
		return LocationWarehouse, nil
	case laundryCode:
		return LocationLaundry, nil
	}
	return UnitLocation(s)
}

// Code devuelve la clave de texto bajo la que se persiste la ubicación.
func (l Location) Code() string { return l.code }

func (l Location) String() string { return l.code }

// IsZero indica una Location sin inicializar (no es ninguna ubicación válida).
func (l Location) IsZero() bool { return l.code == "" }

func (l Location) IsWarehouse() bool { return l.code == warehouseCode }

func (l Location) IsLaundry() bool { return l.code == laundryCode }

// IsUnit indica una unidad de huéspedes (todo lo que no es bodega ni lavandería).
func (l Location) IsUnit() bool {
	return l.code != "" && !l.IsWarehouse() && !l.IsLaundry()
}
