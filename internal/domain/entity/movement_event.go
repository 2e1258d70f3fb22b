package entity

import "time"

// Tipos de evento de movimiento textil.
const (
	EventInitStock = "init_stock" // siembra de bodega, sin ubicación origen
	EventCheckIn   = "check_in"   // bodega -> unidad de huéspedes
	EventMarkDirty = "mark_dirty" // unidad -> lavandería (salida de huéspedes)
	EventMarkClean = "mark_clean" // lavandería -> bodega (retorno de lavado)
)

// MovementLine una línea (tipo, color, cantidad) dentro de un movimiento.
type MovementLine struct {
	ItemType ItemType `json:"item_type"`
	Color    Color    `json:"color"`
	Quantity int64    `json:"quantity"`
}

// MovementEvent registro inmutable de auditoría: un evento por operación completada
// del motor de movimientos, nunca se actualiza ni se borra. FromLocation es nil
// únicamente para init_stock.
type MovementEvent struct {
	ID              string
	Type            string
	FromLocation    *Location
	ToLocation      Location
	Items           []MovementLine
	RelatedUnitCode string
	CreatedBy       string
	CreatedAt       time.Time
	Notes           string
}
