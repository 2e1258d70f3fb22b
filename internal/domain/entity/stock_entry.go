package entity

import "time"

// StockEntry cantidad actual de un textil en una ubicación; unidad de verdad del libro
// de stock. Única por (location, item_type, color). Se crea de forma perezosa en el
// primer ajuste y nunca se borra (la cantidad puede llegar a cero).
type StockEntry struct {
	Location  Location
	ItemType  ItemType
	Color     Color
	Quantity  int64 // siempre >= 0
	UpdatedBy string
	UpdatedAt time.Time
}
