package dto

import "time"

// StockLineRequest una línea (tipo, color, cantidad) en peticiones de siembra o retorno de lavado.
type StockLineRequest struct {
	ItemType string `json:"item_type"`
	Color    string `json:"color"`
	Quantity int64  `json:"quantity"`
}

// InitStockRequest body para POST /api/textiles/init (siembra absoluta de bodega; solo admin).
type InitStockRequest struct {
	Items []StockLineRequest `json:"items"`
}

// BeddingSetRequest juegos de cama de un color dentro de un check-in.
type BeddingSetRequest struct {
	Color string `json:"color"`
	Count int    `json:"count"`
}

// CheckInRequest body para POST /api/textiles/check-ins.
type CheckInRequest struct {
	UnitCode    string              `json:"unit_code"`
	BeddingSets []BeddingSetRequest `json:"bedding_sets"`
	TowelSets   int                 `json:"towel_sets"`
	Robes       int                 `json:"robes"`
	Notes       string              `json:"notes,omitempty"`
}

// MarkDirtyRequest body para POST /api/textiles/mark-dirty.
type MarkDirtyRequest struct {
	UnitCode string `json:"unit_code"`
	Notes    string `json:"notes,omitempty"`
}

// MarkCleanRequest body para POST /api/textiles/mark-clean. El llamador
// (pantalla de recepción de lavandería) afirma qué volvió limpio.
type MarkCleanRequest struct {
	Items []StockLineRequest `json:"items"`
	Notes string             `json:"notes,omitempty"`
}

// TextileCheckInResponse check-in persistido devuelto al aplicar la operación.
type TextileCheckInResponse struct {
	ID          string              `json:"id"`
	UnitCode    string              `json:"unit_code"`
	BeddingSets []BeddingSetRequest `json:"bedding_sets"`
	TowelSets   int                 `json:"towel_sets"`
	Robes       int                 `json:"robes"`
	CreatedBy   string              `json:"created_by"`
	CreatedAt   time.Time           `json:"created_at"`
	Notes       string              `json:"notes,omitempty"`
}

// StockEntryDTO fila del libro de stock en respuestas por ubicación.
type StockEntryDTO struct {
	Location  string    `json:"location"`
	ItemType  string    `json:"item_type"`
	Color     string    `json:"color"`
	Quantity  int64     `json:"quantity"`
	UpdatedBy string    `json:"updated_by,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StockSummaryResponse resumen global. Las claves internas son "{item_type}_{color}".
type StockSummaryResponse struct {
	Warehouse map[string]int64            `json:"warehouse"`
	Laundry   map[string]int64            `json:"laundry"`
	Units     map[string]map[string]int64 `json:"units"`
}

// MovementLineDTO línea de un evento de movimiento.
type MovementLineDTO struct {
	ItemType string `json:"item_type"`
	Color    string `json:"color"`
	Quantity int64  `json:"quantity"`
}

// MovementEventDTO evento de auditoría serializado. FromLocation va vacío solo en init_stock.
type MovementEventDTO struct {
	ID              string            `json:"id"`
	Type            string            `json:"type"`
	FromLocation    string            `json:"from_location,omitempty"`
	ToLocation      string            `json:"to_location"`
	Items           []MovementLineDTO `json:"items"`
	RelatedUnitCode string            `json:"related_unit_code,omitempty"`
	CreatedBy       string            `json:"created_by,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	Notes           string            `json:"notes,omitempty"`
}

// ReconcileLineDTO discrepancia entre el libro vivo y el replay de eventos.
type ReconcileLineDTO struct {
	Location string `json:"location"`
	ItemType string `json:"item_type"`
	Color    string `json:"color"`
	Ledger   int64  `json:"ledger"`
	Replayed int64  `json:"replayed"`
}

// ReconcileResponse resultado de la verificación de consistencia por replay.
type ReconcileResponse struct {
	Consistent     bool               `json:"consistent"`
	Discrepancies  []ReconcileLineDTO `json:"discrepancies,omitempty"`
	EventsReplayed int                `json:"events_replayed"`
}
