package entity

import "time"

// BeddingSetLine juegos de cama de un color solicitados en un check-in.
// Un juego = 1 sábana + 1 funda nórdica + 2 fundas de almohada.
type BeddingSetLine struct {
	Color Color `json:"color"`
	Count int   `json:"count"`
}

// TextileCheckIn registro de trazabilidad de un check-in textil aplicado con éxito.
// Se crea exactamente una vez, al confirmar la operación, y no se altera después.
type TextileCheckIn struct {
	ID          string
	UnitCode    string
	BeddingSets []BeddingSetLine
	TowelSets   int
	Robes       int
	CreatedBy   string
	CreatedAt   time.Time
	Notes       string
}
