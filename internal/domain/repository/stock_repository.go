package repository

import "github.com/hosteria/textil-api/internal/domain/entity"

// StockRepository puerto del libro de stock textil: fuente única de verdad de las
// cantidades actuales por (ubicación, tipo, color). Sin reglas de negocio; el motor
// de movimientos es el único que transfiere cantidades a través de AdjustBy.
type StockRepository interface {
	// ListByLocation devuelve todas las filas de una ubicación, incluidas las de cantidad cero.
	ListByLocation(location entity.Location) ([]*entity.StockEntry, error)
	// ListByLocationForUpdate igual que ListByLocation pero bloqueando las filas (SELECT FOR UPDATE).
	ListByLocationForUpdate(location entity.Location) ([]*entity.StockEntry, error)
	// ListAll instantánea global del libro.
	ListAll() ([]*entity.StockEntry, error)
	// GetForUpdate obtiene una fila bloqueándola; si no existe devuelve cantidad cero sin crearla.
	GetForUpdate(location entity.Location, itemType entity.ItemType, color entity.Color) (*entity.StockEntry, error)
	// Set upsert idempotente: sobrescribe la cantidad de forma incondicional
	// (siembra y correcciones administrativas, nunca transferencias).
	Set(location entity.Location, itemType entity.ItemType, color entity.Color, quantity int64, actor string) (*entity.StockEntry, error)
	// AdjustBy lee la cantidad actual, calcula current+delta y escribe el resultado.
	// Devuelve domain.NegativeBalanceError sin escribir si el resultado sería negativo.
	AdjustBy(location entity.Location, itemType entity.ItemType, color entity.Color, delta int64, actor string) (*entity.StockEntry, error)
}
