package repository

import "github.com/hosteria/textil-api/internal/domain/entity"

// MovementEventRepository puerto del registro de auditoría append-only.
// Los eventos nunca se actualizan ni se borran.
type MovementEventRepository interface {
	// Create persiste un evento inmutable; asigna ID y CreatedAt si vienen vacíos.
	Create(event *entity.MovementEvent) error
	// ListRecent los N eventos más recientes.
	ListRecent(limit int) ([]*entity.MovementEvent, error)
	// ListByLocation eventos cuya ubicación origen o destino coincide.
	ListByLocation(location entity.Location, limit int) ([]*entity.MovementEvent, error)
	// ListAsc flujo completo en orden cronológico (para reconciliación por replay).
	ListAsc() ([]*entity.MovementEvent, error)
}
