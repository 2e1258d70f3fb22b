package repository

import "github.com/hosteria/textil-api/internal/domain/entity"

// TextileCheckInRepository puerto de persistencia de los check-ins textiles aplicados.
type TextileCheckInRepository interface {
	Create(checkIn *entity.TextileCheckIn) error
	GetByID(id string) (*entity.TextileCheckIn, error)
	ListByUnit(unitCode string, limit, offset int) ([]*entity.TextileCheckIn, error)
	ListRecent(limit, offset int) ([]*entity.TextileCheckIn, error)
}
