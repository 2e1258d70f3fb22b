package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hosteria/textil-api/internal/domain"
	"github.com/hosteria/textil-api/internal/domain/entity"
	"github.com/hosteria/textil-api/internal/domain/repository"
	"github.com/jackc/pgx/v5"
)

var _ repository.TextileCheckInRepository = (*TextileCheckInRepo)(nil)

// TextileCheckInRepo persistencia de check-ins textiles sobre PostgreSQL
// (usable con pool o tx).
type TextileCheckInRepo struct {
	q Querier
}

// NewTextileCheckInRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTextileCheckInRepository(q Querier) *TextileCheckInRepo {
	return &TextileCheckInRepo{q: q}
}

const checkinColumns = "id, unit_code, bedding_sets, towel_sets, robes, created_by, created_at, notes"

// Create persiste un check-in aplicado. El registro nunca se altera después.
func (r *TextileCheckInRepo) Create(checkIn *entity.TextileCheckIn) error {
	sets, err := json.Marshal(checkIn.BeddingSets)
	if err != nil {
		return fmt.Errorf("marshal bedding sets: %w", err)
	}
	query := `
		INSERT INTO textile_checkins (id, unit_code, bedding_sets, towel_sets, robes, created_by, created_at, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = r.q.Exec(context.Background(), query,
		checkIn.ID, checkIn.UnitCode, sets, checkIn.TowelSets, checkIn.Robes,
		nullIfEmpty(checkIn.CreatedBy), checkIn.CreatedAt, nullIfEmpty(checkIn.Notes),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create textile check-in: %w", err)
	}
	return nil
}

func scanCheckIn(row pgx.Row) (*entity.TextileCheckIn, error) {
	var (
		ci        entity.TextileCheckIn
		sets      []byte
		createdBy *string
		notes     *string
	)
	if err := row.Scan(&ci.ID, &ci.UnitCode, &sets, &ci.TowelSets, &ci.Robes, &createdBy, &ci.CreatedAt, &notes); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(sets, &ci.BeddingSets); err != nil {
		return nil, fmt.Errorf("unmarshal bedding sets: %w", err)
	}
	if createdBy != nil {
		ci.CreatedBy = *createdBy
	}
	if notes != nil {
		ci.Notes = *notes
	}
	return &ci, nil
}

// GetByID obtiene un check-in por ID; nil si no existe.
func (r *TextileCheckInRepo) GetByID(id string) (*entity.TextileCheckIn, error) {
	query := `
		SELECT ` + checkinColumns + `
		FROM textile_checkins WHERE id = $1`
	ci, err := scanCheckIn(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get textile check-in: %w", err)
	}
	return ci, nil
}

func (r *TextileCheckInRepo) list(query string, args ...any) ([]*entity.TextileCheckIn, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list textile check-ins: %w", err)
	}
	defer rows.Close()
	var list []*entity.TextileCheckIn
	for rows.Next() {
		ci, err := scanCheckIn(rows)
		if err != nil {
			return nil, fmt.Errorf("scan textile check-in: %w", err)
		}
		list = append(list, ci)
	}
	return list, rows.Err()
}

// ListByUnit historial de check-ins de una unidad, más recientes primero.
func (r *TextileCheckInRepo) ListByUnit(unitCode string, limit, offset int) ([]*entity.TextileCheckIn, error) {
	query := `
		SELECT ` + checkinColumns + `
		FROM textile_checkins WHERE unit_code = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	return r.list(query, unitCode, limit, offset)
}

// ListRecent historial global, más recientes primero.
func (r *TextileCheckInRepo) ListRecent(limit, offset int) ([]*entity.TextileCheckIn, error) {
	query := `
		SELECT ` + checkinColumns + `
		FROM textile_checkins
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`
	return r.list(query, limit, offset)
}
