package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hosteria/textil-api/internal/domain/entity"
	"github.com/hosteria/textil-api/internal/domain/repository"
	"github.com/jackc/pgx/v5"
)

var _ repository.MovementEventRepository = (*MovementEventRepo)(nil)

// MovementEventRepo registro de auditoría append-only sobre PostgreSQL
// (usable con pool o tx). Los eventos nunca se actualizan ni se borran.
type MovementEventRepo struct {
	q Querier
}

// NewMovementEventRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementEventRepository(q Querier) *MovementEventRepo {
	return &MovementEventRepo{q: q}
}

const eventColumns = "id, type, from_location, to_location, items, related_unit_code, created_by, created_at, notes"

// Create persiste un evento inmutable; asigna ID y CreatedAt si vienen vacíos.
func (r *MovementEventRepo) Create(event *entity.MovementEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	items, err := json.Marshal(event.Items)
	if err != nil {
		return fmt.Errorf("marshal event items: %w", err)
	}
	var fromLoc *string
	if event.FromLocation != nil {
		code := event.FromLocation.Code()
		fromLoc = &code
	}
	createdBy := (*string)(nil)
	if event.CreatedBy != "" {
		createdBy = &event.CreatedBy
	}
	query := `
		INSERT INTO movement_events (id, type, from_location, to_location, items, related_unit_code, created_by, created_at, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err = r.q.Exec(context.Background(), query,
		event.ID, event.Type, fromLoc, event.ToLocation.Code(), items,
		nullIfEmpty(event.RelatedUnitCode), createdBy, event.CreatedAt, nullIfEmpty(event.Notes),
	)
	if err != nil {
		return fmt.Errorf("create movement event: %w", err)
	}
	return nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func scanEvent(row pgx.Rows) (*entity.MovementEvent, error) {
	var (
		ev        entity.MovementEvent
		fromLoc   *string
		toLoc     string
		items     []byte
		unitCode  *string
		createdBy *string
		notes     *string
	)
	if err := row.Scan(&ev.ID, &ev.Type, &fromLoc, &toLoc, &items, &unitCode, &createdBy, &ev.CreatedAt, &notes); err != nil {
		return nil, fmt.Errorf("scan movement event: %w", err)
	}
	if fromLoc != nil {
		loc, err := entity.ParseLocation(*fromLoc)
		if err != nil {
			return nil, err
		}
		ev.FromLocation = &loc
	}
	to, err := entity.ParseLocation(toLoc)
	if err != nil {
		return nil, err
	}
	ev.ToLocation = to
	if err := json.Unmarshal(items, &ev.Items); err != nil {
		return nil, fmt.Errorf("unmarshal event items: %w", err)
	}
	if unitCode != nil {
		ev.RelatedUnitCode = *unitCode
	}
	if createdBy != nil {
		ev.CreatedBy = *createdBy
	}
	if notes != nil {
		ev.Notes = *notes
	}
	return &ev, nil
}

func (r *MovementEventRepo) list(query string, args ...any) ([]*entity.MovementEvent, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movement events: %w", err)
	}
	defer rows.Close()
	var events []*entity.MovementEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// ListRecent los N eventos más recientes.
func (r *MovementEventRepo) ListRecent(limit int) ([]*entity.MovementEvent, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM movement_events
		ORDER BY created_at DESC, id DESC
		LIMIT $1`
	return r.list(query, limit)
}

// ListByLocation eventos cuya ubicación origen o destino coincide.
func (r *MovementEventRepo) ListByLocation(location entity.Location, limit int) ([]*entity.MovementEvent, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM movement_events
		WHERE from_location = $1 OR to_location = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`
	return r.list(query, location.Code(), limit)
}

// ListAsc flujo completo en orden cronológico, para reconciliación por replay.
func (r *MovementEventRepo) ListAsc() ([]*entity.MovementEvent, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM movement_events
		ORDER BY created_at ASC, id ASC`
	return r.list(query)
}
