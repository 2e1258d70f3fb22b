// Package memory implementa los puertos del libro textil sobre mapas en memoria.
// Se usa en tests del motor de movimientos y de los handlers HTTP sin necesidad
// de una base de datos. Las transacciones operan sobre una copia del estado que
// solo se publica en el commit, con un mutex global que serializa operaciones
// (las operaciones sobre claves solapadas quedan serializadas, como exige el motor).
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hosteria/textil-api/internal/application/textile"
	"github.com/hosteria/textil-api/internal/domain"
	"github.com/hosteria/textil-api/internal/domain/entity"
	"github.com/hosteria/textil-api/internal/domain/repository"
)

var _ textile.TxRunner = (*Store)(nil)

// Store estado compartido: libro de stock, eventos y check-ins.
type Store struct {
	mu sync.Mutex
	st *state
}

type stockKey struct {
	location string
	itemType entity.ItemType
	color    entity.Color
}

type state struct {
	stock    map[stockKey]entity.StockEntry
	events   []*entity.MovementEvent
	checkins []*entity.TextileCheckIn
}

// NewStore construye un almacén vacío.
func NewStore() *Store {
	return &Store{st: &state{stock: map[stockKey]entity.StockEntry{}}}
}

func (s *state) clone() *state {
	cp := &state{
		stock:    make(map[stockKey]entity.StockEntry, len(s.stock)),
		events:   append([]*entity.MovementEvent(nil), s.events...),
		checkins: append([]*entity.TextileCheckIn(nil), s.checkins...),
	}
	for k, v := range s.stock {
		cp.stock[k] = v
	}
	return cp
}

// Run ejecuta fn sobre una copia del estado y la publica solo si fn no falla.
// Un error de fn descarta la copia completa: ninguna escritura parcial es visible.
func (s *Store) Run(ctx context.Context, fn func(
	stockRepo repository.StockRepository,
	eventRepo repository.MovementEventRepository,
	checkinRepo repository.TextileCheckInRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	shadow := s.st.clone()
	err := fn(&stockRepo{st: shadow}, &eventRepo{st: shadow}, &checkinRepo{st: shadow})
	if err != nil {
		return err
	}
	s.st = shadow
	return nil
}

// StockRepo repositorio de stock sobre el estado confirmado.
func (s *Store) StockRepo() repository.StockRepository { return &stockRepo{store: s} }

// EventRepo repositorio de eventos sobre el estado confirmado.
func (s *Store) EventRepo() repository.MovementEventRepository { return &eventRepo{store: s} }

// CheckInRepo repositorio de check-ins sobre el estado confirmado.
func (s *Store) CheckInRepo() repository.TextileCheckInRepository { return &checkinRepo{store: s} }

// withState ejecuta fn sobre el estado transaccional (st) o, fuera de transacción,
// sobre el estado confirmado bajo el mutex del Store.
func withState[R any](store *Store, st *state, fn func(st *state) (R, error)) (R, error) {
	if st != nil {
		return fn(st)
	}
	store.mu.Lock()
	defer store.mu.Unlock()
	return fn(store.st)
}

// ── StockRepository ───────────────────────────────────────────────────────────

type stockRepo struct {
	store *Store
	st    *state
}

var _ repository.StockRepository = (*stockRepo)(nil)

func sortedEntries(entries []*entity.StockEntry) []*entity.StockEntry {
	sort.Slice(entries, func(i, j int) bool {
		a := strings.Join([]string{entries[i].Location.Code(), string(entries[i].ItemType), string(entries[i].Color)}, "|")
		b := strings.Join([]string{entries[j].Location.Code(), string(entries[j].ItemType), string(entries[j].Color)}, "|")
		return a < b
	})
	return entries
}

func (r *stockRepo) ListByLocation(location entity.Location) ([]*entity.StockEntry, error) {
	return withState(r.store, r.st, func(st *state) ([]*entity.StockEntry, error) {
		var entries []*entity.StockEntry
		for k, v := range st.stock {
			if k.location == location.Code() {
				e := v
				entries = append(entries, &e)
			}
		}
		return sortedEntries(entries), nil
	})
}

// ListByLocationForUpdate en memoria no hay bloqueo por fila: el mutex global ya serializa.
func (r *stockRepo) ListByLocationForUpdate(location entity.Location) ([]*entity.StockEntry, error) {
	return r.ListByLocation(location)
}

func (r *stockRepo) ListAll() ([]*entity.StockEntry, error) {
	return withState(r.store, r.st, func(st *state) ([]*entity.StockEntry, error) {
		entries := make([]*entity.StockEntry, 0, len(st.stock))
		for _, v := range st.stock {
			e := v
			entries = append(entries, &e)
		}
		return sortedEntries(entries), nil
	})
}

func (r *stockRepo) GetForUpdate(location entity.Location, itemType entity.ItemType, color entity.Color) (*entity.StockEntry, error) {
	return withState(r.store, r.st, func(st *state) (*entity.StockEntry, error) {
		if e, ok := st.stock[stockKey{location.Code(), itemType, color}]; ok {
			cp := e
			return &cp, nil
		}
		return &entity.StockEntry{Location: location, ItemType: itemType, Color: color}, nil
	})
}

func (r *stockRepo) Set(location entity.Location, itemType entity.ItemType, color entity.Color, quantity int64, actor string) (*entity.StockEntry, error) {
	return withState(r.store, r.st, func(st *state) (*entity.StockEntry, error) {
		if quantity < 0 {
			return nil, &domain.NegativeBalanceError{
				Location: location.Code(), ItemType: string(itemType), Color: string(color),
				Current: 0, Delta: quantity,
			}
		}
		e := entity.StockEntry{
			Location: location, ItemType: itemType, Color: color,
			Quantity: quantity, UpdatedBy: actor, UpdatedAt: time.Now(),
		}
		st.stock[stockKey{location.Code(), itemType, color}] = e
		return &e, nil
	})
}

func (r *stockRepo) AdjustBy(location entity.Location, itemType entity.ItemType, color entity.Color, delta int64, actor string) (*entity.StockEntry, error) {
	return withState(r.store, r.st, func(st *state) (*entity.StockEntry, error) {
		key := stockKey{location.Code(), itemType, color}
		current := st.stock[key].Quantity
		newQty := current + delta
		if newQty < 0 {
			return nil, &domain.NegativeBalanceError{
				Location: location.Code(), ItemType: string(itemType), Color: string(color),
				Current: current, Delta: delta,
			}
		}
		e := entity.StockEntry{
			Location: location, ItemType: itemType, Color: color,
			Quantity: newQty, UpdatedBy: actor, UpdatedAt: time.Now(),
		}
		st.stock[key] = e
		return &e, nil
	})
}

// ── MovementEventRepository ───────────────────────────────────────────────────

type eventRepo struct {
	store *Store
	st    *state
}

var _ repository.MovementEventRepository = (*eventRepo)(nil)

func (r *eventRepo) Create(event *entity.MovementEvent) error {
	_, err := withState(r.store, r.st, func(st *state) (struct{}, error) {
		if event.ID == "" {
			event.ID = uuid.New().String()
		}
		if event.CreatedAt.IsZero() {
			event.CreatedAt = time.Now()
		}
		cp := *event
		cp.Items = append([]entity.MovementLine(nil), event.Items...)
		st.events = append(st.events, &cp)
		return struct{}{}, nil
	})
	return err
}

func lastN(events []*entity.MovementEvent, limit int) []*entity.MovementEvent {
	// Los eventos se insertan en orden; los más recientes van al final.
	out := make([]*entity.MovementEvent, 0, limit)
	for i := len(events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, events[i])
	}
	return out
}

func (r *eventRepo) ListRecent(limit int) ([]*entity.MovementEvent, error) {
	return withState(r.store, r.st, func(st *state) ([]*entity.MovementEvent, error) {
		return lastN(st.events, limit), nil
	})
}

func (r *eventRepo) ListByLocation(location entity.Location, limit int) ([]*entity.MovementEvent, error) {
	return withState(r.store, r.st, func(st *state) ([]*entity.MovementEvent, error) {
		var matched []*entity.MovementEvent
		for _, ev := range st.events {
			if ev.ToLocation == location || (ev.FromLocation != nil && *ev.FromLocation == location) {
				matched = append(matched, ev)
			}
		}
		return lastN(matched, limit), nil
	})
}

func (r *eventRepo) ListAsc() ([]*entity.MovementEvent, error) {
	return withState(r.store, r.st, func(st *state) ([]*entity.MovementEvent, error) {
		return append([]*entity.MovementEvent(nil), st.events...), nil
	})
}

// ── TextileCheckInRepository ──────────────────────────────────────────────────

type checkinRepo struct {
	store *Store
	st    *state
}

var _ repository.TextileCheckInRepository = (*checkinRepo)(nil)

func (r *checkinRepo) Create(checkIn *entity.TextileCheckIn) error {
	_, err := withState(r.store, r.st, func(st *state) (struct{}, error) {
		for _, ci := range st.checkins {
			if ci.ID == checkIn.ID {
				return struct{}{}, domain.ErrDuplicate
			}
		}
		cp := *checkIn
		cp.BeddingSets = append([]entity.BeddingSetLine(nil), checkIn.BeddingSets...)
		st.checkins = append(st.checkins, &cp)
		return struct{}{}, nil
	})
	return err
}

func (r *checkinRepo) GetByID(id string) (*entity.TextileCheckIn, error) {
	return withState(r.store, r.st, func(st *state) (*entity.TextileCheckIn, error) {
		for _, ci := range st.checkins {
			if ci.ID == id {
				cp := *ci
				return &cp, nil
			}
		}
		return nil, nil
	})
}

func pageDesc(list []*entity.TextileCheckIn, limit, offset int) []*entity.TextileCheckIn {
	out := make([]*entity.TextileCheckIn, 0, limit)
	for i := len(list) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, list[i])
	}
	return out
}

func (r *checkinRepo) ListByUnit(unitCode string, limit, offset int) ([]*entity.TextileCheckIn, error) {
	return withState(r.store, r.st, func(st *state) ([]*entity.TextileCheckIn, error) {
		var matched []*entity.TextileCheckIn
		for _, ci := range st.checkins {
			if ci.UnitCode == unitCode {
				matched = append(matched, ci)
			}
		}
		return pageDesc(matched, limit, offset), nil
	})
}

func (r *checkinRepo) ListRecent(limit, offset int) ([]*entity.TextileCheckIn, error) {
	return withState(r.store, r.st, func(st *state) ([]*entity.TextileCheckIn, error) {
		return pageDesc(st.checkins, limit, offset), nil
	})
}
