package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/hosteria/textil-api/internal/domain"
	"github.com/hosteria/textil-api/internal/domain/entity"
	"github.com/hosteria/textil-api/internal/domain/repository"
	"github.com/jackc/pgx/v5"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador del libro de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

const stockColumns = "location, item_type, color, quantity, updated_by, updated_at"

func scanStockEntry(row pgx.Row) (*entity.StockEntry, error) {
	var (
		e         entity.StockEntry
		loc       string
		itemType  string
		color     string
		updatedBy *string
	)
	if err := row.Scan(&loc, &itemType, &color, &e.Quantity, &updatedBy, &e.UpdatedAt); err != nil {
		return nil, err
	}
	location, err := entity.ParseLocation(loc)
	if err != nil {
		return nil, fmt.Errorf("ubicación persistida inválida %q: %w", loc, err)
	}
	e.Location = location
	e.ItemType = entity.ItemType(itemType)
	e.Color = entity.Color(color)
	if updatedBy != nil {
		e.UpdatedBy = *updatedBy
	}
	return &e, nil
}

func (r *StockRepo) list(query string, args ...any) ([]*entity.StockEntry, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()
	var entries []*entity.StockEntry
	for rows.Next() {
		e, err := scanStockEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ListByLocation todas las filas de una ubicación, cantidad cero incluida.
func (r *StockRepo) ListByLocation(location entity.Location) ([]*entity.StockEntry, error) {
	query := `
		SELECT ` + stockColumns + `
		FROM stock_entries WHERE location = $1
		ORDER BY item_type, color`
	return r.list(query, location.Code())
}

// ListByLocationForUpdate igual que ListByLocation pero bloqueando las filas.
func (r *StockRepo) ListByLocationForUpdate(location entity.Location) ([]*entity.StockEntry, error) {
	query := `
		SELECT ` + stockColumns + `
		FROM stock_entries WHERE location = $1
		ORDER BY item_type, color
		FOR UPDATE`
	return r.list(query, location.Code())
}

// ListAll instantánea global del libro.
func (r *StockRepo) ListAll() ([]*entity.StockEntry, error) {
	query := `
		SELECT ` + stockColumns + `
		FROM stock_entries
		ORDER BY location, item_type, color`
	return r.list(query)
}

// GetForUpdate obtiene una fila y la bloquea (SELECT FOR UPDATE). Si no existe
// devuelve cantidad cero sin crearla: las filas se crean de forma perezosa en la
// primera escritura.
func (r *StockRepo) GetForUpdate(location entity.Location, itemType entity.ItemType, color entity.Color) (*entity.StockEntry, error) {
	query := `
		SELECT ` + stockColumns + `
		FROM stock_entries WHERE location = $1 AND item_type = $2 AND color = $3
		FOR UPDATE`
	e, err := scanStockEntry(r.q.QueryRow(context.Background(), query, location.Code(), string(itemType), string(color)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockEntry{Location: location, ItemType: itemType, Color: color, Quantity: 0}, nil
		}
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return e, nil
}

// Set upsert idempotente: sobrescribe la cantidad de forma incondicional.
// Solo para siembra y correcciones administrativas, nunca para transferencias.
func (r *StockRepo) Set(location entity.Location, itemType entity.ItemType, color entity.Color, quantity int64, actor string) (*entity.StockEntry, error) {
	if quantity < 0 {
		return nil, &domain.NegativeBalanceError{
			Location: location.Code(), ItemType: string(itemType), Color: string(color),
			Current: 0, Delta: quantity,
		}
	}
	query := `
		INSERT INTO stock_entries (location, item_type, color, quantity, updated_by, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (location, item_type, color)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_by = EXCLUDED.updated_by, updated_at = now()
		RETURNING ` + stockColumns
	e, err := scanStockEntry(r.q.QueryRow(context.Background(), query, location.Code(), string(itemType), string(color), quantity, actor))
	if err != nil {
		return nil, fmt.Errorf("set stock: %w", err)
	}
	return e, nil
}

// AdjustBy lee la cantidad actual con bloqueo, valida current+delta y aplica el
// delta. Rechaza sin escribir si el resultado sería negativo: nunca se recorta a
// cero en silencio, porque eso descartaría el delta faltante y rompería la
// conservación.
//
// La escritura es relativa (quantity + delta), no absoluta: si la fila aún no
// existe, el SELECT FOR UPDATE no encuentra nada que bloquear y dos transacciones
// concurrentes podrían leer cero a la vez; con un upsert absoluto la segunda
// pisaría el delta de la primera. El brazo DO UPDATE relativo hace que ambas
// acumulen, y el CHECK (quantity >= 0) del esquema respalda la validación si una
// carrera deja pasar un delta negativo.
func (r *StockRepo) AdjustBy(location entity.Location, itemType entity.ItemType, color entity.Color, delta int64, actor string) (*entity.StockEntry, error) {
	current, err := r.GetForUpdate(location, itemType, color)
	if err != nil {
		return nil, err
	}
	if current.Quantity+delta < 0 {
		return nil, &domain.NegativeBalanceError{
			Location: location.Code(), ItemType: string(itemType), Color: string(color),
			Current: current.Quantity, Delta: delta,
		}
	}
	query := `
		INSERT INTO stock_entries (location, item_type, color, quantity, updated_by, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (location, item_type, color)
		DO UPDATE SET quantity = stock_entries.quantity + $4, updated_by = EXCLUDED.updated_by, updated_at = now()
		RETURNING ` + stockColumns
	e, err := scanStockEntry(r.q.QueryRow(context.Background(), query, location.Code(), string(itemType), string(color), delta, actor))
	if err != nil {
		return nil, fmt.Errorf("adjust stock: %w", err)
	}
	return e, nil
}
