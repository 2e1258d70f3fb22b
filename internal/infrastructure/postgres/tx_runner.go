package postgres

import (
	"context"
	"fmt"

	"github.com/hosteria/textil-api/internal/application/textile"
	"github.com/hosteria/textil-api/internal/domain/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ textile.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL. Todas las
// escrituras del motor de movimientos (libro de stock, check-in y evento de
// auditoría) confirman en la misma tx, así un crash nunca deja stock cambiado
// sin su entrada de auditoría ni al revés.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	stockRepo repository.StockRepository,
	eventRepo repository.MovementEventRepository,
	checkinRepo repository.TextileCheckInRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	stockRepo := NewStockRepository(tx)
	eventRepo := NewMovementEventRepository(tx)
	checkinRepo := NewTextileCheckInRepository(tx)

	if err := fn(stockRepo, eventRepo, checkinRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
