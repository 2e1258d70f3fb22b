package textile

import (
	"context"

	"github.com/hosteria/textil-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios
// atados a esa tx. Garantiza que validar-y-aplicar de cada operación del motor sea
// atómico: el libro de stock, el check-in y su evento de auditoría confirman juntos
// o no confirma nada.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		stockRepo repository.StockRepository,
		eventRepo repository.MovementEventRepository,
		checkinRepo repository.TextileCheckInRepository,
	) error) error
}
