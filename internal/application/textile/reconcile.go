package textile

import (
	"context"
	"sort"
	"strings"

	"github.com/hosteria/textil-api/internal/application/dto"
	"github.com/hosteria/textil-api/internal/domain/entity"
)

// balanceKey identifica una fila del libro durante el replay.
type balanceKey struct {
	Location string
	ItemType entity.ItemType
	Color    entity.Color
}

// Reconcile reconstruye los saldos reproduciendo el flujo completo de eventos
// (init_stock fija el saldo absoluto de bodega; todo lo demás resta en origen y
// suma en destino) y los compara con el libro vivo. El libro y el log se escriben
// en la misma transacción, así que cualquier discrepancia indica corrupción o
// escrituras por fuera del motor de movimientos.
func (e *MovementEngine) Reconcile(ctx context.Context) (*dto.ReconcileResponse, error) {
	events, err := e.eventRepo.ListAsc()
	if err != nil {
		return nil, err
	}

	replayed := map[balanceKey]int64{}
	for _, ev := range events {
		for _, ln := range ev.Items {
			switch ev.Type {
			case entity.EventInitStock:
				// Siembra absoluta: sobrescribe, no acumula.
				replayed[balanceKey{ev.ToLocation.Code(), ln.ItemType, ln.Color}] = ln.Quantity
			default:
				if ev.FromLocation != nil {
					replayed[balanceKey{ev.FromLocation.Code(), ln.ItemType, ln.Color}] -= ln.Quantity
				}
				replayed[balanceKey{ev.ToLocation.Code(), ln.ItemType, ln.Color}] += ln.Quantity
			}
		}
	}

	entries, err := e.stockRepo.ListAll()
	if err != nil {
		return nil, err
	}
	ledger := map[balanceKey]int64{}
	for _, en := range entries {
		ledger[balanceKey{en.Location.Code(), en.ItemType, en.Color}] = en.Quantity
	}

	keys := map[balanceKey]bool{}
	for k := range replayed {
		keys[k] = true
	}
	for k := range ledger {
		keys[k] = true
	}

	var diffs []dto.ReconcileLineDTO
	for k := range keys {
		if ledger[k] != replayed[k] {
			diffs = append(diffs, dto.ReconcileLineDTO{
				Location: k.Location,
				ItemType: string(k.ItemType),
				Color:    string(k.Color),
				Ledger:   ledger[k],
				Replayed: replayed[k],
			})
		}
	}
	sort.Slice(diffs, func(i, j int) bool {
		a := strings.Join([]string{diffs[i].Location, diffs[i].ItemType, diffs[i].Color}, "|")
		b := strings.Join([]string{diffs[j].Location, diffs[j].ItemType, diffs[j].Color}, "|")
		return a < b
	})

	return &dto.ReconcileResponse{
		Consistent:     len(diffs) == 0,
		Discrepancies:  diffs,
		EventsReplayed: len(events),
	}, nil
}
