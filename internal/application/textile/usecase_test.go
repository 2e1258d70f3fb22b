package textile_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apptextile "github.com/hosteria/textil-api/internal/application/textile"
	"github.com/hosteria/textil-api/internal/domain"
	"github.com/hosteria/textil-api/internal/domain/entity"
	"github.com/hosteria/textil-api/internal/infrastructure/memory"
	"github.com/hosteria/textil-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test: motor sobre el almacén en memoria, sin base de datos.
// ──────────────────────────────────────────────────────────────────────────────

func newEngine(t *testing.T) (*apptextile.MovementEngine, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	engine := apptextile.NewMovementEngine(store, store.StockRepo(), store.EventRepo(), store.CheckInRepo(), logger.NewNop())
	return engine, store
}

// quantityAt saldo actual de una fila del libro (0 si no existe).
func quantityAt(t *testing.T, store *memory.Store, location string, itemType entity.ItemType, color entity.Color) int64 {
	t.Helper()
	loc, err := entity.ParseLocation(location)
	require.NoError(t, err)
	entry, err := store.StockRepo().GetForUpdate(loc, itemType, color)
	require.NoError(t, err)
	return entry.Quantity
}

// totalFor suma global de una clave (tipo, color) en todas las ubicaciones.
func totalFor(t *testing.T, store *memory.Store, itemType entity.ItemType, color entity.Color) int64 {
	t.Helper()
	entries, err := store.StockRepo().ListAll()
	require.NoError(t, err)
	var total int64
	for _, e := range entries {
		if e.ItemType == itemType && e.Color == color {
			total += e.Quantity
		}
	}
	return total
}

func eventCount(t *testing.T, store *memory.Store) int {
	t.Helper()
	events, err := store.EventRepo().ListAsc()
	require.NoError(t, err)
	return len(events)
}

func initLines() []apptextile.StockLineInput {
	return []apptextile.StockLineInput{
		{ItemType: "sheets", Color: "white", Quantity: 10},
		{ItemType: "duvet_covers", Color: "white", Quantity: 10},
		{ItemType: "pillowcases", Color: "white", Quantity: 20},
		{ItemType: "towels_large", Color: "grey", Quantity: 12},
		{ItemType: "towels_small", Color: "grey", Quantity: 12},
		{ItemType: "robes", Color: "grey", Quantity: 6},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// InitWarehouseStock
// ──────────────────────────────────────────────────────────────────────────────

func TestInitWarehouseStock_SiembraYEvento(t *testing.T) {
	engine, store := newEngine(t)

	err := engine.InitWarehouseStock(context.Background(), initLines(), "admin-1")
	require.NoError(t, err)

	assert.Equal(t, int64(10), quantityAt(t, store, "warehouse", entity.ItemSheets, entity.ColorWhite))
	assert.Equal(t, int64(6), quantityAt(t, store, "warehouse", entity.ItemRobes, entity.ColorGrey))

	events, err := store.EventRepo().ListAsc()
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, entity.EventInitStock, events[0].Type)
	assert.Nil(t, events[0].FromLocation, "init_stock no tiene ubicación origen")
	assert.True(t, events[0].ToLocation.IsWarehouse())
	assert.Equal(t, "admin-1", events[0].CreatedBy)
}

func TestInitWarehouseStock_RechazaTipoDesconocido(t *testing.T) {
	engine, store := newEngine(t)

	err := engine.InitWarehouseStock(context.Background(), []apptextile.StockLineInput{
		{ItemType: "blankets", Color: "white", Quantity: 5},
	}, "admin-1")
	assert.ErrorIs(t, err, domain.ErrUnknownItem)
	assert.Zero(t, eventCount(t, store), "una siembra rechazada no debe registrar evento")
}

// ──────────────────────────────────────────────────────────────────────────────
// CheckIn
// ──────────────────────────────────────────────────────────────────────────────

func TestCheckIn_AplicaYPersiste(t *testing.T) {
	engine, store := newEngine(t)
	require.NoError(t, engine.InitWarehouseStock(context.Background(), initLines(), "admin-1"))

	checkIn, err := engine.CheckIn(context.Background(), apptextile.CheckInInput{
		UnitCode:    "D1",
		BeddingSets: []apptextile.BeddingSetInput{{Color: "white", Count: 2}},
		TowelSets:   1,
		Robes:       1,
		Actor:       "recep-1",
	})
	require.NoError(t, err)
	require.NotNil(t, checkIn)
	assert.NotEmpty(t, checkIn.ID)
	assert.Equal(t, "D1", checkIn.UnitCode)

	// Bodega debitada, unidad acreditada
	assert.Equal(t, int64(8), quantityAt(t, store, "warehouse", entity.ItemSheets, entity.ColorWhite))
	assert.Equal(t, int64(2), quantityAt(t, store, "D1", entity.ItemSheets, entity.ColorWhite))
	assert.Equal(t, int64(4), quantityAt(t, store, "D1", entity.ItemPillowcases, entity.ColorWhite))
	assert.Equal(t, int64(2), quantityAt(t, store, "D1", entity.ItemTowelsLarge, entity.ColorGrey))
	assert.Equal(t, int64(1), quantityAt(t, store, "D1", entity.ItemRobes, entity.ColorGrey))

	// Registro de trazabilidad persistido
	persisted, err := store.CheckInRepo().GetByID(checkIn.ID)
	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Equal(t, "recep-1", persisted.CreatedBy)

	// Un único evento check_in con la lista expandida completa
	events, err := store.EventRepo().ListByLocation(mustLoc(t, "D1"), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, entity.EventCheckIn, events[0].Type)
	require.NotNil(t, events[0].FromLocation)
	assert.True(t, events[0].FromLocation.IsWarehouse())
	assert.Equal(t, "D1", events[0].RelatedUnitCode)
	assert.Len(t, events[0].Items, 5)
}

func mustLoc(t *testing.T, s string) entity.Location {
	t.Helper()
	loc, err := entity.ParseLocation(s)
	require.NoError(t, err)
	return loc
}

// Un faltante en cualquier línea rechaza el check-in completo enumerando cada
// línea corta, sin aplicar nada y sin registrar evento.
func TestCheckIn_RechazoPorFaltantes(t *testing.T) {
	engine, store := newEngine(t)
	require.NoError(t, engine.InitWarehouseStock(context.Background(), []apptextile.StockLineInput{
		{ItemType: "sheets", Color: "white", Quantity: 1},
	}, "admin-1"))
	eventsBefore := eventCount(t, store)

	_, err := engine.CheckIn(context.Background(), apptextile.CheckInInput{
		UnitCode:    "D1",
		BeddingSets: []apptextile.BeddingSetInput{{Color: "white", Count: 5}},
		Actor:       "recep-1",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	require.Len(t, insufficient.Shortages, 3, "sábanas, fundas nórdicas y fundas de almohada faltan")

	bySorted := map[string]domain.ShortageLine{}
	for _, s := range insufficient.Shortages {
		bySorted[s.ItemType] = s
	}
	assert.Equal(t, int64(5), bySorted["sheets"].Required)
	assert.Equal(t, int64(1), bySorted["sheets"].Available)
	assert.Equal(t, int64(5), bySorted["duvet_covers"].Required)
	assert.Equal(t, int64(0), bySorted["duvet_covers"].Available)
	assert.Equal(t, int64(10), bySorted["pillowcases"].Required)

	// Estado intacto: nada aplicado, ningún evento nuevo, ningún check-in persistido
	assert.Equal(t, int64(1), quantityAt(t, store, "warehouse", entity.ItemSheets, entity.ColorWhite))
	assert.Equal(t, int64(0), quantityAt(t, store, "D1", entity.ItemSheets, entity.ColorWhite))
	assert.Equal(t, eventsBefore, eventCount(t, store))
	list, err := store.CheckInRepo().ListByUnit("D1", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCheckIn_UnidadReservadaRechazada(t *testing.T) {
	engine, _ := newEngine(t)
	_, err := engine.CheckIn(context.Background(), apptextile.CheckInInput{
		UnitCode:    "warehouse",
		BeddingSets: []apptextile.BeddingSetInput{{Color: "white", Count: 1}},
		Actor:       "recep-1",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCheckIn_SolicitudVacia(t *testing.T) {
	engine, _ := newEngine(t)
	_, err := engine.CheckIn(context.Background(), apptextile.CheckInInput{
		UnitCode: "D1",
		Actor:    "recep-1",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "una solicitud que no expande a ninguna línea no tiene nada que asignar")
}

// ──────────────────────────────────────────────────────────────────────────────
// MarkDirty / MarkClean
// ──────────────────────────────────────────────────────────────────────────────

func TestMarkDirty_MueveTodoALavanderia(t *testing.T) {
	engine, store := newEngine(t)
	require.NoError(t, engine.InitWarehouseStock(context.Background(), initLines(), "admin-1"))
	_, err := engine.CheckIn(context.Background(), apptextile.CheckInInput{
		UnitCode:    "D1",
		BeddingSets: []apptextile.BeddingSetInput{{Color: "white", Count: 2}},
		TowelSets:   1,
		Actor:       "recep-1",
	})
	require.NoError(t, err)

	moved, err := engine.MarkDirty(context.Background(), "D1", "recep-1", "salida 28/08")
	require.NoError(t, err)
	assert.True(t, moved)

	assert.Equal(t, int64(0), quantityAt(t, store, "D1", entity.ItemSheets, entity.ColorWhite))
	assert.Equal(t, int64(2), quantityAt(t, store, "laundry", entity.ItemSheets, entity.ColorWhite))
	assert.Equal(t, int64(2), quantityAt(t, store, "laundry", entity.ItemTowelsLarge, entity.ColorGrey))

	events, err := store.EventRepo().ListRecent(1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, entity.EventMarkDirty, events[0].Type)
	assert.Equal(t, "salida 28/08", events[0].Notes)
}

// Unidad sin stock: no-op, sin evento y sin cambios de saldo.
func TestMarkDirty_NoOpSinStock(t *testing.T) {
	engine, store := newEngine(t)
	require.NoError(t, engine.InitWarehouseStock(context.Background(), initLines(), "admin-1"))
	eventsBefore := eventCount(t, store)

	moved, err := engine.MarkDirty(context.Background(), "D2", "recep-1", "")
	require.NoError(t, err)
	assert.False(t, moved, "una unidad vacía no tiene nada que mover")
	assert.Equal(t, eventsBefore, eventCount(t, store), "un no-op no debe registrar evento")
}

// MarkClean no pre-valida: una línea sobre-declarada falla en AdjustBy y
// revierte la operación completa, incluidas las líneas correctas.
func TestMarkClean_SobreDeclaradoRevierteTodo(t *testing.T) {
	engine, store := newEngine(t)
	require.NoError(t, engine.InitWarehouseStock(context.Background(), initLines(), "admin-1"))
	_, err := engine.CheckIn(context.Background(), apptextile.CheckInInput{
		UnitCode:    "D1",
		BeddingSets: []apptextile.BeddingSetInput{{Color: "white", Count: 2}},
		Actor:       "recep-1",
	})
	require.NoError(t, err)
	_, err = engine.MarkDirty(context.Background(), "D1", "recep-1", "")
	require.NoError(t, err)
	eventsBefore := eventCount(t, store)

	// En lavandería hay 2 sábanas blancas; declarar 3 debe fallar
	err = engine.MarkClean(context.Background(), []apptextile.StockLineInput{
		{ItemType: "duvet_covers", Color: "white", Quantity: 2},
		{ItemType: "sheets", Color: "white", Quantity: 3},
	}, "lav-1", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNegativeBalance)

	var negative *domain.NegativeBalanceError
	require.ErrorAs(t, err, &negative)
	assert.Equal(t, "laundry", negative.Location)
	assert.Equal(t, "sheets", negative.ItemType)
	assert.Equal(t, int64(2), negative.Current)
	assert.Equal(t, int64(-3), negative.Delta)

	// Rollback completo: ni siquiera la línea correcta (fundas) se aplicó
	assert.Equal(t, int64(2), quantityAt(t, store, "laundry", entity.ItemDuvetCovers, entity.ColorWhite))
	assert.Equal(t, int64(2), quantityAt(t, store, "laundry", entity.ItemSheets, entity.ColorWhite))
	assert.Equal(t, int64(8), quantityAt(t, store, "warehouse", entity.ItemDuvetCovers, entity.ColorWhite))
	assert.Equal(t, eventsBefore, eventCount(t, store))
}

// ──────────────────────────────────────────────────────────────────────────────
// Propiedades: round trip, conservación, concurrencia
// ──────────────────────────────────────────────────────────────────────────────

// init → check-in → mark-dirty → mark-clean deja todo de vuelta en bodega.
func TestRoundTrip_TodoVuelveABodega(t *testing.T) {
	engine, store := newEngine(t)
	ctx := context.Background()

	require.NoError(t, engine.InitWarehouseStock(ctx, []apptextile.StockLineInput{
		{ItemType: "sheets", Color: "white", Quantity: 10},
		{ItemType: "duvet_covers", Color: "white", Quantity: 10},
		{ItemType: "pillowcases", Color: "white", Quantity: 20},
	}, "admin-1"))

	_, err := engine.CheckIn(ctx, apptextile.CheckInInput{
		UnitCode:    "D1",
		BeddingSets: []apptextile.BeddingSetInput{{Color: "white", Count: 2}},
		Actor:       "recep-1",
	})
	require.NoError(t, err)

	_, err = engine.MarkDirty(ctx, "D1", "recep-1", "")
	require.NoError(t, err)

	require.NoError(t, engine.MarkClean(ctx, []apptextile.StockLineInput{
		{ItemType: "sheets", Color: "white", Quantity: 2},
		{ItemType: "duvet_covers", Color: "white", Quantity: 2},
		{ItemType: "pillowcases", Color: "white", Quantity: 4},
	}, "lav-1", ""))

	assert.Equal(t, int64(10), quantityAt(t, store, "warehouse", entity.ItemSheets, entity.ColorWhite))
	assert.Equal(t, int64(0), quantityAt(t, store, "D1", entity.ItemSheets, entity.ColorWhite))
	assert.Equal(t, int64(0), quantityAt(t, store, "laundry", entity.ItemSheets, entity.ColorWhite))
}

// La suma global por (tipo, color) solo cambia con init_stock; ninguna
// transferencia la altera.
func TestConservacion_TotalGlobalInvariante(t *testing.T) {
	engine, store := newEngine(t)
	ctx := context.Background()
	require.NoError(t, engine.InitWarehouseStock(ctx, initLines(), "admin-1"))

	totalSheets := totalFor(t, store, entity.ItemSheets, entity.ColorWhite)
	totalTowels := totalFor(t, store, entity.ItemTowelsLarge, entity.ColorGrey)

	_, err := engine.CheckIn(ctx, apptextile.CheckInInput{
		UnitCode:    "D1",
		BeddingSets: []apptextile.BeddingSetInput{{Color: "white", Count: 3}},
		TowelSets:   2,
		Actor:       "recep-1",
	})
	require.NoError(t, err)
	assert.Equal(t, totalSheets, totalFor(t, store, entity.ItemSheets, entity.ColorWhite))
	assert.Equal(t, totalTowels, totalFor(t, store, entity.ItemTowelsLarge, entity.ColorGrey))

	_, err = engine.MarkDirty(ctx, "D1", "recep-1", "")
	require.NoError(t, err)
	assert.Equal(t, totalSheets, totalFor(t, store, entity.ItemSheets, entity.ColorWhite))

	require.NoError(t, engine.MarkClean(ctx, []apptextile.StockLineInput{
		{ItemType: "sheets", Color: "white", Quantity: 3},
	}, "lav-1", ""))
	assert.Equal(t, totalSheets, totalFor(t, store, entity.ItemSheets, entity.ColorWhite))
}

// Dos mark-dirty concurrentes de unidades distintas acreditan la misma fila de
// lavandería cuando esta aún no existe: los deltas deben acumularse, nunca
// pisarse entre sí (una escritura absoluta perdería el crédito del otro).
func TestMarkDirty_ConcurrenteAcumulaEnLavanderia(t *testing.T) {
	engine, store := newEngine(t)
	ctx := context.Background()
	require.NoError(t, engine.InitWarehouseStock(ctx, initLines(), "admin-1"))

	_, err := engine.CheckIn(ctx, apptextile.CheckInInput{
		UnitCode:    "D1",
		BeddingSets: []apptextile.BeddingSetInput{{Color: "white", Count: 2}},
		Actor:       "recep-1",
	})
	require.NoError(t, err)
	_, err = engine.CheckIn(ctx, apptextile.CheckInInput{
		UnitCode:    "D2",
		BeddingSets: []apptextile.BeddingSetInput{{Color: "white", Count: 3}},
		Actor:       "recep-1",
	})
	require.NoError(t, err)

	totalSheets := totalFor(t, store, entity.ItemSheets, entity.ColorWhite)

	var wg sync.WaitGroup
	for _, unit := range []string{"D1", "D2"} {
		wg.Add(1)
		go func(unit string) {
			defer wg.Done()
			moved, err := engine.MarkDirty(ctx, unit, "recep-1", "")
			assert.NoError(t, err)
			assert.True(t, moved)
		}(unit)
	}
	wg.Wait()

	// Ambos créditos llegaron: 2 + 3, no el último en escribir
	assert.Equal(t, int64(5), quantityAt(t, store, "laundry", entity.ItemSheets, entity.ColorWhite))
	assert.Equal(t, totalSheets, totalFor(t, store, entity.ItemSheets, entity.ColorWhite), "ninguna transferencia puede alterar el total global")
}

// Tras una serie de operaciones el replay del log reproduce el libro vivo.
func TestReconcile_Consistente(t *testing.T) {
	engine, _ := newEngine(t)
	ctx := context.Background()
	require.NoError(t, engine.InitWarehouseStock(ctx, initLines(), "admin-1"))
	_, err := engine.CheckIn(ctx, apptextile.CheckInInput{
		UnitCode:    "D1",
		BeddingSets: []apptextile.BeddingSetInput{{Color: "white", Count: 2}},
		TowelSets:   1,
		Actor:       "recep-1",
	})
	require.NoError(t, err)
	_, err = engine.MarkDirty(ctx, "D1", "recep-1", "")
	require.NoError(t, err)

	result, err := engine.Reconcile(ctx)
	require.NoError(t, err)
	assert.True(t, result.Consistent)
	assert.Empty(t, result.Discrepancies)
	assert.Equal(t, 3, result.EventsReplayed)
}

// Una re-siembra a cero debe quedar en el evento init_stock como línea en cero:
// el replay trata init como sobrescritura absoluta, y omitir la línea haría
// invisible el reseteo y dispararía una discrepancia falsa.
func TestReconcile_ReSiembraACeroConsistente(t *testing.T) {
	engine, store := newEngine(t)
	ctx := context.Background()
	require.NoError(t, engine.InitWarehouseStock(ctx, []apptextile.StockLineInput{
		{ItemType: "sheets", Color: "white", Quantity: 10},
	}, "admin-1"))
	require.NoError(t, engine.InitWarehouseStock(ctx, []apptextile.StockLineInput{
		{ItemType: "sheets", Color: "white", Quantity: 0},
	}, "admin-1"))

	events, err := store.EventRepo().ListAsc()
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Len(t, events[1].Items, 1)
	assert.Equal(t, int64(0), events[1].Items[0].Quantity, "el reseteo a cero debe registrarse en el evento")

	result, err := engine.Reconcile(ctx)
	require.NoError(t, err)
	assert.True(t, result.Consistent)
	assert.Equal(t, int64(0), quantityAt(t, store, "warehouse", entity.ItemSheets, entity.ColorWhite))
}

// Una escritura por fuera del motor (sin evento) aparece como discrepancia.
func TestReconcile_DetectaEscrituraFueraDelMotor(t *testing.T) {
	engine, store := newEngine(t)
	ctx := context.Background()
	require.NoError(t, engine.InitWarehouseStock(ctx, initLines(), "admin-1"))

	_, err := store.StockRepo().Set(entity.LocationWarehouse, entity.ItemSheets, entity.ColorWhite, 7, "intruso")
	require.NoError(t, err)

	result, err := engine.Reconcile(ctx)
	require.NoError(t, err)
	assert.False(t, result.Consistent)
	require.Len(t, result.Discrepancies, 1)
	d := result.Discrepancies[0]
	assert.Equal(t, "warehouse", d.Location)
	assert.Equal(t, "sheets", d.ItemType)
	assert.Equal(t, int64(7), d.Ledger)
	assert.Equal(t, int64(10), d.Replayed)
}

// Dos check-ins concurrentes sobre un saldo escaso: exactamente uno gana.
// Con saldo 3 y dos solicitudes de 2, ambos no pueden pasar la validación.
func TestCheckIn_ConcurrenciaUnSoloGanador(t *testing.T) {
	engine, store := newEngine(t)
	ctx := context.Background()
	require.NoError(t, engine.InitWarehouseStock(ctx, []apptextile.StockLineInput{
		{ItemType: "sheets", Color: "white", Quantity: 3},
		{ItemType: "duvet_covers", Color: "white", Quantity: 3},
		{ItemType: "pillowcases", Color: "white", Quantity: 6},
	}, "admin-1"))

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := engine.CheckIn(ctx, apptextile.CheckInInput{
				UnitCode:    "D1",
				BeddingSets: []apptextile.BeddingSetInput{{Color: "white", Count: 2}},
				Actor:       "recep-1",
			})
			results[i] = err
		}(i)
	}
	wg.Wait()

	okCount, shortCount := 0, 0
	for _, err := range results {
		switch {
		case err == nil:
			okCount++
		case errors.Is(err, domain.ErrInsufficientStock):
			shortCount++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 1, okCount, "exactamente un check-in debe aplicarse")
	assert.Equal(t, 1, shortCount, "el otro debe rechazarse por faltantes")

	// El saldo nunca queda negativo
	assert.Equal(t, int64(1), quantityAt(t, store, "warehouse", entity.ItemSheets, entity.ColorWhite))
}
