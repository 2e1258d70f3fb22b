package textile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hosteria/textil-api/internal/domain"
	"github.com/hosteria/textil-api/internal/domain/entity"
	"github.com/hosteria/textil-api/internal/domain/textile"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tests del planificador de check-in: expansión pura de cantidades de cara al
// huésped a líneas físicas (tipo, color, cantidad), con proporciones fijas.
// ──────────────────────────────────────────────────────────────────────────────

func lineFor(t *testing.T, lines []entity.MovementLine, itemType entity.ItemType, color entity.Color) int64 {
	t.Helper()
	for _, ln := range lines {
		if ln.ItemType == itemType && ln.Color == color {
			return ln.Quantity
		}
	}
	return 0
}

// Dos colores de cama + 2 juegos de toallas + 1 bata: expansión exacta.
func TestExpandCheckIn_ExpansionCompleta(t *testing.T) {
	lines, err := textile.ExpandCheckIn(textile.CheckInRequest{
		UnitCode: "D1",
		BeddingSets: []entity.BeddingSetLine{
			{Color: entity.ColorWhite, Count: 1},
			{Color: entity.ColorGrey, Count: 1},
		},
		TowelSets: 2,
		Robes:     1,
	})
	require.NoError(t, err)
	require.Len(t, lines, 9, "debe producir exactamente 9 líneas")

	assert.Equal(t, int64(1), lineFor(t, lines, entity.ItemSheets, entity.ColorWhite))
	assert.Equal(t, int64(1), lineFor(t, lines, entity.ItemDuvetCovers, entity.ColorWhite))
	assert.Equal(t, int64(2), lineFor(t, lines, entity.ItemPillowcases, entity.ColorWhite))
	assert.Equal(t, int64(1), lineFor(t, lines, entity.ItemSheets, entity.ColorGrey))
	assert.Equal(t, int64(1), lineFor(t, lines, entity.ItemDuvetCovers, entity.ColorGrey))
	assert.Equal(t, int64(2), lineFor(t, lines, entity.ItemPillowcases, entity.ColorGrey))
	assert.Equal(t, int64(4), lineFor(t, lines, entity.ItemTowelsLarge, entity.ColorGrey))
	assert.Equal(t, int64(4), lineFor(t, lines, entity.ItemTowelsSmall, entity.ColorGrey))
	assert.Equal(t, int64(1), lineFor(t, lines, entity.ItemRobes, entity.ColorGrey))
}

// Dos líneas de cama del mismo color se suman en una sola línea física.
func TestExpandCheckIn_MismoColorSeSuma(t *testing.T) {
	lines, err := textile.ExpandCheckIn(textile.CheckInRequest{
		UnitCode: "D2",
		BeddingSets: []entity.BeddingSetLine{
			{Color: entity.ColorWhite, Count: 1},
			{Color: entity.ColorWhite, Count: 2},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(3), lineFor(t, lines, entity.ItemSheets, entity.ColorWhite))
	assert.Equal(t, int64(6), lineFor(t, lines, entity.ItemPillowcases, entity.ColorWhite))
	// Una sola línea por (tipo, color), no dos
	count := 0
	for _, ln := range lines {
		if ln.ItemType == entity.ItemSheets && ln.Color == entity.ColorWhite {
			count++
		}
	}
	assert.Equal(t, 1, count, "las líneas del mismo (tipo, color) no deben duplicarse")
}

// Colores distintos quedan como líneas separadas, sin fusión silenciosa.
func TestExpandCheckIn_ColoresDistintosSeparados(t *testing.T) {
	lines, err := textile.ExpandCheckIn(textile.CheckInRequest{
		UnitCode: "D3",
		BeddingSets: []entity.BeddingSetLine{
			{Color: entity.ColorBeige, Count: 1},
			{Color: entity.ColorGreen, Count: 1},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), lineFor(t, lines, entity.ItemSheets, entity.ColorBeige))
	assert.Equal(t, int64(1), lineFor(t, lines, entity.ItemSheets, entity.ColorGreen))
}

// Sin batas solicitadas no debe aparecer línea de batas; cantidades cero se omiten.
func TestExpandCheckIn_SinBatasNoHayLinea(t *testing.T) {
	lines, err := textile.ExpandCheckIn(textile.CheckInRequest{
		UnitCode:    "D1",
		BeddingSets: []entity.BeddingSetLine{{Color: entity.ColorWhite, Count: 2}},
		TowelSets:   0,
		Robes:       0,
	})
	require.NoError(t, err)

	for _, ln := range lines {
		assert.NotEqual(t, entity.ItemRobes, ln.ItemType, "sin batas solicitadas no debe haber línea de batas")
		assert.NotEqual(t, entity.ItemTowelsLarge, ln.ItemType)
		assert.Positive(t, ln.Quantity, "no deben emitirse líneas en cero")
	}
}

// Color desconocido se rechaza antes de expandir.
func TestExpandCheckIn_ColorDesconocido(t *testing.T) {
	_, err := textile.ExpandCheckIn(textile.CheckInRequest{
		UnitCode:    "D1",
		BeddingSets: []entity.BeddingSetLine{{Color: "magenta", Count: 1}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnknownItem)
}

// Cantidades negativas se rechazan.
func TestExpandCheckIn_CantidadesNegativas(t *testing.T) {
	_, err := textile.ExpandCheckIn(textile.CheckInRequest{UnitCode: "D1", TowelSets: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = textile.ExpandCheckIn(textile.CheckInRequest{
		UnitCode:    "D1",
		BeddingSets: []entity.BeddingSetLine{{Color: entity.ColorWhite, Count: -2}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// El planificador es puro: mismo input, mismo output.
func TestExpandCheckIn_Determinista(t *testing.T) {
	req := textile.CheckInRequest{
		UnitCode:    "D4",
		BeddingSets: []entity.BeddingSetLine{{Color: entity.ColorWhite, Count: 2}},
		TowelSets:   1,
		Robes:       2,
	}
	a, err1 := textile.ExpandCheckIn(req)
	b, err2 := textile.ExpandCheckIn(req)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, a, b)
}
