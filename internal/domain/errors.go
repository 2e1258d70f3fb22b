package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrNegativeBalance   = errors.New("el ajuste dejaría el stock en negativo")
	ErrUnknownItem       = errors.New("tipo de artículo, color o ubicación desconocida")
)

// ShortageLine describe una línea faltante detectada en la pre-validación de un check-in.
type ShortageLine struct {
	ItemType  string `json:"item_type"`
	Color     string `json:"color"`
	Required  int64  `json:"required"`
	Available int64  `json:"available"`
}

// InsufficientStockError enumera todas las líneas faltantes de un check-in rechazado.
// Nunca se aplica parcialmente: o todas las líneas son satisfacibles o ninguna se aplica.
type InsufficientStockError struct {
	Shortages []ShortageLine
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		parts = append(parts, fmt.Sprintf("%s/%s requiere %d, disponible %d", s.ItemType, s.Color, s.Required, s.Available))
	}
	return "stock insuficiente: " + strings.Join(parts, "; ")
}

// Unwrap permite errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// NegativeBalanceError identifica el ajuste rechazado que habría dejado una fila en negativo.
// La operación completa que lo contiene debe revertirse.
type NegativeBalanceError struct {
	Location string
	ItemType string
	Color    string
	Current  int64
	Delta    int64
}

func (e *NegativeBalanceError) Error() string {
	return fmt.Sprintf("ajuste rechazado en %s (%s/%s): actual %d, delta %d", e.Location, e.ItemType, e.Color, e.Current, e.Delta)
}

// Unwrap permite errors.Is(err, ErrNegativeBalance).
func (e *NegativeBalanceError) Unwrap() error { return ErrNegativeBalance }
