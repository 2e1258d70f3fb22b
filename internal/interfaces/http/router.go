package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/hosteria/textil-api/internal/application/textile"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Engine    *textile.MovementEngine
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	textiles := protected.Group("/textiles")
	handler := NewTextileHandler(deps.Engine)

	// Siembra y reconciliación: solo admin
	textiles.Post("/init", RequireRole("admin"), handler.InitStock)
	textiles.Get("/reconcile", RequireRole("admin"), handler.Reconcile)

	// Operaciones de recepción y lavandería
	textiles.Post("/check-ins", RequireRole("admin", "recepcion"), handler.CheckIn)
	textiles.Get("/check-ins", handler.ListCheckIns)
	textiles.Post("/mark-dirty", RequireRole("admin", "recepcion"), handler.MarkDirty)
	textiles.Post("/mark-clean", RequireRole("admin", "lavanderia"), handler.MarkClean)

	// Consultas
	textiles.Get("/stock", handler.StockSummary)
	textiles.Get("/stock/:location", handler.StockByLocation)
	textiles.Get("/events", handler.Events)
}
