package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpiface "github.com/hosteria/textil-api/internal/interfaces/http"
	"github.com/hosteria/textil-api/pkg/jwt"
)

const testSecret = "secreto-de-test"

func tokenForRole(t *testing.T, userID, role string) string {
	t.Helper()
	token, err := jwt.Generate(testSecret, userID, role, "textil-api", 15)
	require.NoError(t, err)
	return token
}

// App mínima: una ruta protegida que devuelve la identidad extraída del token.
func buildAuthTestApp() *fiber.App {
	app := fiber.New()
	protected := app.Group("/", httpiface.AuthMiddleware(testSecret))
	protected.Get("/whoami", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id": httpiface.GetUserID(c),
			"role":    httpiface.GetRole(c),
		})
	})
	protected.Get("/solo-admin", httpiface.RequireRole("admin"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestAuthMiddleware_SinHeader(t *testing.T) {
	app := buildAuthTestApp()

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_FormatoInvalido(t *testing.T) {
	app := buildAuthTestApp()

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Token abc123")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_FirmaIncorrecta(t *testing.T) {
	app := buildAuthTestApp()

	otro, err := jwt.Generate("otro-secreto", "user-1", "admin", "textil-api", 15)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+otro)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, "un token firmado con otro secreto debe rechazarse")
}

func TestAuthMiddleware_TokenValido(t *testing.T) {
	app := buildAuthTestApp()

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+tokenForRole(t, "recep-1", "recepcion"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireRole_Autorizacion(t *testing.T) {
	app := buildAuthTestApp()

	// Rol permitido
	req := httptest.NewRequest(http.MethodGet, "/solo-admin", nil)
	req.Header.Set("Authorization", "Bearer "+tokenForRole(t, "admin-1", "admin"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Rol sin permiso
	req = httptest.NewRequest(http.MethodGet, "/solo-admin", nil)
	req.Header.Set("Authorization", "Bearer "+tokenForRole(t, "recep-1", "recepcion"))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode, "recepción no puede acceder a rutas de admin")
}

func TestJWT_RoundTrip(t *testing.T) {
	token := tokenForRole(t, "lav-1", "lavanderia")
	userID, role, err := jwt.Parse(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "lav-1", userID)
	assert.Equal(t, "lavanderia", role)
}
