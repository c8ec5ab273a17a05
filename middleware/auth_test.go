package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mayor-k/constants"
	"mayor-k/types"
)

func newApp(t *testing.T) *fiber.App {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")

	app := fiber.New()
	app.Get("/me", Authenticate(), func(c *fiber.Ctx) error {
		actor := ActorFromCtx(c)
		return c.JSON(fiber.Map{"role": actor.Role})
	})
	app.Get("/rooms", Authenticate(), RequireCapability(func(caps constants.Capability) bool {
		return caps.CanManageRooms
	}), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestAuthenticateResolvesActor(t *testing.T) {
	app := newApp(t)
	token, err := GenerateToken(uuid.New(), "ngozi", constants.RoleReceptionist, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAuthenticateRejectsMissingToken(t *testing.T) {
	app := newApp(t)
	resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthenticateRejectsGarbageToken(t *testing.T) {
	app := newApp(t)
	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireCapabilityGatesByRole(t *testing.T) {
	app := newApp(t)

	barToken, err := GenerateToken(uuid.New(), "tunde", constants.RoleBarStaff, time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest("GET", "/rooms", nil)
	req.Header.Set("Authorization", "Bearer "+barToken)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	hkToken, err := GenerateToken(uuid.New(), "amina", constants.RoleHousekeeping, time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest("GET", "/rooms", nil)
	req.Header.Set("Authorization", "Bearer "+hkToken)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	userID := uuid.New()
	token, err := GenerateToken(userID, "ngozi", constants.RoleManager, time.Hour)
	require.NoError(t, err)

	claims, err := verifyToken(token)
	require.NoError(t, err)
	actor, err := actorFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, types.HumanActor(userID, constants.RoleManager), actor)
}
