package middleware

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/arzan03/DineRate/internal/auth"
)

type mockSessions struct {
	mock.Mock
}

func (m *mockSessions) Authenticate(token string) (*auth.SessionClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.SessionClaims), args.Error(1)
}

func newTestApp(sessions SessionValidator) *fiber.App {
	app := fiber.New()
	app.Get("/me", AuthMiddleware(sessions), func(c *fiber.Ctx) error {
		return c.SendString(UserID(c))
	})
	return app
}

func TestAuthMiddleware_TokenSources(t *testing.T) {
	sessions := new(mockSessions)
	sessions.On("Authenticate", "good").Return(&auth.SessionClaims{UserID: "u1", Username: "alice"}, nil)
	app := newTestApp(sessions)

	for name, headers := range map[string]map[string]string{
		"authorization header": {"Authorization": "Bearer good"},
		"legacy token header":  {"token": "Bearer good"},
		"cookie":               {"Cookie": "token=good"},
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			for k, v := range headers {
				req.Header.Set(k, v)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			body, _ := io.ReadAll(resp.Body)

			assert.Equal(t, fiber.StatusOK, resp.StatusCode)
			assert.Equal(t, "u1", string(body))
		})
	}
}

func TestAuthMiddleware_Missing(t *testing.T) {
	app := newTestApp(new(mockSessions))

	resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_Invalid(t *testing.T) {
	sessions := new(mockSessions)
	sessions.On("Authenticate", "bad").Return(nil, errors.New("signature is invalid"))
	app := newTestApp(sessions)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer bad")
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestBearer(t *testing.T) {
	assert.Equal(t, "abc", bearer("Bearer abc"))
	assert.Equal(t, "abc", bearer("bearer  abc "))
	assert.Equal(t, "", bearer("abc"))
	assert.Equal(t, "", bearer("Bearer "))
}
