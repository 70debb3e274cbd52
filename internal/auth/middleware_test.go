package auth

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/society-waste-service/internal/domain"
	apperrors "github.com/spec-kit/society-waste-service/pkg/util"
)

type stubAuthenticator map[string]*Principal

func (s stubAuthenticator) Authenticate(_ context.Context, token string) (*Principal, error) {
	if p, ok := s[token]; ok {
		return p, nil
	}
	return nil, apperrors.NewUnauthorized("invalid token")
}

func newGuardedApp() *fiber.App {
	authn := stubAuthenticator{
		"user-token": {
			Session: domain.Session{ID: "s1", SubjectType: domain.SubjectTypeUser, SubjectID: "acc-1"},
			Account: &domain.Account{ID: "acc-1"},
		},
		"admin-token": {
			Session: domain.Session{ID: "s2", SubjectType: domain.SubjectTypeAdmin, SubjectID: "adm-1"},
			Admin:   &domain.AdminAccount{ID: "adm-1"},
		},
	}
	mw := NewAuthMiddleware(authn)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).SendString(de.Code)
		},
	})
	ok := func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) }

	app.Get("/accounts/:ownerId/issues", mw.Handle, RequireOwnerOrAdmin("ownerId"), ok)
	app.Post("/accounts/:ownerId/issues", mw.Handle, RequireUser(), RequireOwner("ownerId"), ok)
	app.Get("/issues", mw.Handle, RequireAdmin(), ok)
	app.Get("/whoami", mw.Optional, func(c *fiber.Ctx) error {
		if p, found := PrincipalFromContext(c); found {
			return c.SendString(p.SubjectID())
		}
		return c.SendString("anonymous")
	})
	return app
}

func TestGuards(t *testing.T) {
	app := newGuardedApp()

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"no token", http.MethodGet, "/issues", "", http.StatusUnauthorized},
		{"bad token", http.MethodGet, "/issues", "nope", http.StatusUnauthorized},
		{"user on admin list", http.MethodGet, "/issues", "user-token", http.StatusForbidden},
		{"admin on admin list", http.MethodGet, "/issues", "admin-token", http.StatusOK},
		{"owner lists own issues", http.MethodGet, "/accounts/acc-1/issues", "user-token", http.StatusOK},
		{"owner lists other issues", http.MethodGet, "/accounts/acc-2/issues", "user-token", http.StatusForbidden},
		{"admin lists any owner", http.MethodGet, "/accounts/acc-2/issues", "admin-token", http.StatusOK},
		{"owner submits", http.MethodPost, "/accounts/acc-1/issues", "user-token", http.StatusOK},
		{"admin cannot submit", http.MethodPost, "/accounts/acc-1/issues", "admin-token", http.StatusForbidden},
		{"user submits for another", http.MethodPost, "/accounts/acc-2/issues", "user-token", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestOptional(t *testing.T) {
	app := newGuardedApp()

	for token, want := range map[string]string{"": "anonymous", "garbage": "anonymous", "admin-token": "adm-1"} {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, want, string(body), "token %q", token)
	}
}
