package http

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/society-waste-service/internal/api/http/handlers"
	"github.com/spec-kit/society-waste-service/internal/auth"
	"github.com/spec-kit/society-waste-service/internal/config"
	"github.com/spec-kit/society-waste-service/internal/demodata"
	"github.com/spec-kit/society-waste-service/internal/events"
	"github.com/spec-kit/society-waste-service/internal/observability"
	"github.com/spec-kit/society-waste-service/internal/repository/memory"
	"github.com/spec-kit/society-waste-service/internal/service"
	"github.com/spec-kit/society-waste-service/internal/storage"
)

func newTestApp(t *testing.T, mutate func(*config.Config)) *fiber.App {
	t.Helper()
	cfg := config.Config{Auth: config.AuthConfig{JWTSecret: "test-secret", BcryptCost: 4}}
	if mutate != nil {
		mutate(&cfg)
	}

	logger := zap.NewNop()
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	store := memory.NewStore()
	assets, err := storage.NewLocalStore(t.TempDir(), "/uploads")
	require.NoError(t, err)

	authService := service.NewAuthService(cfg, service.AuthDependencies{
		AccountRepo:  store.Accounts,
		AdminRepo:    store.Admins,
		SessionStore: auth.NewMemorySessionStore(),
		Logger:       logger,
	})
	issueService := service.NewIssueService(service.IssueDependencies{
		IssueRepo:   store.Issues,
		AccountRepo: store.Accounts,
		HistoryRepo: store.History,
		Assets:      assets,
		Dispatcher:  events.NewInMemoryDispatcher(),
		Metrics:     metrics,
		Logger:      logger,
	})
	societyService := service.NewSocietyService(service.SocietyDependencies{
		AccountRepo: store.Accounts,
		MapBox:      demodata.Box{MinLat: 18.4, MinLng: 73.8, Span: 0.2},
	})

	app := NewApp("test", 4<<20)
	RegisterMiddlewares(app, logger, metrics, 0)
	RegisterRoutes(app, RouteConfig{
		Health:          handlers.NewHealthHandler("test", "dev", nil),
		Accounts:        handlers.NewAccountsHandler(authService),
		Sessions:        handlers.NewSessionHandler(authService),
		Issues:          handlers.NewIssuesHandler(issueService),
		Societies:       handlers.NewSocietiesHandler(societyService),
		AuthMiddleware:  auth.NewAuthMiddleware(authService),
		UploadDir:       assets.Dir(),
		UploadURLPrefix: "/uploads",
	})
	return app
}

type client struct {
	t   *testing.T
	app *fiber.App
}

func (c client) do(method, path, token string, body io.Reader, contentType string) (int, []byte) {
	c.t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set(fiber.HeaderContentType, contentType)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := c.app.Test(req, -1)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp.StatusCode, data
}

func (c client) json(method, path, token string, payload any) (int, map[string]any) {
	c.t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(c.t, err)
		body = bytes.NewReader(raw)
	}
	status, data := c.do(method, path, token, body, fiber.MIMEApplicationJSON)
	out := map[string]any{}
	if len(data) > 0 && data[0] == '{' {
		require.NoError(c.t, json.Unmarshal(data, &out), string(data))
	}
	return status, out
}

func (c client) list(path, token string) (int, []map[string]any) {
	c.t.Helper()
	status, data := c.do(fiber.MethodGet, path, token, nil, "")
	var out []map[string]any
	if status == fiber.StatusOK {
		require.NoError(c.t, json.Unmarshal(data, &out), string(data))
	}
	return status, out
}

func issueForm(t *testing.T, fields map[string]string, image []byte, imageType string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if image != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="bin.jpg"`)
		h.Set("Content-Type", imageType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

var society = map[string]any{
	"name":          "Green Acres",
	"email":         "a@x.com",
	"password":      "pw1",
	"societyName":   "Green Acres CHS",
	"address":       "123 Main St",
	"contactPerson": "R. Rao",
	"contactNumber": "9800000000",
	"totalFamilies": 40,
}

var issueFields = map[string]string{
	"description": "overflowing bin",
	"location":    "Block A",
	"address":     "123 Main St",
}

func signupAndLogin(t *testing.T, c client) (ownerID, userToken, adminToken string) {
	t.Helper()
	status, body := c.json(fiber.MethodPost, "/accounts/signup", "", society)
	require.Equal(t, fiber.StatusCreated, status, body)
	ownerID = body["id"].(string)

	status, _ = c.json(fiber.MethodPost, "/admins/signup", "", map[string]any{"name": "Ops", "email": "ops@x.com", "password": "adminpw"})
	require.Equal(t, fiber.StatusCreated, status)

	status, body = c.json(fiber.MethodPost, "/accounts/login", "", map[string]any{"email": "a@x.com", "password": "pw1"})
	require.Equal(t, fiber.StatusOK, status, body)
	userToken = body["token"].(string)

	status, body = c.json(fiber.MethodPost, "/admins/login", "", map[string]any{"email": "ops@x.com", "password": "adminpw"})
	require.Equal(t, fiber.StatusOK, status, body)
	adminToken = body["token"].(string)
	return ownerID, userToken, adminToken
}

func TestScenario(t *testing.T) {
	c := client{t: t, app: newTestApp(t, nil)}
	ownerID, userToken, adminToken := signupAndLogin(t, c)

	form, contentType := issueForm(t, issueFields, nil, "")
	status, data := c.do(fiber.MethodPost, "/accounts/"+ownerID+"/issues", userToken, form, contentType)
	require.Equal(t, fiber.StatusCreated, status, string(data))
	var issue map[string]any
	require.NoError(t, json.Unmarshal(data, &issue))
	assert.Equal(t, "pending", issue["status"])
	assert.Equal(t, ownerID, issue["ownerId"])
	assert.Nil(t, issue["imageUrl"])
	issueID := issue["id"].(string)

	status, body := c.json(fiber.MethodPut, "/issues/"+issueID, adminToken, map[string]any{"status": "resolved"})
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, "resolved", body["status"])

	status, issues := c.list("/accounts/"+ownerID+"/issues", userToken)
	require.Equal(t, fiber.StatusOK, status)
	require.Len(t, issues, 1)
	assert.Equal(t, "resolved", issues[0]["status"])

	status, all := c.list("/issues", adminToken)
	require.Equal(t, fiber.StatusOK, status)
	require.Len(t, all, 1)
	assert.Equal(t, ownerID, all[0]["ownerId"])
	assert.Equal(t, issueID, all[0]["id"])
	reporter := all[0]["reporter"].(map[string]any)
	assert.Equal(t, "Green Acres", reporter["name"])
	assert.Equal(t, "a@x.com", reporter["email"])

	status, history := c.list("/issues/"+issueID+"/history", adminToken)
	require.Equal(t, fiber.StatusOK, status)
	require.Len(t, history, 1)
	assert.Equal(t, "pending", history[0]["oldStatus"])
}

func TestStoredValuesOutliveTheirRequest(t *testing.T) {
	c := client{t: t, app: newTestApp(t, nil)}
	ownerID, userToken, adminToken := signupAndLogin(t, c)

	form, contentType := issueForm(t, issueFields, nil, "")
	status, data := c.do(fiber.MethodPost, "/api/users/"+ownerID+"/issues", userToken, form, contentType)
	require.Equal(t, fiber.StatusCreated, status, string(data))
	var issue map[string]any
	require.NoError(t, json.Unmarshal(data, &issue))
	issueID := issue["id"].(string)

	// Later requests reuse the same buffers with different paths and bodies.
	for _, next := range []string{"in process", "resolved"} {
		status, body := c.json(fiber.MethodPut, "/issues/"+issueID, adminToken, map[string]any{"status": next})
		require.Equal(t, fiber.StatusOK, status, body)
	}
	status, _ = c.list("/societies", "")
	require.Equal(t, fiber.StatusOK, status)

	status, all := c.list("/issues", adminToken)
	require.Equal(t, fiber.StatusOK, status)
	require.Len(t, all, 1)
	assert.Equal(t, ownerID, all[0]["ownerId"])
	assert.Equal(t, issueFields["description"], all[0]["description"])
	assert.Equal(t, issueFields["location"], all[0]["location"])
	assert.Equal(t, issueFields["address"], all[0]["address"])

	status, owned := c.list("/accounts/"+ownerID+"/issues", userToken)
	require.Equal(t, fiber.StatusOK, status)
	require.Len(t, owned, 1)
	assert.Equal(t, "resolved", owned[0]["status"])

	status, history := c.list("/issues/"+issueID+"/history", adminToken)
	require.Equal(t, fiber.StatusOK, status)
	require.Len(t, history, 2)
	assert.Equal(t, "in process", history[0]["newStatus"])
	assert.Equal(t, "resolved", history[1]["newStatus"])
}

func TestSignupAcceptsFormEncodedFamilyCount(t *testing.T) {
	c := client{t: t, app: newTestApp(t, nil)}

	payload := map[string]any{}
	for k, v := range society {
		payload[k] = v
	}
	payload["totalFamilies"] = "40"

	status, body := c.json(fiber.MethodPost, "/api/users/signup", "", payload)
	require.Equal(t, fiber.StatusCreated, status, body)
	id := body["id"].(string)

	status, stored := c.json(fiber.MethodGet, "/societies/"+id, "", nil)
	require.Equal(t, fiber.StatusOK, status, stored)
	assert.EqualValues(t, 40, stored["totalFamilies"])

	for _, bad := range []string{"0", "forty"} {
		payload["email"] = "other@x.com"
		payload["totalFamilies"] = bad
		status, body = c.json(fiber.MethodPost, "/api/users/signup", "", payload)
		assert.Equal(t, fiber.StatusBadRequest, status, bad)
		assert.Equal(t, "VALIDATION_FAILED", body["error"].(map[string]any)["code"], bad)
	}
}

func TestLoginErrors(t *testing.T) {
	c := client{t: t, app: newTestApp(t, nil)}
	signupAndLogin(t, c)

	status, body := c.json(fiber.MethodPost, "/accounts/login", "", map[string]any{"email": "a@x.com", "password": "bad"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Invalid credentials", body["message"])
	assert.Equal(t, "INVALID_CREDENTIALS", body["error"].(map[string]any)["code"])

	status, _ = c.json(fiber.MethodPost, "/accounts/signup", "", society)
	assert.Equal(t, fiber.StatusConflict, status)

	incomplete := map[string]any{"email": "b@x.com", "password": "pw"}
	status, body = c.json(fiber.MethodPost, "/accounts/signup", "", incomplete)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", body["error"].(map[string]any)["code"])
}

func TestUnifiedLoginAndSession(t *testing.T) {
	c := client{t: t, app: newTestApp(t, nil)}
	ownerID, _, _ := signupAndLogin(t, c)

	status, body := c.json(fiber.MethodPost, "/login", "", map[string]any{"email": "ops@x.com", "password": "adminpw"})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["isAdmin"])
	assert.NotNil(t, body["admin"])
	assert.Nil(t, body["account"])

	status, body = c.json(fiber.MethodPost, "/api/login", "", map[string]any{"email": "a@x.com", "password": "pw1"})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, false, body["isAdmin"])
	token := body["token"].(string)
	account := body["account"].(map[string]any)
	assert.Equal(t, ownerID, account["id"])
	assert.NotContains(t, account, "password")
	assert.NotContains(t, account, "passwordHash")

	status, body = c.json(fiber.MethodGet, "/session", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "USER", body["subjectType"])

	status, body = c.json(fiber.MethodGet, "/session/route?view=admin-dashboard", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "user-dashboard", body["view"])
	assert.Equal(t, true, body["redirected"])

	status, _ = c.json(fiber.MethodPost, "/logout", token, nil)
	require.Equal(t, fiber.StatusNoContent, status)

	status, _ = c.json(fiber.MethodGet, "/session", token, nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, body = c.json(fiber.MethodGet, "/session/route?view=user-dashboard", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "login", body["view"])
}

func TestAuthorization(t *testing.T) {
	c := client{t: t, app: newTestApp(t, nil)}
	ownerID, userToken, adminToken := signupAndLogin(t, c)

	other := map[string]any{}
	for k, v := range society {
		other[k] = v
	}
	other["email"] = "b@x.com"
	status, body := c.json(fiber.MethodPost, "/accounts/signup", "", other)
	require.Equal(t, fiber.StatusCreated, status)
	otherID := body["id"].(string)

	status, _ = c.list("/issues", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	status, _ = c.list("/issues", userToken)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = c.json(fiber.MethodPut, "/issues/whatever", userToken, map[string]any{"status": "resolved"})
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = c.list("/accounts/"+otherID+"/issues", userToken)
	assert.Equal(t, fiber.StatusForbidden, status)
	status, _ = c.list("/accounts/"+otherID+"/issues", adminToken)
	assert.Equal(t, fiber.StatusOK, status)

	form, contentType := issueForm(t, issueFields, nil, "")
	status, _ = c.do(fiber.MethodPost, "/accounts/"+ownerID+"/issues", adminToken, form, contentType)
	assert.Equal(t, fiber.StatusForbidden, status, "admins do not report issues")
}

func TestIssueErrors(t *testing.T) {
	c := client{t: t, app: newTestApp(t, nil)}
	ownerID, userToken, adminToken := signupAndLogin(t, c)

	form, contentType := issueForm(t, map[string]string{"description": "", "location": "Block A", "address": "x"}, nil, "")
	status, _ := c.do(fiber.MethodPost, "/accounts/"+ownerID+"/issues", userToken, form, contentType)
	assert.Equal(t, fiber.StatusBadRequest, status)

	form, contentType = issueForm(t, issueFields, []byte("%PDF"), "application/pdf")
	status, _ = c.do(fiber.MethodPost, "/accounts/"+ownerID+"/issues", userToken, form, contentType)
	assert.Equal(t, fiber.StatusBadRequest, status)

	form, contentType = issueForm(t, issueFields, nil, "")
	status, data := c.do(fiber.MethodPost, "/accounts/"+ownerID+"/issues", userToken, form, contentType)
	require.Equal(t, fiber.StatusCreated, status)
	var issue map[string]any
	require.NoError(t, json.Unmarshal(data, &issue))

	status, body := c.json(fiber.MethodPut, "/issues/"+issue["id"].(string), adminToken, map[string]any{"status": "done"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "INVALID_STATUS", body["error"].(map[string]any)["code"])

	status, _ = c.json(fiber.MethodPut, "/issues/missing", adminToken, map[string]any{"status": "resolved"})
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestIssueImageUpload(t *testing.T) {
	c := client{t: t, app: newTestApp(t, nil)}
	ownerID, userToken, _ := signupAndLogin(t, c)

	form, contentType := issueForm(t, issueFields, []byte("jpeg-bytes"), "image/jpeg")
	status, data := c.do(fiber.MethodPost, "/api/users/"+ownerID+"/issues", userToken, form, contentType)
	require.Equal(t, fiber.StatusCreated, status, string(data))

	var issue map[string]any
	require.NoError(t, json.Unmarshal(data, &issue))
	imageURL, ok := issue["imageUrl"].(string)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(imageURL, "/uploads/"))

	status, served := c.do(fiber.MethodGet, imageURL, "", nil, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "jpeg-bytes", string(served))
}

func TestAdminSignupKey(t *testing.T) {
	app := newTestApp(t, func(cfg *config.Config) { cfg.Auth.AdminSignupKey = "letmein" })
	c := client{t: t, app: app}
	payload := map[string]any{"name": "Ops", "email": "ops@x.com", "password": "adminpw"}

	status, _ := c.json(fiber.MethodPost, "/admins/signup", "", payload)
	assert.Equal(t, fiber.StatusForbidden, status)

	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(fiber.MethodPost, "/admins/signup", bytes.NewReader(raw))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set(handlers.AdminSignupKeyHeader, "letmein")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

func TestSocieties(t *testing.T) {
	c := client{t: t, app: newTestApp(t, nil)}
	ownerID, _, _ := signupAndLogin(t, c)

	status, societies := c.list("/societies", "")
	require.Equal(t, fiber.StatusOK, status)
	require.Len(t, societies, 1)
	assert.Equal(t, "Green Acres CHS", societies[0]["societyName"])
	assert.NotContains(t, societies[0], "password")
	assert.NotContains(t, societies[0], "PasswordHash")

	status, body := c.json(fiber.MethodGet, "/api/societies/"+ownerID, "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, ownerID, body["id"])

	status, _ = c.json(fiber.MethodGet, "/societies/missing", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, slots := c.list("/societies/"+ownerID+"/schedule", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.NotEmpty(t, slots)

	status, pins := c.list("/societies/map", "")
	require.Equal(t, fiber.StatusOK, status)
	require.Len(t, pins, 1)
	assert.Equal(t, ownerID, pins[0]["societyId"])
	assert.Equal(t, false, pins[0]["geocoded"])
}

func TestUnknownRoute(t *testing.T) {
	c := client{t: t, app: newTestApp(t, nil)}
	status, body := c.json(fiber.MethodGet, "/nope", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body["error"].(map[string]any)["code"])
}

func TestHealth(t *testing.T) {
	c := client{t: t, app: newTestApp(t, nil)}
	status, body := c.json(fiber.MethodGet, "/health/live", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "alive", body["status"])

	status, body = c.json(fiber.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ready", body["status"])
}
