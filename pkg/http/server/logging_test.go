package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactorMasksNestedKeys(t *testing.T) {
	r := newRedactor("password", "refreshToken")

	var payload any
	require.NoError(t, json.Unmarshal([]byte(`{
		"email": "alice@example.com",
		"Password": "secret1",
		"token": {"accessToken": "a", "refreshToken": "r"},
		"items": [{"password": "x"}]
	}`), &payload))

	out := r.value(payload).(map[string]any)
	assert.Equal(t, "alice@example.com", out["email"])
	assert.Equal(t, redactedValue, out["Password"])
	assert.Equal(t, "a", out["token"].(map[string]any)["accessToken"])
	assert.Equal(t, redactedValue, out["token"].(map[string]any)["refreshToken"])
	assert.Equal(t, redactedValue, out["items"].([]any)[0].(map[string]any)["password"])
}

func TestRedactorHeaders(t *testing.T) {
	r := newRedactor(echo.HeaderAuthorization, "X-Api-Key")
	header := http.Header{}
	header.Set(echo.HeaderAuthorization, "Bearer abc")
	header.Set("X-API-Key", "key")
	header.Add("Accept", "a")
	header.Add("Accept", "b")

	out := r.headers(header)
	assert.Equal(t, redactedValue, out[echo.HeaderAuthorization])
	assert.Equal(t, redactedValue, out["X-Api-Key"])
	assert.Equal(t, []string{"a", "b"}, out["Accept"])
}

func TestReadJSONBodyRestoresBody(t *testing.T) {
	hs := New(WithRedactedFields("password")).(*httpServer)

	req := httptest.NewRequest(http.MethodPost, "/auth/signin", strings.NewReader(`{"email":"a@b.co","password":"secret1"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	payload, ok := hs.readJSONBody(req)
	require.True(t, ok)
	assert.Equal(t, redactedValue, payload.(map[string]any)["password"])

	var body map[string]string
	require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
	assert.Equal(t, "secret1", body["password"])
}

func TestSkippers(t *testing.T) {
	e := echo.New()

	probe := e.NewContext(httptest.NewRequest(http.MethodGet, "/readyz/firebase", nil), httptest.NewRecorder())
	assert.True(t, HealthCheckSkipper(probe))

	feed := e.NewContext(httptest.NewRequest(http.MethodGet, "/feed", nil), httptest.NewRecorder())
	assert.False(t, HealthCheckSkipper(feed))

	upgradeReq := httptest.NewRequest(http.MethodGet, "/users/search/live", nil)
	upgradeReq.Header.Set(echo.HeaderUpgrade, "WebSocket")
	assert.True(t, WebSocketSkipper(e.NewContext(upgradeReq, httptest.NewRecorder())))
}

func TestServerRoutesThroughMiddlewares(t *testing.T) {
	var order []string
	mark := func(name string) echo.MiddlewareFunc {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				order = append(order, name)
				return next(c)
			}
		}
	}

	hs := New(WithMiddlewares(mark("first"), mark("second")))
	hs.Routers().POST("/echo", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"ok": true})
	})

	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	hs.Routers().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"first", "second"}, order)
}
