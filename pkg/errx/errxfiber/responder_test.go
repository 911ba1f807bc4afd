package errxfiber

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Abraxas-365/gatekeeper/pkg/errx"
	"github.com/Abraxas-365/gatekeeper/pkg/logx"
	"github.com/Abraxas-365/gatekeeper/pkg/metricsx"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(development bool, reg prometheus.Registerer) *fiber.App {
	var rec metricsx.Recorder = metricsx.Nop{}
	if reg != nil {
		rec = metricsx.NewCollector(reg)
	}
	r := NewResponder(development, logx.NewNop(), rec)
	app := fiber.New(fiber.Config{ErrorHandler: r.Handle})

	app.Get("/internal", func(c *fiber.Ctx) error {
		return errors.New("pq: relation \"users\" does not exist")
	})
	app.Get("/forbidden", func(c *fiber.Ctx) error {
		return errx.Forbidden("re-authentication required")
	})
	app.Get("/duplicate", func(c *fiber.Ctx) error {
		return &errx.StoreFailure{Code: errx.StoreUnique, Fields: []string{"email"}}
	})
	app.Get("/bad-request", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, "Request Entity Too Large")
	})
	app.Use(r.NotFound)
	return app
}

func call(t *testing.T, app *fiber.App, path string) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	return resp.StatusCode, body
}

func TestResponder_ProductionHidesInternalFailures(t *testing.T) {
	status, body := call(t, newApp(false, nil), "/internal")

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "Something went wrong", body["message"])
	assert.Equal(t, "DATABASE_ERROR", body["errorCode"])
	assert.NotEmpty(t, body["timestamp"])
	assert.NotContains(t, body, "stack")
	assert.NotContains(t, body, "error")
	assert.NotContains(t, body, "details")
}

func TestResponder_ProductionOperational(t *testing.T) {
	status, body := call(t, newApp(false, nil), "/forbidden")

	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "forbidden", body["status"])
	assert.Equal(t, "re-authentication required", body["message"])
	assert.Equal(t, "FORBIDDEN", body["errorCode"])
	assert.NotContains(t, body, "stack")
}

func TestResponder_DevelopmentIncludesDiagnostics(t *testing.T) {
	status, body := call(t, newApp(true, nil), "/internal")

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Something went wrong.", body["message"])
	cause, ok := body["error"].(map[string]any)
	require.True(t, ok, "error should be an object")
	assert.Contains(t, cause["message"], "does not exist")
	assert.NotEmpty(t, body["stack"])
}

func TestResponder_TranslatesStoreFailures(t *testing.T) {
	status, body := call(t, newApp(false, nil), "/duplicate")

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Duplicate entry for email", body["message"])
	assert.Equal(t, "DUPLICATE_ENTRY", body["errorCode"])
}

func TestResponder_UnknownRoute(t *testing.T) {
	status, body := call(t, newApp(false, nil), "/nope")

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Can't find this route `/nope`", body["message"])
	assert.Equal(t, "ROUTE_NOT_FOUND", body["errorCode"])
}

func TestResponder_FiberErrors(t *testing.T) {
	status, body := call(t, newApp(false, nil), "/bad-request")

	assert.Equal(t, http.StatusRequestEntityTooLarge, status)
	assert.Equal(t, "fail", body["status"])
}

func TestResponder_CountsResponses(t *testing.T) {
	reg := prometheus.NewRegistry()
	app := newApp(false, reg)

	call(t, app, "/forbidden")
	call(t, app, "/forbidden")

	count, err := testutil.GatherAndCount(reg, "gatekeeper_error_responses_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
