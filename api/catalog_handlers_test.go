package api_test

import (
	"context"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sebooking/booking-engine/api"
)

func formatInt(n int64) string {
	return strconv.FormatInt(n, 10)
}

// =============================================================================
// NOTICE
// =============================================================================

func TestNotice_RoundTrip(t *testing.T) {
	h := newHarness(t)

	resp := h.get("/get_notice")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	n := decode[api.NoticeDTO](t, resp)
	assert.Empty(t, n.Text)
	assert.False(t, n.Enabled)

	resp = h.post("/admin/update_notice", map[string]any{
		"text": "Closed on Sunday", "enabled": true,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = h.get("/get_notice")
	n = decode[api.NoticeDTO](t, resp)
	assert.Equal(t, "Closed on Sunday", n.Text)
	assert.True(t, n.Enabled)
}

// =============================================================================
// CATALOG CRUD
// =============================================================================

func TestCatalog_TestAndCategoryFlow(t *testing.T) {
	h := newHarness(t)

	resp := h.post("/admin/add_category", map[string]any{"name": "Blood"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = h.post("/admin/add_category", map[string]any{"name": "Blood"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "duplicate category rejected")
	resp.Body.Close()

	resp = h.get("/admin/categories")
	cats := decode[[]api.CategoryDTO](t, resp)
	require.Len(t, cats, 1)

	resp = h.post("/admin/add_test", map[string]any{
		"category_id": cats[0].ID, "test_name": "CBC",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = h.get("/admin/tests")
	tests := decode[[]api.TestDTO](t, resp)
	require.Len(t, tests, 1)
	assert.Equal(t, "CBC", tests[0].TestName)

	// Rename, legacy string-typed id.
	resp = h.postRaw("/admin/update_test",
		`{"test_id": "`+formatInt(tests[0].ID)+`", "test_name": "Complete Blood Count"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = h.get("/get_tests?category_id=" + formatInt(cats[0].ID))
	tests = decode[[]api.TestDTO](t, resp)
	require.Len(t, tests, 1)
	assert.Equal(t, "Complete Blood Count", tests[0].TestName)
}

func TestCatalog_CenterAndPricingFlow(t *testing.T) {
	h := newHarness(t)

	resp := h.post("/admin/add_center", map[string]any{
		"id": 7, "center_name": "City Lab", "address": "12 MG Road",
		"timings": []string{"9-1", "4-8"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = h.post("/admin/add_category", map[string]any{"name": "Blood"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	resp = h.post("/admin/add_test", map[string]any{"category_id": 1, "test_name": "CBC"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = h.post("/admin/set_price", map[string]any{
		"center_id": 7, "test_id": 1, "price": 400,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Customer sees the offer.
	resp = h.get("/get_centers?test_id=1")
	offers := decode[[]api.OfferDTO](t, resp)
	require.Len(t, offers, 1)
	assert.Equal(t, "City Lab", offers[0].CenterName)
	assert.Equal(t, 400.0, offers[0].Price)

	// Disable the center; the offer disappears.
	resp = h.post("/admin/toggle_center", map[string]any{"center_id": 7, "enabled": false})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = h.get("/get_centers?test_id=1")
	offers = decode[[]api.OfferDTO](t, resp)
	assert.Empty(t, offers)

	// Pricing matrix shows the assignment with an empty slot for
	// unpriced tests.
	resp = h.post("/admin/add_test", map[string]any{"category_id": 1, "test_name": "Lipid Profile"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = h.get("/admin/pricing?center_id=7")
	matrix := decode[[]map[string]any](t, resp)
	require.Len(t, matrix, 2)
	assert.Equal(t, 400.0, matrix[0]["price"])
	assert.Equal(t, "", matrix[1]["price"])
}

// =============================================================================
// LOGINS
// =============================================================================

func TestAdminLogin(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.store.EnsureAdmin(context.Background(), "admin", "secret"))

	resp := h.post("/admin/login", map[string]any{"username": "admin", "password": "secret"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = h.post("/admin/login", map[string]any{"username": "admin", "password": "wrong"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCenterLogin_ResolvesCenterName(t *testing.T) {
	h := newHarness(t)
	h.seedCatalog()

	resp := h.post("/admin/create_center_user", map[string]any{
		"center_id": 7, "username": "citylab", "password": "pw",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = h.post("/center/login", map[string]any{"username": "citylab", "password": "pw"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	login := decode[api.CenterLoginResponse](t, resp)
	assert.Equal(t, int64(7), login.CenterID)
	assert.Equal(t, "City Lab", login.CenterName)

	resp = h.post("/center/login", map[string]any{"username": "citylab", "password": "nope"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAgentLogin_ReturnsIdentity(t *testing.T) {
	h := newHarness(t)

	resp := h.post("/admin/add_agent", map[string]any{
		"name": "Suresh", "username": "suresh", "password": "pw",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = h.post("/agent/login", map[string]any{"username": "suresh", "password": "pw"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	login := decode[api.AgentLoginResponse](t, resp)
	assert.Equal(t, "1", login.AgentID)
	assert.Equal(t, "Suresh", login.AgentName)

	// The admin listing omits credentials.
	resp = h.get("/admin/agents")
	agents := decode[[]map[string]any](t, resp)
	require.Len(t, agents, 1)
	_, present := agents[0]["password"]
	assert.False(t, present)
}
