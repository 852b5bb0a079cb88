package order

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lovemenu/internal/logger"
	"lovemenu/internal/metrics"
	"lovemenu/internal/models"
	"lovemenu/internal/services/catalog"
)

func newTestAPI(store *memStore) http.Handler {
	log := logger.NewWithWriter("test", io.Discard, "error")
	dishes := catalog.NewService(store, log)
	orders := NewService(store, dishes, &recordingPublisher{}, metrics.NewRegistry(), log)

	r := chi.NewRouter()
	r.Route("/api/dishes", catalog.NewHandler(dishes, log).Routes)
	r.Route("/api/orders", NewHandler(orders, log).Routes)
	return r
}

func call(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestAPI_SoupScenario(t *testing.T) {
	h := newTestAPI(newMemStore())

	rec := call(t, h, http.MethodPost, "/api/dishes", `{"name":"Soup","category":"Soups","is_available":true}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	soup := decode[models.Dish](t, rec)

	rec = call(t, h, http.MethodPost, "/api/orders", fmt.Sprintf(`{"items":[{"dish_id":%d,"quantity":2}]}`, soup.ID))
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[models.Order](t, rec)
	assert.Equal(t, 2, created.TotalItems)
	assert.Equal(t, models.StatusPending, created.Status)
	require.Len(t, created.Items, 1)
	assert.Equal(t, "Soup", created.Items[0].DishName)
	assert.Equal(t, 2, created.Items[0].Quantity)

	rec = call(t, h, http.MethodPatch, fmt.Sprintf("/api/orders/%d/status", created.ID), `{"status":"cooking"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.StatusCooking, decode[models.Order](t, rec).Status)

	rec = call(t, h, http.MethodGet, fmt.Sprintf("/api/orders/%d", created.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	fetched := decode[models.Order](t, rec)
	assert.Equal(t, models.StatusCooking, fetched.Status)
	assert.Equal(t, created.Items, fetched.Items)
}

func TestAPI_OrderWireFormat(t *testing.T) {
	store := newMemStore()
	soup := store.addDish("Soup", true)
	h := newTestAPI(store)

	rec := call(t, h, http.MethodPost, "/api/orders", fmt.Sprintf(`{"items":[{"dish_id":%d}],"note":"extra hot"}`, soup.ID))
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decode[map[string]interface{}](t, rec)
	for _, key := range []string{"id", "order_time", "status", "note", "total_items", "items"} {
		assert.Contains(t, body, key)
	}
	assert.Equal(t, "extra hot", body["note"])
	item := body["items"].([]interface{})[0].(map[string]interface{})
	for _, key := range []string{"id", "order_id", "dish_id", "dish_name", "quantity"} {
		assert.Contains(t, item, key)
	}
}

func TestAPI_CreateOrderErrors(t *testing.T) {
	store := newMemStore()
	soup := store.addDish("Soup", true)
	stew := store.addDish("Stew", false)
	h := newTestAPI(store)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantDetail string
	}{
		{"missing dish", `{"items":[{"dish_id":999,"quantity":1}]}`, http.StatusNotFound, "missing_dish_ids"},
		{"unavailable dish", fmt.Sprintf(`{"items":[{"dish_id":%d,"quantity":1}]}`, stew.ID), http.StatusBadRequest, "unavailable_dishes"},
		{"missing beats unavailable", fmt.Sprintf(`{"items":[{"dish_id":%d},{"dish_id":999}]}`, stew.ID), http.StatusNotFound, "missing_dish_ids"},
		{"zero quantity", fmt.Sprintf(`{"items":[{"dish_id":%d,"quantity":0}]}`, soup.ID), http.StatusBadRequest, "field"},
		{"unknown field", `{"items":[],"table":4}`, http.StatusBadRequest, "field"},
		{"malformed", `{"items":`, http.StatusBadRequest, "field"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := call(t, h, http.MethodPost, "/api/orders", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decode[map[string]interface{}](t, rec)
			details, ok := body["details"].(map[string]interface{})
			require.True(t, ok, rec.Body.String())
			assert.Contains(t, details, tt.wantDetail)
		})
	}

	rec := call(t, h, http.MethodGet, "/api/orders", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestAPI_QueryEndpoints(t *testing.T) {
	store := newMemStore()
	soup := store.addDish("Soup", true)
	h := newTestAPI(store)

	rec := call(t, h, http.MethodGet, "/api/orders/active", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	for i := 0; i < 3; i++ {
		rec = call(t, h, http.MethodPost, "/api/orders", fmt.Sprintf(`{"items":[{"dish_id":%d,"quantity":%d}]}`, soup.ID, i+1))
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	rec = call(t, h, http.MethodPatch, "/api/orders/3/status", `{"status":"completed"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = call(t, h, http.MethodGet, "/api/orders/active", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(2), decode[models.Order](t, rec).ID)

	rec = call(t, h, http.MethodGet, "/api/orders?limit=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	history := decode[[]models.Order](t, rec)
	require.Len(t, history, 2)
	assert.Equal(t, int64(3), history[0].ID)
	assert.Equal(t, int64(2), history[1].ID)

	rec = call(t, h, http.MethodGet, "/api/orders?limit=0", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	for _, bad := range []string{"-4", "ten"} {
		rec = call(t, h, http.MethodGet, "/api/orders?limit="+bad, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, bad)
	}

	assert.Equal(t, http.StatusNotFound, call(t, h, http.MethodGet, "/api/orders/42", "").Code)
	assert.Equal(t, http.StatusBadRequest, call(t, h, http.MethodGet, "/api/orders/x", "").Code)
}

func TestAPI_UpdateStatusErrors(t *testing.T) {
	store := newMemStore()
	soup := store.addDish("Soup", true)
	h := newTestAPI(store)

	rec := call(t, h, http.MethodPost, "/api/orders", fmt.Sprintf(`{"items":[{"dish_id":%d}]}`, soup.ID))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = call(t, h, http.MethodPatch, "/api/orders/1/status", `{"status":"delivered"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"status"`)

	rec = call(t, h, http.MethodPatch, "/api/orders/99/status", `{"status":"accepted"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = call(t, h, http.MethodPatch, "/api/orders/1/status", `{"status":"completed"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = call(t, h, http.MethodPatch, "/api/orders/1/status", `{"status":"pending"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.StatusPending, decode[models.Order](t, rec).Status)
}
