package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_ExposesOrderMetrics(t *testing.T) {
	m := NewRegistry()
	m.OrdersCreated.Inc()
	m.OrderRejections.WithLabelValues(ReasonDishUnavailable).Inc()
	m.OrderStatusUpdates.WithLabelValues("cooking").Add(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.OrdersCreated))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.OrderStatusUpdates.WithLabelValues("cooking")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "lovemenu_orders_created_total 1")
	assert.Contains(t, body, `lovemenu_order_rejections_total{reason="dish_unavailable"} 1`)
}

func TestRegistry_OrderMetricsHaveHelp(t *testing.T) {
	m := NewRegistry()
	m.OrdersCreated.Inc()
	m.OrderRejections.WithLabelValues(ReasonDishNotFound).Inc()
	m.OrderStatusUpdates.WithLabelValues("ready").Inc()
	m.EventPublishFailure.Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()

	for _, name := range []string{
		"lovemenu_orders_created_total",
		"lovemenu_order_rejections_total",
		"lovemenu_order_status_updates_total",
		"lovemenu_event_publish_failures_total",
	} {
		assert.Regexp(t, `(?m)^# HELP `+name+` \S`, body, name)
	}

	problems, err := testutil.GatherAndLint(m.reg,
		"lovemenu_orders_created_total",
		"lovemenu_order_rejections_total",
		"lovemenu_order_status_updates_total",
		"lovemenu_event_publish_failures_total",
	)
	require.NoError(t, err)
	assert.Empty(t, problems)
}
