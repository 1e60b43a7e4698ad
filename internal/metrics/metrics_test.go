package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegister_Idempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Register()
		Register()
	})
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(httpRequests.WithLabelValues("timeline_week", "4xx"))
	IncHTTP("timeline_week", 404)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("timeline_week", "4xx")))

	okBefore := testutil.ToFloat64(gatewayRequests.WithLabelValues("bookings", "ok"))
	errBefore := testutil.ToFloat64(gatewayRequests.WithLabelValues("bookings", "error"))
	ObserveGateway("bookings", time.Now(), nil)
	ObserveGateway("bookings", time.Now(), errors.New("boom"))
	assert.Equal(t, okBefore+1, testutil.ToFloat64(gatewayRequests.WithLabelValues("bookings", "ok")))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(gatewayRequests.WithLabelValues("bookings", "error")))

	slots := testutil.ToFloat64(slotsEvaluated)
	AddSlotsEvaluated(21)
	assert.Equal(t, slots+21, testutil.ToFloat64(slotsEvaluated))

	reloads := testutil.ToFloat64(configReloads.WithLabelValues("error"))
	IncConfigReload(false)
	assert.Equal(t, reloads+1, testutil.ToFloat64(configReloads.WithLabelValues("error")))
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "2xx", statusLabel(204))
	assert.Equal(t, "3xx", statusLabel(304))
	assert.Equal(t, "4xx", statusLabel(401))
	assert.Equal(t, "5xx", statusLabel(502))
}
