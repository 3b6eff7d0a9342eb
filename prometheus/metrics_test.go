package prometheus

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsMiddlewareCountsRequests(t *testing.T) {
	e := echo.New()
	e.Use(MetricsMiddleware())
	e.GET("/api/category/:category_name", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})

	counter := HTTPRequestCounter.WithLabelValues("/api/category/:category_name", http.MethodGet, "204")
	before := testutil.ToFloat64(counter)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/category/fruits", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestRecorders(t *testing.T) {
	auth := AuthErrorCounter.WithLabelValues("tenant_mismatch")
	catalog := CatalogOperationCounter.WithLabelValues("add_product")
	store := StoreOperationCounter.WithLabelValues("create")
	authBefore, catalogBefore, storeBefore := testutil.ToFloat64(auth), testutil.ToFloat64(catalog), testutil.ToFloat64(store)

	RecordAuthError("tenant_mismatch")
	RecordCatalogOperation("add_product")
	RecordStoreOperation("create")

	assert.Equal(t, authBefore+1, testutil.ToFloat64(auth))
	assert.Equal(t, catalogBefore+1, testutil.ToFloat64(catalog))
	assert.Equal(t, storeBefore+1, testutil.ToFloat64(store))
}

func TestTrackDBOperation(t *testing.T) {
	before := testutil.CollectAndCount(DBOperationDuration)
	TrackDBOperation("probe-" + t.Name())(time.Now())
	assert.Equal(t, before+1, testutil.CollectAndCount(DBOperationDuration))
}

func TestMetricsMiddlewareRecordsRenderedErrorStatus(t *testing.T) {
	e := echo.New()
	e.Use(MetricsMiddleware())
	e.GET("/missing-thing", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "gone")
	})

	counter := HTTPRequestCounter.WithLabelValues("/missing-thing", http.MethodGet, "404")
	before := testutil.ToFloat64(counter)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing-thing", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}
