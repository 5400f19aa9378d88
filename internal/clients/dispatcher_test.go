package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veeragonivk/NTCT-gtm-web-app/internal/config"
	"github.com/veeragonivk/NTCT-gtm-web-app/internal/models"
)

func testConfig(url string) *config.Config {
	return &config.Config{
		ItemURL:        url,
		ItemCode:       "item-code",
		CoCURL:         url,
		CoCCode:        "coc-code",
		ReportURL:      url,
		ReportCode:     "report-code",
		TrackingURL:    url,
		TrackingCode:   "tracking-code",
		BackendTimeout: 5 * time.Second,
	}
}

func TestItemDetailsSendsCodeAndItem(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "item-code", r.URL.Query().Get("code"))
		assert.Equal(t, "4910", r.URL.Query().Get("item"))
		w.Write([]byte("Item Name: nGeniusONE"))
	}))
	defer srv.Close()

	result, err := NewDispatcher(testConfig(srv.URL)).ItemDetails(context.Background(), "4910")
	require.NoError(t, err)
	assert.True(t, result.IsText())
	assert.Equal(t, "Item Name: nGeniusONE", result.Text)
}

func TestItemDetailsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	result, err := NewDispatcher(testConfig(srv.URL)).ItemDetails(context.Background(), "9999")
	require.NoError(t, err)
	assert.Contains(t, result.Text, "9999")
	assert.Contains(t, result.Text, "not found")
}

func TestItemDetailsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	result, err := NewDispatcher(testConfig(srv.URL)).ItemDetails(context.Background(), "4910")
	require.NoError(t, err)
	assert.Contains(t, result.Text, "Error retrieving item")
	assert.Contains(t, result.Text, "500")
}

func TestItemDetailsConfigMissing(t *testing.T) {
	result, err := NewDispatcher(&config.Config{BackendTimeout: time.Second}).ItemDetails(context.Background(), "4910")
	require.NoError(t, err)
	assert.Contains(t, result.Text, "configuration missing")
}

func TestCoCDetailsOptionalCountry(t *testing.T) {
	var gotCountry string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "NATL", r.URL.Query().Get("model_item"))
		gotCountry = r.URL.Query().Get("country_query")
		w.Write([]byte("certified"))
	}))
	defer srv.Close()

	d := NewDispatcher(testConfig(srv.URL))

	_, err := d.CoCDetails(context.Background(), "NATL", "Uganda")
	require.NoError(t, err)
	assert.Equal(t, "Uganda", gotCountry)

	_, err = d.CoCDetails(context.Background(), "NATL", "")
	require.NoError(t, err)
	assert.Equal(t, "", gotCountry, "empty country must not be sent")
}

func TestReportPostsJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "report-code", r.URL.Query().Get("code"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "PackSlip", payload["report"])
		assert.Equal(t, "17749190", payload["delivery_name"])
		_, hasSO := payload["sales_order"]
		assert.False(t, hasSO, "absent optional keys must be omitted")

		w.Write([]byte("https://reports.example.com/packslip-17749190.pdf"))
	}))
	defer srv.Close()

	result, err := NewDispatcher(testConfig(srv.URL)).Report(context.Background(), "PackSlip", "", "17749190", "")
	require.NoError(t, err)
	assert.Contains(t, result.Text, ".pdf")
}

func TestReportNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	result, err := NewDispatcher(testConfig(srv.URL)).Report(context.Background(), "PackSlip", "1", "", "")
	require.NoError(t, err)
	assert.Contains(t, result.Text, "PackSlip")
	assert.Contains(t, result.Text, "not found or invalid parameters")
}

func TestTrackingNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1047644", r.URL.Query().Get("sales_order"))
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	result, err := NewDispatcher(testConfig(srv.URL)).Tracking(context.Background(), "1047644")
	require.NoError(t, err)
	assert.Contains(t, result.Text, "Tracking info not found")
	assert.Contains(t, result.Text, "1047644")
}

func TestNormalizeJSONResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"carrier":"DHL","status":"In Transit"}`))
	}))
	defer srv.Close()

	result, err := NewDispatcher(testConfig(srv.URL)).Tracking(context.Background(), "1047644")
	require.NoError(t, err)
	assert.False(t, result.IsText())
	assert.Equal(t, "DHL", result.Fields["carrier"])
}

func TestNormalizeJSONTextWrapper(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text": "  plain answer  "}`))
	}))
	defer srv.Close()

	result, err := NewDispatcher(testConfig(srv.URL)).Tracking(context.Background(), "1047644")
	require.NoError(t, err)
	assert.True(t, result.IsText())
	assert.Equal(t, "plain answer", result.Text)
}

func TestNormalizeMalformedJSONBecomesErrorText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	result, err := NewDispatcher(testConfig(srv.URL)).Tracking(context.Background(), "1047644")
	require.NoError(t, err)
	assert.Contains(t, result.Text, "Error retrieving tracking info")
}

func TestDispatchRoutesByIntent(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method
		gotQuery = r.URL.Query()
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	d := NewDispatcher(testConfig(srv.URL))

	// item_details prefers item but falls back to product
	_, err := d.Dispatch(context.Background(), models.IntentItemDetails, models.ParamBag{"product": "nGeniusONE"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, gotPath)
	assert.Equal(t, "nGeniusONE", gotQuery["item"][0])

	_, err = d.Dispatch(context.Background(), models.IntentTracking, models.ParamBag{"sales_order": "1047644"})
	require.NoError(t, err)
	assert.Equal(t, "1047644", gotQuery["sales_order"][0])

	result, err := d.Dispatch(context.Background(), models.IntentUnknown, models.ParamBag{})
	require.NoError(t, err)
	assert.Equal(t, "Unknown intent.", result.Text)
}

func TestTransportFailureBecomesErrorText(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	result, err := NewDispatcher(cfg).Tracking(context.Background(), "1047644")
	require.NoError(t, err)
	assert.Contains(t, result.Text, "Error retrieving tracking info")
}
