package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nxdndash/internal/config"
	"nxdndash/internal/database/models"
	"nxdndash/internal/discovery"
	"nxdndash/internal/display"
	"nxdndash/internal/reflector"

	"github.com/gin-gonic/gin"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func testLogger() *pterm.Logger {
	return pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace)
}

type fixedSnapshots struct {
	snapshot *reflector.Snapshot
}

func (f *fixedSnapshots) Snapshot() *reflector.Snapshot {
	return f.snapshot
}

type mapCountries map[string]string

func (m mapCountries) CountryForEndpoint(endpoint string) string {
	return m[endpoint]
}

const testEndpoint = "GB7XX     : 217.82.212.214:42000 2/60"

func testSnapshot() *reflector.Snapshot {
	heard := []reflector.HeardEntry{
		{Timestamp: testNow.Add(-10 * time.Second), Callsign: "M0ABC", Target: "TG <1>", Gateway: "GB7XX", Duration: reflector.Transmitting()},
		{Timestamp: testNow.Add(-time.Minute), Callsign: "1234567", Target: "TG 2", Gateway: "GB7YY", Duration: reflector.Seconds(4)},
		{Timestamp: testNow.Add(-2 * time.Minute), Callsign: display.Placeholder, Target: "TG 2", Gateway: "GB7YY", Duration: reflector.Seconds(1)},
	}
	for i := 0; i < 25; i++ {
		heard = append(heard, reflector.HeardEntry{
			Timestamp: testNow.Add(-time.Duration(10+i) * time.Minute),
			Callsign:  fmt.Sprintf("G%dAA", i),
			Target:    "TG 65000",
			Gateway:   "GB7ZZ",
			Duration:  reflector.Seconds(i),
		})
	}

	return &reflector.Snapshot{
		GeneratedAt: testNow,
		Active: &reflector.ActiveTransmission{
			Start:    testNow.Add(-10 * time.Second),
			Source:   "M0ABC",
			Target:   "TG <1>",
			Gateway:  "GB7XX",
			Duration: 10,
		},
		Heard: heard,
		Repeaters: []reflector.RepeaterLink{
			{Timestamp: testNow.Add(-time.Hour), Callsign: "GB7XX", EndpointKey: testEndpoint},
			{Timestamp: testNow.Add(-time.Hour), Callsign: "GB7YY", EndpointKey: "GB7YY     : 10.0.0.1:41400 1/60"},
		},
	}
}

func testBuilder(opts display.Options) *DocumentBuilder {
	return NewDocumentBuilder(
		&fixedSnapshots{snapshot: testSnapshot()},
		display.NewFormatter(opts),
		mapCountries{testEndpoint: "DE"},
	)
}

func redactedOptions() display.Options {
	return display.Options{Redact: true, QRZLinks: true, Location: time.FixedZone("CET", 3600)}
}

func serve(t *testing.T, handler gin.HandlerFunc, target string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/test", handler)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestDocumentBuilder_TxStatus(t *testing.T) {
	b := testBuilder(redactedOptions())
	status := b.TxStatus(testSnapshot().Active)
	require.NotNil(t, status)

	assert.True(t, status.IsTransmitting)
	assert.Equal(t, "2025-01-01 12:59:50", status.Timestamp)
	assert.Equal(t, "M0ABC", status.Source)
	assert.Equal(t, "TG &lt;1&gt;", status.Target)
	assert.Equal(t, "GB7XX", status.Repeater)
	assert.Equal(t, 10, status.Duration)
	assert.Equal(t, "MØA***", status.SourceDisplay)
	assert.Equal(t, "GB7***", status.RepeaterDisplay)
	assert.Equal(t, "https://qrz.com/db/M0ABC", status.QRZLink)

	assert.Nil(t, b.TxStatus(nil))
}

func TestDocumentBuilder_LastHeard(t *testing.T) {
	b := testBuilder(redactedOptions())
	items := b.LastHeard(testSnapshot().RecentHeard(3))
	require.Len(t, items, 3)

	// Linked callsigns are shown in full even when redacting
	assert.Equal(t, "MØABC", items[0].CallsignDisplay)
	assert.Equal(t, "https://qrz.com/db/M0ABC", items[0].QRZLink)
	assert.Equal(t, "TG &lt;1&gt;", items[0].Target)
	assert.Equal(t, "GB7***", items[0].RepeaterDisplay)
	assert.True(t, items[0].Duration.Transmitting)

	assert.Equal(t, "123***", items[1].CallsignDisplay)
	assert.Empty(t, items[1].QRZLink)

	assert.Equal(t, "???***", items[2].CallsignDisplay)
	assert.Empty(t, items[2].QRZLink)
}

func TestDocumentBuilder_Repeaters(t *testing.T) {
	b := testBuilder(display.Options{})
	items := b.Repeaters(testSnapshot().Repeaters)
	require.Len(t, items, 2)

	assert.Equal(t, "2025-01-01 11:00:00", items[0].Timestamp)
	assert.Equal(t, "GB7XX", items[0].CallsignDisplay)
	assert.Equal(t, "DE", items[0].Country)
	assert.Empty(t, items[1].Country)

	noGeo := NewDocumentBuilder(&fixedSnapshots{snapshot: testSnapshot()}, display.NewFormatter(display.Options{}), nil)
	assert.Empty(t, noGeo.Repeaters(testSnapshot().Repeaters)[0].Country)
}

func TestDashboardHandler_GetDashboard(t *testing.T) {
	h := NewDashboardHandler(testBuilder(display.Options{}), testLogger())
	w := serve(t, h.GetDashboard, "/test")
	require.Equal(t, http.StatusOK, w.Code)

	var doc struct {
		Success       bool                     `json:"success"`
		Timestamp     int64                    `json:"timestamp"`
		TxStatus      map[string]interface{}   `json:"tx_status"`
		LastHeard     []map[string]interface{} `json:"last_heard"`
		Repeaters     []map[string]interface{} `json:"repeaters"`
		RepeaterCount int                      `json:"repeater_count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))

	assert.True(t, doc.Success)
	assert.Equal(t, testNow.Unix(), doc.Timestamp)
	assert.Equal(t, "M0ABC", doc.TxStatus["source"])
	assert.Equal(t, "MØABC", doc.TxStatus["source_display"])
	assert.NotContains(t, doc.TxStatus, "qrz_link")
	assert.Len(t, doc.LastHeard, reflector.HeardLimit)
	assert.Equal(t, "transmitting", doc.LastHeard[0]["duration"])
	assert.Equal(t, float64(4), doc.LastHeard[1]["duration"])
	assert.Equal(t, 2, doc.RepeaterCount)
	assert.Len(t, doc.Repeaters, 2)
}

func TestDashboardHandler_NoActivity(t *testing.T) {
	empty := &reflector.Snapshot{GeneratedAt: testNow, Heard: []reflector.HeardEntry{}, Repeaters: []reflector.RepeaterLink{}}
	b := NewDocumentBuilder(&fixedSnapshots{snapshot: empty}, display.NewFormatter(display.Options{}), nil)
	h := NewDashboardHandler(b, testLogger())

	w := serve(t, h.GetDashboard, "/test")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t,
		fmt.Sprintf(`{"success":true,"timestamp":%d,"tx_status":null,"last_heard":[],"repeaters":[],"repeater_count":0}`, testNow.Unix()),
		w.Body.String())
}

func TestDashboardHandler_GetHeardLimit(t *testing.T) {
	h := NewDashboardHandler(testBuilder(display.Options{}), testLogger())

	tests := []struct {
		query    string
		expected int
	}{
		{"", 20},
		{"?limit=5", 5},
		{"?limit=0", 1},
		{"?limit=-3", 1},
		{"?limit=100", 20},
		{"?limit=abc", 20},
	}

	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			w := serve(t, h.GetHeard, "/test"+tc.query)
			require.Equal(t, http.StatusOK, w.Code)

			var out struct {
				LastHeard []HeardItem `json:"last_heard"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
			assert.Len(t, out.LastHeard, tc.expected)
		})
	}
}

func TestDashboardHandler_GetTxAndRepeaters(t *testing.T) {
	h := NewDashboardHandler(testBuilder(display.Options{}), testLogger())

	w := serve(t, h.GetTx, "/test")
	require.Equal(t, http.StatusOK, w.Code)
	var tx struct {
		TxStatus *TxStatus `json:"tx_status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tx))
	require.NotNil(t, tx.TxStatus)
	assert.Equal(t, 10, tx.TxStatus.Duration)

	w = serve(t, h.GetRepeaters, "/test")
	require.Equal(t, http.StatusOK, w.Code)
	var reps struct {
		Repeaters     []RepeaterItem `json:"repeaters"`
		RepeaterCount int            `json:"repeater_count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reps))
	assert.Equal(t, 2, reps.RepeaterCount)
	assert.Equal(t, "DE", reps.Repeaters[0].Country)
}

type fakeHistoryRepo struct {
	records      []*models.HeardRecord
	err          error
	lastLimit    int
	lastCallsign string
}

func (f *fakeHistoryRepo) CreateBatch(records []*models.HeardRecord) (int64, error) {
	return 0, nil
}

func (f *fakeHistoryRepo) FindRecent(limit int, callsign string) ([]*models.HeardRecord, error) {
	f.lastLimit = limit
	f.lastCallsign = callsign
	return f.records, f.err
}

func (f *fakeHistoryRepo) Count() (int64, error) {
	return int64(len(f.records)), nil
}

func (f *fakeHistoryRepo) DeleteOlderThan(cutoff time.Time, batchSize int) (int64, error) {
	return 0, nil
}

func TestHistoryHandler_GetHistory(t *testing.T) {
	repo := &fakeHistoryRepo{records: []*models.HeardRecord{
		{Timestamp: testNow, Callsign: "M0ABC", Target: "TG <1>", Gateway: "GB7XX", DurationSeconds: 12},
	}}
	h := NewHistoryHandler(repo, display.NewFormatter(display.Options{QRZLinks: true}), testLogger())

	w := serve(t, h.GetHistory, "/test?limit=10&callsign=m0abc")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 10, repo.lastLimit)
	assert.Equal(t, "M0ABC", repo.lastCallsign)

	var out struct {
		Success bool          `json:"success"`
		Count   int           `json:"count"`
		History []HistoryItem `json:"history"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.True(t, out.Success)
	require.Len(t, out.History, 1)
	assert.Equal(t, 12, out.History[0].Duration)
	assert.Equal(t, "TG &lt;1&gt;", out.History[0].Target)
	assert.Equal(t, "https://qrz.com/db/M0ABC", out.History[0].QRZLink)

	w = serve(t, h.GetHistory, "/test?limit=9999")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, defaultHistoryLimit, repo.lastLimit)
}

func TestHistoryHandler_Errors(t *testing.T) {
	disabled := NewHistoryHandler(nil, display.NewFormatter(display.Options{}), testLogger())
	w := serve(t, disabled.GetHistory, "/test")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	failing := NewHistoryHandler(&fakeHistoryRepo{err: errors.New("locked")}, display.NewFormatter(display.Options{}), testLogger())
	w = serve(t, failing.GetHistory, "/test")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
}

type fixedStatus map[string]interface{}

func (f fixedStatus) GetStatus() map[string]interface{} {
	return f
}

func TestReflectorHandler_GetReflector(t *testing.T) {
	ini := config.ParseReflectorINI("[General]\nTG=65000\n[Network]\nPort=41400\n")
	location := &discovery.Location{Dir: "/var/log/nxdn", Prefix: "NXDNReflector", Source: "ini", Valid: true}
	h := NewReflectorHandler(ini, location, fixedStatus{"is_running": true}, testLogger())

	w := serve(t, h.GetReflector, "/test")
	require.Equal(t, http.StatusOK, w.Code)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "65000", out["tg"])
	assert.Equal(t, "41400", out["port"])

	log, ok := out["log"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "/var/log/nxdn", log["dir"])
	assert.Equal(t, "ini", log["source"])
	assert.Regexp(t, `^NXDNReflector-\d{4}-\d{2}-\d{2}\.log$`, log["file"])

	ingestion, ok := out["ingestion"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, ingestion["is_running"])
}

func TestReflectorHandler_GetReflectorStats(t *testing.T) {
	ini := config.ParseReflectorINI("")
	location := &discovery.Location{Prefix: "NXDNReflector"}
	h := NewReflectorHandler(ini, location, nil, testLogger()).
		WithStats("feed", func() interface{} { return gin.H{"subscribers": 2} }).
		WithStats("geoip_cache_size", func() interface{} { return 5 })

	w := serve(t, h.GetReflector, "/test")
	require.Equal(t, http.StatusOK, w.Code)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))

	ingestion, ok := out["ingestion"].(map[string]interface{})
	require.True(t, ok)
	feed, ok := ingestion["feed"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(2), feed["subscribers"])
	assert.Equal(t, float64(5), ingestion["geoip_cache_size"])
	assert.NotContains(t, ingestion, "is_running")
}

func TestHeardLimit(t *testing.T) {
	assert.Equal(t, 20, heardLimit(""))
	assert.Equal(t, 7, heardLimit("7"))
	assert.Equal(t, 1, heardLimit("0"))
	assert.Equal(t, 20, heardLimit("21"))
	assert.Equal(t, 20, heardLimit("x"))
}
