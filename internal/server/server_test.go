package server

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"txf-bar-engine/internal/domain"
	"txf-bar-engine/internal/feed/stub"
	"txf-bar-engine/internal/history"
)

var taipei = time.FixedZone("CST", 8*3600)

func newTestServer(t *testing.T, client *stub.Client) *Server {
	t.Helper()
	engine := history.New(history.Options{
		Feed:     client,
		Location: taipei,
		Logger:   log.New(io.Discard, "", 0),
		Now:      func() time.Time { return time.Date(2024, 11, 22, 18, 0, 0, 0, taipei) },
	})
	return New(engine, "*", log.New(io.Discard, "", 0))
}

func TestHandleHistory(t *testing.T) {
	client := stub.NewClient()
	barTime := time.Date(2024, 11, 22, 10, 0, 0, 0, taipei)
	client.Bars = []domain.RawBar{{
		TS:     barTime.UnixNano(),
		Open:   22900,
		High:   22910,
		Low:    22890,
		Close:  22905,
		Volume: 50,
	}}
	srv := newTestServer(t, client)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history?date=2024-11-22&session=day", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	var bars []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bars))
	require.Len(t, bars, 1)

	// Wire shape: time, timestamp, open, high, low, close, volume.
	assert.Equal(t, float64(barTime.UnixMilli()), bars[0]["timestamp"])
	assert.Equal(t, 22900.0, bars[0]["open"])
	assert.Equal(t, 22905.0, bars[0]["close"])
	assert.Equal(t, 50.0, bars[0]["volume"])
}

func TestHandleHistory_EmptyIsJSONArray(t *testing.T) {
	client := stub.NewClient()
	client.Connected = false
	srv := newTestServer(t, client)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history?date=2024-11-22", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestHandleHistory_BadRequest(t *testing.T) {
	srv := newTestServer(t, stub.NewClient())

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history?date=junk", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history?date=2024-11-22&session=afternoon", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleLive(t *testing.T) {
	client := stub.NewClient()
	srv := newTestServer(t, client)

	client.PushTick("TAIFEX", domain.RawTick{TS: 1, Price: 22900, Volume: 3})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/live", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var points []domain.Bar
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &points))
	require.Len(t, points, 1)
	assert.Equal(t, 22900.0, points[0].Close)
}

func TestHandleStatus(t *testing.T) {
	client := stub.NewClient()
	client.Contract = "TXFA6"
	srv := newTestServer(t, client)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"connected":true,"contract":"TXFA6"}`, rec.Body.String())
}

func TestHandleStatus_OmitsEmptyContract(t *testing.T) {
	client := stub.NewClient()
	client.Connected = false
	client.Contract = ""
	srv := newTestServer(t, client)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"connected":false}`, rec.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, stub.NewClient())

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/history", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, stub.NewClient())

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
