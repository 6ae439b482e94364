package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unanue/mostrador"
	httpadapter "github.com/unanue/mostrador/internal/adapters/http"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	assistant, err := mostrador.New()
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	srv := httptest.NewServer(httpadapter.NewHandler(assistant, httpadapter.WithMetrics(reg)))
	t.Cleanup(srv.Close)
	return srv
}

func postMessage(t *testing.T, srv *httptest.Server, sessionID, body string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Post(srv.URL+"/sessions/"+sessionID+"/messages", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	}
	return resp.StatusCode, decoded
}

func TestPostMessageStartsSession(t *testing.T) {
	srv := newTestServer(t)

	status, body := postMessage(t, srv, "s1", `{"message": ""}`)
	require.Equal(t, http.StatusOK, status)

	replies := body["replies"].([]any)
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "email corporativo")
	assert.Equal(t, false, body["finished"])
	assert.Equal(t, "authenticate", body["step"])
}

func TestPostMessageAdvancesConversation(t *testing.T) {
	srv := newTestServer(t)

	status, _ := postMessage(t, srv, "s2", `{"message": ""}`)
	require.Equal(t, http.StatusOK, status)

	status, body := postMessage(t, srv, "s2",
		`{"message": "mi email es juan.perez@eroski.es y trabajo en Eroski Bilbao"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "classify", body["step"])
}

func TestPostMessageIdempotentRedelivery(t *testing.T) {
	srv := newTestServer(t)

	first := `{"message_id": "msg-1", "message": ""}`
	status, body1 := postMessage(t, srv, "s3", first)
	require.Equal(t, http.StatusOK, status)

	status, body2 := postMessage(t, srv, "s3", first)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, body1["replies"], body2["replies"])

	// The duplicate did not advance the transcript.
	resp, err := http.Get(srv.URL + "/sessions/s3")
	require.NoError(t, err)
	defer resp.Body.Close()
	var summary map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&summary))
	assert.Equal(t, float64(2), summary["messages"])
}

func TestPostMessageRejectsBadBody(t *testing.T) {
	srv := newTestServer(t)
	status, _ := postMessage(t, srv, "s4", `{not json`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestSessionLifecycleEndpoints(t *testing.T) {
	srv := newTestServer(t)

	status, _ := postMessage(t, srv, "s5", `{"message": ""}`)
	require.Equal(t, http.StatusOK, status)

	resp, err := http.Get(srv.URL + "/sessions")
	require.NoError(t, err)
	defer resp.Body.Close()
	var listing map[string][]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listing))
	assert.Contains(t, listing["sessions"], "s5")

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/sessions/s5", nil)
	require.NoError(t, err)
	del, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	del.Body.Close()
	assert.Equal(t, http.StatusNoContent, del.StatusCode)

	gone, err := http.Get(srv.URL + "/sessions/s5")
	require.NoError(t, err)
	gone.Body.Close()
	assert.Equal(t, http.StatusNotFound, gone.StatusCode)
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	metrics, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	metrics.Body.Close()
	assert.Equal(t, http.StatusOK, metrics.StatusCode)
}
