package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cleared-dev/icsimport/internal/export"
	"github.com/cleared-dev/icsimport/internal/importer"
	"github.com/cleared-dev/icsimport/internal/statementtest"
)

func setupTestServer(t *testing.T, cfg Config) (*Server, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.InfoLevel)
	return NewServer(importer.DefaultRegistry(), zap.New(core), cfg), logs
}

func uploadBody(t *testing.T, fields map[string]string, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func uploadRequest(t *testing.T, fields map[string]string, filename string, data []byte) *http.Request {
	t.Helper()
	body, contentType := uploadBody(t, fields, filename, data)
	req := httptest.NewRequest(http.MethodPost, "/api/statements/preview", body)
	req.Header.Set("Content-Type", contentType)
	return req
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return out
}

func TestHealthEndpoint(t *testing.T) {
	s, _ := setupTestServer(t, Config{})

	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))

	health := decode[healthResponse](t, resp)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, []string{"ics"}, health.Formats)
}

func TestRequestIDIsEchoed(t *testing.T) {
	s, logs := setupTestServer(t, Config{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(fiber.HeaderXRequestID, "abc-123")
	resp, err := s.App().Test(req)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", resp.Header.Get(fiber.HeaderXRequestID))

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "abc-123", fields["request_id"])
	assert.Equal(t, "/api/health", fields["path"])
	assert.EqualValues(t, 200, fields["status"])
}

func TestPreview(t *testing.T) {
	s, _ := setupTestServer(t, Config{})
	data := statementtest.MustRender(statementtest.SampleStatement())

	resp, err := s.App().Test(uploadRequest(t, nil, "statement.pdf", data), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	got := decode[export.StatementJSON](t, resp)
	assert.Equal(t, statementtest.SampleStatementID, got.StatementID)
	assert.Equal(t, "692.52", got.Header.TotalNewExpenses)
	assert.Len(t, got.Transactions, statementtest.SampleTransactions)
	assert.Empty(t, got.Warnings)
}

func TestPreview_ExplicitFormat(t *testing.T) {
	s, _ := setupTestServer(t, Config{})
	data := statementtest.MustRender(statementtest.SampleStatement())

	resp, err := s.App().Test(uploadRequest(t, map[string]string{"format": "ICS"}, "statement.pdf", data), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestPreview_Errors(t *testing.T) {
	tests := []struct {
		name     string
		fields   map[string]string
		filename string
		data     []byte
		status   int
	}{
		{"missing file", nil, "", nil, fiber.StatusBadRequest},
		{"unknown format", map[string]string{"format": "chase"}, "a.pdf", []byte("x"), fiber.StatusBadRequest},
		{"not a pdf", nil, "a.pdf", []byte("hello"), fiber.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := setupTestServer(t, Config{})
			resp, err := s.App().Test(uploadRequest(t, tt.fields, tt.filename, tt.data), -1)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			body := decode[errorResponse](t, resp)
			assert.NotEmpty(t, body.Error)
			assert.NotEmpty(t, body.RequestID)
		})
	}
}

func TestPreview_NotAStatement(t *testing.T) {
	s, _ := setupTestServer(t, Config{})
	data := statementtest.MustRender([]statementtest.Page{{{{X: 40, Text: "Boodschappenlijst"}}}})

	resp, err := s.App().Test(uploadRequest(t, nil, "list.pdf", data), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, decode[errorResponse](t, resp).Error, "statementDate")
}

// serve runs the app on a loopback listener. app.Test cannot observe the
// body limit because fasthttp rejects the request before it is dispatched.
func serve(t *testing.T, s *Server) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = s.App().Listener(ln) }()
	t.Cleanup(func() { _ = s.App().Shutdown() })
	return "http://" + ln.Addr().String()
}

func TestPreview_BodyLimit(t *testing.T) {
	s, _ := setupTestServer(t, Config{BodyLimit: 256})
	data := statementtest.MustRender(statementtest.SampleStatement())
	require.Greater(t, len(data), 256)

	body, contentType := uploadBody(t, nil, "statement.pdf", data)
	resp, err := http.Post(serve(t, s)+"/api/statements/preview", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusRequestEntityTooLarge, resp.StatusCode)
	errBody := decode[errorResponse](t, resp)
	assert.NotEmpty(t, errBody.Error)
	assert.NotEmpty(t, errBody.RequestID)
	assert.Equal(t, resp.Header.Get(fiber.HeaderXRequestID), errBody.RequestID)
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := setupTestServer(t, Config{})
	data := statementtest.MustRender(statementtest.SampleStatement())
	_, err := s.App().Test(uploadRequest(t, nil, "statement.pdf", data), -1)
	require.NoError(t, err)

	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "icsimport_statements_parsed_total")
}
