package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func TestLoggerEmitsContextIdentifiers(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf)

	handler := Logger(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("ok"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/jobs", nil)
	req = req.WithContext(ContextWithSessionID(req.Context(), "sess-1"))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line not JSON: %v (%q)", err, buf.String())
	}
	if entry["method"] != "GET" || entry["path"] != "/v1/jobs" {
		t.Fatalf("entry = %v, want method and path fields", entry)
	}
	if entry["status"] != float64(http.StatusTeapot) {
		t.Fatalf("status = %v, want %d", entry["status"], http.StatusTeapot)
	}
	if entry["bytes"] != float64(2) {
		t.Fatalf("bytes = %v, want 2", entry["bytes"])
	}
	if entry["session_id"] != "sess-1" {
		t.Fatalf("session_id = %v, want sess-1", entry["session_id"])
	}
}
