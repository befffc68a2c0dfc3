package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestRecoverWritesResponseAndLogs(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf)
	onPanic := func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"message":"Internal server error"}`))
	}
	h := RequestID(Logger(l)(Recover(l, onPanic)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/donations/my-donations", nil))
	if rr.Code != http.StatusInternalServerError || !strings.Contains(rr.Body.String(), `"success":false`) {
		t.Fatalf("status = %d body = %q", rr.Code, rr.Body.String())
	}

	var sawPanic, sawRequest bool
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("decode log line %q: %v", line, err)
		}
		switch entry["message"] {
		case "handler panic":
			sawPanic = entry["panic"] == "boom"
		case "request":
			sawRequest = entry["status"] == float64(http.StatusInternalServerError)
		}
	}
	if !sawPanic || !sawRequest {
		t.Fatalf("missing log lines in %s", buf.String())
	}
}

func TestRecoverPassesThrough(t *testing.T) {
	h := Recover(zerolog.Nop(), nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rr.Code)
	}
}
