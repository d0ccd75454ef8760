package httputil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDecodeJSONStrict(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"password":"pw"}`, false},
		{"unknown field", `{"password":"pw","extra":1}`, true},
		{"invalid json", `{invalid}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(tt.body))
			var body struct {
				Password string `json:"password"`
			}
			err := DecodeJSONStrict(req, &body)
			if (err != nil) != tt.wantErr {
				t.Errorf("DecodeJSONStrict() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestQueryParamInt(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"missing", "", 100},
		{"valid", "?lines=25", 25},
		{"zero", "?lines=0", 0},
		{"negative falls back", "?lines=-5", 100},
		{"garbage falls back", "?lines=abc", 100},
		{"trailing garbage falls back", "?lines=12abc", 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/logs"+tt.query, nil)
			if got := QueryParamInt(req, "lines", 100); got != tt.want {
				t.Errorf("QueryParamInt() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestQueryParamAny(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/logs?type=error", nil)
	if got := QueryParamAny(req, "access", "category", "type"); got != "error" {
		t.Errorf("Expected alias value, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/logs?category=access&type=error", nil)
	if got := QueryParamAny(req, "access", "category", "type"); got != "access" {
		t.Errorf("Expected first key to win, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/logs", nil)
	if got := QueryParamAny(req, "access", "category", "type"); got != "access" {
		t.Errorf("Expected default, got %q", got)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
	req.RemoteAddr = "10.1.2.3:5555"
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")

	if got := ClientIP(req, false); got != "10.1.2.3" {
		t.Errorf("Expected remote addr host, got %q", got)
	}
	if got := ClientIP(req, true); got != "203.0.113.9" {
		t.Errorf("Expected forwarded client, got %q", got)
	}
}

func TestWriteSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccess(rec, "nginx started successfully")

	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["success"] != true || body["message"] != "nginx started successfully" {
		t.Errorf("Unexpected body %v", body)
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusBadRequest, "bad")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Unexpected content type %q", ct)
	}
}
