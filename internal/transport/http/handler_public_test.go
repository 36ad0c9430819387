package httptransport

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"", 50, 0},
		{"?limit=10&offset=20", 10, 20},
		{"?limit=0", 1, 0},
		{"?limit=9000", 100, 0},
		{"?offset=-3", 50, 0},
		{"?limit=abc&offset=xyz", 50, 0},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/api/public/rooms"+tt.query, nil)
		limit, offset := ParsePagination(r)
		if limit != tt.wantLimit || offset != tt.wantOffset {
			t.Fatalf("%q: got (%d,%d), want (%d,%d)", tt.query, limit, offset, tt.wantLimit, tt.wantOffset)
		}
	}
}

func TestCheckAdminAuth(t *testing.T) {
	tests := []struct {
		name   string
		header string
		value  string
		want   bool
	}{
		{"x-admin-key", "X-Admin-Key", "secret", true},
		{"bearer", "Authorization", "Bearer secret", true},
		{"wrong key", "X-Admin-Key", "nope", false},
		{"empty bearer", "Authorization", "Bearer ", false},
		{"basic scheme", "Authorization", "Basic secret", false},
		{"missing", "", "", false},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/api/debug/vars", nil)
		if tt.header != "" {
			r.Header.Set(tt.header, tt.value)
		}
		if got := CheckAdminAuth(r, "secret"); got != tt.want {
			t.Fatalf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestIsSSERequest(t *testing.T) {
	tests := []struct {
		path   string
		accept string
		want   bool
	}{
		{"/api/public/rooms/ABC123/events", "", true},
		{"/api/public/rooms/ABC123", "", false},
		{"/api/debug/vars", "text/event-stream", true},
		{"/api/public/matches", "application/json", false},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, tt.path, nil)
		if tt.accept != "" {
			r.Header.Set("Accept", tt.accept)
		}
		if got := isSSERequest(r); got != tt.want {
			t.Fatalf("%s accept=%q: got %v, want %v", tt.path, tt.accept, got, tt.want)
		}
	}
}
