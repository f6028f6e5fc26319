package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNegotiateAPIVersion(t *testing.T) {
	tests := []struct {
		name   string
		accept string
		want   string
	}{
		{"empty accept defaults", "", DefaultAPIVersion},
		{"plain json defaults", "application/json", DefaultAPIVersion},
		{"vendor json v1", "application/vnd.nvidia.clint.v1+json", "v1"},
		{"vendor yaml v1", "application/vnd.nvidia.clint.v1+yaml", "v1"},
		{"unsupported version defaults", "application/vnd.nvidia.clint.v9+json", DefaultAPIVersion},
		{"malformed version defaults", "application/vnd.nvidia.clint.vX+json", DefaultAPIVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.accept != "" {
				req.Header.Set("Accept", tt.accept)
			}
			if got := negotiateAPIVersion(req); got != tt.want {
				t.Fatalf("negotiateAPIVersion(Accept=%q) = %q, want %q", tt.accept, got, tt.want)
			}
		})
	}
}

func TestIsValidAPIVersion(t *testing.T) {
	for v, want := range map[string]bool{"v1": true, "v2": false, "": false, "nope": false} {
		if got := isValidAPIVersion(v); got != want {
			t.Errorf("isValidAPIVersion(%q) = %v, want %v", v, got, want)
		}
	}
}
