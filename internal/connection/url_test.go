package connection

import (
	"errors"
	"testing"
)

func TestDeriveSocketURL(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		want    string
		wantErr bool
	}{
		{
			name: "https base",
			base: "https://console.example.net/api",
			want: "wss://console.example.net/api/ws",
		},
		{
			name: "trailing slash normalized",
			base: "https://console.example.net/api/",
			want: "wss://console.example.net/api/ws",
		},
		{
			name: "http base",
			base: "http://localhost:8080",
			want: "ws://localhost:8080/ws",
		},
		{
			name: "root with slash",
			base: "https://console.example.net/",
			want: "wss://console.example.net/ws",
		},
		{
			name:    "empty",
			base:    "",
			wantErr: true,
		},
		{
			name:    "unsupported scheme",
			base:    "ftp://console.example.net",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DeriveSocketURL(tt.base)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("DeriveSocketURL(%q) expected error, got %q", tt.base, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("DeriveSocketURL(%q) failed: %v", tt.base, err)
			}
			if got != tt.want {
				t.Errorf("DeriveSocketURL(%q) = %q, want %q", tt.base, got, tt.want)
			}
		})
	}
}

func TestDeriveSocketURL_EmptyError(t *testing.T) {
	_, err := DeriveSocketURL("")
	if !errors.Is(err, ErrSocketURLRequired) {
		t.Errorf("err = %v, want ErrSocketURLRequired", err)
	}
}
