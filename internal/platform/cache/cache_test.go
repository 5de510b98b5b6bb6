package cache

import (
	"testing"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"valid-redis", "redis://localhost:6379", false},
		{"valid-with-db", "redis://localhost:6379/0", false},
		{"empty", "", true},
		{"wrong-scheme", "http://localhost:6379", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseURL() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestKey(t *testing.T) {
	tests := []struct {
		prefix string
		parts  []string
		want   string
	}{
		{"quiz", []string{"progress", "u1"}, "quiz:progress:u1"},
		{"", []string{"progress", "u1"}, "progress:u1"},
		{"quiz", []string{"progress", "u1", "completed"}, "quiz:progress:u1:completed"},
	}

	for _, tt := range tests {
		c := &Cache{Prefix: tt.prefix}
		if got := c.Key(tt.parts...); got != tt.want {
			t.Errorf("Key(%v) = %q, want %q", tt.parts, got, tt.want)
		}
	}
}

func TestOpen_UnreachableHost(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping unreachable host test in short mode")
	}

	ctx := t.Context()
	_, err := Open(ctx, Options{URL: "redis://localhost:59999", Prefix: "quiz"})
	if err == nil {
		t.Fatal("Open() should return error for unreachable host")
	}
}
