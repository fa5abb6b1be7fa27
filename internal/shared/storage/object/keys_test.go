package object

import (
	"io"
	"strings"
	"testing"
)

func TestOwnerKeyStableHex(t *testing.T) {
	got := OwnerKey("user-1")
	if got != OwnerKey("user-1") {
		t.Fatalf("expected stable key")
	}
	if len(got) != 64 || strings.Trim(got, "0123456789abcdef") != "" {
		t.Fatalf("expected 64 hex chars, got %q", got)
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "cv.pdf", want: "cv.pdf"},
		{in: " dir/sub\\cv.pdf ", want: "dir_sub_cv.pdf"},
		{in: "../etc/passwd", wantErr: true},
		{in: "   ", wantErr: true},
	}
	for _, tt := range tests {
		got, err := SanitizeFileName(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("SanitizeFileName(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("SanitizeFileName(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestNewKey(t *testing.T) {
	key, err := NewKey("user-1", "my cv.pdf")
	if err != nil {
		t.Fatalf("new key: %v", err)
	}
	if !strings.HasPrefix(key, OwnerKey("user-1")+"/") || !strings.HasSuffix(key, "_my cv.pdf") {
		t.Fatalf("unexpected key %q", key)
	}
	if other, _ := NewKey("user-1", "my cv.pdf"); other == key {
		t.Fatalf("expected unique keys")
	}
}

func TestSniffReplaysHead(t *testing.T) {
	body := "%PDF-1.4 applicant cv"
	mime, r, err := Sniff(strings.NewReader(body))
	if err != nil {
		t.Fatalf("sniff: %v", err)
	}
	if mime != "application/pdf" {
		t.Fatalf("expected application/pdf, got %q", mime)
	}
	got, _ := io.ReadAll(r)
	if string(got) != body {
		t.Fatalf("expected body replayed, got %q", got)
	}
}
