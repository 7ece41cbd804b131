package extract

import (
	"context"
	"testing"
)

func TestTextFromBytesPlainText(t *testing.T) {
	got, err := TextFromBytes(context.Background(), []byte("hello world"), "text/plain", "note.txt")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got != "hello world" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestTextFromBytesMimeParameters(t *testing.T) {
	got, err := TextFromBytes(context.Background(), []byte("data"), "text/plain; charset=utf-8", "note.txt")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got != "data" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestTextFromBytesExtensionFallback(t *testing.T) {
	got, err := TextFromBytes(context.Background(), []byte("# heading"), "application/octet-stream", "readme.md")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got != "# heading" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestTextFromBytesUnsupported(t *testing.T) {
	if _, err := TextFromBytes(context.Background(), []byte{0x1}, "image/png", "photo.png"); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
}

func TestTextFromBytesCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := TextFromBytes(ctx, []byte("x"), "text/plain", "a.txt"); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestNormalizeMimeType(t *testing.T) {
	cases := []struct {
		mime string
		name string
		want string
	}{
		{"application/pdf", "f", "application/pdf"},
		{"", "doc.pdf", "application/pdf"},
		{"application/octet-stream", "data.json", "application/json"},
		{"TEXT/PLAIN", "x", "text/plain"},
		{"", "unknown.bin", ""},
	}
	for _, tc := range cases {
		if got := normalizeMimeType(tc.mime, tc.name); got != tc.want {
			t.Fatalf("normalizeMimeType(%q, %q) = %q, want %q", tc.mime, tc.name, got, tc.want)
		}
	}
}
