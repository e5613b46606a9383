package media

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSideloadImageDownloadsFile(t *testing.T) {
	t.Parallel()

	payload := []byte("fake image bytes")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	dir := t.TempDir()
	s := NewSideloader(dir, "/media")

	assetID, err := s.SideloadImage(context.Background(), server.URL+"/photo.png", "article-1", "desc")
	if err != nil {
		t.Fatalf("SideloadImage error: %v", err)
	}
	if !strings.HasSuffix(assetID, ".png") {
		t.Fatalf("expected source extension to be kept, got %s", assetID)
	}

	data, err := os.ReadFile(filepath.Join(dir, assetID))
	if err != nil {
		t.Fatalf("read downloaded file: %v", err)
	}
	if string(data) != string(payload) {
		t.Fatalf("file content mismatch")
	}
}

func TestSideloadImageStripsQueryString(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("x"))
	}))
	defer server.Close()

	s := NewSideloader(t.TempDir(), "/media")
	assetID, err := s.SideloadImage(context.Background(), server.URL+"/photo.jpg?w=1080&q=80", "a", "")
	if err != nil {
		t.Fatalf("SideloadImage error: %v", err)
	}
	if !strings.HasSuffix(assetID, ".jpg") || strings.Contains(assetID, "?") {
		t.Fatalf("query string must not leak into the filename: %s", assetID)
	}
}

func TestSideloadImageDefaultsExtension(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("x"))
	}))
	defer server.Close()

	s := NewSideloader(t.TempDir(), "/media")
	assetID, err := s.SideloadImage(context.Background(), server.URL+"/raw-download", "a", "")
	if err != nil {
		t.Fatalf("SideloadImage error: %v", err)
	}
	if !strings.HasSuffix(assetID, ".jpg") {
		t.Fatalf("extension-less sources must default to .jpg, got %s", assetID)
	}
}

func TestSideloadImageRejectsErrorStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	s := NewSideloader(t.TempDir(), "/media")
	if _, err := s.SideloadImage(context.Background(), server.URL+"/gone.jpg", "a", ""); err == nil {
		t.Fatalf("expected error for 404 source")
	}
}

func TestAssetURL(t *testing.T) {
	t.Parallel()

	s := NewSideloader("unused", "/media/")
	if got := s.AssetURL("abc.jpg"); got != "/media/abc.jpg" {
		t.Fatalf("unexpected asset url: %s", got)
	}
}

func TestExtensionOf(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"https://x/photo.JPEG":       ".jpeg",
		"https://x/photo.png?w=10":   ".png",
		"https://x/download":         ".jpg",
		"https://x/archive.tar.webp": ".webp",
	}
	for rawURL, want := range cases {
		if got := extensionOf(rawURL); got != want {
			t.Fatalf("%s: expected %s, got %s", rawURL, want, got)
		}
	}
}
