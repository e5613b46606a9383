package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"autoblogger/internal/ports"
)

const downloadTimeout = 60 * time.Second

var extensionExpr = regexp.MustCompile(`\.[a-zA-Z0-9]{3,4}$`)

// Sideloader downloads remote images into a local media directory and hands
// out asset ids. It stands in for the CMS media library.
type Sideloader struct {
	dir        string
	publicBase string
	httpClient *http.Client
}

var _ ports.ImageSideloader = (*Sideloader)(nil)

// NewSideloader stores files under dir and serves them below publicBase.
func NewSideloader(dir, publicBase string) *Sideloader {
	return &Sideloader{
		dir:        dir,
		publicBase: strings.TrimSuffix(publicBase, "/"),
		httpClient: &http.Client{Timeout: downloadTimeout},
	}
}

// SideloadImage fetches the URL into the media directory, named by a fresh
// asset id. Query strings are stripped from the source filename and a
// missing extension defaults to .jpg, since stock APIs often serve bare
// URLs.
func (s *Sideloader) SideloadImage(ctx context.Context, rawURL, ownerID, description string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image source returned %s", resp.Status)
	}

	assetID := uuid.NewString()
	filename := assetID + extensionOf(rawURL)

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}

	dest := filepath.Join(s.dir, filename)
	file, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("create media file: %w", err)
	}

	if _, err := io.Copy(file, resp.Body); err != nil {
		file.Close()
		os.Remove(dest)
		return "", fmt.Errorf("write media file: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("close media file: %w", err)
	}

	return filename, nil
}

// AssetURL maps an asset id to its public URL.
func (s *Sideloader) AssetURL(assetID string) string {
	return s.publicBase + "/" + assetID
}

func extensionOf(rawURL string) string {
	base, _, _ := strings.Cut(path.Base(rawURL), "?")
	if ext := extensionExpr.FindString(base); ext != "" {
		return strings.ToLower(ext)
	}
	return ".jpg"
}
