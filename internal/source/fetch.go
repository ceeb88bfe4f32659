package source

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"cw-installer/internal/logger"
)

// ErrDigestMismatch is returned when a downloaded archive does not hash to the expected digest.
var ErrDigestMismatch = errors.New("sha256 digest mismatch")

// Fetched is a downloaded and extracted archive living in a temporary area.
type Fetched struct {
	Archive string // path of the downloaded file
	Dir     string // extraction directory
	SHA256  string // digest of the downloaded bytes
	Cleanup func() // removes the whole temporary area
}

// HTTPFetcher downloads archives over HTTP(S).
type HTTPFetcher struct {
	Client  *http.Client
	TempDir string // parent of the temporary area; empty uses os.TempDir()
}

// Fetch streams url into a temp file, verifies digest when non-empty and extracts it.
// On any error the temporary area is already removed.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL, digest string) (*Fetched, error) {
	area, err := os.MkdirTemp(f.TempDir, "cw-installer-")
	if err != nil {
		return nil, fmt.Errorf("create temp area: %w", err)
	}
	cleanup := func() {
		if err := os.RemoveAll(area); err != nil {
			logger.Warn("[WARN] Failed to remove temporary directory %s: %v\n", area, err)
		}
	}

	fetched, err := f.fetchInto(ctx, area, rawURL, digest)
	if err != nil {
		cleanup()
		return nil, err
	}
	fetched.Cleanup = cleanup
	return fetched, nil
}

func (f *HTTPFetcher) fetchInto(ctx context.Context, area, rawURL, digest string) (*Fetched, error) {
	archive := filepath.Join(area, archiveName(rawURL))
	sum, err := f.download(ctx, rawURL, archive)
	if err != nil {
		return nil, err
	}
	logger.Debug("[DEBUG] Downloaded %s (sha256 %s)\n", archive, sum)

	if digest != "" && sum != digest {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrDigestMismatch, digest, sum)
	}

	dest := filepath.Join(area, "src")
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return nil, fmt.Errorf("create extraction directory: %w", err)
	}
	if _, err := ExtractArchive(archive, dest); err != nil {
		return nil, fmt.Errorf("extract %s: %w", filepath.Base(archive), err)
	}
	return &Fetched{Archive: archive, Dir: dest, SHA256: sum}, nil
}

// download copies the response body into dst and returns its hex sha256.
func (f *HTTPFetcher) download(ctx context.Context, rawURL, dst string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request for %s: %w", rawURL, err)
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to GET %s: %w", rawURL, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logger.Warn("[WARN] Failed to close HTTP response body: %v\n", cerr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download %s failed: HTTP status %d", rawURL, resp.StatusCode)
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to create file %s: %w", dst, err)
	}
	h := sha256.New()
	if _, err := io.Copy(io.MultiWriter(out, h), resp.Body); err != nil {
		_ = out.Close()
		return "", fmt.Errorf("failed to write response to file: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", dst, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// archiveName derives a local file name from the URL path, keeping the archive extension
// so ExtractArchive can pick a format.
func archiveName(rawURL string) string {
	name := ""
	if u, err := url.Parse(rawURL); err == nil {
		name = path.Base(u.Path)
	}
	if name == "" || name == "." || name == "/" {
		name = "source-archive"
	}
	return name
}
