package imaging

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"
)

// DownloadTimeout bounds remote image fetches.
const DownloadTimeout = 5 * time.Second

// AllowedExtensions lists the accepted upload file extensions,
// lowercase with leading dot.
var AllowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// Resolve produces normalized image bytes from either an uploaded file
// or a remote URL. An uploaded file takes precedence; with neither
// present it returns (nil, nil). A file with a disallowed extension is
// treated the same as no file. Download and normalization failures are
// returned for the caller to degrade to "no image".
func Resolve(ctx context.Context, file multipart.File, header *multipart.FileHeader, rawURL string) ([]byte, error) {
	if file != nil && header != nil && header.Size > 0 {
		ext := strings.ToLower(filepath.Ext(header.Filename))
		if !AllowedExtensions[ext] {
			return nil, nil
		}
		data, err := io.ReadAll(file)
		if err != nil {
			return nil, fmt.Errorf("reading uploaded file: %w", err)
		}
		return Normalize(data)
	}

	if rawURL = strings.TrimSpace(rawURL); rawURL != "" {
		data, err := download(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		return Normalize(data)
	}

	return nil, nil
}

// download fetches raw bytes from a URL with a bounded timeout.
func download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building image request: %w", err)
	}

	client := &http.Client{Timeout: DownloadTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("downloading image: unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading downloaded image: %w", err)
	}
	return data, nil
}
