// Package imageio decodes and validates incoming food photos.
package imageio

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/chai2010/webp"
	_ "golang.org/x/image/webp"
)

// MaxUploadBytes caps accepted image payloads at 8 MiB.
const MaxUploadBytes = 8 * 1024 * 1024

var supportedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// ValidateInput checks the declared content type and payload size. Both
// failures are fatal input errors for the request.
func ValidateInput(contentType string, size int) error {
	if !supportedTypes[contentType] {
		return fmt.Errorf("unsupported image type: %s (supported: JPEG, PNG, WebP)", contentType)
	}
	if size > MaxUploadBytes {
		return fmt.Errorf("image too large: %d bytes (max: %d)", size, MaxUploadBytes)
	}
	return nil
}

// Decode decodes an image from raw bytes with a WebP fallback for data the
// registered decoders reject.
func Decode(data []byte) (image.Image, error) {
	if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	return nil, fmt.Errorf("image: unknown or unsupported format")
}

// ReadSource reads image bytes from a file path or an http(s) URL and
// returns them with a sniffed content type.
func ReadSource(source string) ([]byte, string, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return readURL(source)
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image file: %w", err)
	}
	return data, sniffType(data), nil
}

func readURL(imageURL string) ([]byte, string, error) {
	parsed, err := url.Parse(imageURL)
	if err != nil {
		return nil, "", fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, "", fmt.Errorf("unsupported URL scheme: %s", parsed.Scheme)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	req, err := http.NewRequest(http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Food-Analyzer/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("failed to download image: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxUploadBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image data: %w", err)
	}

	ct := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "image/") {
		ct = sniffType(data)
	}
	return data, ct, nil
}

// sniffType detects the content type from the payload itself, ignoring
// whatever the source claimed.
func sniffType(data []byte) string {
	return http.DetectContentType(data)
}
