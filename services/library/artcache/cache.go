package artcache

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	xdraw "golang.org/x/image/draw"
)

// Cover dimensions matching the Steam portrait artwork
const (
	coverWidth  = 600
	coverHeight = 900
)

var cacheFilePattern = regexp.MustCompile(`^\d+\.jpg$`)

// Cache maps app ids to locally stored cover images, downloading on miss.
// Download failures are ordinary outcomes reported as false, never errors.
type Cache struct {
	dir    string
	client *http.Client
	logger *slog.Logger
}

// New creates an image cache rooted at dir, creating it if needed
func New(dir string, logger *slog.Logger) (*Cache, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create art cache directory: %w", err)
	}

	return &Cache{
		dir:    dir,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}, nil
}

// Dir returns the cache directory
func (c *Cache) Dir() string {
	return c.dir
}

// LocalPath returns the deterministic on-disk path for an app's cover
func (c *Cache) LocalPath(appID int) string {
	return filepath.Join(c.dir, strconv.Itoa(appID)+".jpg")
}

// Exists reports whether a cover is already materialized on disk. Presence
// means cached regardless of content validity.
func (c *Cache) Exists(appID int) bool {
	_, err := os.Stat(c.LocalPath(appID))
	return err == nil
}

// Download fetches ref and stores it at LocalPath(appID). The response status
// is inspected before the body is read: any non-OK status leaves no file
// behind and returns false without raising an error, since a 404 for missing
// artwork is an expected outcome. Decodable images are normalized to the
// cover size before caching.
func (c *Cache) Download(ctx context.Context, appID int, ref string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		c.logger.Warn("failed to create art request", "appID", appID, "error", err)
		return false
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("art download failed", "appID", appID, "error", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("art not available", "appID", appID, "status", resp.StatusCode)
		return false
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Warn("failed to read art data", "appID", appID, "error", err)
		return false
	}

	if normalized, err := normalizeCover(data); err == nil {
		data = normalized
	}

	if err := os.WriteFile(c.LocalPath(appID), data, 0644); err != nil {
		c.logger.Warn("failed to write art cache", "appID", appID, "error", err)
		return false
	}

	return true
}

// ClearAll deletes every cached cover matching the cache naming pattern,
// skipping files that fail to delete, and returns the number removed.
func (c *Cache) ClearAll() int {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		c.logger.Warn("failed to read art cache directory", "error", err)
		return 0
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !cacheFilePattern.MatchString(entry.Name()) {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, entry.Name())); err != nil {
			c.logger.Warn("failed to remove cached art", "file", entry.Name(), "error", err)
			continue
		}
		removed++
	}

	return removed
}

// normalizeCover re-encodes decodable artwork at the fixed cover size,
// scaled to cover and center-cropped
func normalizeCover(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	bounds := src.Bounds()
	if bounds.Dx() == coverWidth && bounds.Dy() == coverHeight {
		return data, nil
	}

	canvas := scaleToCover(src, coverWidth, coverHeight)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// scaleToCover scales the image to completely cover the target dimensions,
// maintaining aspect ratio, then center-crops the excess
func scaleToCover(src image.Image, targetWidth, targetHeight int) image.Image {
	srcBounds := src.Bounds()
	srcWidth := srcBounds.Dx()
	srcHeight := srcBounds.Dy()

	scaleX := float64(targetWidth) / float64(srcWidth)
	scaleY := float64(targetHeight) / float64(srcHeight)

	scale := scaleX
	if scaleY > scaleX {
		scale = scaleY
	}

	newWidth := int(float64(srcWidth) * scale)
	newHeight := int(float64(srcHeight) * scale)

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, srcBounds, draw.Src, nil)

	if newWidth > targetWidth || newHeight > targetHeight {
		x := (newWidth - targetWidth) / 2
		y := (newHeight - targetHeight) / 2
		cropped := image.NewRGBA(image.Rect(0, 0, targetWidth, targetHeight))
		draw.Draw(cropped, cropped.Bounds(), dst, image.Point{X: x, Y: y}, draw.Src)
		return cropped
	}

	return dst
}
