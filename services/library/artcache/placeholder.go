package artcache

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"os"
	"path/filepath"
)

const placeholderFile = "placeholder.jpg"

// PlaceholderPath returns the path of the locally rendered placeholder tile,
// generating it on first use. The tile is drawn rather than downloaded so a
// fully offline session still has something to show for unresolved artwork.
func (c *Cache) PlaceholderPath() (string, error) {
	path := filepath.Join(c.dir, placeholderFile)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	data, err := renderPlaceholder()
	if err != nil {
		return "", fmt.Errorf("failed to render placeholder: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write placeholder: %w", err)
	}

	return path, nil
}

// renderPlaceholder draws the cover-sized tile: a dark field with a lighter
// centered band where a UI can overlay the game name
func renderPlaceholder() ([]byte, error) {
	canvas := image.NewRGBA(image.Rect(0, 0, coverWidth, coverHeight))

	background := color.RGBA{R: 27, G: 38, B: 54, A: 255}
	band := color.RGBA{R: 44, G: 62, B: 86, A: 255}

	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	bandHeight := coverHeight / 6
	bandTop := (coverHeight - bandHeight) / 2
	bandRect := image.Rect(0, bandTop, coverWidth, bandTop+bandHeight)
	draw.Draw(canvas, bandRect, image.NewUniform(band), image.Point{}, draw.Src)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
