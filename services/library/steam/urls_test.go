package steam

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoverAndHeaderRefs(t *testing.T) {
	assert.Equal(t, "https://cdn.cloudflare.steamstatic.com/steam/apps/400/library_600x900.jpg", CoverRef(400))
	assert.Equal(t, "https://cdn.cloudflare.steamstatic.com/steam/apps/400/header.jpg", HeaderRef(400))
}

func TestIconURL(t *testing.T) {
	assert.Equal(t, "https://media.steampowered.com/steamcommunity/public/images/apps/400/abc123.jpg", IconURL(400, "abc123"))
	assert.Empty(t, IconURL(400, ""))
}

func TestNextImageRef_WithIcon(t *testing.T) {
	icon := IconURL(400, "abc123")

	next := NextImageRef(CoverRef(400), icon, 400)
	assert.Equal(t, HeaderRef(400), next)

	next = NextImageRef(next, icon, 400)
	assert.Equal(t, icon, next)

	next = NextImageRef(next, icon, 400)
	assert.Equal(t, PlaceholderRef, next)
}

func TestNextImageRef_WithoutIcon(t *testing.T) {
	next := NextImageRef(CoverRef(400), "", 400)
	assert.Equal(t, HeaderRef(400), next)

	next = NextImageRef(next, "", 400)
	assert.Equal(t, PlaceholderRef, next)
}

func TestNextImageRef_PlaceholderIsFixedPoint(t *testing.T) {
	icon := IconURL(400, "abc123")

	ref := PlaceholderRef
	for i := 0; i < 3; i++ {
		ref = NextImageRef(ref, icon, 400)
		assert.Equal(t, PlaceholderRef, ref)
	}
}

func TestNextImageRef_UnknownRefFallsToPlaceholder(t *testing.T) {
	assert.Equal(t, PlaceholderRef, NextImageRef("https://example.com/something.jpg", "", 400))
}

func TestFormatPlaytime(t *testing.T) {
	assert.Equal(t, "Not played", FormatPlaytime(0))
	assert.Equal(t, "1.5 hours", FormatPlaytime(90))
	assert.Equal(t, "1.0 hours", FormatPlaytime(61))
	assert.Equal(t, "0.5 hours", FormatPlaytime(30))
	assert.Equal(t, "10.5 hours", FormatPlaytime(630))
}
