package steam

import "fmt"

const (
	cdnBaseURL  = "https://cdn.cloudflare.steamstatic.com/steam/apps"
	iconBaseURL = "https://media.steampowered.com/steamcommunity/public/images/apps"

	// PlaceholderRef is the terminal reference of the artwork fallback
	// chain, shown when neither the cover, the header nor the icon loads.
	PlaceholderRef = "https://store.cloudflare.steamstatic.com/public/images/v6/app_image_unavailable.jpg"
)

// CoverRef returns the preferred high-resolution portrait artwork reference.
func CoverRef(appID int) string {
	return fmt.Sprintf("%s/%d/library_600x900.jpg", cdnBaseURL, appID)
}

// HeaderRef returns the landscape header artwork reference.
func HeaderRef(appID int) string {
	return fmt.Sprintf("%s/%d/header.jpg", cdnBaseURL, appID)
}

// IconURL returns the community icon reference for the given icon hash, or
// the empty string when the listing carried no hash.
func IconURL(appID int, iconHash string) string {
	if iconHash == "" {
		return ""
	}
	return fmt.Sprintf("%s/%d/%s.jpg", iconBaseURL, appID, iconHash)
}

// NextImageRef advances the artwork fallback chain after a load failure:
// cover, then header, then icon (when one exists), then the placeholder.
// The chain never revisits an earlier reference and the placeholder is a
// fixed point.
func NextImageRef(current, iconRef string, appID int) string {
	switch current {
	case CoverRef(appID):
		return HeaderRef(appID)
	case HeaderRef(appID):
		if iconRef != "" {
			return iconRef
		}
		return PlaceholderRef
	default:
		return PlaceholderRef
	}
}
