package models

// Game represents one entry in the owned-games library.
//
// DisplayRef is the image reference currently shown for the game. It starts
// empty, is set by image materialization, and advances through the artwork
// fallback chain when the renderer reports a load failure. It is persisted so
// a failed reference is not retried on the next run.
type Game struct {
	AppID           int    `json:"id"`
	Name            string `json:"name"`
	PlaytimeLabel   string `json:"playtimeLabel"`
	PrimaryImageRef string `json:"primaryImageRef"`
	IconRef         string `json:"iconRef"`
	DisplayRef      string `json:"displayRef"`
	Description     string `json:"description"`
	Installed       bool   `json:"installed,omitempty"`
	InstallPath     string `json:"installPath,omitempty"`
}

// Credentials holds the Steam Web API inputs required for a library sync.
// Both values are opaque strings supplied by configuration; they are only
// checked for presence, never for format.
type Credentials struct {
	APIKey  string
	SteamID string
}

// Valid reports whether both credential values are present.
func (c Credentials) Valid() bool {
	return c.APIKey != "" && c.SteamID != ""
}
