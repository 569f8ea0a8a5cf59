package apppaths

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

var Storage = filepath.Join(xdg.DataHome, "steamshelf")
var ArtCache = filepath.Join(Storage, "art")
var MetadataFile = filepath.Join(Storage, "library.json")
var ConfigFile = filepath.Join(xdg.ConfigHome, "steamshelf", "config.toml")
