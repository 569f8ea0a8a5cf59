package steam

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rhythmerc/steamshelf/services/library/models"
)

const (
	defaultAPIBaseURL   = "https://api.steampowered.com"
	defaultStoreBaseURL = "https://store.steampowered.com"

	// DescriptionUnavailable is returned for any description fetch that
	// fails; it is stored as-is so the fetch is not repeated.
	DescriptionUnavailable = "Details currently unavailable."
)

// Client fetches the owned-games listing and per-game store details from the
// Steam Web API. It carries no caching logic of its own.
type Client struct {
	apiBaseURL   string
	storeBaseURL string
	httpClient   *http.Client
	logger       *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURLs overrides the remote endpoints, used in tests.
func WithBaseURLs(apiBase, storeBase string) Option {
	return func(c *Client) {
		c.apiBaseURL = apiBase
		c.storeBaseURL = storeBase
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a new Steam Web API client
func NewClient(logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		apiBaseURL:   defaultAPIBaseURL,
		storeBaseURL: defaultStoreBaseURL,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		logger:       logger,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ownedGamesResponse mirrors the GetOwnedGames JSON envelope
type ownedGamesResponse struct {
	Response struct {
		GameCount int `json:"game_count"`
		Games     []struct {
			AppID           int    `json:"appid"`
			Name            string `json:"name"`
			PlaytimeForever int    `json:"playtime_forever"`
			ImgIconURL      string `json:"img_icon_url"`
		} `json:"games"`
	} `json:"response"`
}

// appDetailsEntry mirrors one entry of the storefront appdetails response
type appDetailsEntry struct {
	Success bool `json:"success"`
	Data    struct {
		ShortDescription string `json:"short_description"`
	} `json:"data"`
}

// FetchOwnedGames calls the owned-games listing endpoint once and returns the
// library entries with display fields precomputed. Any network, status or
// parse failure yields an empty slice: an empty result means "this fetch
// contributed nothing", never "the library is empty". No retries.
func (c *Client) FetchOwnedGames(ctx context.Context, creds models.Credentials) []models.Game {
	endpoint := fmt.Sprintf("%s/IPlayerService/GetOwnedGames/v1/?key=%s&steamid=%s&include_appinfo=1&format=json",
		c.apiBaseURL, url.QueryEscape(creds.APIKey), url.QueryEscape(creds.SteamID))

	body, ok := c.fetch(ctx, endpoint)
	if !ok {
		return nil
	}

	var parsed ownedGamesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		c.logger.Warn("failed to parse owned games response", "error", err)
		return nil
	}

	games := make([]models.Game, 0, len(parsed.Response.Games))
	for _, g := range parsed.Response.Games {
		if g.AppID == 0 {
			continue
		}
		games = append(games, models.Game{
			AppID:           g.AppID,
			Name:            g.Name,
			PlaytimeLabel:   FormatPlaytime(g.PlaytimeForever),
			PrimaryImageRef: CoverRef(g.AppID),
			IconRef:         IconURL(g.AppID, g.ImgIconURL),
		})
	}

	c.logger.Info("fetched owned games", "count", len(games))
	return games
}

// FetchDescription calls the storefront details endpoint for a single game
// and returns its short description with inline markup stripped. Any failure
// resolves to DescriptionUnavailable. No retries.
func (c *Client) FetchDescription(ctx context.Context, appID int) string {
	endpoint := fmt.Sprintf("%s/api/appdetails?appids=%d", c.storeBaseURL, appID)

	body, ok := c.fetch(ctx, endpoint)
	if !ok {
		return DescriptionUnavailable
	}

	var parsed map[string]appDetailsEntry
	if err := json.Unmarshal(body, &parsed); err != nil {
		c.logger.Warn("failed to parse app details response", "appID", appID, "error", err)
		return DescriptionUnavailable
	}

	entry, ok := parsed[strconv.Itoa(appID)]
	if !ok || !entry.Success {
		return DescriptionUnavailable
	}

	return cleanDescription(entry.Data.ShortDescription)
}

// fetch issues a single GET and returns the body, reporting failure for any
// transport error or non-OK status
func (c *Client) fetch(ctx context.Context, endpoint string) ([]byte, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		c.logger.Warn("failed to create request", "error", err)
		return nil, false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("remote request failed", "error", err)
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("remote request returned non-OK status", "status", resp.StatusCode)
		return nil, false
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Warn("failed to read response body", "error", err)
		return nil, false
	}

	return body, true
}

// markupReplacer strips the fixed set of inline tags the storefront embeds in
// short descriptions
var markupReplacer = strings.NewReplacer(
	"<b>", "",
	"</b>", "",
	"<br>", "\n",
)

func cleanDescription(raw string) string {
	return markupReplacer.Replace(html.UnescapeString(raw))
}

// FormatPlaytime renders total playtime minutes as display text: "Not played"
// for zero, otherwise hours rounded to one decimal.
func FormatPlaytime(minutes int) string {
	if minutes == 0 {
		return "Not played"
	}
	return fmt.Sprintf("%.1f hours", float64(minutes)/60.0)
}
