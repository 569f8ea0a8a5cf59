package main

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/rhythmerc/steamshelf/services/config"
	"github.com/rhythmerc/steamshelf/services/library"
	"github.com/rhythmerc/steamshelf/services/library/artcache"
	"github.com/rhythmerc/steamshelf/services/library/events"
	"github.com/rhythmerc/steamshelf/services/library/launcher"
	"github.com/rhythmerc/steamshelf/services/library/models"
	"github.com/rhythmerc/steamshelf/services/library/search"
	"github.com/rhythmerc/steamshelf/services/library/steam"
	"github.com/rhythmerc/steamshelf/services/library/store"
)

// Execute runs the CLI.
func Execute(logger *slog.Logger) error {
	root := &cobra.Command{
		Use:           "steamshelf",
		Short:         "Browse and cache a personal Steam game library",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newSyncCommand(logger),
		newListCommand(logger),
		newSearchCommand(logger),
		newDescribeCommand(logger),
		newLaunchCommand(logger),
		newResetCommand(logger),
		newConfigCommand(logger),
	)

	return root.Execute()
}

// app bundles the wired services for one command invocation
type app struct {
	cfg     *config.Manager
	service *library.Service
	logger  *slog.Logger
}

// buildApp wires config, store, image cache and the library service
func buildApp(logger *slog.Logger) (*app, error) {
	cfg, err := config.NewManager(config.DefaultConfigPath())
	if err != nil {
		return nil, err
	}

	images, err := artcache.New(cfg.ArtCacheDir(), logger)
	if err != nil {
		return nil, err
	}

	st := store.New(cfg.MetadataPath(), logger)
	client := steam.NewClient(logger)
	bus := events.NewBus(logger)

	return &app{
		cfg:     cfg,
		service: library.NewService(client, st, images, bus, logger),
		logger:  logger,
	}, nil
}

// credentials resolves the API key and account id: environment wins over the
// config file, and a .env in the working directory is loaded first.
func (a *app) credentials() models.Credentials {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			a.logger.Warn("failed to load .env file", "error", err)
		}
	}

	cfg := a.cfg.Get()
	creds := models.Credentials{
		APIKey:  cfg.Steam.APIKey,
		SteamID: cfg.Steam.SteamID,
	}
	if v := os.Getenv("STEAM_API_KEY"); v != "" {
		creds.APIKey = v
	}
	if v := os.Getenv("STEAM_ID"); v != "" {
		creds.SteamID = v
	}
	return creds
}

func newSyncCommand(logger *slog.Logger) *cobra.Command {
	var skipInstalled bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch the owned-games listing and refresh the local cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(logger)
			if err != nil {
				return err
			}

			added, err := a.service.Sync(cmd.Context(), a.credentials())
			if err != nil {
				return err
			}

			if !skipInstalled {
				a.markInstalled()
			}

			a.service.Wait()
			cmd.Printf("Sync complete: %d new game(s)\n", added)
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipInstalled, "skip-installed", false, "skip scanning the local Steam install")
	return cmd
}

// markInstalled scans the local Steam install, when one can be found, and
// flags owned games that are installed. Best effort: a missing install is
// not an error.
func (a *app) markInstalled() {
	installPath := a.cfg.Get().Steam.InstallPath
	if installPath == "" {
		detected, err := steam.DetectSteamPath()
		if err != nil {
			a.logger.Debug("no local Steam install detected", "error", err)
			return
		}
		installPath = detected
	}

	installed, err := steam.ScanInstalled(installPath)
	if err != nil {
		a.logger.Warn("failed to scan installed games", "error", err)
		return
	}

	a.service.MarkInstalled(installed)
}

func newListCommand(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the cached library sorted by name",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(logger)
			if err != nil {
				return err
			}

			games := a.service.Games()
			if len(games) == 0 {
				cmd.Println("Library is empty. Run `steamshelf sync` first.")
				return nil
			}

			printGames(cmd, games)
			return nil
		},
	}
}

func newSearchCommand(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search the cached library by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(logger)
			if err != nil {
				return err
			}

			snapshot := a.service.Snapshot()
			matches := search.Filter(snapshot, args[0])
			if matches == nil {
				printGames(cmd, a.service.Games())
				return nil
			}

			var games []models.Game
			for _, g := range snapshot {
				if _, ok := matches[g.AppID]; ok {
					games = append(games, g)
				}
			}
			sort.Slice(games, func(i, j int) bool {
				return strings.ToLower(games[i].Name) < strings.ToLower(games[j].Name)
			})

			if len(games) == 0 {
				cmd.Println("No matches.")
				return nil
			}
			printGames(cmd, games)
			return nil
		},
	}
}

func newDescribeCommand(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <appid>",
		Short: "Show a game's store description, fetching it once if needed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid app id: %s", args[0])
			}

			a, err := buildApp(logger)
			if err != nil {
				return err
			}

			game, ok := a.service.Get(appID)
			if !ok {
				return fmt.Errorf("game %d is not in the library", appID)
			}

			desc := a.service.EnsureDescription(cmd.Context(), appID)
			cmd.Printf("%s (%s)\n\n%s\n", game.Name, game.PlaytimeLabel, desc)
			return nil
		},
	}
}

func newLaunchCommand(logger *slog.Logger) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "launch <appid>",
		Short: "Launch a game through Steam",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid app id: %s", args[0])
			}

			a, err := buildApp(logger)
			if err != nil {
				return err
			}

			game, ok := a.service.Get(appID)
			if !ok {
				return fmt.Errorf("game %d is not in the library", appID)
			}

			l := launcher.New(logger)
			if err := l.Launch(appID); err != nil {
				return err
			}

			if watch && game.InstallPath != "" {
				watchGame(cmd, l, game)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "stay attached and report when the game exits")
	return cmd
}

// watchGame polls for processes under the game's install path and returns
// once the game has been gone for the stop threshold.
func watchGame(cmd *cobra.Command, l *launcher.Launcher, game models.Game) {
	const stopThreshold = 10 * time.Second

	var lastSeenRunning time.Time
	hasBeenRunning := false

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		running, err := l.IsRunning(game.InstallPath)
		if err != nil {
			continue
		}

		if running {
			if !hasBeenRunning {
				cmd.Printf("%s is running\n", game.Name)
				hasBeenRunning = true
			}
			lastSeenRunning = time.Now()
		} else if hasBeenRunning && time.Since(lastSeenRunning) > stopThreshold {
			cmd.Printf("%s has exited\n", game.Name)
			return
		}
	}
}

func newResetCommand(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear the metadata cache and every cached image",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(logger)
			if err != nil {
				return err
			}

			removed := a.service.ResetAll()
			cmd.Printf("Cache cleared: %d image(s) removed\n", removed)
			return nil
		},
	}
}

func newConfigCommand(logger *slog.Logger) *cobra.Command {
	var apiKey, steamID, installPath string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Store Steam credentials and paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewManager(config.DefaultConfigPath())
			if err != nil {
				return err
			}

			steamCfg := cfg.Get().Steam
			if apiKey != "" {
				steamCfg.APIKey = apiKey
			}
			if steamID != "" {
				steamCfg.SteamID = steamID
			}
			if installPath != "" {
				steamCfg.InstallPath = installPath
			}

			if err := cfg.SetSteam(steamCfg); err != nil {
				return err
			}
			cmd.Println("Configuration saved.")
			return nil
		},
	}

	cmd.Flags().StringVar(&apiKey, "api-key", "", "Steam Web API key")
	cmd.Flags().StringVar(&steamID, "steam-id", "", "SteamID64 of the account")
	cmd.Flags().StringVar(&installPath, "steam-dir", "", "path of the local Steam install")
	return cmd
}

// printGames renders one line per game
func printGames(cmd *cobra.Command, games []models.Game) {
	for _, g := range games {
		marker := " "
		if g.Installed {
			marker = "*"
		}
		cmd.Printf("%s %7d  %-50s %s\n", marker, g.AppID, g.Name, g.PlaytimeLabel)
	}
}
