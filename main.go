package main

import (
	"embed"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	wailswindows "github.com/wailsapp/wails/v2/pkg/options/windows"
	"go.uber.org/zap"

	"stealth-overlay/internal/config"
	"stealth-overlay/internal/logger"
	"stealth-overlay/internal/overlay"
)

//go:embed all:frontend/dist
var assets embed.FS

var rootCmd = &cobra.Command{
	Use:           "stealth-overlay",
	Short:         "Always-on-top overlay hidden from screen capture",
	Long:          "Runs a topmost, click-through overlay window that stays visible locally while being excluded from screen capture, window switchers and peek previews. The overlay is toggled with a global hotkey.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().String("config", "", "Path to config file (default ~/.stealth-overlay/config.yaml)")
	rootCmd.Flags().Bool("debug", false, "Debug logging and show the overlay on startup")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// effectiveConfig applies command-line overrides to a copy of the stored
// configuration. The stored one is left alone so reloads from disk stay
// consistent with the file.
func effectiveConfig(svc *config.Service, debug bool) config.Config {
	cfg := svc.Get()
	if debug {
		cfg.Debug = true
	}
	return cfg
}

func run(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")

	configSvc, err := config.New(configPath)
	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}
	cfg := effectiveConfig(configSvc, debug)

	log, err := logger.New(cfg.LogLevel, cfg.Debug)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	opts, err := cfg.OverlayOptions()
	if err != nil {
		return err
	}
	controller, err := overlay.NewController(opts, log.Named("overlay"))
	if err != nil {
		return fmt.Errorf("failed to initialize overlay: %w", err)
	}

	app := NewApp(configSvc, controller, log)

	log.Info("starting overlay",
		zap.String("config", configSvc.Path()),
		zap.String("title", cfg.WindowTitle),
		zap.String("hotkey", opts.Binding.String()),
		zap.Bool("hotkey_enabled", opts.HotkeyEnabled))

	err = wails.Run(&options.App{
		Title:  cfg.WindowTitle,
		Width:  cfg.Overlay.Width,
		Height: cfg.Overlay.Height,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		Frameless:        true,
		AlwaysOnTop:      true,
		BackgroundColour: &options.RGBA{R: 0, G: 0, B: 0, A: 0},
		Windows: &wailswindows.Options{
			WebviewIsTransparent: true,
			WindowIsTranslucent:  true,
		},
		Logger:     logger.NewWails(log),
		LogLevel:   logger.Level(log),
		OnStartup:  app.OnStartup,
		OnDomReady: app.OnDomReady,
		OnShutdown: app.OnShutdown,
		Bind:       []interface{}{app},
	})
	if err != nil {
		return fmt.Errorf("error starting application: %w", err)
	}
	return nil
}
