package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/voizylabs/voizy/internal/analytics"
	"github.com/voizylabs/voizy/internal/config"
	"github.com/voizylabs/voizy/internal/debuglog"
	"github.com/voizylabs/voizy/internal/engine"
	"github.com/voizylabs/voizy/internal/importer"
	"github.com/voizylabs/voizy/internal/library"
	"github.com/voizylabs/voizy/internal/localfile"
	"github.com/voizylabs/voizy/internal/playback"
	"github.com/voizylabs/voizy/internal/remote"
	"github.com/voizylabs/voizy/internal/tui"
)

// Version is set at build time.
var Version = "dev"

var (
	configPath string
	dbPath     string
	quiet      bool
)

func main() {
	root := &cobra.Command{
		Use:   "voizy",
		Short: "A searchable library for your voice recordings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI()
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to configuration file")
	root.PersistentFlags().StringVar(&dbPath, "db", "", "path to database file (overrides config)")
	root.Flags().BoolVar(&quiet, "quiet", false, "skip startup banner")

	root.AddCommand(importCmd(), generateConfigCmd(), versionCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}

	if err := debuglog.Setup(debuglog.ParseLevel(cfg.Log.Level), cfg.Log.Path); err != nil {
		return nil, fmt.Errorf("setting up logging: %w", err)
	}
	return cfg, nil
}

func openCollection(cfg *config.Config) (*library.LocalCollection, error) {
	return library.NewLocalCollection(cfg.Database.Path, cfg.Database.SearchIndex)
}

func buildEngine(cfg *config.Config) (*engine.Engine, error) {
	collection, err := openCollection(cfg)
	if err != nil {
		return nil, fmt.Errorf("opening library: %w", err)
	}

	storage, err := remote.NewDirStorage(cfg.Storage.Dir)
	if err != nil {
		collection.Close()
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	files, err := localfile.NewManager(cfg.Storage.TempDir)
	if err != nil {
		collection.Close()
		return nil, fmt.Errorf("opening temp dir: %w", err)
	}

	return engine.New(engine.Options{
		Collection: collection,
		Storage:    storage,
		Player:     playback.NewBeepPlayer(cfg.Playback.HTTPTimeout),
		Files:      files,
		Sink:       analytics.NewLogSink(),
		Debounce:   cfg.Paging.Debounce,
	})
}

func runTUI() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer debuglog.Close()

	if !quiet {
		showBanner()
	}
	if !playback.AudioAvailable {
		fmt.Fprintln(os.Stderr, "note: built without audio support, playback is disabled")
	}

	eng, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	app := tui.NewApp(eng, cfg)
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}
	return nil
}

func importCmd() *cobra.Command {
	var curated bool

	cmd := &cobra.Command{
		Use:   "import [feed-url...]",
		Short: "Import episodes from podcast RSS feeds",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			defer debuglog.Close()

			var urls []string
			if curated {
				feeds, err := importer.CuratedFeeds()
				if err != nil {
					return err
				}
				for _, f := range feeds {
					urls = append(urls, f.URL)
				}
			}
			urls = append(urls, args...)
			if len(urls) == 0 {
				return fmt.Errorf("nothing to import: pass feed URLs or --curated")
			}

			collection, err := openCollection(cfg)
			if err != nil {
				return fmt.Errorf("opening library: %w", err)
			}
			defer collection.Close()

			imp := importer.New(
				importer.WithUserAgent(cfg.Importer.UserAgent),
				importer.WithHTTPClient(&http.Client{Timeout: cfg.Importer.HTTPTimeout}),
			)
			total := 0
			for _, url := range urls {
				n, err := imp.ImportFeed(cmd.Context(), url, collection)
				if err != nil {
					fmt.Fprintf(os.Stderr, "skipping %s: %v\n", url, err)
					continue
				}
				fmt.Printf("%s: %d new\n", url, n)
				total += n
			}
			fmt.Printf("imported %d voizys\n", total)
			return nil
		},
	}
	cmd.Flags().BoolVar(&curated, "curated", false, "import the built-in starter feeds")
	return cmd
}

func generateConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate-config",
		Short: "Write the default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath
			if path == "" {
				home, err := os.UserHomeDir()
				if err != nil {
					log.Fatalf("resolving home directory: %v", err)
				}
				path = filepath.Join(home, ".config", "voizy", "config.toml")
			}
			if err := config.GenerateDefaultConfig(path); err != nil {
				return err
			}
			fmt.Printf("Generated default configuration at: %s\n", path)
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("voizy %s\n", Version)
			fmt.Println("Audio recording library")
			fmt.Println("github.com/voizylabs/voizy")
		},
	}
}

func showBanner() {
	var coloredLines []string
	for _, line := range tui.LogoLines {
		coloredLines = append(coloredLines, tui.LogoStyle.Render(line))
	}
	coloredLines = append(coloredLines, "",
		lipgloss.NewStyle().Foreground(tui.AccentColor).Render("    Your voice, searchable"))

	banner := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(tui.PrimaryColor).
		Padding(1, 3).
		MarginTop(1).
		Render(lipgloss.JoinVertical(lipgloss.Center, coloredLines...))

	fmt.Println(lipgloss.NewStyle().
		Width(60).
		Align(lipgloss.Center).
		MarginBottom(1).
		Render(banner))
}
