package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/xonecas/composer/internal/config"
	"github.com/xonecas/composer/internal/sanitize"
	"github.com/xonecas/composer/internal/tui"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	contentPath := flag.String("content", "", "HTML file to seed the document from")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "composer: %v\n", err)
		os.Exit(1)
	}

	// Logs go to a file: stderr belongs to the terminal UI.
	closeLog, err := setupLogging(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "composer: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	m := tui.New(cfg, nil)

	if *contentPath != "" {
		raw, err := os.ReadFile(*contentPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "composer: %v\n", err)
			os.Exit(1)
		}
		if err := m.SetContentHTML(sanitize.HTML(string(raw))); err != nil {
			fmt.Fprintf(os.Stderr, "composer: %v\n", err)
			os.Exit(1)
		}
	}

	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "composer: %v\n", err)
		os.Exit(1)
	}
}

func setupLogging(cfg *config.Config) (func(), error) {
	dir, err := config.EnsureDataDir()
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(filepath.Join(dir, "composer.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, err
	}

	level, err := zerolog.ParseLevel(cfg.LogLevelOrDefault())
	if err != nil {
		level = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(f).With().Timestamp().Logger()

	return func() { f.Close() }, nil
}
