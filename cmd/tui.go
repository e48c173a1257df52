package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/adityjk/news-terminal/internal/config"
	"github.com/adityjk/news-terminal/internal/logging"
	"github.com/adityjk/news-terminal/internal/news"
	"github.com/adityjk/news-terminal/internal/pipeline"
	"github.com/adityjk/news-terminal/internal/tui"
	"github.com/spf13/cobra"
)

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := logging.Init(config.LogPath(), cfg.LogLevel); err != nil {
		return fmt.Errorf("starting log: %w", err)
	}
	defer logging.Close()

	category := cfg.StartCategory()
	if flagCategory != "" {
		if category, err = news.ParseCategory(flagCategory); err != nil {
			return err
		}
	}

	interval := cfg.RefreshDuration()
	if flagInterval != "" {
		if interval, err = parseSince(flagInterval); err != nil || interval <= 0 {
			return fmt.Errorf("invalid --interval value %q", flagInterval)
		}
	}

	if err := ensureAPIKey(cfg, cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
		return err
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Info("starting ui", "provider", cfg.Provider, "category", category, "interval", interval)
	return tui.Run(ctx, tui.RunOpts{
		Pipeline: a.pipeline,
		Session:  pipeline.NewSession(category),
		Interval: interval,
	})
}
