// Command ayah serves the Daily Ayah web app and runs its data pipeline
// from the command line.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/dailyayah/dailyayah/internal/config"
	"github.com/dailyayah/dailyayah/internal/logging"
	"github.com/dailyayah/dailyayah/internal/mail"
	"github.com/dailyayah/dailyayah/internal/sqlite"
	"github.com/dailyayah/dailyayah/internal/store"
	"github.com/dailyayah/dailyayah/internal/web"
)

const version = "1.0.0"

// CLI defines the command-line interface for ayah.
var CLI struct {
	Config string `help:"Path to TOML config file" type:"path"`

	Serve   ServeCmd   `cmd:"" help:"Load the corpus and start the web server"`
	Rebuild RebuildCmd `cmd:"" help:"Force a from-source rebuild of the unified data snapshot"`
	Audit   AuditCmd   `cmd:"" help:"Print the data integrity report as JSON"`
	Search  SearchCmd  `cmd:"" help:"Search verses from the command line"`
	Notify  NotifyCmd  `cmd:"" help:"Send the verse of the day to subscribers (for cron)"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// loadConfig reads the config file named by --config (or the defaults) and
// initializes logging from it.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return cfg, err
	}
	format := logging.FormatJSON
	if cfg.Log.Format == "text" {
		format = logging.FormatText
	}
	logging.InitLogger(logging.ParseLevel(cfg.Log.Level), format)
	return cfg, nil
}

func newStore(cfg config.Config) *store.Store {
	return store.New(store.Config{
		Sources:      cfg.Data.Sources(),
		CachePath:    cfg.Cache.File,
		CacheEnabled: cfg.Cache.Enabled,
	})
}

// ServeCmd starts the web server.
type ServeCmd struct {
	Port      int    `help:"HTTP server port (overrides config)"`
	DataDir   string `help:"Directory containing the source datasets" type:"path"`
	CacheFile string `help:"Unified data snapshot path" type:"path"`
	NoCache   bool   `help:"Rebuild from source, ignoring the snapshot"`
	Watch     bool   `help:"Reload automatically when source files change"`
}

func (c *ServeCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}
	if c.DataDir != "" {
		cfg.Data.Dir = c.DataDir
	}
	if c.CacheFile != "" {
		cfg.Cache.File = c.CacheFile
	}
	if c.NoCache {
		cfg.Cache.Enabled = false
	}
	if c.Watch {
		cfg.Watch.Enabled = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st := newStore(cfg)
	if err := st.Load(ctx, false); err != nil {
		return fmt.Errorf("failed to load corpus: %w", err)
	}

	var (
		registry *mail.Registry
		sender   *mail.Sender
	)
	if cfg.Mail.Enabled {
		registry, err = mail.OpenRegistry(cfg.Mail.DB)
		if err != nil {
			return err
		}
		defer registry.Close()
		sender = mail.NewSender(mail.SenderConfig{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			Sender:   cfg.Mail.Sender,
			BaseURL:  cfg.Mail.BaseURL,
		})

		hour, minute, err := cfg.Mail.DailyAt()
		if err != nil {
			return err
		}
		sched := mail.NewScheduler(registry, sender, st, hour, minute, time.Weekday(cfg.Mail.WeeklyDay))
		go sched.Run(ctx)
	}

	if cfg.Watch.Enabled {
		debounce := time.Duration(cfg.Watch.DebounceSeconds) * time.Second
		go func() {
			if err := st.Watch(ctx, debounce); err != nil {
				logging.Error("source watcher failed", "error", err)
			}
		}()
	}

	srv, err := web.New(web.Config{
		Port:       cfg.Server.Port,
		AdminToken: cfg.Server.AdminToken,
		BaseURL:    cfg.Mail.BaseURL,
		Version:    version,
	}, st, registry, sender)
	if err != nil {
		return err
	}
	return srv.Start(ctx)
}

// RebuildCmd forces a from-source rebuild.
type RebuildCmd struct{}

func (c *RebuildCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st := newStore(cfg)
	start := time.Now()
	if err := st.Load(context.Background(), true); err != nil {
		return fmt.Errorf("rebuild failed: %w", err)
	}
	fmt.Printf("rebuilt %d verses in %s (hash %s)\n", st.Len(), time.Since(start).Round(time.Millisecond), st.DataHash())
	return nil
}

// AuditCmd prints the integrity report.
type AuditCmd struct{}

func (c *AuditCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st := newStore(cfg)
	if err := st.Load(context.Background(), false); err != nil {
		return fmt.Errorf("failed to load corpus: %w", err)
	}

	report := st.Audit()
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return err
	}
	if report.Err != "" {
		return fmt.Errorf("audit failed: %s", report.Err)
	}
	return nil
}

// SearchCmd runs a search from the command line.
type SearchCmd struct {
	Query string `arg:"" help:"Search text or verse reference (e.g. 2:255, 2:1-10)"`
	Limit int    `help:"Maximum number of results" default:"20"`
}

func (c *SearchCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st := newStore(cfg)
	if err := st.Load(context.Background(), false); err != nil {
		return fmt.Errorf("failed to load corpus: %w", err)
	}

	results := st.Search(c.Query, c.Limit)
	if len(results) == 0 {
		fmt.Println("no results")
		return nil
	}
	for _, res := range results {
		fmt.Printf("%s (score %.2f)\n  %s\n", res.VerseKey, res.Score, res.Translation)
	}
	return nil
}

// NotifyCmd sends one batch of verse emails.
type NotifyCmd struct {
	Frequency string `help:"Subscriber frequency to notify" enum:"daily,weekly" default:"daily"`
}

func (c *NotifyCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.Mail.Enabled {
		return fmt.Errorf("mail is not enabled in the configuration")
	}

	st := newStore(cfg)
	if err := st.Load(context.Background(), false); err != nil {
		return fmt.Errorf("failed to load corpus: %w", err)
	}

	registry, err := mail.OpenRegistry(cfg.Mail.DB)
	if err != nil {
		return err
	}
	defer registry.Close()

	sender := mail.NewSender(mail.SenderConfig{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		Sender:   cfg.Mail.Sender,
		BaseURL:  cfg.Mail.BaseURL,
	})

	hour, minute, err := cfg.Mail.DailyAt()
	if err != nil {
		return err
	}
	sched := mail.NewScheduler(registry, sender, st, hour, minute, time.Weekday(cfg.Mail.WeeklyDay))
	stats, err := sched.Deliver(c.Frequency)
	if err != nil {
		return err
	}
	fmt.Printf("%s delivery: %d sent, %d failed\n", c.Frequency, stats.Sent, stats.Failed)
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("ayah version %s (sqlite driver: %s %q)\n", version, sqlite.DriverType(), sqlite.DriverName())
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("ayah"),
		kong.Description("Daily Ayah - Quran verse of the day server"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	err := ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}
