package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"eventcal/internal/config"
	"eventcal/internal/export"
	appLog "eventcal/internal/log"
	"eventcal/internal/prefs"
	"eventcal/internal/schedule"
	"eventcal/internal/store"
	"eventcal/internal/web"
)

type flagConfig struct {
	configPath string
	listen     string
	once       bool
	dump       bool
}

func main() {
	appLog.SetLevel(appLog.LevelFromString(os.Getenv("EVENTCAL_LOG_LEVEL")))
	appLog.Info("eventcal starting", "version", "0.1.0")

	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	conf.ApplyEnv()

	// CLI --listen overrides config file listen if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"refresh", conf.RefreshCron,
		"source_count", len(conf.Sources),
		"once", flags.once,
		"dump", flags.dump,
	)

	st := store.New(store.SourcesFromConfig(conf.Sources)...)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	if flags.once || flags.dump {
		if err := runOnce(ctx, conf, st, flags.dump); err != nil {
			appLog.Error("single-shot run failed", err)
			os.Exit(1)
		}
		return
	}

	runServer(ctx, conf, st)
	appLog.Info("eventcal exiting")
}

// runOnce fetches the schedule a single time and prints it to stdout. With
// dump, the raw sorted list is printed as JSON instead of the text view.
func runOnce(ctx context.Context, conf *config.Config, st *store.Store, dump bool) error {
	loc, err := time.LoadLocation(conf.Timezone)
	if err != nil {
		loc = time.Local
	}

	events := schedule.SortChronologically(st.FetchEvents(ctx))

	if dump {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(events)
	}

	now := time.Now().In(loc)
	past, upcoming := schedule.PartitionPastFuture(events, now)
	fmt.Printf("%d events (%d past, %d upcoming)\n\n", len(events), len(past), len(upcoming))

	for _, ev := range events {
		fmt.Printf("  %-24s %s\n", ev.ID, schedule.FormatDate(ev.Date))
		fmt.Printf("  %-24s %s / %s\n", "", ev.Title, ev.Location)
		fmt.Printf("  %-24s %s\n\n", "", schedule.EventRegistrationStatus(ev).Label())
	}

	if next := schedule.NextFeaturedEvent(events, now); next != nil {
		x := export.New(loc)
		fmt.Printf("next featured event: %s (%s)\n", next.Title, schedule.FormatDate(next.Date))
		fmt.Printf("  google: %s\n", x.GoogleCalendarURL(*next))
	} else {
		fmt.Println("next featured event: none")
	}

	return nil
}

// runServer starts the HTTP API plus the cron-driven cache refresh and
// blocks until the context is canceled.
func runServer(ctx context.Context, conf *config.Config, st *store.Store) {
	srv := web.NewServer(conf, st, prefs.NewFileStore(conf.PrefsFile))

	// Warm the cache before accepting traffic; an empty result is fine.
	srv.Refresh(ctx)

	c := cron.New()
	if _, err := c.AddFunc(conf.RefreshCron, func() {
		refreshCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		srv.Refresh(refreshCtx)
	}); err != nil {
		appLog.Error("invalid refresh cron expression", err, "refresh", conf.RefreshCron)
	} else {
		c.Start()
		defer c.Stop()
	}

	httpServer := &http.Server{
		Addr:    conf.Listen,
		Handler: srv.Handler(),
	}

	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+conf.Listen)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Error("HTTP server failed", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLog.Error("HTTP server shutdown failed", err)
	}
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "./config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Fetch and print the schedule once, then exit")
	flag.BoolVar(&cfg.dump, "dump", false, "Dump the sorted event list as JSON and exit")

	flag.Parse()

	return cfg
}
