package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/CrestNiraj12/fedtimeline/domain"
	"github.com/CrestNiraj12/fedtimeline/eventbus"
	"github.com/CrestNiraj12/fedtimeline/filter"
	"github.com/CrestNiraj12/fedtimeline/infra/auth"
	"github.com/CrestNiraj12/fedtimeline/infra/config"
	"github.com/CrestNiraj12/fedtimeline/infra/logger"
	"github.com/CrestNiraj12/fedtimeline/infra/mastodon"
	"github.com/CrestNiraj12/fedtimeline/infra/metrics"
	"github.com/CrestNiraj12/fedtimeline/infra/redisbus"
	"github.com/CrestNiraj12/fedtimeline/timeline"
	"github.com/CrestNiraj12/fedtimeline/trending"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type cliMode int

const (
	cliRun cliMode = iota
	cliVersion
	cliHelp
	cliInvalid
)

// parseCLIArgs returns the mode and, for cliRun, an optional timeline key;
// for cliInvalid the returned string is the error message.
func parseCLIArgs(args []string) (cliMode, string) {
	if len(args) == 0 {
		return cliRun, ""
	}

	switch args[0] {
	case "--version", "-version", "-v":
		return cliVersion, ""
	case "--help", "-h", "help":
		return cliHelp, ""
	}
	if len(args) == 1 && !strings.HasPrefix(args[0], "-") {
		return cliRun, args[0]
	}
	return cliInvalid, fmt.Sprintf("unexpected argument: %s", strings.Join(args, " "))
}

func usage() string {
	return "Usage: fedtimeline [--version|-version|-v] [--help|-h] [timeline]\n" +
		"  timeline: home, local, federated, tag:NAME[,NAME...], account:ID, account-replies:ID,\n" +
		"            account-pinned:ID, list:ID, bookmarks, favourites, trending"
}

func resolveVersionInfo(v, c, d, moduleVersion string, settings map[string]string) (string, string, string) {
	if v == "dev" {
		mv := strings.TrimSpace(moduleVersion)
		if mv != "" && mv != "(devel)" {
			v = mv
		}
	}
	if c == "none" {
		rev := strings.TrimSpace(settings["vcs.revision"])
		if rev != "" {
			if len(rev) > 12 {
				rev = rev[:12]
			}
			c = rev
		}
	}
	if d == "unknown" {
		t := strings.TrimSpace(settings["vcs.time"])
		if t != "" {
			d = t
		}
	}
	return v, c, d
}

func buildSettingsMap(in []debug.BuildSetting) map[string]string {
	out := make(map[string]string, len(in))
	for _, s := range in {
		out[s.Key] = s.Value
	}
	return out
}

func resolvedRuntimeVersionInfo(v, c, d string) (string, string, string) {
	info, ok := debug.ReadBuildInfo()
	if !ok || info == nil {
		return v, c, d
	}
	return resolveVersionInfo(v, c, d, info.Main.Version, buildSettingsMap(info.Settings))
}

func main() {
	mode, arg := parseCLIArgs(os.Args[1:])
	switch mode {
	case cliVersion:
		v, c, d := resolvedRuntimeVersionInfo(version, commit, date)
		fmt.Printf("fedtimeline %s\ncommit: %s\nbuilt: %s\n", v, c, d)
		return
	case cliHelp:
		fmt.Println(usage())
		return
	case cliInvalid:
		fmt.Fprintf(os.Stderr, "%s\n%s\n", arg, usage())
		os.Exit(2)
	}

	// 1. Load config from the YAML file and environment.
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.PrettyLog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, arg, os.Stdout, log); err != nil {
		log.Error("run failed", logger.Error(err))
		fmt.Fprintf(os.Stderr, "fedtimeline: %s\n", domain.ErrorMessage(err))
		stop()
		os.Exit(1)
	}
}

// pickTimeline prefers the command line, then the last timeline used, then
// the configured one.
func pickTimeline(arg string, st config.UIState, cfg config.Config) (domain.Timeline, error) {
	for _, key := range []string{arg, st.Timeline} {
		if strings.TrimSpace(key) != "" {
			return domain.ParseTimeline(key)
		}
	}
	return cfg.ParsedTimeline()
}

func run(ctx context.Context, cfg config.Config, timelineArg string, out io.Writer, log logger.Logger) error {
	uiState, err := config.LoadUIState(cfg.UIStatePath)
	if err != nil {
		log.Warn("ignoring ui state", logger.Error(err))
	}
	tl, err := pickTimeline(timelineArg, uiState, cfg)
	if err != nil {
		return err
	}

	// 2. Build infrastructure.
	collector := metrics.NewCollector()
	if cfg.MetricsAddr != "" {
		go func() {
			if err := collector.Serve(ctx, cfg.MetricsAddr, log); err != nil {
				log.Warn("metrics server stopped", logger.Error(err))
			}
		}()
	}

	tokens := auth.Chain{auth.NewEnvTokenProvider("FEDTIMELINE_TOKEN"), auth.NewFileTokenProvider(cfg.TokenPath)}
	httpClient := mastodon.NewClient(cfg.InstanceURL, tokens,
		mastodon.WithLogger(log.With(logger.String("component", "mastodon"))),
		mastodon.WithRecorder(collector),
	)

	// 3. Build services (concrete types satisfy app.* interfaces).
	timelineSvc := mastodon.NewTimelineService(httpClient)

	filters := filter.New(nil)
	if err := filters.Refresh(ctx, timelineSvc); err != nil {
		log.Warn("filters unavailable, showing everything", logger.Error(err))
	}

	bus := eventbus.New(log)
	if cfg.RedisAddr != "" {
		stopRelay, err := startRelay(ctx, cfg, bus, collector, log)
		if err != nil {
			log.Warn("event relay disabled", logger.Error(err))
		} else {
			defer stopRelay()
		}
	}

	// 4. One cache per session and timeline.
	cache := timeline.New(tl, timelineSvc, filters,
		timeline.WithLogger(log.With(logger.String("timeline", tl.Key()))),
		timeline.WithPageSize(cfg.PageSize),
		timeline.WithPreferences(cfg.Preferences.Display()),
		timeline.WithRecorder(collector),
	)
	sub := timeline.Subscribe(bus, cache)
	defer sub.Unsubscribe()
	defer cache.Close()

	// 5. Print.
	if err := printPages(ctx, out, cache, cfg.Pages); err != nil {
		return err
	}
	if cfg.TrendingLimit > 0 {
		snap := trending.New(timelineSvc, log).Invalidate(ctx, false)
		printTrending(out, snap, cfg.TrendingLimit)
	}

	if err := config.SaveUIState(cfg.UIStatePath, config.UIState{Timeline: tl.Key()}); err != nil {
		log.Warn("saving ui state", logger.Error(err))
	}
	return nil
}

func startRelay(ctx context.Context, cfg config.Config, bus *eventbus.Bus, rec redisbus.Recorder, log logger.Logger) (func(), error) {
	rdb, err := redisbus.Connect(ctx, cfg.RedisAddr, log)
	if err != nil {
		return nil, err
	}
	relayCtx, cancel := context.WithCancel(ctx)
	relay := redisbus.NewRelay(bus, redisbus.NewRedisTransport(rdb), cfg.RedisChannel,
		redisbus.WithLogger(log.With(logger.String("component", "relay"))),
		redisbus.WithRecorder(rec),
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := relay.Run(relayCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Warn("event relay stopped", logger.Error(err))
		}
	}()
	return func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
		}
		_ = rdb.Close()
	}, nil
}
