// Command bwoverlay tails a Minecraft client log, recognizes Bed Wars lobby
// and party chatter, and prints a live table of the stats behind every
// player in the lobby.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/juju/fslock"
	"golang.org/x/sync/errgroup"

	"github.com/prism-overlay/bwoverlay/internal/assembler"
	"github.com/prism-overlay/bwoverlay/internal/config"
	"github.com/prism-overlay/bwoverlay/internal/controller"
	"github.com/prism-overlay/bwoverlay/internal/fetch"
	"github.com/prism-overlay/bwoverlay/internal/logging"
	"github.com/prism-overlay/bwoverlay/internal/nickdb"
	"github.com/prism-overlay/bwoverlay/internal/output"
	"github.com/prism-overlay/bwoverlay/internal/playercache"
	"github.com/prism-overlay/bwoverlay/internal/pool"
	"github.com/prism-overlay/bwoverlay/internal/presence"
	"github.com/prism-overlay/bwoverlay/internal/ratelimit"
	"github.com/prism-overlay/bwoverlay/internal/redraw"
	"github.com/prism-overlay/bwoverlay/internal/state"
	"github.com/prism-overlay/bwoverlay/internal/tailer"
)

const (
	defaultSettingsPath = "settings.toml"
	lockFileName        = "bwoverlay.lock"
	workerPoolSize      = 4
	workerQueueDepth    = 64
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	logFile := flag.String("logfile", "", "path to the Minecraft client's latest.log")
	settingsPath := flag.String("settings", defaultSettingsPath, "path to settings.toml")
	quiet := flag.Bool("q", false, "suppress all but error-level logging")
	flag.BoolVar(quiet, "quiet", false, "same as -q")
	verbosity := countFlag("v", "increase logging verbosity (repeatable)")
	threads := flag.Int("t", workerPoolSize, "number of stats worker goroutines, clipped to [2,16]")
	flag.IntVar(threads, "threads", workerPoolSize, "same as -t")
	testMode := flag.Bool("test", false, "replay the bundled sample log instead of tailing a live file")
	flag.Parse()

	log := logging.Setup(logging.LevelFromVerbosity(*verbosity), *quiet)

	lock := fslock.New(lockFileName)
	if err := lock.TryLock(); err != nil {
		return fmt.Errorf("another instance of bwoverlay is already running: %w", err)
	}
	defer lock.Unlock()

	settings, err := config.Load(*settingsPath)
	if err != nil {
		log.Warn("failed to load settings, using defaults", "err", err)
	}

	nicks := nickdb.New()
	if settings.KnownNicksFile != "" {
		if err := nicks.LoadLayer(settings.KnownNicksFile); err != nil && !os.IsNotExist(err) {
			log.Warn("failed to load known nicks file", "path", settings.KnownNicksFile, "err", err)
		}
	}

	httpClient := &http.Client{Timeout: 10 * time.Second}
	hypixelLimiter := ratelimit.New(settings.RateLimit.HypixelLimit, time.Duration(settings.RateLimit.HypixelWindowMS)*time.Millisecond)
	mojangLimiter := ratelimit.New(settings.RateLimit.MojangLimit, time.Duration(settings.RateLimit.MojangWindowMS)*time.Millisecond)

	keys := fetch.NewAPIKeyHolder(settings.APIKeys.Hypixel)
	antisniperKeys := fetch.NewAPIKeyHolder(settings.APIKeys.Antisniper)

	mojangClient := fetch.NewMojangClient(httpClient, mojangLimiter)
	hypixelClient := fetch.NewHypixelClient(httpClient, hypixelLimiter, keys)
	winstreakClient := fetch.NewWinstreakClient(httpClient, hypixelLimiter, antisniperKeys)
	denickClient := fetch.NewDenickClient(httpClient, hypixelLimiter, antisniperKeys)

	cache := playercache.New()
	asm := assembler.New(mojangClient, hypixelClient, winstreakClient, denickClient, nicks, cache)

	st := state.New()
	aggregator := redraw.New()
	sink := output.NewConsole(os.Stdout)
	workers := pool.New(ctx, min(max(*threads, 2), 16), workerQueueDepth, log)

	var ctrl *controller.Controller
	hooks := presence.Hooks{
		FlushSettings: func() {
			if err := config.Save(*settingsPath, settings); err != nil {
				log.Warn("failed to persist settings", "err", err)
			}
		},
		Redraw: func() {
			if err := ctrl.RenderNow(); err != nil {
				log.Warn("failed to render output", "err", err)
			}
		},
	}
	ctrl = controller.New(st, asm, workers, aggregator, nicks, cache, sink, hooks, log)

	path := *logFile
	if *testMode {
		path = "testdata/test.log"
	}
	if path == "" {
		return fmt.Errorf("no -logfile given and -test not set")
	}

	t := tailer.New(path, log)
	errs := make(chan error, 16)
	lines := t.Lines(ctx, errs)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return ctrl.Run(gctx, lines)
	})
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case err := <-errs:
				log.Warn("tailer error", "err", err)
			}
		}
	})

	return g.Wait()
}

// countFlag registers a bool-shaped repeatable flag ("-v -v -v") and
// returns a pointer to the accumulated count.
func countFlag(name, usage string) *int {
	count := new(int)
	flag.BoolFunc(name, usage, func(string) error {
		*count++
		return nil
	})
	return count
}
