package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/adrg/xdg"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/llehouerou/wavesconnect/internal/app"
	"github.com/llehouerou/wavesconnect/internal/config"
	"github.com/llehouerou/wavesconnect/internal/connect"
	"github.com/llehouerou/wavesconnect/internal/errmsg"
	"github.com/llehouerou/wavesconnect/internal/host"
	"github.com/llehouerou/wavesconnect/internal/icons"
	"github.com/llehouerou/wavesconnect/internal/mpris"
	"github.com/llehouerou/wavesconnect/internal/notify"
	"github.com/llehouerou/wavesconnect/internal/player"
	"github.com/llehouerou/wavesconnect/internal/player/sim"
	"github.com/llehouerou/wavesconnect/internal/state"
)

var version = "dev"

const shutdownTimeout = 5 * time.Second

func main() {
	configPath := flag.String("config", "", "additional config file, loaded last")
	headless := flag.Bool("headless", false, "run without the TUI and print events as JSON lines")
	fetchToken := flag.Bool("token", false, "headless: fetch an access token once connected")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}

	if err := run(*configPath, *headless, *fetchToken); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string, headless, fetchToken bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpConfigLoad, err))
	}
	playerCfg, err := cfg.PlayerConfig()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpConfigLoad, err))
	}

	ctx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	logOut, closeLog, err := logOutput(headless)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}
	defer closeLog()
	logLevel := parseLogLevel(cfg.LogLevel)
	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{Level: logLevel}))
	logger.Info("wavesconnect_start",
		slog.String("version", version),
		slog.String("device_name", cfg.DeviceName()),
		slog.Bool("headless", headless),
		slog.String("log_level", logLevel.String()),
	)

	icons.Init(cfg.Icons)

	var listeners []func(connect.Event)
	if cfg.Notifications {
		// New falls back to a no-op notifier without a session bus.
		notifier, _ := notify.New("Waves Connect")
		watcher := notify.NewWatcher(notifier, logger)
		defer watcher.Close()
		listeners = append(listeners, watcher.Handle)
	}

	store, err := state.Open(cfg.Tokens.DBPath)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpStateOpen, err))
	}
	defer store.Close()

	if n, err := store.PruneTokens(ctx, time.Now()); err != nil {
		logger.Warn("token_prune_failed", "error", errmsg.Format(errmsg.OpTokenPrune, err))
	} else if n > 0 {
		logger.Debug("tokens_pruned", "count", n)
	}

	var dispatcher host.Dispatcher
	var loop *host.Loop
	var teaHost *host.TeaDispatcher
	if headless {
		loop = host.NewLoop()
		dispatcher = loop
	} else {
		teaHost = host.NewTeaDispatcher()
		dispatcher = teaHost
	}

	dev := connect.New(connect.Options{
		Factory:          sim.Factory{ConnectDelay: cfg.ConnectDelay()},
		Dispatcher:       dispatcher,
		Logger:           logger,
		Tokens:           store,
		SaveTokens:       cfg.Tokens.Save,
		Volumes:          store,
		InitialVolume:    initialVolume(ctx, cfg, store, logger),
		PositionInterval: cfg.PositionUpdateInterval(),
	})

	if headless {
		return runHeadless(ctx, loop, dev, playerCfg, listeners, fetchToken, logger)
	}
	return runTUI(ctx, teaHost, dev, cfg, playerCfg, listeners, logger)
}

func loadConfig(extra string) (*config.Config, error) {
	if extra == "" {
		return config.Load()
	}
	if _, err := os.Stat(extra); err != nil {
		return nil, err
	}
	return config.LoadFiles(append(config.DefaultPaths(), extra)...)
}

// initialVolume returns the configured initial volume, falling back to the
// last volume the device reported.
func initialVolume(ctx context.Context, cfg *config.Config, store state.Interface, logger *slog.Logger) *uint16 {
	if v, ok := cfg.InitialVolumeRaw(); ok {
		return &v
	}
	st, err := store.GetDeviceState(ctx)
	if err != nil {
		logger.Warn("device_state_load_failed", "error", errmsg.Format(errmsg.OpStateLoad, err))
		return nil
	}
	if st == nil || st.Volume == nil {
		return nil
	}
	return st.Volume
}

// logOutput returns stderr in headless mode and a log file under the XDG
// state directory otherwise, so the TUI is not overwritten.
func logOutput(headless bool) (io.Writer, func(), error) {
	if headless {
		return os.Stderr, func() {}, nil
	}
	path, err := xdg.StateFile(filepath.Join("wavesconnect", "wavesconnect.log"))
	if err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

func runHeadless(
	ctx context.Context,
	loop *host.Loop,
	dev *connect.Device,
	playerCfg player.Config,
	listeners []func(connect.Event),
	fetchToken bool,
	logger *slog.Logger,
) error {
	// The loop outlives ctx so the device can be closed on it.
	go func() { _ = loop.Run(context.Background()) }()
	defer func() {
		loop.Stop()
		<-loop.Done()
	}()

	enc := json.NewEncoder(os.Stdout)
	failed := make(chan error, 1)
	err := loop.Dispatch(func() {
		dev.On(connect.AnyEvent, func(e connect.Event) {
			if err := enc.Encode(e); err != nil {
				logger.Warn("event_encode_failed", "error", err)
			}
		})
		for _, fn := range listeners {
			dev.On(connect.AnyEvent, fn)
		}
		dev.Connect(ctx, playerCfg).Then(func(id string, err error) {
			if err != nil {
				failed <- errors.New(errmsg.Format(errmsg.OpConnect, err))
				return
			}
			logger.Info("device_ready", "device_id", id)
			if fetchToken {
				dev.Token().Then(func(tok *player.Token, _ error) {
					logToken(logger, tok)
				})
			}
		})
	})
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}

	select {
	case <-ctx.Done():
		logger.Info("wavesconnect_stopping", "reason", "signal")
	case err := <-failed:
		return err
	}

	closed := make(chan struct{})
	if err := loop.Dispatch(func() {
		defer close(closed)
		closeDevice(dev, logger)
	}); err == nil {
		<-closed
	}
	waitDone(dev, logger)
	return nil
}

func logToken(logger *slog.Logger, tok *player.Token) {
	if tok == nil {
		logger.Warn("token_unavailable")
		return
	}
	logger.Info("token_fetched",
		"scopes", tok.Scopes,
		"expires", humanize.Time(tok.Expiry()),
	)
}

func closeDevice(dev *connect.Device, logger *slog.Logger) {
	if err := dev.Close(); err != nil && !errors.Is(err, connect.ErrNotInitialized) {
		logger.Warn("device_close_failed", "error", errmsg.Format(errmsg.OpClose, err))
	}
}

func waitDone(dev *connect.Device, logger *slog.Logger) {
	select {
	case <-dev.Done():
	case <-time.After(shutdownTimeout):
		logger.Warn("device_close_timeout")
	}
}

func runTUI(
	ctx context.Context,
	dispatcher *host.TeaDispatcher,
	dev *connect.Device,
	cfg *config.Config,
	playerCfg player.Config,
	listeners []func(connect.Event),
	logger *slog.Logger,
) error {
	model := app.New(ctx, app.Options{
		Device:       dev,
		PlayerConfig: playerCfg,
		DeviceName:   cfg.DeviceName(),
		Listeners:    listeners,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	dispatcher.Attach(p)
	defer dispatcher.Stop()

	if cfg.MPRISEnabled() {
		adapter, err := mpris.New(cfg.DeviceName(), mpris.NewRemote(dispatcher, dev, logger))
		if err != nil {
			logger.Warn("mpris_unavailable", "error", errmsg.Format(errmsg.OpMPRISStart, err))
		} else {
			defer adapter.Close()
		}
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		err = nil
	}

	// The program has exited, so nothing else runs host tasks. Quitting
	// from the keyboard has already closed the device.
	dispatcher.Stop()
	closeDevice(dev, logger)
	waitDone(dev, logger)
	return err
}

func parseLogLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "info":
		return slog.LevelInfo
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		fmt.Fprintf(os.Stderr, "invalid log_level=%q; defaulting to info\n", raw)
		return slog.LevelInfo
	}
}
