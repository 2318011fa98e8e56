package app

import (
	"context"

	"github.com/msgtrik/trik/internal/bus"
	"github.com/msgtrik/trik/internal/chat"
	"github.com/msgtrik/trik/internal/config"
	"github.com/msgtrik/trik/internal/gateway"
	"github.com/msgtrik/trik/internal/lock"
	"github.com/msgtrik/trik/internal/logging"
	"github.com/msgtrik/trik/internal/session"
	"github.com/msgtrik/trik/internal/status"
	chatsync "github.com/msgtrik/trik/internal/sync"
	"github.com/msgtrik/trik/internal/tui"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params holds the resolved session configuration passed to the fx module.
type Params struct {
	SessionName string
	ServerURL   string // optional override for the configured server
}

// Module composes the full client application.
func Module(p Params) fx.Option {
	return fx.Module("trik",
		fx.Supply(p),
		fx.Provide(
			provideConfig,
			provideLogger,
			provideBus,
			provideStateMachine,
			provideLock,
			provideSnapshot,
			provideGateway,
			provideStore,
			providePoller,
			provideApp,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideConfig(p Params) *config.Config {
	cfg := config.LoadOrDefault(session.ConfigPath())
	if p.ServerURL != "" {
		cfg.ServerURL = p.ServerURL
	}
	return cfg
}

// The TUI owns the terminal, so logs go to the session log file only.
func provideLogger(p Params) (*zap.Logger, error) {
	return logging.NewFileOnly(session.LogPath(p.SessionName), p.SessionName)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideStateMachine(b *bus.Bus) *status.Machine {
	return status.NewMachine(b)
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if err := session.EnsureDir(p.SessionName); err != nil {
		return nil, err
	}
	l, err := lock.Acquire(session.Dir(p.SessionName))
	if err != nil {
		return nil, err
	}
	logger.Info("session lock acquired", zap.String("session", p.SessionName))
	return l, nil
}

func provideSnapshot(p Params) (*session.Snapshot, error) {
	return session.OpenSnapshot(session.SnapshotPath(p.SessionName))
}

func provideGateway(cfg *config.Config, snap *session.Snapshot, b *bus.Bus, m *status.Machine, logger *zap.Logger) *gateway.Client {
	c := gateway.New(cfg.ServerURL, snap, b, logger)
	c.PageLimit = cfg.PageLimit
	c.Machine = m
	return c
}

func provideStore(gw *gateway.Client, b *bus.Bus, logger *zap.Logger) *chat.Store {
	return chat.NewStore(gw, b, logger)
}

func providePoller(cfg *config.Config, store *chat.Store, logger *zap.Logger) *chatsync.Poller {
	return chatsync.NewPoller(store, cfg.MessagePollInterval(), cfg.RecentChatsPollInterval(), logger)
}

func provideApp(p Params, cfg *config.Config, store *chat.Store, gw *gateway.Client,
	snap *session.Snapshot, b *bus.Bus, m *status.Machine, poller *chatsync.Poller,
	logger *zap.Logger) *tui.App {
	return tui.NewApp(tui.Deps{
		Store:         store,
		Gateway:       gw,
		Snapshot:      snap,
		Bus:           b,
		Machine:       m,
		Poller:        poller,
		Logger:        logger,
		SessionName:   p.SessionName,
		PostSendDelay: cfg.PostSendPollDelay(),
	})
}

func registerLifecycle(lc fx.Lifecycle, sh fx.Shutdowner, a *tui.App, lk *lock.Lock,
	snap *session.Snapshot, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				if err := a.Run(); err != nil {
					logger.Error("tui exited", zap.Error(err))
				}
				_ = sh.Shutdown()
			}()
			return nil
		},
		OnStop: func(_ context.Context) error {
			a.Stop()
			if err := snap.Close(); err != nil {
				logger.Warn("closing session snapshot", zap.Error(err))
			}
			if err := lk.Release(); err != nil {
				logger.Warn("releasing session lock", zap.Error(err))
			}
			logger.Info("client stopped")
			return nil
		},
	})
}
