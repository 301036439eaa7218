package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"noticeboard/internal/config"
	"noticeboard/internal/dashboard"
	"noticeboard/internal/notice"
	"noticeboard/internal/routing"
	rtsup "noticeboard/internal/runtime/supervisor"
	"noticeboard/internal/storage"
	"noticeboard/pkg/logx"
)

// App wires the config manager, storage, routing cache, notice engine and
// the dashboard server, and keeps them in sync with config reloads.
type App struct {
	cfgPath string

	cfgm *config.ConfigManager
	sup  *rtsup.Supervisor

	root logx.Logger
	log  logx.Logger
	logs *logx.Service

	store   storage.Store
	cache   *routing.Cache
	engine  *notice.Engine
	handler *dashboard.Handler
	http    *dashboard.Service

	notify notifier
}

func New(ctx context.Context, cfgPath string) (*App, error) {
	cfgm := config.NewConfigManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}

	logSvc, root := logx.New(cfg.LogConfig())
	log := root.With(logx.String("comp", "app"))

	store, err := OpenStore(cfg, cfgPath, root)
	if err != nil {
		_ = logSvc.Close()
		return nil, err
	}

	cache := routing.NewCache(store, root.With(logx.String("comp", "routing")))
	if err := cache.Seed(ctx, dashboard.ContentTypeSlugs(cfg)); err != nil {
		closeStore(store)
		_ = logSvc.Close()
		return nil, err
	}

	srvCfg, err := dashboard.ServerConfigFrom(cfg)
	if err != nil {
		closeStore(store)
		_ = logSvc.Close()
		return nil, err
	}

	engine := notice.New(notice.WithLogger(root.With(logx.String("comp", "notice"))))
	handler := dashboard.NewHandler(engine, cache, store, root.With(logx.String("comp", "http")))
	handler.Update(cfg, cfgPath)

	return &App{
		cfgPath: cfgPath,
		cfgm:    cfgm,
		root:    root,
		log:     log,
		logs:    logSvc,
		store:   store,
		cache:   cache,
		engine:  engine,
		handler: handler,
		http:    dashboard.NewService(srvCfg, handler, root),
		notify:  newSystemdNotifier(log),
	}, nil
}

// Done is closed when the app supervisor context is canceled (fatal error or Stop()).
func (a *App) Done() <-chan struct{} {
	if a.sup == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return a.sup.Context().Done()
}

// Err returns the first fatal error observed by the supervisor (if any).
func (a *App) Err() error {
	if a.sup == nil {
		return nil
	}
	return a.sup.Err()
}

// Addr is the dashboard listen address, or "" while not listening.
func (a *App) Addr() string { return a.http.Addr() }

func (a *App) Start(ctx context.Context) error {
	a.sup = rtsup.New(ctx, rtsup.WithLogger(a.log), rtsup.WithCancelOnError(true))

	// transactional config reload: validate before commit/publish
	a.cfgm.SetLogger(a.root.With(logx.String("comp", "config")))
	a.cfgm.SetValidator(func(_ context.Context, cfg *config.Config) error {
		return CheckConfig(cfg)
	})

	a.http.Start(a.sup.Context())

	sub := a.cfgm.Subscribe(8)
	a.sup.Go("config.reload", func(c context.Context) error {
		defer a.cfgm.Unsubscribe(sub)
		lastApplied := a.cfgm.Get()
		for {
			select {
			case <-c.Done():
				return nil
			case newCfg, ok := <-sub:
				if !ok {
					return nil
				}
				// Coalesce bursts: keep only the latest config.
				newCfg = drainLatest(sub, newCfg)
				a.applyConfig(c, lastApplied, newCfg)
				lastApplied = newCfg
			}
		}
	})

	a.sup.Go("config.watch", func(c context.Context) error {
		return a.cfgm.Watch(c)
	})

	a.notify.Ready()
	a.log.Info("app started", logx.String("config", a.cfgPath))
	return nil
}

// CheckConfig runs the checks a config must pass on top of config.Validate
// before the app accepts it.
func CheckConfig(cfg *config.Config) error {
	if _, err := dashboard.ServerConfigFrom(cfg); err != nil {
		return err
	}
	_, _, err := mapStorageConfig(cfg)
	return err
}

func drainLatest(sub chan *config.Config, cur *config.Config) *config.Config {
	for {
		select {
		case newer, ok := <-sub:
			if !ok {
				return cur
			}
			if newer != nil {
				cur = newer
			}
		default:
			return cur
		}
	}
}

func (a *App) applyConfig(ctx context.Context, prev, next *config.Config) {
	a.notify.Reloading()
	defer a.notify.Ready()

	sections, attrs := config.SummarizeConfigChange(prev, next)
	if len(sections) == 0 {
		a.log.Info("config reloaded (no changes)")
		return
	}
	for _, s := range sections {
		if s == "storage" {
			a.log.Warn("storage config changed; restart required for changes to take effect")
			break
		}
	}

	a.logs.Apply(next.LogConfig())
	// Picks up a requirement rebuilt out of process (noticeboard cache clear).
	if err := a.cache.Seed(ctx, dashboard.ContentTypeSlugs(next)); err != nil {
		a.log.Warn("routing requirement refresh failed", logx.Err(err))
	}
	a.handler.Update(next, a.cfgPath)

	srvCfg, err := dashboard.ServerConfigFrom(next)
	if err != nil {
		a.log.Warn("invalid server config; keeping previous listener", logx.Err(err))
	} else {
		a.http.Reconfigure(ctx, srvCfg)
	}

	fields := append([]logx.Field{logx.String("changed", strings.Join(sections, ","))}, attrs...)
	a.log.Info("config reloaded", fields...)
}

func (a *App) Stop(ctx context.Context, reason StopReason) error {
	if a.sup == nil {
		return nil
	}
	a.notify.Stopping()
	a.log.Info("stopping", logx.String("reason", string(reason)))

	a.sup.Cancel()

	var errs []error
	a.step(ctx, "http", 3*time.Second, func(c context.Context) error {
		a.http.Stop(c)
		return nil
	})
	a.step(ctx, "supervisor", 3*time.Second, func(c context.Context) error {
		return a.sup.Wait(c)
	})
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
	}
	a.log.Info("stopped")
	if err := a.logs.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// step runs one shutdown step bounded by max (never beyond ctx's deadline)
// so one component cannot stall the whole stop.
func (a *App) step(ctx context.Context, name string, max time.Duration, fn func(context.Context) error) {
	start := time.Now()
	stepCtx, cancel := context.WithTimeout(ctx, max)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("panic in stop step %s: %v", name, r)
			}
		}()
		done <- fn(stepCtx)
	}()

	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			a.log.Warn("stop step error", logx.String("name", name), logx.Err(err))
		}
		a.log.Debug("stop step end", logx.String("name", name), logx.Duration("took", time.Since(start)))
	case <-stepCtx.Done():
		a.log.Warn("stop step deadline reached (continuing)",
			logx.String("name", name),
			logx.Duration("elapsed", time.Since(start)),
		)
	}
}

func closeStore(st storage.Store) {
	if st != nil {
		_ = st.Close()
	}
}

// resolveNextTo makes a relative path relative to the config file's folder.
func resolveNextTo(configPath, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(filepath.Dir(configPath), p)
}
