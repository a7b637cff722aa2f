package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/abilitysim/internal/ability"
	"github.com/udisondev/abilitysim/internal/config"
	"github.com/udisondev/abilitysim/internal/data"
	"github.com/udisondev/abilitysim/internal/db"
	"github.com/udisondev/abilitysim/internal/model"
	"github.com/udisondev/abilitysim/internal/scenario"
	"github.com/udisondev/abilitysim/internal/sim"
	"github.com/udisondev/abilitysim/internal/world"
)

const ConfigPath = "config/abilityserver.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load config FIRST to determine log level
	cfgPath := ConfigPath
	if p := os.Getenv("ABILITYSIM_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadAbilityServer(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))

	slog.Info("abilitysim server starting",
		"log_level", cfg.LogLevel,
		"tick_rate", cfg.TickRate,
		"workers", cfg.Workers)

	if err := data.LoadAbilities(cfg.CatalogPath); err != nil {
		return fmt.Errorf("loading abilities: %w", err)
	}

	w := world.New(world.Options{
		MaxObjects: cfg.World.MaxObjects,
		MoveSpeed:  cfg.World.MoveSpeed,
		JumpSpeed:  cfg.World.JumpSpeed,
		Gravity:    cfg.World.Gravity,
	})
	dispatcher := world.NewDispatcher(w, func(obj *model.SpawnedObject) {
		slog.Info("object spawned",
			"objectID", obj.ObjectID,
			"kind", obj.Kind,
			"owner", obj.Owner,
			"tick", obj.Tick)
	})

	var script *scenario.Script
	if cfg.ScenarioPath != "" {
		sc, err := scenario.Load(cfg.ScenarioPath)
		if err != nil {
			return fmt.Errorf("loading scenario: %w", err)
		}
		script, err = scenario.Seed(sc, w)
		if err != nil {
			return fmt.Errorf("seeding scenario: %w", err)
		}
		slog.Info("scenario loaded",
			"name", sc.Name,
			"entities", len(sc.Entities),
			"steps", len(sc.Steps))
	}

	var (
		stateRepo *db.AbilityStateRepository
		journal   *sim.AsyncJournal
	)
	if cfg.Persistence.Enabled || cfg.Persistence.Journal {
		database, err := db.New(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()
		slog.Info("database connected")

		if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("database migrations applied")

		if cfg.Persistence.Enabled {
			stateRepo = db.NewAbilityStateRepository(database.Pool())
		}
		if cfg.Persistence.Journal {
			journalRepo := db.NewEventJournalRepository(database.Pool())
			journal = sim.NewAsyncJournal(journalRepo, cfg.Persistence.JournalBuffer)
			slog.Info("event journal enabled", "session", journalRepo.Session())
		}
	}

	var mgr *sim.TickManager
	mgrCfg := sim.Config{
		Catalog:    sim.CatalogFunc(data.GetAbility),
		World:      w,
		Dispatcher: dispatcher,
		Interval:   cfg.TickInterval(),
		Workers:    cfg.Workers,
	}
	if journal != nil {
		mgrCfg.Journal = journal
	}
	if script != nil {
		mgrCfg.BeforeTick = func(tick uint64) { script.Apply(mgr, tick) }
	}
	mgr = sim.NewTickManager(mgrCfg)

	if stateRepo != nil {
		if err := restoreStates(ctx, stateRepo, w, mgr); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting ability tick manager", "interval", cfg.TickInterval())
		var err error
		if journal != nil {
			// журнал дописывается после остановки tick loop
			err = sim.RunJournaled(gctx, mgr, journal)
		} else {
			err = mgr.Start(gctx)
		}
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("ability tick manager: %w", err)
		}
		return nil
	})

	if cfg.CatalogReload && cfg.CatalogPath != "" {
		watcher, err := data.NewCatalogWatcher(cfg.CatalogPath, nil)
		if err != nil {
			// без hot reload сервер работает со статическим каталогом
			slog.Warn("catalog hot reload disabled", "path", cfg.CatalogPath, "error", err)
		} else {
			g.Go(func() error {
				return watcher.Run(gctx)
			})
		}
	}

	waitErr := g.Wait()

	if stateRepo != nil {
		if err := saveStates(stateRepo, w, mgr, cfg.Persistence.SaveTimeout); err != nil {
			slog.Error("saving ability states", "error", err)
		}
	}

	slog.Info("abilitysim server stopped",
		"ticks", mgr.CurrentTick(),
		"spawned", w.ObjectCount(),
		"applied", dispatcher.Applied(),
		"rejected", dispatcher.Rejected())

	if waitErr != nil {
		return fmt.Errorf("server error: %w", waitErr)
	}
	return nil
}

// restoreStates maps persisted UIDs to the entities of this run.
func restoreStates(ctx context.Context, repo *db.AbilityStateRepository, w *world.World, mgr *sim.TickManager) error {
	byUID, err := repo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("loading ability states: %w", err)
	}

	states := make(map[uint32]ability.State, len(byUID))
	for uid, st := range byUID {
		id, ok := w.EntityByUID(uid)
		if !ok {
			slog.Warn("persisted ability for unknown entity", "uid", uid, "ability", st.AbilityID)
			continue
		}
		states[id] = st
	}

	if err := mgr.Restore(states); err != nil {
		// неконсистентные записи пропускаются, остальные восстановлены
		slog.Warn("some ability states were not restored", "error", err)
	}
	slog.Info("ability states restored", "stored", len(byUID), "active", mgr.Count())
	return nil
}

// saveStates replaces the stored snapshot with the active states.
func saveStates(repo *db.AbilityStateRepository, w *world.World, mgr *sim.TickManager, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	active := mgr.States()
	byUID := make(map[uint64]ability.State, len(active))
	for id, st := range active {
		obj, ok := w.Entity(id)
		if !ok {
			continue
		}
		byUID[obj.UID()] = st
	}

	if err := repo.SaveAll(ctx, byUID); err != nil {
		return err
	}
	slog.Info("ability states saved", "count", len(byUID))
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
