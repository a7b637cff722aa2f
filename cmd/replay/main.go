// Replay runs a scripted scenario through the ability tick loop and prints
// one line per tick with the tick checksum. Two runs of the same scenario
// and catalog print identical output.
//
// Usage:
//
//	go run ./cmd/replay -scenario scenarios/totem.yaml
//	go run ./cmd/replay -scenario scenarios/totem.yaml -catalog config/abilities.yaml -workers 8
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/udisondev/abilitysim/internal/config"
	"github.com/udisondev/abilitysim/internal/data"
	"github.com/udisondev/abilitysim/internal/scenario"
	"github.com/udisondev/abilitysim/internal/sim"
	"github.com/udisondev/abilitysim/internal/world"
)

func main() {
	scenarioPath := flag.String("scenario", "", "scenario YAML file (required)")
	catalogPath := flag.String("catalog", "", "ability catalog YAML (default: built-in)")
	workers := flag.Int("workers", 0, "override scenario workers")
	verbose := flag.Bool("v", false, "debug logging to stderr")
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if *scenarioPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stdout, *scenarioPath, *catalogPath, *workers); err != nil {
		slog.Error("replay failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, out io.Writer, scenarioPath, catalogPath string, workers int) error {
	sc, err := scenario.Load(scenarioPath)
	if err != nil {
		return err
	}
	if workers > 0 {
		sc.Workers = workers
	}

	catalog, err := data.ReadAbilities(catalogPath)
	if err != nil {
		return fmt.Errorf("loading abilities: %w", err)
	}

	// World constants come from the server defaults so replays match a live server.
	wc := config.DefaultAbilityServer().World
	opts := world.Options{
		MaxObjects: wc.MaxObjects,
		MoveSpeed:  wc.MoveSpeed,
		JumpSpeed:  wc.JumpSpeed,
		Gravity:    wc.Gravity,
	}

	bw := bufio.NewWriter(out)
	defer bw.Flush()

	res, err := scenario.Run(ctx, sc, catalog, opts, func(tr sim.TickResult) {
		fmt.Fprintf(bw, "tick=%d advanced=%d events=%d finished=%v checksum=%s\n",
			tr.Tick, tr.Advanced, len(tr.Events), tr.Finished, tr.Checksum)
	})
	if err != nil {
		return err
	}

	for _, obj := range res.Objects {
		p := obj.Location.Pos
		fmt.Fprintf(bw, "object id=%d kind=%s owner=%d tick=%d pos=(%.3f,%.3f,%.3f) scale=%.3f\n",
			obj.ObjectID, obj.Kind, obj.Owner, obj.Tick, p.X, p.Y, p.Z, obj.Scale)
	}
	return bw.Flush()
}
