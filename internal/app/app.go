// Package app assembles the engine for the command line: it configures
// logging, installs the built-in operator modules, loads the recipe, and
// runs the requested computation.
package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/vk/calcgrid/internal/computer"
	"github.com/vk/calcgrid/internal/ctxlog"
	"github.com/vk/calcgrid/internal/quantity"
	"github.com/vk/calcgrid/internal/recipe"
	"github.com/vk/calcgrid/internal/registry"
	"github.com/vk/calcgrid/modules/aggregate"
	"github.com/vk/calcgrid/modules/arith"
	"github.com/vk/calcgrid/modules/table"
)

// defaultModules lists the operator packages installed for every run.
func defaultModules() []registry.Module {
	return []registry.Module{
		&arith.Module{},
		&aggregate.Module{},
		&table.Module{},
	}
}

// App is one configured engine instance.
type App struct {
	out io.Writer
	cfg *Config
}

// NewApp creates an App writing its result to outW.
func NewApp(outW io.Writer, cfg *Config) *App {
	return &App{out: outW, cfg: cfg}
}

// Run loads the recipe, resolves the target, and writes the outcome.
func (a *App) Run(ctx context.Context) error {
	logger := newLogger(a.cfg.LogLevel, a.cfg.LogFormat, os.Stderr)
	ctx = ctxlog.WithLogger(ctx, logger)

	reg := registry.New()
	reg.Install(defaultModules()...)
	logger.Debug("Operator modules installed.", "operators", reg.Names())

	r, err := recipe.Load(ctx, a.cfg.RecipePath)
	if err != nil {
		return err
	}

	opts := []computer.Option{computer.WithWorkers(a.cfg.WorkerCount)}
	if !a.cfg.CacheOff {
		opts = append(opts, computer.WithCache(computer.NewCache()))
	}
	c := computer.New(reg, opts...)

	if err := r.Apply(ctx, c); err != nil {
		return err
	}
	logger.Info("Recipe applied.", "keys", len(c.Keys()))

	if a.cfg.Describe {
		text, err := c.Describe(a.cfg.Target)
		if err != nil {
			return err
		}
		fmt.Fprint(a.out, text)
		return nil
	}

	result, err := c.Get(ctx, a.cfg.Target)
	if err != nil {
		return err
	}
	logger.Info("Computation finished.", "target", a.cfg.Target)
	a.printResult(result)
	return nil
}

// printResult renders the resolved value. Quantities get their cells
// listed; everything else prints with its default formatting.
func (a *App) printResult(v any) {
	q, ok := v.(*quantity.Quantity)
	if !ok {
		fmt.Fprintf(a.out, "%v\n", v)
		return
	}
	fmt.Fprintf(a.out, "%s\n", q)
	for _, rec := range q.Records() {
		fmt.Fprintf(a.out, "  %v = %g\n", rec.Labels, rec.Value)
	}
}
