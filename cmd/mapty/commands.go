package main

import (
	"context"
	"crypto/subtle"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/claude/mapty/internal/form"
	"github.com/claude/mapty/internal/models"
	"github.com/claude/mapty/internal/view"
)

const commandHelp = `  add     record a workout (-type running|cycling -lat -lng -distance -duration -cadence|-elevation)
  list    print workouts as in the sidebar (-sort date|distance|duration|metric)
  show    print one workout with its map popup and focus (show <id>)
  export  write the snapshot JSON to stdout or -o file
  reset   delete every workout (-pin when configured)`

var errWrongPIN = errors.New("wrong PIN")

// app runs one CLI command against a loaded store.
type app struct {
	sub  *form.Submitter
	zoom int
	pin  string
	out  io.Writer
	log  *slog.Logger
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing command")
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "add":
		return a.add(ctx, rest)
	case "list":
		return a.list(rest)
	case "show":
		return a.show(rest)
	case "export":
		return a.export(rest)
	case "reset":
		return a.reset(ctx, rest)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("mapty "+name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

func (a *app) add(ctx context.Context, args []string) error {
	fs := newFlagSet("add")
	var sub form.Submission
	fs.StringVar(&sub.Type, "type", "running", "workout type: running or cycling")
	fs.Float64Var(&sub.Coords.Lat, "lat", 0, "latitude of the map point")
	fs.Float64Var(&sub.Coords.Lng, "lng", 0, "longitude of the map point")
	fs.StringVar(&sub.Distance, "distance", "", "distance in km")
	fs.StringVar(&sub.Duration, "duration", "", "duration in min")
	fs.StringVar(&sub.Cadence, "cadence", "", "cadence in steps/min (running)")
	fs.StringVar(&sub.Elevation, "elevation", "", "elevation gain in m (cycling)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	w, err := a.sub.Submit(ctx, sub)
	if err != nil {
		var ie *models.InvalidWorkoutInputError
		if errors.As(err, &ie) {
			return fmt.Errorf("inputs have to be positive numbers: %w", err)
		}
		return err
	}
	a.log.Info("workout added", "id", w.ID(), "type", w.Kind())
	p := view.NewPopup(w)
	fmt.Fprintln(a.out, p.Text)
	fmt.Fprintln(a.out, view.NewEntry(w))
	return nil
}

func (a *app) list(args []string) error {
	fs := newFlagSet("list")
	sortField := fs.String("sort", "", "ascending sort field: date, distance, duration or metric")
	if err := fs.Parse(args); err != nil {
		return err
	}

	workouts := a.sub.Store.All()
	if *sortField != "" {
		var err error
		if workouts, err = a.sub.Store.Sorted(*sortField); err != nil {
			return err
		}
	} else {
		// Newest first, as the sidebar inserts each entry at the top.
		slices.Reverse(workouts)
	}
	for _, w := range workouts {
		fmt.Fprintln(a.out, view.NewEntry(w))
	}
	return nil
}

func (a *app) show(args []string) error {
	fs := newFlagSet("show")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("show takes exactly one workout id")
	}

	w, err := a.sub.Store.FindByID(fs.Arg(0))
	if err != nil {
		return err
	}
	f := view.NewFocus(w, a.zoom)
	fmt.Fprintln(a.out, view.NewEntry(w))
	fmt.Fprintln(a.out, view.NewPopup(w).Text)
	fmt.Fprintf(a.out, "map: %.5f,%.5f zoom %d\n", f.Lat, f.Lng, f.Zoom)
	return nil
}

func (a *app) export(args []string) error {
	fs := newFlagSet("export")
	outPath := fs.String("o", "", "write to file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	text, err := a.sub.Store.Serialize()
	if err != nil {
		return err
	}
	if *outPath == "" {
		_, err = fmt.Fprintln(a.out, text)
		return err
	}
	if err := os.WriteFile(*outPath, []byte(text), 0o644); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	a.log.Info("snapshot exported", "path", *outPath, "workouts", a.sub.Store.Len())
	return nil
}

func (a *app) reset(ctx context.Context, args []string) error {
	fs := newFlagSet("reset")
	pin := fs.String("pin", "", "reset PIN, when one is configured")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if a.pin != "" && subtle.ConstantTimeCompare([]byte(*pin), []byte(a.pin)) != 1 {
		return errWrongPIN
	}

	n := a.sub.Store.Len()
	if err := a.sub.Store.Reset(ctx); err != nil {
		return err
	}
	a.log.Info("workouts reset", "removed", n)
	fmt.Fprintf(a.out, "removed %d workouts\n", n)
	return nil
}
