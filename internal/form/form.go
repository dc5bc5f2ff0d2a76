// Package form turns raw text input into workouts and records them.
package form

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/claude/mapty/internal/models"
	"github.com/claude/mapty/internal/store"
)

// Submission is a workout form as typed by the user: every field is text.
// Cadence is read for running and Elevation for cycling.
type Submission struct {
	Type      string
	Distance  string
	Duration  string
	Cadence   string
	Elevation string
	Coords    models.Coordinates
}

// Parse converts the text fields to numbers. Blank or non-numeric text
// becomes NaN so the factory rejects it citing the field. The type is not
// checked here.
func (s Submission) Parse() models.Input {
	in := models.Input{
		Type:        strings.TrimSpace(s.Type),
		Coords:      s.Coords,
		DistanceKm:  number(s.Distance),
		DurationMin: number(s.Duration),
	}
	switch models.Kind(in.Type) {
	case models.KindRunning:
		in.Extra = number(s.Cadence)
	case models.KindCycling:
		in.Extra = number(s.Elevation)
	}
	return in
}

func number(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// Submitter runs a submission through the factory into the store.
type Submitter struct {
	Factory *models.Factory
	Store   *store.Store
}

// Submit validates sub, appends the workout and persists the store. A
// validation failure leaves the store unchanged and is returned as an
// *models.InvalidWorkoutInputError. A persistence failure is returned after
// the workout was added in memory.
func (s *Submitter) Submit(ctx context.Context, sub Submission) (models.Workout, error) {
	return s.Record(ctx, sub.Parse())
}

// Record is Submit for input that is already numeric.
func (s *Submitter) Record(ctx context.Context, in models.Input) (models.Workout, error) {
	w, err := s.Factory.Create(in)
	if err != nil {
		return models.Workout{}, err
	}
	if err := s.Store.Add(w); err != nil {
		return models.Workout{}, err
	}
	if err := s.Store.Persist(ctx); err != nil {
		return w, fmt.Errorf("saving workout %s: %w", w.ID(), err)
	}
	return w, nil
}
