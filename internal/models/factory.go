package models

import (
	"fmt"
	"math"
	"time"
)

// Input is the raw data collected for a new workout. Extra holds the cadence
// for running and the elevation gain for cycling.
type Input struct {
	Type        string
	Coords      Coordinates
	DistanceKm  float64
	DurationMin float64
	Extra       float64
}

// Factory validates input and builds workouts. IDs and the clock are
// injected; a zero Factory uses UUIDv7 IDs and time.Now.
type Factory struct {
	IDs IDGenerator
	Now func() time.Time
}

// NewFactory returns a Factory with the given generator and clock.
func NewFactory(ids IDGenerator, now func() time.Time) *Factory {
	return &Factory{IDs: ids, Now: now}
}

// Create validates in and returns the matching workout variant. On failure it
// returns an *InvalidWorkoutInputError naming the offending field and builds
// nothing.
func (f *Factory) Create(in Input) (Workout, error) {
	kind, err := Validate(in)
	if err != nil {
		return Workout{}, err
	}

	ids := f.IDs
	if ids == nil {
		ids = UUIDGenerator{}
	}
	id, err := ids.NewID()
	if err != nil {
		return Workout{}, err
	}
	if id == "" {
		return Workout{}, fmt.Errorf("generating workout id: empty id")
	}

	now := time.Now
	if f.Now != nil {
		now = f.Now
	}

	return build(id, kind, now().Round(0), in), nil
}

// Validate checks in without building anything. Fields are checked in the
// order type, coordinates, distanceKm, durationMin, then the kind's extra field.
func Validate(in Input) (Kind, error) {
	kind, ok := ParseKind(in.Type)
	if !ok {
		return "", invalid("type", fmt.Sprintf("must be %q or %q, got %q", KindRunning, KindCycling, in.Type))
	}
	if err := validateCoords(in.Coords); err != nil {
		return "", err
	}
	if reason := positive(in.DistanceKm); reason != "" {
		return "", invalid("distanceKm", reason)
	}
	if reason := positive(in.DurationMin); reason != "" {
		return "", invalid("durationMin", reason)
	}

	v := variants[kind]
	if !finite(in.Extra) {
		return "", invalid(v.extraField, "must be a finite number")
	}
	if reason := v.checkExtra(in.Extra); reason != "" {
		return "", invalid(v.extraField, reason)
	}
	return kind, nil
}

func build(id string, kind Kind, at time.Time, in Input) Workout {
	return Workout{
		id:          id,
		kind:        kind,
		createdAt:   at,
		coords:      in.Coords,
		distanceKm:  in.DistanceKm,
		durationMin: in.DurationMin,
		extra:       in.Extra,
		metric:      variants[kind].metric(in.DistanceKm, in.DurationMin),
		description: describe(kind, at),
	}
}

func validateCoords(c Coordinates) error {
	if !finite(c.Lat) || !finite(c.Lng) {
		return invalid("coordinates", "must be finite numbers")
	}
	if c.Lat < -90 || c.Lat > 90 {
		return invalid("coordinates", "latitude must be between -90 and 90")
	}
	if c.Lng < -180 || c.Lng > 180 {
		return invalid("coordinates", "longitude must be between -180 and 180")
	}
	return nil
}

func positive(v float64) string {
	if !finite(v) {
		return "must be a finite number"
	}
	if v <= 0 {
		return "must be positive"
	}
	return ""
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
