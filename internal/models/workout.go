package models

import (
	"fmt"
	"strings"
	"time"
)

// Kind discriminates workout variants.
type Kind string

// Supported workout kinds.
const (
	KindRunning Kind = "running"
	KindCycling Kind = "cycling"
)

// Coordinates is a (latitude, longitude) pair in decimal degrees.
type Coordinates struct {
	Lat float64
	Lng float64
}

// Metric is a workout's derived value together with its display unit.
type Metric struct {
	Name  string
	Value float64
	Unit  string
}

// variant holds everything that differs between workout kinds: the name and
// rule of the extra input, and the derived metric computed from base fields.
type variant struct {
	extraField string
	extraUnit  string
	checkExtra func(v float64) string
	metricName string
	metricUnit string
	metric     func(distanceKm, durationMin float64) float64
}

var variants = map[Kind]variant{
	KindRunning: {
		extraField: "cadence",
		extraUnit:  "spm",
		checkExtra: func(v float64) string {
			if v <= 0 {
				return "must be positive"
			}
			return ""
		},
		metricName: "pace",
		metricUnit: "min/km",
		metric: func(distanceKm, durationMin float64) float64 {
			return durationMin / distanceKm
		},
	},
	KindCycling: {
		extraField: "elevationGain",
		extraUnit:  "m",
		checkExtra: func(v float64) string {
			if v < 0 {
				return "must not be negative"
			}
			return ""
		},
		metricName: "speed",
		metricUnit: "km/h",
		metric: func(distanceKm, durationMin float64) float64 {
			return distanceKm / (durationMin / 60)
		},
	},
}

// ParseKind maps a raw type value to a Kind. Matching is exact.
func ParseKind(raw string) (Kind, bool) {
	k := Kind(raw)
	_, ok := variants[k]
	return k, ok
}

// Workout is one recorded session. Values are immutable once built by New or
// decoded from a snapshot; the derived metric and description are fixed at
// construction.
type Workout struct {
	id          string
	kind        Kind
	createdAt   time.Time
	coords      Coordinates
	distanceKm  float64
	durationMin float64
	extra       float64
	metric      float64
	description string
}

func (w Workout) ID() string { return w.id }
func (w Workout) Kind() Kind { return w.kind }
func (w Workout) CreatedAt() time.Time { return w.createdAt }
func (w Workout) Coords() Coordinates { return w.coords }
func (w Workout) DistanceKm() float64 { return w.distanceKm }
func (w Workout) DurationMin() float64 { return w.durationMin }
func (w Workout) Description() string { return w.description }
func (w Workout) IsZero() bool { return w.id == "" && w.kind == "" }

// Cadence returns the running cadence in steps per minute.
func (w Workout) Cadence() (float64, bool) {
	return w.extra, w.kind == KindRunning
}

// ElevationGain returns the cycling elevation gain in metres.
func (w Workout) ElevationGain() (float64, bool) {
	return w.extra, w.kind == KindCycling
}

// Pace returns minutes per kilometre for running workouts.
func (w Workout) Pace() (float64, bool) {
	return w.metric, w.kind == KindRunning
}

// Speed returns kilometres per hour for cycling workouts.
func (w Workout) Speed() (float64, bool) {
	return w.metric, w.kind == KindCycling
}

// Metric returns the derived metric selected by the workout kind.
func (w Workout) Metric() Metric {
	v := variants[w.kind]
	return Metric{Name: v.metricName, Value: w.metric, Unit: v.metricUnit}
}

// Extra returns the kind-specific input (cadence or elevation gain).
func (w Workout) Extra() Metric {
	v := variants[w.kind]
	return Metric{Name: v.extraField, Value: w.extra, Unit: v.extraUnit}
}

// Equal reports whether two workouts match field for field. Timestamps are
// compared as instants.
func (w Workout) Equal(o Workout) bool {
	return w.id == o.id &&
		w.kind == o.kind &&
		w.createdAt.Equal(o.createdAt) &&
		w.coords == o.coords &&
		w.distanceKm == o.distanceKm &&
		w.durationMin == o.durationMin &&
		w.extra == o.extra &&
		w.metric == o.metric &&
		w.description == o.description
}

func (w Workout) String() string {
	m := w.Metric()
	return fmt.Sprintf("%s %s (%.2f km, %.2f min, %s %.2f %s)",
		w.id, w.description, w.distanceKm, w.durationMin, m.Name, m.Value, m.Unit)
}

// describe builds the list label, e.g. "Running on April 3". The date is read
// in the timestamp's own location.
func describe(kind Kind, at time.Time) string {
	name := string(kind)
	if name != "" {
		name = strings.ToUpper(name[:1]) + name[1:]
	}
	return fmt.Sprintf("%s on %s %d", name, at.Month(), at.Day())
}
