package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// snapshotRecord is the persisted form of a workout. Key names match the
// browser app's localStorage item so its exports load unchanged.
type snapshotRecord struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	Date          time.Time `json:"date"`
	Coords        []float64 `json:"coords"`
	Distance      float64   `json:"distance"`
	Duration      float64   `json:"duration"`
	Cadence       *float64  `json:"cadence,omitempty"`
	Pace          *float64  `json:"pace,omitempty"`
	ElevationGain *float64  `json:"elevationGain,omitempty"`
	Speed         *float64  `json:"speed,omitempty"`
	Description   string    `json:"description"`
}

// Mismatch records a stored derived value that disagreed with the value
// recomputed from base fields during decoding.
type Mismatch struct {
	ID         string
	Field      string
	Stored     float64
	Recomputed float64
}

// EncodeSnapshot renders workouts, in order, as a JSON array.
func EncodeSnapshot(workouts []Workout) (string, error) {
	records := make([]snapshotRecord, 0, len(workouts))
	for _, w := range workouts {
		rec := snapshotRecord{
			ID:          w.id,
			Type:        string(w.kind),
			Date:        w.createdAt,
			Coords:      []float64{w.coords.Lat, w.coords.Lng},
			Distance:    w.distanceKm,
			Duration:    w.durationMin,
			Description: w.description,
		}
		extra, metric := w.extra, w.metric
		switch w.kind {
		case KindRunning:
			rec.Cadence, rec.Pace = &extra, &metric
		case KindCycling:
			rec.ElevationGain, rec.Speed = &extra, &metric
		}
		records = append(records, rec)
	}

	data, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("encoding snapshot: %w", err)
	}
	return string(data), nil
}

// DecodeSnapshot parses a snapshot produced by EncodeSnapshot (or the browser
// app). Blank input and a JSON null decode to no workouts. Base fields are
// validated with the factory rules and the derived metric is recomputed;
// disagreeing stored values are returned as mismatches. The stored
// description is kept because it reflects the author's local calendar day.
// Repeated ids are kept as they are, since the store does not deduplicate.
// Any structural problem yields an error wrapping ErrCorruptSnapshot.
func DecodeSnapshot(text string) ([]Workout, []Mismatch, error) {
	trimmed := bytes.TrimSpace([]byte(text))
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil, nil
	}

	var records []snapshotRecord
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}

	workouts := make([]Workout, 0, len(records))
	var mismatches []Mismatch

	for i, rec := range records {
		w, mm, err := rec.workout()
		if err != nil {
			return nil, nil, fmt.Errorf("%w: record %d: %v", ErrCorruptSnapshot, i, err)
		}
		workouts = append(workouts, w)
		mismatches = append(mismatches, mm...)
	}
	return workouts, mismatches, nil
}

func (rec snapshotRecord) workout() (Workout, []Mismatch, error) {
	if rec.ID == "" {
		return Workout{}, nil, fmt.Errorf("missing id")
	}
	if rec.Date.IsZero() {
		return Workout{}, nil, fmt.Errorf("missing date")
	}
	if len(rec.Coords) != 2 {
		return Workout{}, nil, fmt.Errorf("coords must hold [lat, lng], got %d values", len(rec.Coords))
	}

	kind, ok := ParseKind(rec.Type)
	if !ok {
		return Workout{}, nil, fmt.Errorf("unknown type %q", rec.Type)
	}

	var extra, stored *float64
	switch kind {
	case KindRunning:
		extra, stored = rec.Cadence, rec.Pace
	case KindCycling:
		extra, stored = rec.ElevationGain, rec.Speed
	}
	v := variants[kind]
	if extra == nil {
		return Workout{}, nil, fmt.Errorf("missing %s", v.extraField)
	}

	in := Input{
		Type:        rec.Type,
		Coords:      Coordinates{Lat: rec.Coords[0], Lng: rec.Coords[1]},
		DistanceKm:  rec.Distance,
		DurationMin: rec.Duration,
		Extra:       *extra,
	}
	if _, err := Validate(in); err != nil {
		return Workout{}, nil, err
	}

	w := build(rec.ID, kind, rec.Date, in)
	if rec.Description != "" {
		w.description = rec.Description
	}

	var mm []Mismatch
	if stored != nil && *stored != w.metric {
		mm = append(mm, Mismatch{ID: rec.ID, Field: v.metricName, Stored: *stored, Recomputed: w.metric})
	}
	return w, mm, nil
}
