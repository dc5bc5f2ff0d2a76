// Package store holds the authoritative, ordered list of recorded workouts
// and mediates its persistence to a durable key-value backend.
package store

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/claude/mapty/internal/models"
	"github.com/claude/mapty/internal/storage"
)

// DefaultKey is the backend key holding the snapshot.
const DefaultKey = "workouts"

// Store is an ordered, append-only collection of workouts. Insertion order is
// creation order. It is safe for concurrent use, though callers are expected
// to have a single writer.
type Store struct {
	mu       sync.RWMutex
	workouts []models.Workout

	kv  storage.KV
	key string
	log *slog.Logger
}

// New returns an empty store persisting under key in kv. An empty key uses
// DefaultKey.
func New(kv storage.KV, key string, log *slog.Logger) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{kv: kv, key: key, log: log}
}

// Add appends w. There is no deduplication.
func (s *Store) Add(w models.Workout) error {
	if w.IsZero() {
		return fmt.Errorf("adding workout: %w", models.ErrInvalidWorkoutInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workouts = append(s.workouts, w)
	return nil
}

// FindByID returns the workout with the given id, or models.ErrNotFound.
func (s *Store) FindByID(id string) (models.Workout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, w := range s.workouts {
		if w.ID() == id {
			return w, nil
		}
	}
	return models.Workout{}, fmt.Errorf("%w: %q", models.ErrNotFound, id)
}

// All returns a copy of the workouts in insertion order.
func (s *Store) All() []models.Workout {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.workouts)
}

// Len returns the number of workouts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.workouts)
}

// Serialize renders the whole collection as a snapshot. It does not touch
// the backend.
func (s *Store) Serialize() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.EncodeSnapshot(s.workouts)
}

// Hydrate replaces the collection with the workouts in text. Blank or
// corrupt snapshots leave the store empty; that is reported in the log, not
// returned. It returns the number of workouts loaded.
func (s *Store) Hydrate(text string) int {
	workouts, mismatches, err := models.DecodeSnapshot(text)
	if err != nil {
		s.log.Warn("snapshot corrupt, starting empty", "key", s.key, "error", err)
		workouts = nil
	}
	for _, mm := range mismatches {
		s.log.Warn("stored derived value recomputed",
			"id", mm.ID, "field", mm.Field, "stored", mm.Stored, "recomputed", mm.Recomputed)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.workouts = workouts
	return len(workouts)
}

// Load hydrates the store from the backend. A missing key or an unreadable
// backend leaves the store empty.
func (s *Store) Load(ctx context.Context) int {
	text, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		s.log.Warn("reading snapshot failed, starting empty", "key", s.key, "error", err)
		return s.Hydrate("")
	}
	if !ok {
		s.log.Debug("no snapshot stored", "key", s.key)
	}
	n := s.Hydrate(text)
	s.log.Debug("snapshot loaded", "key", s.key, "workouts", n)
	return n
}

// Persist writes the current snapshot to the backend.
func (s *Store) Persist(ctx context.Context) error {
	text, err := s.Serialize()
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, s.key, text); err != nil {
		return fmt.Errorf("persisting snapshot: %w", err)
	}
	return nil
}

// Reset deletes the durable snapshot and then clears the collection. If the
// backend delete fails nothing is cleared.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("resetting store: %w", err)
	}
	s.workouts = nil
	return nil
}

// Sort fields accepted by Sorted.
const (
	SortDate     = "date"
	SortDistance = "distance"
	SortDuration = "duration"
	SortMetric   = "metric"
)

// ErrUnknownSort is returned by Sorted for an unsupported field.
var ErrUnknownSort = errors.New("unknown sort field")

// Sorted returns a copy of the workouts ordered ascending by field. Ties keep
// insertion order. The stored order is unchanged. SortMetric groups workouts
// by kind first, since pace and speed are not comparable.
func (s *Store) Sorted(field string) ([]models.Workout, error) {
	var less func(a, b models.Workout) int
	switch field {
	case "":
		return s.All(), nil
	case SortDate:
		less = func(a, b models.Workout) int { return a.CreatedAt().Compare(b.CreatedAt()) }
	case SortDistance:
		less = func(a, b models.Workout) int { return cmp.Compare(a.DistanceKm(), b.DistanceKm()) }
	case SortDuration:
		less = func(a, b models.Workout) int { return cmp.Compare(a.DurationMin(), b.DurationMin()) }
	case SortMetric:
		less = func(a, b models.Workout) int {
			return cmp.Or(
				cmp.Compare(a.Kind(), b.Kind()),
				cmp.Compare(a.Metric().Value, b.Metric().Value),
			)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSort, field)
	}

	out := s.All()
	slices.SortStableFunc(out, less)
	return out, nil
}
