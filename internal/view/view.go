// Package view renders workouts for the list and the map.
package view

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/claude/mapty/internal/models"
)

// DefaultZoom is the map zoom used when focusing a workout.
const DefaultZoom = 13

var icons = map[models.Kind]string{
	models.KindRunning: "🏃‍♂️",
	models.KindCycling: "🚴‍♀️",
}

// Icon returns the emoji shown next to a workout.
func Icon(k models.Kind) string {
	return icons[k]
}

// Detail is one value row of a list entry.
type Detail struct {
	Icon  string `json:"icon"`
	Value string `json:"value"`
	Unit  string `json:"unit"`
}

// Entry is a workout as shown in the sidebar list.
type Entry struct {
	ID      string   `json:"id"`
	Type    string   `json:"type"`
	Title   string   `json:"title"`
	Details []Detail `json:"details"`
}

// NewEntry builds the list entry for w: distance, duration, derived metric
// (one decimal) and the kind's extra value.
func NewEntry(w models.Workout) Entry {
	m, x := w.Metric(), w.Extra()
	return Entry{
		ID:    w.ID(),
		Type:  string(w.Kind()),
		Title: w.Description(),
		Details: []Detail{
			{Icon: Icon(w.Kind()), Value: num(w.DistanceKm()), Unit: "km"},
			{Icon: "⏱", Value: num(w.DurationMin()), Unit: "min"},
			{Icon: "⚡️", Value: strconv.FormatFloat(m.Value, 'f', 1, 64), Unit: m.Unit},
			{Icon: extraIcon(w.Kind()), Value: num(x.Value), Unit: x.Unit},
		},
	}
}

func extraIcon(k models.Kind) string {
	if k == models.KindCycling {
		return "⛰"
	}
	return "🦶🏼"
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// String renders the entry on one line.
func (e Entry) String() string {
	parts := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		parts = append(parts, fmt.Sprintf("%s %s %s", d.Icon, d.Value, d.Unit))
	}
	return fmt.Sprintf("%s  %s  [%s]", e.Title, strings.Join(parts, "  "), e.ID)
}

// Popup is the text and style of a map marker popup.
type Popup struct {
	Text  string `json:"text"`
	Class string `json:"class"`
}

// NewPopup builds the marker popup for w.
func NewPopup(w models.Workout) Popup {
	return Popup{
		Text:  fmt.Sprintf("%s %s", Icon(w.Kind()), w.Description()),
		Class: string(w.Kind()) + "-popup",
	}
}

// Focus asks the map to centre on a workout.
type Focus struct {
	Lat         float64       `json:"lat"`
	Lng         float64       `json:"lng"`
	Zoom        int           `json:"zoom"`
	Animate     bool          `json:"animate"`
	PanDuration time.Duration `json:"pan_duration"`
}

// NewFocus returns the focus request for selecting w in the list. A zoom
// of zero uses DefaultZoom.
func NewFocus(w models.Workout, zoom int) Focus {
	if zoom == 0 {
		zoom = DefaultZoom
	}
	c := w.Coords()
	return Focus{Lat: c.Lat, Lng: c.Lng, Zoom: zoom, Animate: true, PanDuration: time.Second}
}
