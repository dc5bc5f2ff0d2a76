package mcp

import (
	"context"
	"encoding/json"

	"github.com/claude/mapty/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
)

// KindSummary aggregates the workouts of one type.
type KindSummary struct {
	Count       int     `json:"count"`
	DistanceKm  float64 `json:"distance_km"`
	DurationMin float64 `json:"duration_min"`
	// AvgMetric is the mean pace (min/km) or speed (km/h) over the workouts.
	AvgMetric  float64 `json:"avg_metric"`
	MetricUnit string  `json:"metric_unit"`
}

// Summary is the content of the mapty://summary resource.
type Summary struct {
	Total  int                         `json:"total"`
	ByType map[models.Kind]KindSummary `json:"by_type"`
}

func summarize(workouts []models.Workout) Summary {
	sum := Summary{Total: len(workouts), ByType: map[models.Kind]KindSummary{}}
	for _, w := range workouts {
		ks := sum.ByType[w.Kind()]
		m := w.Metric()
		ks.Count++
		ks.DistanceKm += w.DistanceKm()
		ks.DurationMin += w.DurationMin()
		ks.AvgMetric += m.Value
		ks.MetricUnit = m.Unit
		sum.ByType[w.Kind()] = ks
	}
	for k, ks := range sum.ByType {
		ks.AvgMetric /= float64(ks.Count)
		sum.ByType[k] = ks
	}
	return sum
}

func (h *handlers) snapshot(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	text, err := h.store.Serialize()
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     text,
		},
	}, nil
}

func (h *handlers) summary(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(summarize(h.store.All()))
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
