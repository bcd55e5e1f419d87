// Package rendermetrics defines the opencensus measures recorded while
// rendering frames.
package rendermetrics

import (
	"context"
	"fmt"
	"time"

	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

var (
	// KeyScene tags measurements with the name of the scene being rendered.
	KeyScene = tag.MustNewKey("scene")

	// KeySource tags rows with whether they were traced or read from the
	// row cache.
	KeySource = tag.MustNewKey("source")
)

const (
	SourceTraced = "traced"
	SourceCached = "cached"
)

var (
	Rows         = stats.Int64("rows", "Rows of a frame completed", stats.UnitDimensionless)
	Samples      = stats.Int64("primary_samples", "Camera rays traced", stats.UnitDimensionless)
	ChunkLatency = stats.Float64("chunk_latency", "Time to render one chunk of rows", stats.UnitMilliseconds)
)

var (
	RowsView = &view.View{
		Name:        "rows",
		Description: "Counter of rows that have been completed",
		TagKeys:     []tag.Key{KeyScene, KeySource},
		Measure:     Rows,
		Aggregation: view.Sum(),
	}

	SamplesView = &view.View{
		Name:        "primary_samples",
		Description: "Counter of camera rays that have been traced",
		TagKeys:     []tag.Key{KeyScene},
		Measure:     Samples,
		Aggregation: view.Sum(),
	}

	ChunkLatencyView = &view.View{
		Name:        "chunk_latency",
		Description: "Distribution of chunk render times",
		TagKeys:     []tag.Key{KeyScene},
		Measure:     ChunkLatency,
		Aggregation: view.Distribution(1, 5, 10, 50, 100, 500, 1000, 5000, 10000, 60000),
	}
)

// RegisterViews registers every view in this package with opencensus.
func RegisterViews() error {
	if err := view.Register(RowsView, SamplesView, ChunkLatencyView); err != nil {
		return fmt.Errorf("while registering render views: %w", err)
	}
	return nil
}

// UnregisterViews undoes RegisterViews.
func UnregisterViews() {
	view.Unregister(RowsView, SamplesView, ChunkLatencyView)
}

// RecordRows records n rows of sceneName finished, either traced or taken
// from the cache.
func RecordRows(ctx context.Context, sceneName, source string, n int) {
	stats.RecordWithOptions(
		ctx,
		stats.WithTags(
			tag.Insert(KeyScene, sceneName),
			tag.Insert(KeySource, source),
		),
		stats.WithMeasurements(Rows.M(int64(n))))
}

func RecordSamples(ctx context.Context, sceneName string, n int) {
	stats.RecordWithOptions(
		ctx,
		stats.WithTags(tag.Insert(KeyScene, sceneName)),
		stats.WithMeasurements(Samples.M(int64(n))))
}

func RecordChunkLatency(ctx context.Context, sceneName string, d time.Duration) {
	stats.RecordWithOptions(
		ctx,
		stats.WithTags(tag.Insert(KeyScene, sceneName)),
		stats.WithMeasurements(ChunkLatency.M(float64(d)/float64(time.Millisecond))))
}
