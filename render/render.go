// Package render renders frames in parallel.
//
// A frame is split into chunks of rows.  Each chunk is rendered by its own
// worker into a private cut of the image and pasted back when finished, with
// the number of chunks in flight bounded by Options.Workers.  The scene and
// camera are only read while rendering.
package render

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/golang/glog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"whitted/camera"
	"whitted/canvas"
	"whitted/rendermetrics"
	"whitted/rgb"
	"whitted/scene"
)

const tracerName = "whitted/render"

// DefaultChunkRows is the number of rows rendered by one worker when
// Options.ChunkRows is unset.
const DefaultChunkRows = 8

// ProgressFunction is called after each row completes with the number of
// rows completed so far and the number in the frame.  Calls are serialized.
type ProgressFunction func(cur, tot int)

// RowCache stores finished rows across runs.  *rowcache.Cache implements
// it.
type RowCache interface {
	GetRow(frameKey string, y int, dst []rgb.T) (bool, error)
	PutRow(frameKey string, y int, row []rgb.T) error
}

type Options struct {
	// Workers bounds the number of chunks rendered at once.  Zero means
	// runtime.NumCPU().
	Workers int

	// ChunkRows is the number of rows per chunk.  Zero means
	// DefaultChunkRows.
	ChunkRows int

	// Samples is the side of the grid of rays traced per pixel; each pixel
	// averages Samples*Samples rays.  Zero means one ray through the pixel
	// center.
	Samples int

	// Seed offsets the per-row random sources that drive noise textures.
	Seed int64

	// SceneName tags recorded metrics.
	SceneName string

	Progress ProgressFunction

	// If Cache is set, rows already stored under CacheKey are reused and
	// newly traced rows are stored.
	Cache    RowCache
	CacheKey string
}

func (o Options) withDefaults() (Options, error) {
	if o.Workers < 0 || o.ChunkRows < 0 || o.Samples < 0 {
		return o, fmt.Errorf("negative option: workers=%d chunk_rows=%d samples=%d", o.Workers, o.ChunkRows, o.Samples)
	}
	if o.Workers == 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.ChunkRows == 0 {
		o.ChunkRows = DefaultChunkRows
	}
	if o.Samples == 0 {
		o.Samples = 1
	}
	if o.Cache != nil && o.CacheKey == "" {
		return o, errors.New("row cache given without a cache key")
	}
	return o, nil
}

// Frame renders the view of w seen by cam.  It stops early, returning the
// context's error, if ctx is cancelled.
func Frame(ctx context.Context, cam *camera.Camera, w *scene.Scene, opts Options) (*canvas.Canvas, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	tracer := otel.Tracer(tracerName)
	var span trace.Span
	ctx, span = tracer.Start(ctx, "render.Frame", trace.WithAttributes(
		attribute.Int("width", cam.HSize),
		attribute.Int("height", cam.VSize),
		attribute.Int("workers", opts.Workers),
		attribute.Int("samples", opts.Samples),
		attribute.String("scene", opts.SceneName),
	))
	defer span.End()

	im := canvas.New(cam.HSize, cam.VSize)

	// mu locks both curProgress and im.
	mu := sync.Mutex{}
	curProgress := 0
	rowDone := func() {
		mu.Lock()
		defer mu.Unlock()
		curProgress++
		if opts.Progress != nil {
			opts.Progress(curProgress, cam.VSize)
		}
	}

	// Use errgroup and semaphore to limit concurrency.
	eg, egCtx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(int64(opts.Workers))

	var acquireErr error
	for rowSrc := 0; rowSrc < cam.VSize; rowSrc += opts.ChunkRows {
		rowLim := min(rowSrc+opts.ChunkRows, cam.VSize)

		if err := sem.Acquire(egCtx, 1); err != nil {
			acquireErr = fmt.Errorf("while acquiring concurrency limiter semaphore: %w", err)
			break
		}

		worker := &chunkWorker{
			cam:     cam,
			world:   w,
			opts:    &opts,
			rowSrc:  rowSrc,
			rowLim:  rowLim,
			rowDone: rowDone,
		}
		worker.im = im.Cut(rowSrc, rowLim, 0, cam.HSize)

		eg.Go(func() error {
			defer sem.Release(1)
			if err := worker.render(egCtx); err != nil {
				return fmt.Errorf("while rendering rows [%d, %d): %w", worker.rowSrc, worker.rowLim, err)
			}

			mu.Lock()
			defer mu.Unlock()
			im.Paste(worker.im, worker.rowSrc, 0)
			return nil
		})
	}

	err = eg.Wait()
	if err == nil {
		err = acquireErr
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("while waiting for completion of errgroup: %w", err)
	}

	return im, nil
}

type chunkWorker struct {
	cam   *camera.Camera
	world *scene.Scene
	opts  *Options

	// im holds rows [rowSrc, rowLim) of the frame.
	im     *canvas.Canvas
	rowSrc int
	rowLim int

	rowDone func()
}

func (w *chunkWorker) render(ctx context.Context) error {
	tracer := otel.Tracer(tracerName)
	var span trace.Span
	ctx, span = tracer.Start(ctx, "render.chunk", trace.WithAttributes(
		attribute.Int("row_src", w.rowSrc),
		attribute.Int("row_lim", w.rowLim),
	))
	defer span.End()

	start := time.Now()
	traced := 0
	for y := w.rowSrc; y < w.rowLim; y++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		row := w.im.Row(y - w.rowSrc)

		if w.opts.Cache != nil {
			found, err := w.opts.Cache.GetRow(w.opts.CacheKey, y, row)
			if err != nil {
				return err
			}
			if found {
				rendermetrics.RecordRows(ctx, w.opts.SceneName, rendermetrics.SourceCached, 1)
				w.rowDone()
				continue
			}
		}

		w.renderRow(y, row)
		traced++

		if w.opts.Cache != nil {
			if err := w.opts.Cache.PutRow(w.opts.CacheKey, y, row); err != nil {
				return err
			}
		}

		rendermetrics.RecordRows(ctx, w.opts.SceneName, rendermetrics.SourceTraced, 1)
		w.rowDone()
	}

	elapsed := time.Since(start)
	rendermetrics.RecordSamples(ctx, w.opts.SceneName, traced*w.cam.HSize*w.opts.Samples*w.opts.Samples)
	rendermetrics.RecordChunkLatency(ctx, w.opts.SceneName, elapsed)
	span.SetAttributes(attribute.Int("traced_rows", traced))
	glog.V(1).Infof("Rendered rows [%d, %d) (%d traced) in %v", w.rowSrc, w.rowLim, traced, elapsed)
	return nil
}

// renderRow traces row y of the frame into row.
func (w *chunkWorker) renderRow(y int, row []rgb.T) {
	rng := camera.RowRand(w.opts.Seed, y)
	n := w.opts.Samples

	for x := range row {
		if n == 1 {
			row[x] = w.world.ColorAt(w.cam.Ray(x, y), rng)
			continue
		}

		// Stratified n x n grid, each sample at the center of its cell.
		var sum rgb.T
		for j := 0; j < n; j++ {
			for i := 0; i < n; i++ {
				px := float64(x) + (float64(i)+0.5)/float64(n)
				py := float64(y) + (float64(j)+0.5)/float64(n)
				sum = rgb.Add(sum, w.world.ColorAt(w.cam.RayThrough(px, py), rng))
			}
		}
		row[x] = rgb.Scale(sum, 1/float64(n*n))
	}
}
