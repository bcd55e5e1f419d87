// whitted renders scenes with a recursive ray tracer.
package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"net/http"
	httppprof "net/http/pprof"
	"os"
	"os/signal"
	"path"
	"runtime/pprof"
	"syscall"
	"time"

	"cloud.google.com/go/profiler"
	"contrib.go.opencensus.io/exporter/stackdriver"
	cloudtrace "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/trace"
	"github.com/golang/glog"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"whitted/canvas"
	"whitted/objstore"
	"whitted/progressz"
	"whitted/render"
	"whitted/rendermetrics"
	"whitted/rowcache"
	"whitted/scenefile"
	"whitted/scenes"
)

var cmdRoot = &cobra.Command{
	Use: "whitted",

	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// glog complains about logging before flag.Parse otherwise; its
		// flags were already set through cobra.
		flag.CommandLine.Parse([]string{})
	},
}

func init() {
	cmdRoot.PersistentFlags().AddGoFlagSet(flag.CommandLine)
}

var (
	sceneName      string
	sceneFile      string
	output         string
	width          int
	height         int
	samples        int
	workers        int
	maxDepth       int
	seed           int64
	cacheDir       string
	resume         bool
	debugListen    string
	cpuProfile     string
	memProfile     string
	enableProfiler bool

	monitoring           bool
	monitoringProject    string
	monitoringTraceRatio float64
)

var cmdRender = &cobra.Command{
	Use:          "render",
	Short:        "Render a built-in scene or a scene file to an image",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return doRender()
	},
}

func init() {
	f := cmdRender.Flags()
	f.StringVar(&sceneName, "scene", "default", "Built-in scene to render.  See `whitted scenes list`.")
	f.StringVar(&sceneFile, "scene-file", "", "YAML scene file to render instead of a built-in scene.  Local path or gs://bucket/object.")
	f.StringVar(&output, "output", "out.ppm", "Where to write the image.  Local path or gs://bucket/object; the extension picks the format (.ppm or .png).")
	f.IntVar(&width, "width", 0, "Image width in pixels.  Zero keeps the scene's width.")
	f.IntVar(&height, "height", 0, "Image height in pixels.  Zero keeps the scene's height.")
	f.IntVar(&samples, "samples", 1, "Rays per pixel along each axis; each pixel averages samples^2 rays.")
	f.IntVar(&workers, "workers", 0, "Chunks of rows rendered at once.  Zero means one per CPU.")
	f.IntVar(&maxDepth, "max-depth", -1, "Reflection and refraction bounces.  Negative keeps the scene's setting.")
	f.Int64Var(&seed, "seed", 0, "Seed for noise textures.")
	f.StringVar(&cacheDir, "cache-dir", "", "Directory for a row cache, so an interrupted render can be resumed.")
	f.BoolVar(&resume, "resume", false, "Reuse rows already in --cache-dir instead of clearing it.")
	f.StringVar(&debugListen, "debug-listen", "", "Server address:port for debug endpoint.  Empty disables it.")
	f.StringVar(&cpuProfile, "cpuprofile", "", "write cpu profile to `file`")
	f.StringVar(&memProfile, "memprofile", "", "write memory profile to `file`")
	f.BoolVar(&enableProfiler, "enable-profiling", false, "Enable Cloud Profiler?")
	f.BoolVar(&monitoring, "monitoring", false, "Enable monitoring?")
	f.StringVar(&monitoringProject, "monitoring-project", "", "Override project used for monitoring integration.  If not specified, the project associated with Application Default Credentials is used.")
	f.Float64Var(&monitoringTraceRatio, "monitoring-trace-ratio", 1, "What ratio of traces should be exported?")
}

var cmdScenes = &cobra.Command{
	Use:   "scenes [command]",
	Short: "Inspect the built-in scenes",
}

var cmdScenesList = &cobra.Command{
	Use:  "list",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range scenes.Names() {
			l, err := scenes.Lookup(name)
			if err != nil {
				return fmt.Errorf("while building scene %q: %w", name, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-12s %4dx%-4d %3d objects, %d lights\n",
				name, l.View.Width, l.View.Height, l.Scene.Len(), len(l.Scene.Lights()))
		}
		return nil
	},
}

func main() {
	glog.CopyStandardLogTo("INFO")
	defer glog.Flush()

	cmdRoot.AddCommand(cmdRender, cmdScenes)
	cmdScenes.AddCommand(cmdScenesList)

	if err := cmdRoot.Execute(); err != nil {
		glog.Exitf("Error: %v", err)
	}
}

func doRender() error {
	glog.Infof("flags:")
	glog.Infof("scene: %q", sceneName)
	glog.Infof("scene-file: %q", sceneFile)
	glog.Infof("output: %q", output)
	glog.Infof("size: %dx%d", width, height)
	glog.Infof("samples: %d", samples)
	glog.Infof("workers: %d", workers)
	glog.Infof("max-depth: %d", maxDepth)
	glog.Infof("seed: %d", seed)
	glog.Infof("cache-dir: %q (resume=%v)", cacheDir, resume)
	glog.Infof("debug-listen: %q", debugListen)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cancelling stops the render at the next row; rows already in the row
	// cache survive for --resume.
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signalCh)
	go func() {
		select {
		case sig := <-signalCh:
			glog.Infof("Got %v, stopping", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	if cpuProfile != "" {
		f, err := os.Create(cpuProfile)
		if err != nil {
			return fmt.Errorf("while creating CPU profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("while starting CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	// Cloud Profiler initialization, best done as early as possible.
	if enableProfiler {
		if err := profiler.Start(profiler.Config{
			Service:        "whitted",
			ServiceVersion: "0.0.1",
			ProjectID:      monitoringProject,
		}); err != nil {
			return fmt.Errorf("while initializing profiler: %w", err)
		}
	}

	if monitoring {
		traceOpts := []cloudtrace.Option{}
		if monitoringProject != "" {
			traceOpts = append(traceOpts, cloudtrace.WithProjectID(monitoringProject))
		}
		_, traceShutdown, err := cloudtrace.InstallNewPipeline(traceOpts, sdktrace.WithSampler(sdktrace.TraceIDRatioBased(monitoringTraceRatio)))
		if err != nil {
			return fmt.Errorf("while installing Cloud Trace OpenTelemetry trace pipeline: %w", err)
		}
		defer traceShutdown()

		if err := rendermetrics.RegisterViews(); err != nil {
			return err
		}
		exporter, err := stackdriver.NewExporter(stackdriver.Options{
			ProjectID:         monitoringProject,
			MetricPrefix:      "whitted",
			ReportingInterval: 60 * time.Second,
		})
		if err != nil {
			return fmt.Errorf("while initializing metrics exporter: %w", err)
		}
		if err := exporter.StartMetricsExporter(); err != nil {
			return fmt.Errorf("while starting metrics exporter: %w", err)
		}
		defer exporter.Flush()
		defer exporter.StopMetricsExporter()
	}

	store := objstore.New()
	defer store.Close()

	loaded, label, frameKey, err := loadScene(ctx, store)
	if err != nil {
		return err
	}

	tracker := progressz.New(label)
	if debugListen != "" {
		startDebugServer(tracker)
	}

	if err := renderToOutput(ctx, store, loaded, label, frameKey, tracker); err != nil {
		return err
	}

	if memProfile != "" {
		f, err := os.Create(memProfile)
		if err != nil {
			return fmt.Errorf("while creating memory profile: %w", err)
		}
		defer f.Close()
		if err := pprof.WriteHeapProfile(f); err != nil {
			return fmt.Errorf("while writing memory profile: %w", err)
		}
	}

	return nil
}

// loadScene returns the scene to render, a label for logs and metrics, and
// the prefix of its row cache key.
func loadScene(ctx context.Context, store *objstore.Store) (*scenefile.Loaded, string, string, error) {
	if sceneFile == "" {
		l, err := scenes.Lookup(sceneName)
		if err != nil {
			return nil, "", "", err
		}
		return l, sceneName, "builtin:" + sceneName, nil
	}

	data, err := store.ReadAll(ctx, sceneFile)
	if err != nil {
		return nil, "", "", fmt.Errorf("while reading scene file: %w", err)
	}
	l, err := scenefile.Parse(data)
	if err != nil {
		return nil, "", "", fmt.Errorf("while parsing %s: %w", sceneFile, err)
	}
	digest := rowcache.FrameDigest(string(data))
	return l, path.Base(sceneFile), "file:" + hex.EncodeToString(digest[:]), nil
}

func renderToOutput(ctx context.Context, store *objstore.Store, loaded *scenefile.Loaded, label, frameKey string, tracker *progressz.Tracker) (err error) {
	tracer := otel.Tracer("whitted/cmd/whitted")
	ctx, span := tracer.Start(ctx, "whitted.render")
	defer span.End()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	encode, err := canvas.EncoderFor(path.Ext(output))
	if err != nil {
		return err
	}

	view := loaded.View
	if width > 0 {
		view.Width = width
	}
	if height > 0 {
		view.Height = height
	}
	cam, err := view.Camera()
	if err != nil {
		return fmt.Errorf("while building camera: %w", err)
	}
	if maxDepth >= 0 {
		loaded.Scene.MaxDepth = maxDepth
	}
	span.SetAttributes(
		attribute.String("scene", label),
		attribute.Int("width", view.Width),
		attribute.Int("height", view.Height),
	)

	reporter := newProgressReporter(tracker)
	opts := render.Options{
		Workers:   workers,
		Samples:   samples,
		Seed:      seed,
		SceneName: label,
		Progress:  reporter.update,
	}

	if cacheDir != "" {
		cache, err := rowcache.Open(cacheDir, !resume)
		if err != nil {
			return err
		}
		defer cache.Close()

		opts.Cache = cache
		opts.CacheKey = fmt.Sprintf("%s;%dx%d;fov=%v;from=%v;to=%v;up=%v;depth=%d;samples=%d;seed=%d",
			frameKey, view.Width, view.Height, view.FieldOfView, view.From, view.To, view.Up,
			loaded.Scene.MaxDepth, samples, seed)

		rows, err := cache.CachedRows(opts.CacheKey)
		if err != nil {
			return err
		}
		glog.Infof("Row cache holds %d of %d rows", len(rows), view.Height)
	}

	glog.Infof("Rendering %s at %dx%d", label, view.Width, view.Height)
	start := time.Now()
	im, err := render.Frame(ctx, cam, loaded.Scene, opts)
	reporter.finish()
	if err != nil {
		return fmt.Errorf("while rendering: %w", err)
	}
	glog.Infof("Rendered %s in %v", label, time.Since(start))

	w, err := store.Create(ctx, output)
	if err != nil {
		return fmt.Errorf("while opening output: %w", err)
	}
	if err := encode(im, w); err != nil {
		w.Close()
		return fmt.Errorf("while writing %s: %w", output, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("while closing %s: %w", output, err)
	}
	glog.Infof("Wrote %s", output)
	return nil
}

func startDebugServer(tracker *progressz.Tracker) {
	debugServeMux := http.NewServeMux()
	tracker.RegisterDebugHandlers(debugServeMux)
	debugServeMux.HandleFunc("/debug/pprof/", httppprof.Index)
	debugServeMux.HandleFunc("/debug/pprof/cmdline", httppprof.Cmdline)
	debugServeMux.HandleFunc("/debug/pprof/profile", httppprof.Profile)
	debugServeMux.HandleFunc("/debug/pprof/symbol", httppprof.Symbol)
	debugServeMux.HandleFunc("/debug/pprof/trace", httppprof.Trace)

	debugServer := &http.Server{
		Addr:    debugListen,
		Handler: debugServeMux,

		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		if err := debugServer.ListenAndServe(); err != nil {
			glog.Errorf("Debug server died: %v", err)
		}
	}()
}
