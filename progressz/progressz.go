// Package progressz serves the state of a running render on a debug HTTP
// server.
package progressz

import (
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/golang/glog"
	"go.opentelemetry.io/otel"
)

// Tracker records render progress.  Update can be passed directly as a
// render progress function.
type Tracker struct {
	scene string
	now   func() time.Time

	mu      sync.Mutex
	cur     int
	tot     int
	started time.Time
	updated time.Time
}

func New(scene string) *Tracker {
	return newWithClock(scene, time.Now)
}

func newWithClock(scene string, now func() time.Time) *Tracker {
	return &Tracker{
		scene:   scene,
		now:     now,
		started: now(),
	}
}

func (t *Tracker) Update(cur, tot int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cur = cur
	t.tot = tot
	t.updated = t.now()
}

type Snapshot struct {
	Scene    string
	RowsDone int
	Rows     int
	Percent  float64
	Elapsed  time.Duration

	// Remaining is a linear estimate; zero until the first row is done.
	Remaining time.Duration
}

func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := Snapshot{
		Scene:    t.scene,
		RowsDone: t.cur,
		Rows:     t.tot,
		Elapsed:  t.now().Sub(t.started),
	}
	if t.tot > 0 {
		s.Percent = 100 * float64(t.cur) / float64(t.tot)
	}
	if t.cur > 0 && t.cur < t.tot {
		perRow := t.updated.Sub(t.started) / time.Duration(t.cur)
		s.Remaining = perRow * time.Duration(t.tot-t.cur)
	}
	return s
}

func (t *Tracker) RegisterDebugHandlers(mux *http.ServeMux) {
	mux.Handle("/healthz", Healthz())
	mux.HandleFunc("/progressz", t.debugHandlerProgress)
}

const progressHTML = `
<!DOCTYPE html>
<head>
	<title>Render Progress</title>
</head>

<h1>Rendering {{.Scene}}</h1>
<p>{{.RowsDone}} of {{.Rows}} rows ({{printf "%.1f" .Percent}}%)</p>
<p>Elapsed: {{.Elapsed}}</p>
{{if .Remaining}}<p>Remaining: about {{.Remaining}}</p>{{end}}
`

var progressTemplate = template.Must(template.New("progress").Parse(progressHTML))

func (t *Tracker) debugHandlerProgress(w http.ResponseWriter, req *http.Request) {
	tracer := otel.Tracer("whitted/progressz")
	_, span := tracer.Start(req.Context(), "Tracker.debugHandlerProgress")
	defer span.End()

	s := t.Snapshot()
	s.Elapsed = s.Elapsed.Round(time.Second)
	s.Remaining = s.Remaining.Round(time.Second)
	if err := progressTemplate.Execute(w, s); err != nil {
		glog.Errorf("Error while executing template: %v", err)
		return
	}
}

type healthzHandler struct{}

// Healthz answers every request with 200 OK.
func Healthz() http.Handler {
	return healthzHandler{}
}

func (healthzHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("200 OK"))
}
