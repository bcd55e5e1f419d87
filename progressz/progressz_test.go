package progressz

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func TestSnapshot(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	tr := newWithClock("room", clock.now)

	if diff := cmp.Diff(tr.Snapshot(), Snapshot{Scene: "room"}); diff != "" {
		t.Errorf("Wrong initial snapshot; diff (-got +want)\n%s", diff)
	}

	clock.t = clock.t.Add(10 * time.Second)
	tr.Update(25, 100)
	clock.t = clock.t.Add(2 * time.Second)

	want := Snapshot{
		Scene:     "room",
		RowsDone:  25,
		Rows:      100,
		Percent:   25,
		Elapsed:   12 * time.Second,
		Remaining: 30 * time.Second,
	}
	if diff := cmp.Diff(tr.Snapshot(), want); diff != "" {
		t.Errorf("Wrong snapshot; diff (-got +want)\n%s", diff)
	}

	tr.Update(100, 100)
	if got := tr.Snapshot().Remaining; got != 0 {
		t.Errorf("Remaining after the last row = %v, want 0", got)
	}
}

func get(t *testing.T, mux *http.ServeMux, path string) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	body, err := io.ReadAll(rec.Result().Body)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	return rec.Code, string(body)
}

func TestDebugHandlers(t *testing.T) {
	tr := New("shapes")
	mux := http.NewServeMux()
	tr.RegisterDebugHandlers(mux)

	tr.Update(3, 40)

	code, body := get(t, mux, "/progressz")
	if code != http.StatusOK {
		t.Errorf("/progressz status = %d, want %d", code, http.StatusOK)
	}
	for _, want := range []string{"Rendering shapes", "3 of 40 rows (7.5%)"} {
		if !strings.Contains(body, want) {
			t.Errorf("/progressz body does not contain %q:\n%s", want, body)
		}
	}

	code, body = get(t, mux, "/healthz")
	if code != http.StatusOK || body != "200 OK" {
		t.Errorf("/healthz = %d %q, want 200 \"200 OK\"", code, body)
	}
}
