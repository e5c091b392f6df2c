package locker

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"

	"github.com/nasa-jpl/pcolab/generichttp"
)

type rtHolder struct {
	rt generichttp.RouteTable
}

func (h rtHolder) RT() generichttp.RouteTable { return h.rt }

func TestCheck(t *testing.T) {
	l := New()
	h := rtHolder{generichttp.RouteTable{
		{Method: http.MethodGet, Path: "/recording"}:  func(w http.ResponseWriter, r *http.Request) {},
		{Method: http.MethodPost, Path: "/recording"}: func(w http.ResponseWriter, r *http.Request) {},
	}}
	Inject(h, l)
	mux := chi.NewRouter()
	mux.Use(l.Check)
	h.rt.Bind(mux)

	do := func(method, path, body string) int {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(method, path, strings.NewReader(body)))
		return w.Code
	}

	if code := do(http.MethodPost, "/recording", `{"bool":true}`); code != http.StatusOK {
		t.Errorf("expected an unlocked post to pass, got %d", code)
	}
	if code := do(http.MethodPost, "/lock", `{"bool":true}`); code != http.StatusOK {
		t.Fatalf("lock: %d", code)
	}
	if !l.Locked() {
		t.Fatal("expected the locker to be locked")
	}
	if code := do(http.MethodPost, "/recording", `{"bool":false}`); code != http.StatusLocked {
		t.Errorf("expected 423 for a post while locked, got %d", code)
	}
	if code := do(http.MethodGet, "/recording", ""); code != http.StatusOK {
		t.Errorf("expected reads to pass while locked, got %d", code)
	}
	if code := do(http.MethodPost, "/lock", `{"bool":false}`); code != http.StatusOK {
		t.Errorf("expected the lock route to stay reachable, got %d", code)
	}
	if l.Locked() {
		t.Error("expected the locker to be unlocked")
	}
}
