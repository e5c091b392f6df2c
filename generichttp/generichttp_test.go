package generichttp_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"

	"github.com/nasa-jpl/pcolab/generichttp"
)

func TestGetFloatJSON(t *testing.T) {
	h := generichttp.GetFloat(func() (float64, error) { return 1.5, nil })
	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/", nil))
	f := generichttp.FloatT{}
	if err := json.NewDecoder(w.Body).Decode(&f); err != nil {
		t.Fatal(err)
	}
	if f.F64 != 1.5 {
		t.Errorf("expected 1.5, got %v", f.F64)
	}
}

func TestGetIntPlainText(t *testing.T) {
	h := generichttp.GetInt(func() (int, error) { return 42, nil })
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Accept", "text/plain")
	h(w, r)
	if body := w.Body.String(); body != "42" {
		t.Errorf("expected a bare 42, got %q", body)
	}
}

func TestGetterError(t *testing.T) {
	h := generichttp.GetString(func() (string, error) { return "", errors.New("boom") })
	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}

func TestSetBool(t *testing.T) {
	var got bool
	h := generichttp.SetBool(func(b bool) error { got = b; return nil })
	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"bool":true}`)))
	if w.Code != http.StatusOK || !got {
		t.Errorf("expected the bool to be set, code %d value %v", w.Code, got)
	}
	w = httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"bool":`)))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed json, got %d", w.Code)
	}
}

func TestRouteTableBind(t *testing.T) {
	rt := generichttp.RouteTable{
		generichttp.MethodPath{Method: http.MethodGet, Path: "/b"}: func(w http.ResponseWriter, r *http.Request) {},
		generichttp.MethodPath{Method: http.MethodPost, Path: "/a"}: func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		},
	}
	if diff := cmp.Diff([]string{"POST /a", "GET /b"}, rt.Endpoints()); diff != "" {
		t.Errorf("endpoints (-want +got):\n%s", diff)
	}
	mux := chi.NewRouter()
	rt.Bind(mux)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/a", nil))
	if w.Code != http.StatusTeapot {
		t.Errorf("expected the bound handler to run, got %d", w.Code)
	}
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/a", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405 for an unbound method, got %d", w.Code)
	}
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/endpoints", nil))
	var eps []string
	if err := json.NewDecoder(w.Body).Decode(&eps); err != nil {
		t.Fatal(err)
	}
	if len(eps) != 2 {
		t.Errorf("expected two endpoints listed, got %v", eps)
	}
}

func TestSubMuxSanitize(t *testing.T) {
	for in, expected := range map[string]string{
		"":        "/",
		"/":       "/",
		"pco":     "/pco",
		"/pco/":   "/pco",
		" /a/b/ ": "/a/b",
	} {
		if got := generichttp.SubMuxSanitize(in); got != expected {
			t.Errorf("SubMuxSanitize(%q) = %q, expected %q", in, got, expected)
		}
	}
}

var errTeapot = errors.New("short and stout")

func init() {
	generichttp.RegisterStatus(func(err error) int {
		if errors.Is(err, errTeapot) {
			return http.StatusTeapot
		}
		return 0
	})
}

func TestStatusCode(t *testing.T) {
	for _, tc := range []struct {
		err  error
		code int
	}{
		{errTeapot, http.StatusTeapot},
		{errors.Wrap(errTeapot, "brew"), http.StatusTeapot},
		{errors.New("boom"), http.StatusInternalServerError},
	} {
		if code := generichttp.StatusCode(tc.err); code != tc.code {
			t.Errorf("%v: expected %d, got %d", tc.err, tc.code, code)
		}
	}
}

func TestSetterErrorStatus(t *testing.T) {
	h := generichttp.SetInt(func(int) error { return errTeapot })
	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"int":3}`)))
	if w.Code != http.StatusTeapot {
		t.Errorf("expected 418, got %d", w.Code)
	}
}
