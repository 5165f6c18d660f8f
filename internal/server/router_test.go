package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestBasicRouter(t *testing.T) {
	t.Run("method patterns", func(t *testing.T) {
		r := NewBasicRouter()
		r.HandleFunc("get", "/things/{id}", func(w http.ResponseWriter, req *http.Request) {
			w.Write([]byte("thing " + req.PathValue("id")))
		})

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/things/42", nil))
		if rec.Code != http.StatusOK || rec.Body.String() != "thing 42" {
			t.Errorf("GET = %d %q", rec.Code, rec.Body.String())
		}

		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/things/42", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("middleware order", func(t *testing.T) {
		var order []string
		mw := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, req)
				})
			}
		}

		r := NewBasicRouter()
		r.Use(mw("first"), mw("second"))
		r.HandleFunc(http.MethodGet, "/", func(w http.ResponseWriter, req *http.Request) {
			order = append(order, "handler")
		})

		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		if got := strings.Join(order, ","); got != "first,second,handler" {
			t.Errorf("unexpected order %s", got)
		}
	})

	t.Run("Handler registers every route", func(t *testing.T) {
		r := NewBasicRouter()
		r.Handler(&stubHandler{})

		for _, path := range []string{"/a", "/b"} {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			if rec.Body.String() != "stub" {
				t.Errorf("%s not routed", path)
			}
		}
	})

	t.Run("Recover", func(t *testing.T) {
		r := NewBasicRouter()
		r.Use(Recover(discardLogger()))
		r.HandleFunc(http.MethodGet, "/boom", func(w http.ResponseWriter, req *http.Request) {
			panic("boom")
		})

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
	})

	t.Run("Logging echoes request id", func(t *testing.T) {
		r := NewBasicRouter()
		r.Use(Logging(discardLogger()))
		r.HandleFunc(http.MethodGet, "/", func(w http.ResponseWriter, req *http.Request) {})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(requestIDHeader, "req-1")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Header().Get(requestIDHeader) != "req-1" {
			t.Errorf("expected echoed id, got %q", rec.Header().Get(requestIDHeader))
		}

		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Header().Get(requestIDHeader) == "" {
			t.Error("expected generated id")
		}
	})
}

type stubHandler struct{}

func (s *stubHandler) Routes() []string { return []string{"GET /a", "GET /b"} }

func (s *stubHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("stub"))
}
