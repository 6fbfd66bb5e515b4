package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const defaultRequestTimeout = 15 * time.Second

type Server struct{ mux *chi.Mux }

type settings struct {
	requestTimeout time.Duration
	accessLog      zerolog.Logger
}

type Option func(*settings)

// WithRequestTimeout bounds each request; non-positive values keep the default.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.requestTimeout = d
		}
	}
}

// WithAccessLog routes access log lines to l instead of the global logger.
func WithAccessLog(l zerolog.Logger) Option {
	return func(s *settings) { s.accessLog = l }
}

func New(opts ...Option) *Server {
	st := settings{requestTimeout: defaultRequestTimeout, accessLog: log.Logger}
	for _, o := range opts {
		o(&st)
	}

	m := chi.NewRouter()
	m.Use(chimw.RealIP, chimw.RequestID, chimw.Recoverer)
	// Observe sits inside the timeout so it shares a goroutine with the handlers
	// that annotate its access entry.
	m.Use(Timeout(st.requestTimeout))
	m.Use(Observe(st.accessLog))

	m.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, http.StatusNotFound, "Not Found", "no route for "+r.URL.Path)
	})
	m.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, http.StatusMethodNotAllowed, "Method Not Allowed", r.Method+" is not supported here")
	})

	return &Server{mux: m}
}

func (s *Server) Mux() http.Handler { return s.mux }

// Mount attaches an extra handler such as /metrics.
func (s *Server) Mount(path string, h http.Handler) {
	s.mux.Handle(path, h)
}
