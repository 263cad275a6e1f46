package demo

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/centraunit/labelwire"
)

// RequestInfo identifies one HTTP request. It is registered Scoped, so
// everything resolved within a request's scope sees the same value.
type RequestInfo struct {
	ID      string
	Started time.Time
}

func NewRequestInfo() *RequestInfo {
	return &RequestInfo{ID: uuid.NewString(), Started: time.Now()}
}

// Status is the view served by GET /count.
type Status struct {
	RequestID string `json:"request_id"`
	Count     int64  `json:"count"`
	Done      bool   `json:"done"`
}

func (*Status) Wiring() labelwire.Node { return labelwire.Args("counter", "request") }

func NewStatus(counter *Counter, req *RequestInfo) (*Status, error) {
	if counter == nil || req == nil {
		return nil, errors.New("status requires a counter and a request")
	}
	return &Status{RequestID: req.ID, Count: counter.Current(), Done: counter.Done()}, nil
}

// NewRouter returns the status server's handler. Every request runs in a
// fresh scope of c, available to handlers through labelwire.FromContext.
func NewRouter(c *labelwire.Container, log *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(scopeMiddleware(c, log))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/count", func(w http.ResponseWriter, r *http.Request) {
		scope, ok := labelwire.FromContext(r.Context())
		if !ok {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "no request scope"})
			return
		}
		status, err := labelwire.Resolve[*Status](scope, "status")
		if err != nil {
			log.Error("failed to resolve status", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, status)
	})
	return r
}

// scopeMiddleware creates a scope per request and tags the response with
// the scope's request ID.
func scopeMiddleware(c *labelwire.Container, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope := c.Scope()
			req, err := labelwire.Resolve[*RequestInfo](scope, "request")
			if err != nil {
				log.Error("failed to resolve request info", "error", err)
				writeJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
				return
			}
			w.Header().Set("X-Request-ID", req.ID)
			log.Debug("request started", "request_id", req.ID, "method", r.Method, "path", r.URL.Path)

			next.ServeHTTP(w, r.WithContext(labelwire.WithContainer(r.Context(), scope)))
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Serve runs an HTTP server on addr until ctx is cancelled, then shuts it
// down gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler, log *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("status server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
