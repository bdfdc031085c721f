package server

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/akolanti/PaperRAG/internal/adapter/utils"
	"github.com/akolanti/PaperRAG/internal/config"
	"github.com/akolanti/PaperRAG/internal/handlers"
	"github.com/akolanti/PaperRAG/internal/middleware"
	"github.com/akolanti/PaperRAG/pkg/logger_i"
	"github.com/go-chi/chi/v5"
)

type Server struct {
	httpServer *http.Server
	logger     *logger_i.Logger
}

type Routes struct {
	Handler    *handlers.Handler
	Middleware *middleware.Middleware
	// MCP is mounted at /mcp when set.
	MCP http.Handler
}

func NewRouter(routes Routes) *chi.Mux {
	r := utils.NewRouter()
	mw := routes.Middleware
	h := routes.Handler

	r.Get("/health", mw.WrapPublic(h.HealthHandler))
	r.Post("/ingest", mw.Wrap(h.IngestHandler))
	r.Post("/ingest/upload", mw.Wrap(h.UploadHandler))
	r.Post("/question_answer", mw.Wrap(h.QuestionHandler))
	r.Post("/summarize", mw.Wrap(h.SummarizeHandler))
	r.Get("/task_status/{id}", mw.Wrap(h.TaskStatusHandler))
	if routes.MCP != nil {
		r.Handle("/mcp", mw.WrapHandler(routes.MCP))
	}
	return r
}

func CreateServer(listenAddr string, routes Routes) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         listenAddr,
			Handler:      NewRouter(routes),
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
		logger: logger_i.NewLogger("Server"),
	}
}

// ListenAndServe blocks until the server is shut down.
func (s *Server) ListenAndServe() {
	s.logger.Info("Server is listening at", "address", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("Server crashed", "error", err, "addr", s.httpServer.Addr)
	}
}

type ShutdownParams struct {
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	// StopWorkers blocks until in-flight tasks are done.
	StopWorkers   func()
	CloseServices context.CancelFunc
}

func (s *Server) ShutDownHandler(shutdownParams ShutdownParams) {
	state := <-shutdownParams.GracefulShutdown
	s.logger.Info("Server is shutting down", "signal", state.String())

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	done := make(chan struct{})

	go func() {
		s.httpServer.SetKeepAlivesEnabled(false)

		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("Could not shutdown gracefully", "error", err)
		}

		shutdownParams.StopWorkers()
		shutdownParams.CloseServices()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Gracefully shut down")
		close(shutdownParams.StopExecution)
	case <-ctx.Done():
		s.logger.Error("Force shut down")
		os.Exit(1)
	}
}
