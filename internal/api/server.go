package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/ZhaoCake/cakeboard/internal/audit"
	"github.com/ZhaoCake/cakeboard/internal/board"
	"github.com/ZhaoCake/cakeboard/internal/infrastructure/config"
	"github.com/ZhaoCake/cakeboard/internal/infrastructure/logging"
	"github.com/ZhaoCake/cakeboard/internal/signal"
	"github.com/ZhaoCake/cakeboard/internal/trace"
)

const (
	gracefulShutdownTimeout = 10 * time.Second
	healthCheckTimeout      = 3 * time.Second
)

// BoardView is what the API needs from the board. Both methods are safe
// from any goroutine.
type BoardView interface {
	Latest() *board.Snapshot
	SendSignal(p *signal.Packet)
}

// TraceReader serves recorded sessions.
type TraceReader interface {
	Sessions(ctx context.Context) ([]trace.Session, error)
	Snapshots(ctx context.Context, sessionID string, limit int) ([]trace.Record, error)
}

// Deps holds the dependencies of the API server.
type Deps struct {
	Config  config.APIConfig
	WS      config.WebSocketConfig
	Logger  *logging.Logger
	Board   BoardView
	Trace   TraceReader      // optional
	Audit   audit.Repository // optional
	Version string

	// Checks are reported by GET /health, keyed by component name.
	Checks map[string]HealthChecker
}

// HealthChecker is implemented by the infrastructure clients.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Server is the HTTP API server.
type Server struct {
	cfg     config.APIConfig
	wsCfg   config.WebSocketConfig
	logger  *logging.Logger
	board   BoardView
	trace   TraceReader
	audit   audit.Repository
	checks  map[string]HealthChecker
	version string
	started time.Time

	hub    *Hub
	server *http.Server
	cancel context.CancelFunc
}

// New creates a server. Register Hub() as a board observer before the
// board starts publishing, then call Start.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Board == nil {
		return nil, fmt.Errorf("board is required")
	}

	s := &Server{
		cfg:     deps.Config,
		wsCfg:   deps.WS,
		logger:  deps.Logger,
		board:   deps.Board,
		trace:   deps.Trace,
		audit:   deps.Audit,
		checks:  deps.Checks,
		version: deps.Version,
		started: time.Now(),
	}
	s.hub = NewHub(deps.WS, deps.Logger, deps.Board.Latest)
	return s, nil
}

// Hub returns the WebSocket hub. It is a board.Observer.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the router. Start serves it; tests may use it directly.
func (s *Server) Handler() http.Handler {
	return s.buildRouter()
}

// Start runs the hub and listens in the background. It returns once the
// listener is bound, so a port conflict is reported here.
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	go s.hub.Run(srvCtx)

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		s.cancel()
		return fmt.Errorf("listening on %s: %w", s.server.Addr, err)
	}
	s.logger.Info("API server listening", "address", ln.Addr().String(), "auth", s.cfg.Auth.Secret != "")

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()
	return nil
}

// Close stops the hub and shuts the listener down, waiting for in-flight
// requests up to a fixed timeout.
func (s *Server) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck reports an error until Start has run.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}
	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}
