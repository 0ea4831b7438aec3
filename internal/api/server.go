package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/park285/cheese-chess/internal/match"
	"github.com/park285/cheese-chess/internal/msgcat"
	"github.com/park285/cheese-chess/internal/obslog"
)

const defaultRequestTimeout = 10 * time.Second

// Server exposes the match manager over HTTP/JSON.
type Server struct {
	mgr     *match.Manager
	catalog *msgcat.Catalog
	logger  *zap.Logger

	// default page size of /users/{id}/games
	historyLimit   int
	requestTimeout time.Duration

	srv *fasthttp.Server
}

type Option func(*Server)

func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.requestTimeout = d
		}
	}
}

func NewServer(mgr *match.Manager, catalog *msgcat.Catalog, opts ...Option) (*Server, error) {
	if mgr == nil {
		return nil, errors.New("api: nil manager")
	}
	s := &Server{
		mgr:            mgr,
		catalog:        catalog,
		logger:         obslog.L(),
		historyLimit:   10,
		requestTimeout: defaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.srv = &fasthttp.Server{
		Handler:            s.Handler,
		Name:               "cheese-chess",
		ReadTimeout:        15 * time.Second,
		WriteTimeout:       15 * time.Second,
		IdleTimeout:        60 * time.Second,
		MaxRequestBodySize: 64 << 10,
	}
	return s, nil
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("http_listen", zap.String("addr", addr))
	return s.srv.ListenAndServe(addr)
}

// Serve accepts connections on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	return s.srv.Serve(ln)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.ShutdownWithContext(ctx)
}

// Handler dispatches on the path segments:
//
//	/healthz
//	/games                       GET (lobby), POST (create)
//	/games/{id}                  GET
//	/games/{id}/record           GET
//	/games/{id}/{action}         POST join|moves|promotion|resign|timeout|cancel
//	/users/{id}/games            GET archived history
//	/users/{id}/active           GET active game
func (s *Server) Handler(ctx *fasthttp.RequestCtx) {
	start := time.Now()
	method := string(ctx.Method())
	path := string(ctx.Path())
	defer func() {
		s.logger.Debug("http_request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", ctx.Response.StatusCode()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}()

	parts := splitPath(path)
	switch {
	case len(parts) == 1 && parts[0] == "healthz":
		s.handleHealth(ctx)
	case len(parts) == 1 && parts[0] == "games":
		switch method {
		case fasthttp.MethodGet:
			s.handleListGames(ctx)
		case fasthttp.MethodPost:
			s.handleCreate(ctx)
		default:
			s.methodNotAllowed(ctx)
		}
	case len(parts) == 2 && parts[0] == "games":
		if method != fasthttp.MethodGet {
			s.methodNotAllowed(ctx)
			return
		}
		s.handleGetGame(ctx, parts[1])
	case len(parts) == 3 && parts[0] == "games":
		s.routeGameAction(ctx, method, parts[1], parts[2])
	case len(parts) == 3 && parts[0] == "users":
		if method != fasthttp.MethodGet {
			s.methodNotAllowed(ctx)
			return
		}
		switch parts[2] {
		case "games":
			s.handleHistory(ctx, parts[1])
		case "active":
			s.handleActive(ctx, parts[1])
		default:
			s.notFound(ctx)
		}
	default:
		s.notFound(ctx)
	}
}

func (s *Server) routeGameAction(ctx *fasthttp.RequestCtx, method, id, action string) {
	if action == "record" {
		if method != fasthttp.MethodGet {
			s.methodNotAllowed(ctx)
			return
		}
		s.handleRecord(ctx, id)
		return
	}
	if method != fasthttp.MethodPost {
		s.methodNotAllowed(ctx)
		return
	}
	switch action {
	case "join":
		s.handleJoin(ctx, id)
	case "moves":
		s.handleMove(ctx, id)
	case "promotion":
		s.handlePromotion(ctx, id)
	case "resign":
		s.handleResign(ctx, id)
	case "timeout":
		s.handleTimeout(ctx, id)
	case "cancel":
		s.handleCancel(ctx, id)
	default:
		s.notFound(ctx)
	}
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	parts := strings.Split(trimmed, "/")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// reqContext bounds a request's store and notification work.
func (s *Server) reqContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.requestTimeout)
}

func (s *Server) notFound(ctx *fasthttp.RequestCtx) {
	s.writeStatusError(ctx, fasthttp.StatusNotFound, "route_not_found", fmt.Sprintf("no route for %s", ctx.Path()))
}

func (s *Server) methodNotAllowed(ctx *fasthttp.RequestCtx) {
	s.writeStatusError(ctx, fasthttp.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
}
