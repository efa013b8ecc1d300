package api

import (
	"net/http"

	"github.com/StarsWhere/log-server/internal/api/handler"
	"github.com/StarsWhere/log-server/internal/api/middleware"
	"github.com/StarsWhere/log-server/internal/logfile"
	"github.com/StarsWhere/log-server/internal/repository"
	"github.com/StarsWhere/log-server/internal/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server wraps the HTTP handler and its dependencies.
type Server struct {
	router *gin.Engine
	logger *zap.Logger
}

// ServerDeps holds all dependencies for the sink server.
type ServerDeps struct {
	Cache        *response.Cache
	Writer       *logfile.Writer
	Index        *repository.CaptureRepository // nil disables the capture index
	FallbackHost string
	FailFast     bool
	Logger       *zap.Logger
}

// NewServer creates the sink server. No routes are registered: the
// NoRoute catch-all delivers every method and path to the capture
// handler, which is the whole point of a sink.
func NewServer(deps ServerDeps) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))

	captureHandler := handler.NewCaptureHandler(
		deps.Cache,
		deps.Writer,
		deps.Index,
		deps.FallbackHost,
		deps.FailFast,
		deps.Logger,
	)
	r.NoRoute(captureHandler.Capture)

	return &Server{router: r, logger: deps.Logger}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
