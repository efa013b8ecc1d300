// Package handler contains the single capture handler: every request on
// every method and path ends up here.
package handler

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/StarsWhere/log-server/internal/api/middleware"
	"github.com/StarsWhere/log-server/internal/capture"
	"github.com/StarsWhere/log-server/internal/logfile"
	"github.com/StarsWhere/log-server/internal/repository"
	"github.com/StarsWhere/log-server/internal/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const indexTimeout = 5 * time.Second

// CaptureHandler records inbound requests and answers each with the
// cached response.
type CaptureHandler struct {
	cache        *response.Cache
	writer       *logfile.Writer
	index        *repository.CaptureRepository // nil disables indexing
	logger       *zap.Logger
	fallbackHost string
	failFast     bool
}

// NewCaptureHandler creates a CaptureHandler. index may be nil.
// fallbackHost (the bound host:port) completes URL reconstruction for
// requests that carry no Host header.
func NewCaptureHandler(
	cache *response.Cache,
	writer *logfile.Writer,
	index *repository.CaptureRepository,
	fallbackHost string,
	failFast bool,
	logger *zap.Logger,
) *CaptureHandler {
	return &CaptureHandler{
		cache:        cache,
		writer:       writer,
		index:        index,
		logger:       logger,
		fallbackHost: fallbackHost,
		failFast:     failFast,
	}
}

// Capture runs one request through receive → snapshot → log → respond.
// A broken body read drops the request: no snapshot, no log block. A
// failed log append is fatal under fail-fast, otherwise surfaced on the
// operational log while the cached response is still served.
func (h *CaptureHandler) Capture(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.logger.Warn("dropping request: body read failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	snap := capture.New(c.Request, body, c.ClientIP(), h.fallbackHost)

	if err := h.writer.Append(logfile.FormatBlock(snap)); err != nil {
		if h.failFast {
			h.logger.Fatal("capture log append failed", zap.Error(err))
		}
		h.logger.Error("capture log append failed", zap.Error(err))
	}

	if h.index != nil {
		h.indexCapture(c.GetString(middleware.RequestIDKey), snap)
	}

	c.Header("Content-Length", strconv.Itoa(len(h.cache.Body)))
	c.Data(http.StatusOK, h.cache.ContentType, h.cache.Body)
}

// indexCapture records the snapshot summary in the capture index. The
// index is advisory: insert failures never affect the response path.
func (h *CaptureHandler) indexCapture(requestID string, snap *capture.Snapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), indexTimeout)
	defer cancel()

	if _, err := h.index.Insert(ctx, requestID, snap); err != nil {
		h.logger.Error("capture index insert failed",
			zap.String("request_id", requestID),
			zap.Error(err),
		)
	}
}
