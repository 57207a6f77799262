package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"signal-trading-bot/internal/interfaces"
	"signal-trading-bot/internal/journal"
	"signal-trading-bot/internal/logger"
	"signal-trading-bot/internal/metrics"
	"signal-trading-bot/internal/types"
)

const defaultBarLimit = 100

// JournalView is the read side of the trade journal.
type JournalView interface {
	Metrics() journal.Metrics
	Trades() []types.TradeRecord
	Daily() []journal.DailyPnL
}

// Server exposes pipeline status, trading controls and journal metrics.
type Server struct {
	engine  interfaces.Engine
	journal JournalView
	router  *gin.Engine
	srv     *http.Server
}

func New(addr string, eng interfaces.Engine, j JournalView) *Server {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	s := &Server{engine: eng, journal: j, router: r}
	s.routes()
	s.srv = &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}
	return s
}

func (s *Server) routes() {
	s.router.GET("/healthz", s.health)
	s.router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := s.router.Group("/api")
	api.GET("/symbols", s.listSymbols)
	api.GET("/symbols/:symbol", s.symbolStatus)
	api.GET("/symbols/:symbol/bars", s.symbolBars)
	api.POST("/symbols/:symbol/start", s.startSymbol)
	api.POST("/symbols/:symbol/stop", s.stopSymbol)

	api.GET("/journal/metrics", func(c *gin.Context) { c.JSON(http.StatusOK, s.journal.Metrics()) })
	api.GET("/journal/trades", func(c *gin.Context) { c.JSON(http.StatusOK, s.journal.Trades()) })
	api.GET("/journal/daily", func(c *gin.Context) { c.JSON(http.StatusOK, s.journal.Daily()) })
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		logger.Info(ctx, "HTTP server listening", "addr", s.srv.Addr)
		errc <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "symbols": len(s.engine.Symbols())})
}

func (s *Server) listSymbols(c *gin.Context) {
	syms := s.engine.Symbols()
	out := make([]types.SymbolStatus, 0, len(syms))
	for _, sym := range syms {
		st, err := s.engine.Status(sym)
		if err != nil {
			writeError(c, err)
			return
		}
		out = append(out, st)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) symbolStatus(c *gin.Context) {
	st, err := s.engine.Status(c.Param("symbol"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) symbolBars(c *gin.Context) {
	limit := defaultBarLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}
	bars, err := s.engine.Bars(c.Param("symbol"), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, bars)
}

func (s *Server) startSymbol(c *gin.Context) {
	var req struct {
		Quantity int64 `json:"quantity"`
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if req.Quantity < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity cannot be negative"})
		return
	}
	sym := c.Param("symbol")
	if err := s.engine.Start(c.Request.Context(), sym, req.Quantity); err != nil {
		writeError(c, err)
		return
	}
	s.symbolStatus(c)
}

func (s *Server) stopSymbol(c *gin.Context) {
	if err := s.engine.Stop(c.Request.Context(), c.Param("symbol")); err != nil {
		writeError(c, err)
		return
	}
	s.symbolStatus(c)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, types.ErrUnknownSymbol):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, types.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug(c.Request.Context(), "HTTP request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
