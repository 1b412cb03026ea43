// Package server exposes the dashboard API: read-only aggregations over the
// store plus the two manual actions (watchlist add, archive).
package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/example/tollgate/internal/config"
	"github.com/example/tollgate/internal/store"
	"github.com/example/tollgate/internal/types"
)

const defaultSignalLimit = 50

// Server serves the dashboard API over the store.
type Server struct {
	store   *store.Store
	scoring config.ScoringConfig
	router  *gin.Engine
}

// New creates a Server and registers its routes.
func New(st *store.Store, scoring config.ScoringConfig) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		store:   st,
		scoring: scoring,
		router:  gin.New(),
	}
	s.router.Use(gin.Recovery())

	api := s.router.Group("/api")
	api.GET("/dashboard", s.getDashboard)
	api.GET("/signals", s.getSignals)
	api.GET("/signals/high-priority", s.getHighPriority)
	api.GET("/signals/sector/:sector", s.getSectorSignals)
	api.GET("/sectors", s.getSectors)
	api.GET("/watchlist", s.getWatchlist)
	api.POST("/watchlist/:id", s.addToWatchlist)
	api.POST("/signals/:id/archive", s.archiveSignal)

	return s
}

// Router returns the underlying gin engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run blocks serving the API on addr.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

func (s *Server) getDashboard(c *gin.Context) {
	stats, err := s.store.Dashboard(s.scoring.HighPriorityThreshold, time.Now().UTC())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) getSignals(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultSignalLimit)))
	if err != nil || limit < 1 {
		limit = defaultSignalLimit
	}

	signals, err := s.store.TopSignals(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, emptyIfNil(signals))
}

func (s *Server) getHighPriority(c *gin.Context) {
	signals, err := s.store.HighPriority(s.scoring.HighPriorityThreshold)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, emptyIfNil(signals))
}

func (s *Server) getSectorSignals(c *gin.Context) {
	signals, err := s.store.BySector(c.Param("sector"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, emptyIfNil(signals))
}

func (s *Server) getSectors(c *gin.Context) {
	stats, err := s.store.SectorStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if stats == nil {
		stats = []store.SectorStat{}
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) getWatchlist(c *gin.Context) {
	signals, err := s.store.Watchlist()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, emptyIfNil(signals))
}

func (s *Server) addToWatchlist(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signal id"})
		return
	}
	if err := s.store.SetWatchlisted(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (s *Server) archiveSignal(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signal id"})
		return
	}
	if err := s.store.Archive(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func emptyIfNil(signals []types.Signal) []types.Signal {
	if signals == nil {
		return []types.Signal{}
	}
	return signals
}
