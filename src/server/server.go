package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"nba-stats-explorer/src/analysis"
	"nba-stats-explorer/src/helpers"
	"nba-stats-explorer/src/interfaces"
	"nba-stats-explorer/src/logger"
	"nba-stats-explorer/src/models"
	"nba-stats-explorer/src/render"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// DashboardServer
// -----------------------------------------------------------------------------

type DashboardServer struct {
	Config       *models.MConfig
	Logger       *logger.Logger
	Cache        interfaces.ISeasonCache
	Analysis     *analysis.AnalysisFacade
	Charts       *render.ChartRenderer
	CSV          *render.CSVExporter
	ErrorHandler *helpers.ErrorHandler

	engine     *gin.Engine
	httpServer *http.Server

	// WebSocket clients, owned by the hub loop
	clients     map[*Client]struct{}
	broadcast   chan interface{}
	register    chan *Client
	unregister  chan *Client
	quit        chan struct{}
	hubOnce     sync.Once
	stopOnce    sync.Once
	connections atomic.Int64
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewDashboardServer(cfg *models.MConfig, cache interfaces.ISeasonCache, facade *analysis.AnalysisFacade, log *logger.Logger) *DashboardServer {
	// Set Gin mode
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &DashboardServer{
		Config:       cfg,
		Logger:       log,
		Cache:        cache,
		Analysis:     facade,
		Charts:       render.NewChartRenderer(),
		CSV:          render.NewCSVExporter(cfg),
		ErrorHandler: helpers.NewErrorHandler(log),
		engine:       gin.New(),
		clients:      make(map[*Client]struct{}),
		// Buffered so bursts of invalidations never block the caller
		broadcast:  make(chan interface{}, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
	}

	s.engine.Use(gin.Recovery(), s.requestLogger())
	s.engine.SetHTMLTemplate(template.Must(template.New("page").Funcs(pageFuncs).Parse(pageTemplate)))

	// setup web routes
	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *DashboardServer) setupRoutes() {
	// Page and export
	s.engine.GET("/", s.getPage)
	s.engine.GET("/export.csv", s.getExport)

	// REST API endpoints
	s.engine.GET("/api/seasons", s.getSeasons)
	s.engine.GET("/api/table", s.getTable)
	s.engine.GET("/api/metrics", s.getMetrics)
	s.engine.GET("/api/config", s.getConfig)
	s.engine.GET("/api/health", s.getHealth)

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// Handler exposes the router, mainly for tests.
func (s *DashboardServer) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *DashboardServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting dashboard on http://%s", addr)

	s.startHub()

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) Stop() error {
	var err error
	s.stopOnce.Do(func() {
		close(s.quit)
		if s.httpServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			err = s.httpServer.Shutdown(ctx)
		}
	})
	return err
}

// -----------------------------------------------------------------------------
// Middleware
// -----------------------------------------------------------------------------

func (s *DashboardServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.Logger.Debug("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *DashboardServer) getPage(c *gin.Context) {
	data := s.basePage()

	sel, err := s.parseSelection(c)
	if err == nil {
		data.Selection = sel
		err = s.fillPage(c.Request.Context(), &data, sel)
	}
	if err != nil {
		s.ErrorHandler.Handle(err, "page")
		data.Error = err.Error()
		c.HTML(helpers.StatusCode(err), "page", data)
		return
	}

	c.HTML(http.StatusOK, "page", data)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getExport(c *gin.Context) {
	sel, err := s.parseSelection(c)
	if err != nil {
		s.abortWithError(c, err, "export")
		return
	}

	table, err := s.Cache.Get(c.Request.Context(), sel.Season)
	if err != nil {
		s.abortWithError(c, err, "export")
		return
	}
	result := s.Analysis.Analyze(table, sel)

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="players_%d.csv"`, table.Season))
	c.Status(http.StatusOK)
	if err := s.CSV.Write(c.Writer, table.Columns, result.Filtered); err != nil {
		s.ErrorHandler.Handle(err, "export")
	}
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getSeasons(c *gin.Context) {
	cached, err := s.Cache.Cached(c.Request.Context())
	if err != nil {
		s.abortWithError(c, err, "seasons")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"seasons":        s.Cache.Seasons(),
		"default_season": s.Config.Source.DefaultSeason,
		"cached":         cached,
	})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getTable(c *gin.Context) {
	sel, err := s.parseSelection(c)
	if err != nil {
		s.abortWithError(c, err, "table")
		return
	}

	table, err := s.Cache.Get(c.Request.Context(), sel.Season)
	if err != nil {
		s.abortWithError(c, err, "table")
		return
	}
	result := s.Analysis.Analyze(table, sel)

	if c.Query("charts") == "1" {
		charts, err := s.renderCharts(result.Views)
		if err != nil {
			s.abortWithError(c, err, "table")
			return
		}
		result.Charts = charts
	}

	state := s.stateFrom(result, true)
	c.JSON(http.StatusOK, state)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"cache":  s.Cache.Stats(c.Request.Context()),
		"errors": s.ErrorHandler.Count(),
	})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getConfig(c *gin.Context) {
	src := s.Config.Source
	c.JSON(http.StatusOK, gin.H{
		"source":         src.Name,
		"url_template":   src.URLTemplate,
		"min_season":     src.MinSeason,
		"max_season":     src.MaxSeason,
		"default_season": src.DefaultSeason,
		"points_column":  src.PointsColumn,
		"games_column":   src.GamesColumn,
		"storage":        s.Config.Storage.DBType,
	})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"connections": s.connections.Load(),
		"timestamp":   time.Now().Unix(),
	})
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func (s *DashboardServer) abortWithError(c *gin.Context, err error, context string) {
	s.ErrorHandler.Handle(err, context)
	c.AbortWithStatusJSON(helpers.StatusCode(err), gin.H{"error": err.Error()})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) renderCharts(views []models.MAggregateView) (map[string]string, error) {
	charts := make(map[string]string, len(views))
	for _, view := range views {
		svg, err := s.Charts.Render(view)
		if err != nil {
			return nil, err
		}
		charts[view.Name] = svg
	}
	return charts, nil
}

// -----------------------------------------------------------------------------

// stateFrom converts a pipeline result into the message sent to clients.
func (s *DashboardServer) stateFrom(result *analysis.PipelineResult, withRows bool) *models.MDashboardState {
	state := &models.MDashboardState{
		Type:               "STATE",
		Season:             result.Table.Season,
		AvailableTeams:     analysis.Teams(result.Table),
		AvailablePositions: analysis.Positions(result.Table),
		Selection:          result.Selection,
		Views:              result.Views,
		Charts:             result.Charts,
		Metrics:            result.Metrics,
		Timestamp:          time.Now().Unix(),
	}
	if withRows {
		state.Columns = result.Table.Columns
		state.Rows = result.Filtered
	}
	return state
}

// -----------------------------------------------------------------------------

// parseSelection reads season, teams, positions and show from the query.
// An absent teams/positions parameter selects every code; a present but
// empty one selects none. Repeated parameters and comma lists both work.
func (s *DashboardServer) parseSelection(c *gin.Context) (models.MFilterSelection, error) {
	sel := models.MFilterSelection{Season: s.Config.Source.DefaultSeason}

	if raw, ok := c.GetQuery("season"); ok && raw != "" {
		season, err := parseSeason(raw)
		if err != nil {
			return sel, err
		}
		sel.Season = season
	}

	// Codes picked for another season do not carry over; a switched
	// season starts from all of its teams and positions.
	if s.sameSeason(c, sel.Season) {
		if values, ok := c.GetQueryArray("teams"); ok {
			sel.Teams = splitCodes(values)
		}
		if values, ok := c.GetQueryArray("positions"); ok {
			sel.Positions = splitCodes(values)
		}
	}

	switch strings.ToLower(c.Query("show")) {
	case "1", "true", "on", "yes":
		sel.ShowTable = true
	}
	return sel, nil
}

// sameSeason reports whether the request's filter codes belong to season.
// Forms send prev_season, the season they were rendered for; direct links
// without it keep their codes.
func (s *DashboardServer) sameSeason(c *gin.Context, season int) bool {
	raw, ok := c.GetQuery("prev_season")
	if !ok || strings.TrimSpace(raw) == "" {
		return true
	}
	prev, err := parseSeason(raw)
	return err == nil && prev == season
}
