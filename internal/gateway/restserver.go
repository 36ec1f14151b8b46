package gateway

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/hx-helix/memplane/internal/herrors"
)

// RESTServer exposes the same operations as Gateway over loopback
// HTTP+JSON, for callers that lack a direct database driver (the
// desktop shell's command layer, for instance).
type RESTServer struct {
	echo *echo.Echo
	gw   Gateway
	log  zerolog.Logger
}

type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// NewRESTServer builds the facade around an existing Gateway.
func NewRESTServer(gw Gateway, log zerolog.Logger) *RESTServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} ${method} ${uri} ${status} ${latency_human}\n",
	}))

	s := &RESTServer{echo: e, gw: gw, log: log}
	s.registerRoutes()
	return s
}

func (s *RESTServer) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)

	g := s.echo.Group("/api/v1/gateway")
	g.GET("/memories/:user_id", s.handleRecentMemories)
	g.POST("/patterns", s.handleInsertPattern)
	g.GET("/layers", s.handleListLayers)
	g.PATCH("/layers/:id", s.handleUpdateLayer)
	g.GET("/skills/:id", s.handleFetchSkillBytecode)
	g.POST("/voice", s.handleInsertVoiceRecord)
}

// Start runs the server until the process is interrupted.
func (s *RESTServer) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *RESTServer) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, envelope{Success: true})
}

func fail(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch herrors.KindOf(err) {
	case herrors.Malformed:
		status = http.StatusBadRequest
	case herrors.Transient:
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, envelope{Success: false, Error: err.Error()})
}

func (s *RESTServer) handleRecentMemories(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		return fail(c, herrors.Malformedf("invalid user_id: %w", err))
	}
	limit := 100
	if v := c.QueryParam("limit"); v != "" {
		if n, convErr := parsePositiveInt(v); convErr == nil {
			limit = n
		}
	}
	memories, err := s.gw.RecentMemories(c.Request().Context(), userID, limit)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, envelope{Success: true, Data: memories})
}

type patternRequest struct {
	UserID      uuid.UUID   `json:"user_id"`
	PatternKind string      `json:"pattern_kind"`
	MemoryIDs   []uuid.UUID `json:"memory_ids"`
	Synthesis   string      `json:"synthesis"`
	Confidence  float32     `json:"confidence"`
}

func (s *RESTServer) handleInsertPattern(c echo.Context) error {
	var req patternRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, herrors.Malformedf("decode pattern request: %w", err))
	}
	p := SynthesisPattern{
		ID:          uuid.New(),
		UserID:      req.UserID,
		PatternKind: req.PatternKind,
		MemoryIDs:   req.MemoryIDs,
		Synthesis:   req.Synthesis,
		Confidence:  req.Confidence,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.gw.InsertPattern(c.Request().Context(), p); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, envelope{Success: true})
}

func (s *RESTServer) handleListLayers(c echo.Context) error {
	layers, err := s.gw.ListLayers(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, envelope{Success: true, Data: layers})
}

type updateLayerRequest struct {
	Retention float32 `json:"retention"`
}

func (s *RESTServer) handleUpdateLayer(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return fail(c, herrors.Malformedf("invalid layer id: %w", err))
	}
	var req updateLayerRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, herrors.Malformedf("decode update request: %w", err))
	}
	if err := s.gw.UpdateLayer(c.Request().Context(), id, req.Retention, time.Now().UTC()); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, envelope{Success: true})
}

func (s *RESTServer) handleFetchSkillBytecode(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return fail(c, herrors.Malformedf("invalid skill id: %w", err))
	}
	sb, err := s.gw.FetchSkillBytecode(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, envelope{Success: true, Data: sb})
}

type voiceRequest struct {
	UserID     uuid.UUID `json:"user_id"`
	Transcript string    `json:"transcript"`
	AudioURL   string    `json:"audio_url"`
}

func (s *RESTServer) handleInsertVoiceRecord(c echo.Context) error {
	var req voiceRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, herrors.Malformedf("decode voice request: %w", err))
	}
	rec := VoiceRecord{
		ID:         uuid.New(),
		UserID:     req.UserID,
		Transcript: req.Transcript,
		AudioURL:   req.AudioURL,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.gw.InsertVoiceRecord(c.Request().Context(), rec); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, envelope{Success: true})
}

func parsePositiveInt(s string) (int, error) {
	var n int
	if _, err := fmt.Sscan(s, &n); err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, herrors.Malformedf("value must be positive")
	}
	return n, nil
}
