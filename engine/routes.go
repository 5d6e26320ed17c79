package engine

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/drummonds/rotatepdf/database"
	"github.com/drummonds/rotatepdf/intake"
	"github.com/drummonds/rotatepdf/internal/build"
	"github.com/drummonds/rotatepdf/session"
	"github.com/drummonds/rotatepdf/viewport"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// sessionResponse is a snapshot plus the id the browser addresses it by
type sessionResponse struct {
	ID string `json:"id"`
	session.Snapshot
}

// RegisterRoutes adds every /api route to e
func (serverHandler *ServerHandler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")

	// Session API routes
	api.POST("/session", serverHandler.CreateSession)
	api.GET("/session/:id", serverHandler.GetSession)
	api.DELETE("/session/:id", serverHandler.DeleteSession)
	api.POST("/session/:id/document", serverHandler.UploadDocument, serverHandler.uploadMiddleware()...)
	api.DELETE("/session/:id/document", serverHandler.RemoveDocument)
	api.POST("/session/:id/pages/:index/rotate", serverHandler.RotatePage)
	api.POST("/session/:id/rotate-all", serverHandler.RotateAll)
	api.GET("/session/:id/pages/:index/preview", serverHandler.PreviewPage)
	api.GET("/session/:id/export", serverHandler.ExportDocument)
	api.GET("/session/:id/jobs", serverHandler.GetSessionJobs)

	// Job tracking API routes
	api.GET("/jobs", serverHandler.GetRecentJobs)
	api.GET("/jobs/active", serverHandler.GetActiveJobs)
	api.GET("/jobs/:id", serverHandler.GetJob)

	api.GET("/about", serverHandler.GetAboutInfo)
	api.GET("/health", serverHandler.HealthCheck)

	api.Any("/*", func(c echo.Context) error {
		return echo.ErrNotFound
	})
}

// uploadMiddleware caps the request body, leaving room for multipart framing on top of
// the upload ceiling. Intake enforces the exact file size.
func (serverHandler *ServerHandler) uploadMiddleware() []echo.MiddlewareFunc {
	maxBytes := serverHandler.ServerConfig.MaxUploadBytes()
	if maxBytes <= 0 {
		return nil
	}
	return []echo.MiddlewareFunc{middleware.BodyLimit(strconv.FormatInt(maxBytes+1<<20, 10))}
}

// errorKind names the failure class of err for API clients
func errorKind(err error) string {
	switch {
	case errors.Is(err, intake.ErrTooLarge):
		return "TooLarge"
	case errors.Is(err, session.ErrIO):
		return "IOError"
	case errors.Is(err, session.ErrParse):
		return "ParseError"
	case errors.Is(err, session.ErrInvalidIndex):
		return "InvalidIndex"
	case errors.Is(err, session.ErrSerialization):
		return "SerializationError"
	case errors.Is(err, session.ErrNotReady):
		return "NotReady"
	case errors.Is(err, session.ErrSuperseded):
		return "Superseded"
	default:
		return "InternalError"
	}
}

// statusFor maps the session error taxonomy onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, intake.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, session.ErrIO), errors.Is(err, session.ErrParse), errors.Is(err, session.ErrInvalidIndex):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrNotReady), errors.Is(err, session.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, session.ErrSerialization):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func errorResponse(c echo.Context, err error) error {
	return c.JSON(statusFor(err), map[string]interface{}{
		"error":   errorKind(err),
		"message": err.Error(),
	})
}

func sessionNotFound(c echo.Context) error {
	return c.JSON(http.StatusNotFound, map[string]interface{}{
		"error":   "NotFound",
		"message": "Session not found",
		"id":      c.Param("id"),
	})
}

func (serverHandler *ServerHandler) lookup(c echo.Context) (*session.Session, bool) {
	return serverHandler.Sessions.Get(c.Param("id"))
}

func snapshotJSON(c echo.Context, status int, s *session.Session) error {
	return c.JSON(status, sessionResponse{ID: c.Param("id"), Snapshot: s.Snapshot()})
}

// pageIndex parses the :index path parameter
func pageIndex(c echo.Context) (int, error) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return 0, session.ErrInvalidIndex
	}
	return index, nil
}

// CreateSession starts a new Empty document session
// @Summary Create a session
// @Description Create an empty session that can hold one document
// @Tags Sessions
// @Produce json
// @Success 201 {object} sessionResponse "New session"
// @Router /session [post]
func (serverHandler *ServerHandler) CreateSession(c echo.Context) error {
	id, s, err := serverHandler.Sessions.Create()
	if err != nil {
		Logger.Error("Unable to create session", "error", err)
		return errorResponse(c, err)
	}
	Logger.Debug("Session created", "id", id)
	return c.JSON(http.StatusCreated, sessionResponse{ID: id, Snapshot: s.Snapshot()})
}

// GetSession returns the state of a session
// @Summary Get session state
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID (ULID)"
// @Success 200 {object} sessionResponse "Session snapshot"
// @Failure 404 {object} map[string]interface{} "Session not found"
// @Router /session/{id} [get]
func (serverHandler *ServerHandler) GetSession(c echo.Context) error {
	s, ok := serverHandler.lookup(c)
	if !ok {
		return sessionNotFound(c)
	}
	return snapshotJSON(c, http.StatusOK, s)
}

// DeleteSession drops a session and its document
// @Summary Delete session
// @Tags Sessions
// @Param id path string true "Session ID (ULID)"
// @Success 204 "Deleted"
// @Failure 404 {object} map[string]interface{} "Session not found"
// @Router /session/{id} [delete]
func (serverHandler *ServerHandler) DeleteSession(c echo.Context) error {
	s, ok := serverHandler.lookup(c)
	if !ok {
		return sessionNotFound(c)
	}
	s.Remove()
	serverHandler.Sessions.Delete(c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}

// UploadDocument loads the uploaded PDF into the session, replacing any previous one
// @Summary Upload a PDF
// @Description Load a PDF into the session. On failure the session is left Empty.
// @Tags Sessions
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Session ID (ULID)"
// @Param file formData file true "PDF file"
// @Success 200 {object} sessionResponse "Session is Ready"
// @Failure 400 {object} map[string]interface{} "Unreadable or not a PDF"
// @Failure 409 {object} map[string]interface{} "Superseded by a newer upload"
// @Failure 413 {object} map[string]interface{} "File too large"
// @Router /session/{id}/document [post]
func (serverHandler *ServerHandler) UploadDocument(c echo.Context) error {
	s, ok := serverHandler.lookup(c)
	if !ok {
		return sessionNotFound(c)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		Logger.Warn("Upload without a file field", "error", err)
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "IOError",
			"message": "Expected a multipart form with a file field",
		})
	}
	if !intake.HasPDFExtension(fileHeader.Filename) {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "ParseError",
			"message": "Only .pdf files are accepted",
		})
	}
	file, err := fileHeader.Open()
	if err != nil {
		return errorResponse(c, errors.Join(session.ErrIO, err))
	}
	defer file.Close()

	if err := s.Load(c.Request().Context(), fileHeader.Filename, file); err != nil {
		Logger.Warn("Unable to load document", "session", c.Param("id"), "file", fileHeader.Filename, "error", err)
		return errorResponse(c, err)
	}
	Logger.Info("Document loaded", "session", c.Param("id"), "file", fileHeader.Filename, "pages", s.PageCount())
	return snapshotJSON(c, http.StatusOK, s)
}

// RemoveDocument returns the session to Empty
// @Summary Remove the document
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID (ULID)"
// @Success 200 {object} sessionResponse "Session is Empty"
// @Router /session/{id}/document [delete]
func (serverHandler *ServerHandler) RemoveDocument(c echo.Context) error {
	s, ok := serverHandler.lookup(c)
	if !ok {
		return sessionNotFound(c)
	}
	s.Remove()
	return snapshotJSON(c, http.StatusOK, s)
}

// RotatePage adds a clockwise quarter turn to one page
// @Summary Rotate one page
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID (ULID)"
// @Param index path int true "Zero based page index"
// @Success 200 {object} sessionResponse "Updated rotations"
// @Failure 400 {object} map[string]interface{} "Page index out of range"
// @Failure 409 {object} map[string]interface{} "No document loaded"
// @Router /session/{id}/pages/{index}/rotate [post]
func (serverHandler *ServerHandler) RotatePage(c echo.Context) error {
	s, ok := serverHandler.lookup(c)
	if !ok {
		return sessionNotFound(c)
	}
	index, err := pageIndex(c)
	if err != nil {
		return errorResponse(c, err)
	}
	if err := s.Rotate(index); err != nil {
		return errorResponse(c, err)
	}
	return snapshotJSON(c, http.StatusOK, s)
}

// RotateAll adds a clockwise quarter turn to every page
// @Summary Rotate all pages
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID (ULID)"
// @Success 200 {object} sessionResponse "Updated rotations"
// @Failure 409 {object} map[string]interface{} "No document loaded"
// @Router /session/{id}/rotate-all [post]
func (serverHandler *ServerHandler) RotateAll(c echo.Context) error {
	s, ok := serverHandler.lookup(c)
	if !ok {
		return sessionNotFound(c)
	}
	if err := s.RotateAll(); err != nil {
		return errorResponse(c, err)
	}
	return snapshotJSON(c, http.StatusOK, s)
}

// PreviewPage renders one page as PNG with its pending rotation applied. With
// overlay=false the page comes back unrotated and may be cached; the web UI turns
// it in the browser so a rotate click never re-renders.
// @Summary Page preview
// @Tags Sessions
// @Produce png
// @Param id path string true "Session ID (ULID)"
// @Param index path int true "Zero based page index"
// @Param width query int false "Width in pixels (100-500, default 300)"
// @Param overlay query bool false "Apply the pending rotation (default true)"
// @Success 200 {file} binary "PNG image"
// @Failure 503 {object} map[string]interface{} "No renderer available"
// @Router /session/{id}/pages/{index}/preview [get]
func (serverHandler *ServerHandler) PreviewPage(c echo.Context) error {
	s, ok := serverHandler.lookup(c)
	if !ok {
		return sessionNotFound(c)
	}
	if serverHandler.Viewport == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
			"error":   "NoRenderer",
			"message": "Page previews are not available on this server",
		})
	}
	index, err := pageIndex(c)
	if err != nil {
		return errorResponse(c, err)
	}
	doc, rotations, err := s.Current()
	if err != nil {
		return errorResponse(c, err)
	}
	if index < 0 || index >= len(rotations) {
		return errorResponse(c, session.ErrInvalidIndex)
	}

	width := serverHandler.ServerConfig.DefaultZoomWidth
	if w, err := strconv.Atoi(c.QueryParam("width")); err == nil {
		width = w
	}

	rotation := rotations[index]
	overlay := c.QueryParam("overlay") != "false"
	if !overlay {
		rotation = 0
	}

	data, err := serverHandler.Viewport.RenderPNG(c.Request().Context(), doc.RawBytes, index, viewport.ClampZoom(width), rotation)
	if err != nil {
		Logger.Error("Unable to render preview", "session", c.Param("id"), "page", index, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error":   "RenderError",
			"message": "fail to load resource",
		})
	}
	if overlay {
		c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	} else {
		c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=3600")
	}
	return c.Blob(http.StatusOK, "image/png", data)
}

// attachmentSaver streams an export to the browser as a download
type attachmentSaver struct {
	c echo.Context
}

func (a attachmentSaver) Save(_ context.Context, result *ExportResult) error {
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": result.Name})
	a.c.Response().Header().Set(echo.HeaderContentDisposition, disposition)
	return a.c.Blob(http.StatusOK, "application/pdf", result.Bytes)
}

// ExportDocument rewrites the document with its rotations and sends it as a download
// @Summary Download the rotated PDF
// @Tags Sessions
// @Produce application/pdf
// @Param id path string true "Session ID (ULID)"
// @Success 200 {file} binary "<name>(rotated).pdf"
// @Failure 409 {object} map[string]interface{} "No document loaded"
// @Failure 422 {object} map[string]interface{} "Document could not be rewritten"
// @Router /session/{id}/export [get]
func (serverHandler *ServerHandler) ExportDocument(c echo.Context) error {
	s, ok := serverHandler.lookup(c)
	if !ok {
		return sessionNotFound(c)
	}
	doc, rotations, err := s.Current()
	if err != nil {
		return errorResponse(c, err)
	}

	ctx := c.Request().Context()
	job := serverHandler.startJob(ctx, database.ExportRequest{
		SessionID:   c.Param("id"),
		DisplayName: doc.DisplayName,
		PageCount:   doc.PageCount,
	})

	result, err := serverHandler.Exporter.Export(ctx, doc.RawBytes, rotations, doc.DisplayName)
	if err != nil {
		Logger.Error("Export failed", "session", c.Param("id"), "error", err)
		serverHandler.failJob(ctx, job, err)
		return errorResponse(c, err)
	}
	serverHandler.completeJob(ctx, job, result)

	Logger.Info("Export complete", "session", c.Param("id"), "name", result.Name, "rotatedPages", result.RotatedPages)
	return attachmentSaver{c: c}.Save(ctx, result)
}

// GetAboutInfo reports version and limits
// @Summary Get application information
// @Tags Admin
// @Produce json
// @Success 200 {object} map[string]interface{} "Application information"
// @Router /about [get]
func (serverHandler *ServerHandler) GetAboutInfo(c echo.Context) error {
	renderer := serverHandler.RendererName
	if renderer == "" {
		renderer = "none"
	}
	aboutInfo := map[string]interface{}{
		"version":            build.Version,
		"renderer":           renderer,
		"renderDPI":          serverHandler.ServerConfig.RenderDPI,
		"maxUploadMB":        serverHandler.ServerConfig.MaxUploadMB,
		"sessionIdleMinutes": serverHandler.ServerConfig.SessionIdleMinutes,
		"activeSessions":     serverHandler.Sessions.Len(),
		"databaseType":       serverHandler.ServerConfig.DatabaseType,
		"ledgerEnabled":      serverHandler.DB != nil,
		"zoom": map[string]int{
			"default": viewport.ClampZoom(serverHandler.ServerConfig.DefaultZoomWidth),
			"min":     viewport.MinZoom,
			"max":     viewport.MaxZoom,
			"step":    viewport.ZoomStep,
		},
	}
	return c.JSON(http.StatusOK, aboutInfo)
}

// HealthCheck reports whether the server and, when enabled, the job ledger are up
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{} "Healthy"
// @Failure 503 {object} map[string]interface{} "Ledger unreachable"
// @Router /health [get]
func (serverHandler *ServerHandler) HealthCheck(c echo.Context) error {
	status := map[string]interface{}{
		"status":   "healthy",
		"service":  "rotatepdf",
		"previews": serverHandler.Viewport != nil,
	}
	if p, ok := serverHandler.DB.(pinger); ok {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			status["status"] = "degraded"
			status["ledger"] = err.Error()
			return c.JSON(http.StatusServiceUnavailable, status)
		}
		status["ledger"] = "ok"
	}
	return c.JSON(http.StatusOK, status)
}

// APIErrorHandler answers unmatched /api paths with JSON and hands everything else to fallback
func APIErrorHandler(fallback echo.HTTPErrorHandler) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
		}
		if strings.HasPrefix(c.Request().URL.Path, "/api/") && !c.Response().Committed {
			switch code {
			case http.StatusNotFound:
				_ = c.JSON(http.StatusNotFound, map[string]string{
					"error":   "NotFound",
					"message": "The requested API endpoint does not exist",
					"path":    c.Request().URL.Path,
				})
				return
			case http.StatusRequestEntityTooLarge:
				_ = c.JSON(http.StatusRequestEntityTooLarge, map[string]string{
					"error":   "TooLarge",
					"message": intake.ErrTooLarge.Error(),
				})
				return
			}
		}
		fallback(err, c)
	}
}
