// Package engine is the HTTP side of the rotation service: it owns the live sessions,
// renders previews, exports rotated documents and records each export in the ledger.
package engine

import (
	"log/slog"

	"github.com/drummonds/rotatepdf/config"
	"github.com/drummonds/rotatepdf/database"
	"github.com/drummonds/rotatepdf/engine/pdfdoc"
	"github.com/drummonds/rotatepdf/engine/pdfrenderer"
	"github.com/drummonds/rotatepdf/intake"
	"github.com/drummonds/rotatepdf/session"
	"github.com/drummonds/rotatepdf/viewport"
	"github.com/labstack/echo/v4"
)

// Logger is global since we will need it everywhere
var Logger = slog.Default()

// ServerHandler will inject the variables needed into routes
type ServerHandler struct {
	DB           database.Repository // nil disables the export ledger
	Echo         *echo.Echo
	ServerConfig config.ServerConfig
	Sessions     *SessionStore
	Intake       *intake.Intake
	Parser       pdfdoc.Parser
	Exporter     *Exporter
	Viewport     *viewport.PageViewport // nil when no renderer could start
	RendererName string
}

// NewServerHandler wires the document pipeline from serverConfig. renderer may be nil,
// in which case previews answer 503 and everything else keeps working.
func NewServerHandler(serverConfig config.ServerConfig, db database.Repository, e *echo.Echo, renderer pdfrenderer.Renderer) *ServerHandler {
	parser := pdfdoc.NewPDFCPU()
	in := intake.New(serverConfig.MaxUploadBytes())

	handler := &ServerHandler{
		DB:           db,
		Echo:         e,
		ServerConfig: serverConfig,
		Intake:       in,
		Parser:       parser,
		Exporter:     NewExporter(parser, pdfdoc.ReaderVerifier{}),
		Sessions: NewSessionStore(func() *session.Session {
			return session.New(in, parser)
		}),
	}
	if renderer != nil {
		handler.Viewport = viewport.New(renderer)
		handler.RendererName = serverConfig.Renderer
	}
	return handler
}
