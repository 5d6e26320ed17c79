// Package server holds the wiring shared by the combined binary and cmd/backend:
// opening the job ledger and renderer, building the API echo instance and starting it.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/drummonds/rotatepdf/config"
	"github.com/drummonds/rotatepdf/database"
	"github.com/drummonds/rotatepdf/engine"
	"github.com/drummonds/rotatepdf/engine/pdfrenderer"
)

// Logger is replaced by InjectGlobals
var Logger = slog.Default()

// Disabled is the DATABASE_TYPE or RENDERER value that switches that part off
const Disabled = "none"

// InjectGlobals hands logger to every package that logs
func InjectGlobals(logger *slog.Logger) {
	Logger = logger
	config.Logger = logger
	database.Logger = logger
	engine.Logger = logger
}

// OpenLedger opens the export job ledger. With DATABASE_TYPE=none it returns a nil
// Repository, which the engine treats as "no ledger".
func OpenLedger(ctx context.Context, cfg config.ServerConfig) (database.Repository, error) {
	if cfg.DatabaseType == Disabled {
		Logger.Info("Job ledger disabled")
		return nil, nil
	}
	Logger.Info("Setting up job ledger", "type", cfg.DatabaseType)
	db, err := database.NewRepository(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// OpenRenderer starts the configured page renderer. Failure is not fatal: the server
// runs without previews and the error is logged.
func OpenRenderer(cfg config.ServerConfig) pdfrenderer.Renderer {
	if cfg.Renderer == Disabled {
		Logger.Warn("Page previews disabled by configuration")
		return nil
	}
	renderer, err := pdfrenderer.NewRenderer(cfg.Renderer, cfg.RenderDPI)
	if err != nil {
		Logger.Warn("Page renderer unavailable, previews disabled", "renderer", cfg.Renderer, "error", err)
		return nil
	}
	return renderer
}

// NewAPI builds the echo instance with the /api routes registered
func NewAPI(cfg config.ServerConfig, db database.Repository, renderer pdfrenderer.Renderer) (*echo.Echo, *engine.ServerHandler) {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = engine.APIErrorHandler(e.DefaultHTTPErrorHandler)
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.DefaultCORSConfig))

	handler := engine.NewServerHandler(cfg, db, e, renderer)
	handler.RegisterRoutes(e)
	return e, handler
}

// RequestLogger is the access log format used by the standalone binaries
func RequestLogger() echo.MiddlewareFunc {
	return middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "method=${method}, uri=${uri}, status=${status}, latency=${latency_human}\n",
	})
}

// ConfigJS is the /config.js script that tells the WASM UI where the API lives
func ConfigJS(frontEnd config.FrontEndConfig) string {
	return fmt.Sprintf(`
// rotatepdf Frontend Configuration
window.rotatepdfConfig = {
    apiURL: %q,
    defaultZoomWidth: %d
};
`, frontEnd.ServerAPIURL, frontEnd.DefaultZoomWidth)
}

// ServeConfigJS answers GET /config.js
func ServeConfigJS(frontEnd config.FrontEndConfig) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set("Content-Type", "application/javascript")
		return c.String(http.StatusOK, ConfigJS(frontEnd))
	}
}

// Start listens on the configured address, moving up one port at a time while the
// address is taken, at most maxRetries times.
func Start(e *echo.Echo, cfg *config.ServerConfig, maxRetries int) error {
	if cfg.ListenAddrIP == "" {
		Logger.Info("No Ip Addr set, binding on ALL addresses")
	}
	startPort := cfg.ListenAddrPort

	for attempt := 0; attempt < maxRetries; attempt++ {
		addr := fmt.Sprintf("%s:%s", cfg.ListenAddrIP, cfg.ListenAddrPort)
		Logger.Info("Attempting to start server", "address", addr, "attempt", attempt+1)

		err := e.Start(addr)
		switch {
		case err == nil || errors.Is(err, http.ErrServerClosed):
			if cfg.ListenAddrPort != startPort {
				Logger.Warn("Server ran on alternative port due to conflicts",
					"requested_port", startPort,
					"actual_port", cfg.ListenAddrPort)
			}
			return nil
		case isAddressInUse(err):
			Logger.Warn("Port already in use, trying next port",
				"port", cfg.ListenAddrPort,
				"attempt", attempt+1,
				"max_attempts", maxRetries)
			portNum := 0
			fmt.Sscanf(cfg.ListenAddrPort, "%d", &portNum)
			cfg.ListenAddrPort = fmt.Sprintf("%d", portNum+1)
		default:
			return fmt.Errorf("failed to start server: %w", err)
		}
	}
	return fmt.Errorf("no free port between %s and %s after %d attempts", startPort, cfg.ListenAddrPort, maxRetries)
}

// isAddressInUse checks if the error is due to address already in use
func isAddressInUse(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "address already in use")
}
