package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/labstack/echo/v4"

	"github.com/drummonds/rotatepdf/config"
	"github.com/drummonds/rotatepdf/database"
	"github.com/drummonds/rotatepdf/engine"
	"github.com/drummonds/rotatepdf/engine/pdfrenderer"
	"github.com/drummonds/rotatepdf/internal/server"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger

// injectGlobals injects all of our globals into their packages
func injectGlobals(logger *slog.Logger) {
	Logger = logger
	server.InjectGlobals(logger)
}

func main() {
	if err := run(); err != nil {
		Logger.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	serverConfig, logger := config.SetupServer()
	injectGlobals(logger) //inject the logger into all of the packages

	db, err := server.OpenLedger(context.Background(), serverConfig)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	renderer := server.OpenRenderer(serverConfig)
	if renderer != nil {
		defer renderer.Close()
	}

	e, serverHandler := newServer(serverConfig, db, renderer)
	Logger.Info("About to initialize schedules")
	schedules := serverHandler.InitializeSchedules()
	defer schedules.Stop()
	if err := serverHandler.StartupChecks(); err != nil {
		return err
	}

	Logger.Info("Starting HTTP server")
	return server.Start(e, &serverConfig, 5)
}

// newServer is the combined binary: the API plus the WASM UI and its assets
func newServer(serverConfig config.ServerConfig, db database.Repository, renderer pdfrenderer.Renderer) (*echo.Echo, *engine.ServerHandler) {
	e, serverHandler := server.NewAPI(serverConfig, db, renderer)
	Logger.Info("Setting up go-app WASM UI", "webDir", serverConfig.WebDir)
	server.MountUI(e, serverConfig.WebDir, serverConfig.FrontEndConfig)
	return e, serverHandler
}
