package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/drummonds/rotatepdf/config"
	"github.com/drummonds/rotatepdf/internal/server"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger

// @title rotatepdf Backend API
// @version 1.0
// @description Upload a PDF, turn its pages a quarter at a time and download the rotated copy
// @description Sessions hold the pending rotations; an optional ledger records every export

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8000
// @BasePath /api
// @schemes http https

// @tag.name Sessions
// @tag.description Upload, rotate, preview and export

// @tag.name Jobs
// @tag.description Export job ledger

// @tag.name Admin
// @tag.description Server information

// @tag.name Health
// @tag.description Service health check

func main() {
	port := flag.String("port", "", "Port to run backend server on (overrides SERVER_PORT)")
	flag.Parse()

	fmt.Println("\n" + strings.Repeat("=", 50))
	fmt.Println("🔧  rotatepdf Backend API Server")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Println("• API-only mode (no frontend)")
	fmt.Println("• All endpoints under /api/*")
	fmt.Println("• CORS enabled for frontend access")
	fmt.Println(strings.Repeat("=", 50) + "\n")

	serverConfig, logger := config.SetupServer()
	Logger = logger
	server.InjectGlobals(logger)

	if *port != "" {
		serverConfig.ListenAddrPort = *port
	}

	if err := run(serverConfig); err != nil {
		Logger.Error("Backend stopped", "error", err)
		os.Exit(1)
	}
}

func run(serverConfig config.ServerConfig) error {
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

	e, serverHandler := server.NewAPI(serverConfig, db, renderer)
	e.Use(server.RequestLogger())

	Logger.Info("Initializing backend services...")
	schedules := serverHandler.InitializeSchedules()
	defer schedules.Stop()
	if err := serverHandler.StartupChecks(); err != nil {
		return err
	}
	Logger.Info("Backend services initialized")

	fmt.Printf("📡  API endpoints available at http://%s:%s/api/\n", serverConfig.ListenAddrIP, serverConfig.ListenAddrPort)
	fmt.Printf("🏥  Health check: http://%s:%s/api/health\n\n", serverConfig.ListenAddrIP, serverConfig.ListenAddrPort)
	return server.Start(e, &serverConfig, 1)
}
