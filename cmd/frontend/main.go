// Command frontend serves the WASM UI on its own and forwards /api to a
// separately running backend.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/drummonds/rotatepdf/config"
	"github.com/drummonds/rotatepdf/internal/server"
)

var Logger *slog.Logger

func main() {
	port := flag.String("port", "3000", "Port to run frontend server on")
	apiURL := flag.String("api", "", "Backend API URL (overrides SERVER_API_URL)")
	webDir := flag.String("web", "web", "Directory holding app.wasm and wasm_exec.js")
	flag.Parse()

	frontEnd, logger := config.SetupFrontend()
	Logger = logger
	server.InjectGlobals(logger)
	if *apiURL != "" {
		frontEnd.ServerAPIURL = *apiURL
	}

	e, err := newFrontend(frontEnd, *webDir)
	if err != nil {
		Logger.Error("Frontend not started", "error", err)
		os.Exit(1)
	}

	fmt.Println("\n" + strings.Repeat("=", 50))
	fmt.Println("🎨  rotatepdf frontend")
	fmt.Printf("    http://localhost:%s  (API proxied to %s)\n", *port, frontEnd.ServerAPIURL)
	fmt.Println(strings.Repeat("=", 50) + "\n")

	if err := server.Start(e, &config.ServerConfig{ListenAddrPort: *port}, 1); err != nil {
		Logger.Error("Frontend stopped", "error", err)
		os.Exit(1)
	}
}

// newFrontend proxies /api to the backend and serves the UI for everything else
func newFrontend(frontEnd config.FrontEndConfig, webDir string) (*echo.Echo, error) {
	backend, err := url.Parse(frontEnd.ServerAPIURL)
	if err != nil || backend.Host == "" {
		return nil, fmt.Errorf("invalid backend API URL %q", frontEnd.ServerAPIURL)
	}
	// the browser talks to this origin only
	frontEnd.ServerAPIURL = ""

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.CORS())
	e.Use(server.RequestLogger())

	e.Group("/api", middleware.ProxyWithConfig(middleware.ProxyConfig{
		Balancer: middleware.NewRoundRobinBalancer([]*middleware.ProxyTarget{{URL: backend}}),
	}))

	Logger.Info("Frontend configured", "backendAPI", backend.String(), "webDir", webDir)
	server.MountUI(e, webDir, frontEnd)
	return e, nil
}
