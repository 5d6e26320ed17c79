package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// StartupChecks performs all the checks to make sure everything works. Only a broken
// ledger connection is fatal; a missing renderer or web bundle just degrades the UI.
func (serverHandler *ServerHandler) StartupChecks() error {
	rendererChecks(serverHandler)
	webDirectoryChecks(serverHandler.ServerConfig.WebDir)
	return databaseChecks(serverHandler)
}

func rendererChecks(serverHandler *ServerHandler) {
	if serverHandler.Viewport == nil {
		Logger.Warn("No page renderer available, previews will be disabled", "renderer", serverHandler.ServerConfig.Renderer)
		return
	}
	Logger.Info("Page renderer ready", "renderer", serverHandler.RendererName, "dpi", serverHandler.ServerConfig.RenderDPI)
}

// webDirectoryChecks makes sure the compiled wasm bundle is where the server will look for it
func webDirectoryChecks(webDir string) bool {
	if webDir == "" {
		Logger.Warn("Web directory not configured")
		return false
	}
	wasmPath := filepath.Join(webDir, "app.wasm")
	info, err := os.Stat(wasmPath)
	if err != nil {
		Logger.Warn("app.wasm not found, build it with GOARCH=wasm GOOS=js go build -o web/app.wasm ./cmd/webapp", "path", wasmPath)
		return false
	}
	if info.IsDir() {
		Logger.Error("app.wasm path is a directory", "path", wasmPath)
		return false
	}
	Logger.Info("WASM bundle found", "path", wasmPath, "size", info.Size())
	return true
}

func databaseChecks(serverHandler *ServerHandler) error {
	if serverHandler.DB == nil {
		Logger.Info("Export ledger disabled")
		return nil
	}
	p, ok := serverHandler.DB.(pinger)
	if !ok {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		Logger.Error("Export ledger unreachable", "error", err)
		return fmt.Errorf("export ledger unreachable: %w", err)
	}
	Logger.Info("Export ledger reachable")
	return nil
}
