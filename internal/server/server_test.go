package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/drummonds/rotatepdf/config"
)

func TestMain(m *testing.M) {
	InjectGlobals(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn})))
	os.Exit(m.Run())
}

func TestOpenLedger(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		db, err := OpenLedger(context.Background(), config.ServerConfig{DatabaseType: Disabled})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if db != nil {
			t.Error("Disabled ledger should be a nil Repository")
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		db, err := OpenLedger(context.Background(), config.ServerConfig{
			DatabaseType:   "sqlite",
			DatabaseDbname: "file:server_open_ledger?mode=memory&cache=shared",
		})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if db == nil {
			t.Fatal("Expected a ledger")
		}
		defer db.Close()
	})

	t.Run("unknown type", func(t *testing.T) {
		if _, err := OpenLedger(context.Background(), config.ServerConfig{DatabaseType: "mongodb"}); err == nil {
			t.Error("Expected an error for an unknown database type")
		}
	})
}

func TestOpenRenderer(t *testing.T) {
	if r := OpenRenderer(config.ServerConfig{Renderer: Disabled}); r != nil {
		t.Error("Renderer none should give no renderer")
	}
	if r := OpenRenderer(config.ServerConfig{Renderer: "ghostscript"}); r != nil {
		t.Error("Unknown renderer should give no renderer")
	}
}

func TestNewAPI(t *testing.T) {
	e, handler := NewAPI(config.ServerConfig{SessionIdleMinutes: 30}, nil, nil)
	if handler.Viewport != nil {
		t.Error("No renderer means no viewport")
	}

	req := httptest.NewRequest(http.MethodPost, "/api/session", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Errorf("Expected 201 creating a session, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/nothing-here", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), `"NotFound"`) {
		t.Errorf("Expected JSON 404, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestNewAPIRecoversHandlerPanics(t *testing.T) {
	e, _ := NewAPI(config.ServerConfig{SessionIdleMinutes: 30}, nil, nil)
	e.GET("/api/crash", func(c echo.Context) error {
		var pages []int
		return c.JSON(http.StatusOK, pages[3])
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/crash", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500 from a panicking handler, got %d", rec.Code)
	}
}

func TestConfigJS(t *testing.T) {
	js := ConfigJS(config.FrontEndConfig{ServerAPIURL: "http://backend:8000", DefaultZoomWidth: 250})
	if !strings.Contains(js, `window.rotatepdfConfig`) {
		t.Error("Expected window.rotatepdfConfig to be set")
	}
	if !strings.Contains(js, `apiURL: "http://backend:8000"`) {
		t.Errorf("Expected quoted api URL in %s", js)
	}
	if !strings.Contains(js, "defaultZoomWidth: 250") {
		t.Errorf("Expected zoom width in %s", js)
	}
}

func TestIsAddressInUse(t *testing.T) {
	if isAddressInUse(nil) {
		t.Error("nil is not an address error")
	}
	if !isAddressInUse(errors.New("listen tcp :8000: bind: address already in use")) {
		t.Error("Expected address in use to be detected")
	}
	if isAddressInUse(errors.New("permission denied")) {
		t.Error("Other errors are not address in use")
	}
}
