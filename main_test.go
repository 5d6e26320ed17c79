package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/drummonds/rotatepdf/config"
)

// getBrowser finds a Chrome flavour chromedp can drive
func getBrowser() (string, error) {
	browsers := []string{"chromium", "chromium-browser", "google-chrome", "chrome"}
	var lastErr error
	for _, browser := range browsers {
		path, err := exec.LookPath(browser)
		if err == nil {
			return path, nil
		}
		lastErr = err
	}
	return "", lastErr
}

func frontendServer(t *testing.T, webDir string) *httptest.Server {
	t.Helper()
	cfg := config.ServerConfig{
		DatabaseType:       "none",
		MaxUploadMB:        5,
		SessionIdleMinutes: 30,
		WebDir:             webDir,
		FrontEndConfig:     config.FrontEndConfig{DefaultZoomWidth: 250},
	}
	e, _ := newServer(cfg, nil, nil)
	ts := httptest.NewServer(e)
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string) (int, string, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	return resp.StatusCode, resp.Header.Get("Content-Type"), buf.String()
}

func TestFrontendAssets(t *testing.T) {
	webDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(webDir, "wasm_exec.js"), []byte("// go wasm support"), 0644); err != nil {
		t.Fatal(err)
	}
	ts := frontendServer(t, webDir)

	t.Run("config.js", func(t *testing.T) {
		code, contentType, body := get(t, ts.URL+"/config.js")
		if code != http.StatusOK || !strings.Contains(contentType, "javascript") {
			t.Fatalf("Unexpected response %d %s", code, contentType)
		}
		if !strings.Contains(body, "window.rotatepdfConfig") || !strings.Contains(body, "defaultZoomWidth: 250") {
			t.Errorf("Unexpected config.js: %s", body)
		}
	})

	t.Run("stylesheet", func(t *testing.T) {
		code, contentType, body := get(t, ts.URL+"/webapp/webapp.css")
		if code != http.StatusOK || !strings.HasPrefix(contentType, "text/css") {
			t.Fatalf("Unexpected response %d %s", code, contentType)
		}
		if !strings.Contains(body, ".page-grid") {
			t.Error("Stylesheet is missing the page grid")
		}
	})

	t.Run("wasm_exec.js from web dir", func(t *testing.T) {
		code, _, body := get(t, ts.URL+"/wasm_exec.js")
		if code != http.StatusOK || !strings.Contains(body, "go wasm support") {
			t.Errorf("Unexpected response %d %s", code, body)
		}
	})

	t.Run("missing wasm is a 404 page", func(t *testing.T) {
		code, contentType, _ := get(t, ts.URL+"/web/app.wasm")
		if code != http.StatusNotFound || !strings.Contains(contentType, "text/html") {
			t.Errorf("Expected HTML 404, got %d %s", code, contentType)
		}
	})

	t.Run("api 404 stays JSON", func(t *testing.T) {
		code, contentType, _ := get(t, ts.URL+"/api/missing")
		if code != http.StatusNotFound || !strings.Contains(contentType, "application/json") {
			t.Errorf("Expected JSON 404, got %d %s", code, contentType)
		}
	})
}

// TestRootEndpoint checks that the go-app shell is served for the UI routes
func TestRootEndpoint(t *testing.T) {
	ts := frontendServer(t, t.TempDir())

	for _, path := range []string{"/", "/jobs", "/about"} {
		code, _, body := get(t, ts.URL+path)
		if code == http.StatusNotFound {
			t.Errorf("%s: route not registered", path)
			continue
		}
		if !strings.Contains(body, "rotatepdf") {
			t.Errorf("%s: app name missing from page", path)
		}
	}
}

// TestWasmFileValid checks a built web/app.wasm when there is one
func TestWasmFileValid(t *testing.T) {
	wasmPath := filepath.Join("web", "app.wasm")
	data, err := os.ReadFile(wasmPath)
	if err != nil {
		t.Skipf("No WASM build at %s: %v", wasmPath, err)
	}

	// "\0asm"
	expectedMagic := []byte{0x00, 0x61, 0x73, 0x6d}
	if len(data) < 4 || !bytes.Equal(data[:4], expectedMagic) {
		t.Errorf("Invalid WASM magic number in %s", wasmPath)
	}
}

// TestRotatePageWithChromedp loads the UI in a headless browser against a real build
func TestRotatePageWithChromedp(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	if _, err := getBrowser(); err != nil {
		t.Skip("No Chrome/Chromium browser found, skipping chromedp test")
	}
	if _, err := os.Stat(filepath.Join("web", "app.wasm")); err != nil {
		t.Skip("No WASM build in web/, skipping chromedp test")
	}

	ts := frontendServer(t, "web")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()
	taskCtx, taskCancel := chromedp.NewContext(allocCtx)
	defer taskCancel()

	var pageTitle, promptText string
	err := chromedp.Run(taskCtx,
		chromedp.Navigate(ts.URL+"/"),
		chromedp.WaitVisible(".upload-prompt", chromedp.ByQuery),
		chromedp.Title(&pageTitle),
		chromedp.Text(".upload-prompt", &promptText, chromedp.ByQuery),
	)
	if err != nil {
		t.Skipf("Chromedp failed to load the page (browser may not be compatible): %v", err)
	}

	if pageTitle != "rotatepdf" {
		t.Errorf("Expected title rotatepdf, got %q", pageTitle)
	}
	if !strings.Contains(promptText, "upload") {
		t.Errorf("Expected the upload prompt, got %q", promptText)
	}
}
