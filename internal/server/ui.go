package server

import (
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"

	"github.com/drummonds/rotatepdf/config"
	"github.com/drummonds/rotatepdf/engine"
	"github.com/drummonds/rotatepdf/webapp"
)

const notFoundHTML = `<!DOCTYPE html>
<html>
<head><title>404 - Not Found</title></head>
<body style="font-family: sans-serif; text-align: center; padding: 50px;">
	<h1>404</h1>
	<p>Nothing to rotate here.</p>
	<a href="/" style="color: #3498db; text-decoration: none; font-size: 18px;">Back to rotatepdf</a>
</body>
</html>`

// MountUI serves the WASM UI from e. The go-app handler takes every path not
// already routed, so MountUI must be called after the API routes.
// webDir holds the build outputs app.wasm and wasm_exec.js.
func MountUI(e *echo.Echo, webDir string, frontEnd config.FrontEndConfig) {
	e.HTTPErrorHandler = engine.APIErrorHandler(func(err error, c echo.Context) {
		if he, ok := err.(*echo.HTTPError); ok && he.Code == http.StatusNotFound {
			_ = c.HTML(http.StatusNotFound, notFoundHTML)
			return
		}
		e.DefaultHTTPErrorHandler(err, c)
	})

	appHandler := echo.WrapHandler(webapp.Handler())

	e.GET("/wasm_exec.js", func(c echo.Context) error {
		return c.File(filepath.Join(webDir, "wasm_exec.js"))
	})
	e.Static("/web", webDir)

	for _, path := range []string{"/app.js", "/app.css", "/manifest.webmanifest"} {
		e.GET(path, appHandler)
	}
	e.GET("/webapp/webapp.css", func(c echo.Context) error {
		return c.Blob(http.StatusOK, "text/css; charset=utf-8", webapp.Stylesheet)
	})
	e.GET("/config.js", ServeConfigJS(frontEnd))

	e.Any("/*", appHandler)
}
