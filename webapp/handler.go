package webapp

import (
	"net/http"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// Handler returns an HTTP handler for the web app
func Handler() http.Handler {
	// every route uses the App component so navbar and sidebar stay in place
	for _, path := range Routes {
		app.Route(path, func() app.Composer { return &App{} })
	}
	app.RunWhenOnBrowser()

	// wasm_exec.js and /web/app.wasm are served by Echo
	return &app.Handler{
		Name:        "rotatepdf",
		Title:       "rotatepdf",
		Description: "Rotate the pages of a PDF in the browser",
		Styles: []string{
			"/webapp/webapp.css",
		},
		Scripts: []string{
			"/config.js", // backend API configuration
		},
		RawHeaders: []string{
			`<meta name="viewport" content="width=device-width, initial-scale=1">`,
		},
	}
}
