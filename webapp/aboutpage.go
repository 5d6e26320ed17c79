package webapp

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// ZoomInfo is the preview zoom range the server accepts
type ZoomInfo struct {
	Default int `json:"default"`
	Min     int `json:"min"`
	Max     int `json:"max"`
	Step    int `json:"step"`
}

// AboutInfo represents the about information from the API
type AboutInfo struct {
	Version            string   `json:"version"`
	Renderer           string   `json:"renderer"`
	RenderDPI          int      `json:"renderDPI"`
	MaxUploadMB        int      `json:"maxUploadMB"`
	SessionIdleMinutes int      `json:"sessionIdleMinutes"`
	ActiveSessions     int      `json:"activeSessions"`
	DatabaseType       string   `json:"databaseType"`
	LedgerEnabled      bool     `json:"ledgerEnabled"`
	Zoom               ZoomInfo `json:"zoom"`
}

// AboutPage displays information about the application
type AboutPage struct {
	app.Compo
	aboutInfo AboutInfo
	loading   bool
	error     string
}

// OnMount is called when the component is mounted
func (a *AboutPage) OnMount(ctx app.Context) {
	a.loading = true
	a.fetchAboutInfo(ctx)
}

// fetchAboutInfo fetches the about information from the API
func (a *AboutPage) fetchAboutInfo(ctx app.Context) {
	fetchAPI(ctx, http.MethodGet, "/api/about", nil, func(ctx app.Context, res apiResponse) {
		a.loading = false
		if res.status == 0 {
			a.error = "Network error"
			return
		}
		if err := json.Unmarshal([]byte(res.body), &a.aboutInfo); err != nil {
			a.error = fmt.Sprintf("Failed to parse response: %v", err)
		}
	})
}

// Render renders the about page
func (a *AboutPage) Render() app.UI {
	if a.loading {
		return app.Div().Class("about-page").Body(
			app.H2().Text("About rotatepdf"),
			app.Div().Class("loading").Body(app.Text("Loading...")),
		)
	}

	if a.error != "" {
		return app.Div().Class("about-page").Body(
			app.H2().Text("About rotatepdf"),
			app.Div().Class("error").Body(app.Text("Error: "+a.error)),
		)
	}

	return app.Div().Class("about-page").Body(
		app.H2().Text("About rotatepdf"),
		app.Div().Class("about-content").Body(
			app.Div().Class("about-section").Body(
				app.H3().Text("Application Information"),
				app.Div().Class("info-grid").Body(
					a.renderInfoItem("Version", a.aboutInfo.Version),
					a.renderInfoItem("Renderer", a.getRendererDisplay()),
					a.renderInfoItem("Active sessions", fmt.Sprint(a.aboutInfo.ActiveSessions)),
				),
			),
			app.Div().Class("about-section").Body(
				app.H3().Text("Limits"),
				app.Div().Class("config-details").Body(
					app.P().Body(
						app.Strong().Text("Largest upload: "),
						app.Text(a.getUploadLimit()),
					),
					app.P().Body(
						app.Strong().Text("Idle sessions dropped after: "),
						app.Text(fmt.Sprintf("%d minutes", a.aboutInfo.SessionIdleMinutes)),
					),
					app.P().Body(
						app.Strong().Text("Preview width: "),
						app.Text(fmt.Sprintf("%d to %d px in steps of %d (default %d)",
							a.aboutInfo.Zoom.Min, a.aboutInfo.Zoom.Max, a.aboutInfo.Zoom.Step, a.aboutInfo.Zoom.Default)),
					),
				),
			),
			app.Div().Class("about-section").Body(
				app.H3().Text("Job Ledger"),
				app.Div().Class("config-details").Body(
					app.P().Body(
						app.Strong().Text("Database: "),
						app.Text(a.getDatabaseDisplay()),
					),
				),
			),
			app.Div().Class("about-section").Body(
				app.H3().Text("About rotatepdf"),
				app.P().Text("rotatepdf turns the pages of a PDF a quarter at a time and hands back a rotated copy."),
				app.P().Text("Only the page rotation changes. Content, annotations and metadata are kept as they were."),
			),
		),
	)
}

// renderInfoItem creates an info item display
func (a *AboutPage) renderInfoItem(label, value string) app.UI {
	return app.Div().Class("info-item").Body(
		app.Div().Class("info-label").Body(app.Text(label)),
		app.Div().Class("info-value").Body(app.Text(value)),
	)
}

// getDatabaseDisplay returns a user-friendly database display name
func (a *AboutPage) getDatabaseDisplay() string {
	if !a.aboutInfo.LedgerEnabled {
		return "Disabled"
	}
	switch a.aboutInfo.DatabaseType {
	case "postgres":
		return "PostgreSQL"
	case "cockroachdb":
		return "CockroachDB"
	case "sqlite", "":
		return "SQLite"
	default:
		return a.aboutInfo.DatabaseType
	}
}

func (a *AboutPage) getRendererDisplay() string {
	switch a.aboutInfo.Renderer {
	case "", "none":
		return "None (previews disabled)"
	default:
		return fmt.Sprintf("%s at %d DPI", a.aboutInfo.Renderer, a.aboutInfo.RenderDPI)
	}
}

func (a *AboutPage) getUploadLimit() string {
	if a.aboutInfo.MaxUploadMB <= 0 {
		return "Unlimited"
	}
	return fmt.Sprintf("%d MB", a.aboutInfo.MaxUploadMB)
}
