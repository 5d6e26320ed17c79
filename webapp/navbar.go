package webapp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/drummonds/rotatepdf/internal/build"
	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// BuildDate can be set at build time with -ldflags
var BuildDate = ""

const activeJobsPoll = 5 * time.Second

// NavBar shows the brand, the page links and a badge with the number of
// exports the backend is still writing.
type NavBar struct {
	app.Compo
	path    string
	running int
	ticker  *time.Ticker
}

func (n *NavBar) OnMount(ctx app.Context) {
	n.path = ctx.Page().URL().Path
	n.pollActiveJobs(ctx)

	n.ticker = time.NewTicker(activeJobsPoll)
	ticker := n.ticker
	ctx.Async(func() {
		for range ticker.C {
			n.pollActiveJobs(ctx)
		}
	})
}

func (n *NavBar) OnNav(ctx app.Context) {
	n.path = ctx.Page().URL().Path
}

func (n *NavBar) OnDismount() {
	if n.ticker != nil {
		n.ticker.Stop()
	}
}

func (n *NavBar) Render() app.UI {
	return app.Nav().Class("navbar").Body(
		app.Button().
			Class("hamburger-menu").
			ID("menu-toggle").
			OnClick(n.toggleSidebar).
			Body(
				app.Span().Class("hamburger-line"),
				app.Span().Class("hamburger-line"),
				app.Span().Class("hamburger-line"),
			),
		app.Div().Class("navbar-brand").Body(
			app.H1().Text("rotatepdf"),
			app.Span().Class("version-info").Text(versionLabel(build.Version, BuildDate)),
		),
		app.Div().Class("navbar-menu").Body(
			app.Range(navLinks).Slice(func(i int) app.UI {
				l := navLinks[i]
				return app.A().Href(l.Path).Class(linkClass("navbar-item", l.Path, n.path)).Text(l.Label)
			}),
			app.If(n.running > 0, func() app.UI {
				return app.A().Href("/jobs").Class("navbar-badge").Text(runningLabel(n.running))
			}),
		),
	)
}

// toggleSidebar flips the stored sidebar state and reloads so the
// sidebar picks it up on mount
func (n *NavBar) toggleSidebar(ctx app.Context, e app.Event) {
	ctx.LocalStorage().Set(sidebarStateKey, !sidebarOpen(ctx))
	ctx.Reload()
}

func (n *NavBar) pollActiveJobs(ctx app.Context) {
	fetchAPI(ctx, http.MethodGet, "/api/jobs/active", nil, func(ctx app.Context, res apiResponse) {
		// network errors keep the last count
		if res.status == 0 {
			return
		}
		var jobs []Job
		if !res.ok() || json.Unmarshal([]byte(res.body), &jobs) != nil {
			n.running = 0
			return
		}
		n.running = len(jobs)
	})
}

func versionLabel(version, date string) string {
	if date == "" {
		return version
	}
	return version + " | " + date
}

func runningLabel(n int) string {
	if n == 1 {
		return "1 export running"
	}
	return fmt.Sprintf("%d exports running", n)
}
