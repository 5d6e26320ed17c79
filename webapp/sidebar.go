package webapp

import (
	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// Sidebar repeats the navigation links with icons; the navbar toggles it
type Sidebar struct {
	app.Compo
	open bool
	path string
}

func (s *Sidebar) OnMount(ctx app.Context) { s.sync(ctx) }

func (s *Sidebar) OnNav(ctx app.Context) { s.sync(ctx) }

func (s *Sidebar) sync(ctx app.Context) {
	s.open = sidebarOpen(ctx)
	s.path = ctx.Page().URL().Path
}

func (s *Sidebar) Render() app.UI {
	class := "sidebar"
	if s.open {
		class += " sidebar-open"
	}
	return app.Aside().Class(class).Body(
		app.Div().Class("sidebar-header").Body(app.H2().Text("rotatepdf")),
		app.Nav().Class("sidebar-nav").Body(
			app.Range(navLinks).Slice(func(i int) app.UI {
				l := navLinks[i]
				return app.A().
					Href(l.Path).
					Class(linkClass("sidebar-item", l.Path, s.path)).
					Body(
						app.Span().Class("sidebar-icon").Text(l.Icon),
						app.Span().Class("sidebar-label").Text(l.Label),
					)
			}),
		),
	)
}
