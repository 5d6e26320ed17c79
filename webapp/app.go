package webapp

import (
	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// App lays out the navbar, the sidebar and the page for the current path
type App struct {
	app.Compo
}

func (a *App) Render() app.UI {
	return app.Div().Class("app-container").Body(
		app.Header().Body(&NavBar{}),
		app.Div().Class("app-layout").Body(
			&Sidebar{},
			app.Main().Class("main-content").Body(
				app.Div().Class("content").Body(currentPage(app.Window().URL().Path)),
			),
		),
	)
}

func currentPage(path string) app.UI {
	if l, ok := findLink(path); ok {
		return l.page()
	}
	return &NotFoundPage{Path: path}
}
