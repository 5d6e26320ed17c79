package webapp

import (
	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// NotFoundPage is rendered for any path without a page
type NotFoundPage struct {
	app.Compo
	Path string
}

func (p *NotFoundPage) Render() app.UI {
	message := "There is nothing here."
	if p.Path != "" {
		message = "There is nothing at " + p.Path + "."
	}
	return app.Div().Class("not-found-page").Body(
		app.Div().Class("not-found-container").Body(
			app.H1().Class("not-found-title").Text("404"),
			app.P().Class("not-found-message").Text(message),
			app.Ul().Class("not-found-links").Body(
				app.Range(navLinks).Slice(func(i int) app.UI {
					l := navLinks[i]
					return app.Li().Body(
						app.A().Href(l.Path).Class("not-found-home-link").Text(l.Icon + " " + l.Label),
					)
				}),
			),
		),
	)
}
