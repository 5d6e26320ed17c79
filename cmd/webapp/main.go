//go:build js && wasm
// +build js,wasm

package main

import (
	"github.com/drummonds/rotatepdf/webapp"
	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

func main() {
	// every route uses the App component with navbar/sidebar
	for _, path := range webapp.Routes {
		app.Route(path, func() app.Composer { return &webapp.App{} })
	}

	// This main function is for the WASM build only
	app.RunWhenOnBrowser()
}
