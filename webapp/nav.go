package webapp

import (
	"strings"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// navLink is one destination shown in both the navbar and the sidebar
type navLink struct {
	Path  string
	Label string
	Icon  string
	page  func() app.UI
}

var navLinks = []navLink{
	{Path: "/", Label: "Rotate", Icon: "🔄", page: func() app.UI { return &RotatePage{} }},
	{Path: "/jobs", Label: "Jobs", Icon: "⚙️", page: func() app.UI { return &JobsPage{} }},
	{Path: "/about", Label: "About", Icon: "ℹ️", page: func() app.UI { return &AboutPage{} }},
}

// Routes are the paths rendered by the App component
var Routes = routePaths()

func routePaths() []string {
	paths := make([]string, 0, len(navLinks))
	for _, l := range navLinks {
		paths = append(paths, l.Path)
	}
	return paths
}

// findLink returns the link serving path; trailing slashes are ignored
func findLink(path string) (navLink, bool) {
	if path != "/" {
		path = strings.TrimSuffix(path, "/")
	}
	for _, l := range navLinks {
		if l.Path == path {
			return l, true
		}
	}
	return navLink{}, false
}

func linkClass(base, path, current string) string {
	if l, ok := findLink(current); ok && l.Path == path {
		return base + " " + base + "-active"
	}
	return base
}

const sidebarStateKey = "sidebar-open"

func sidebarOpen(ctx app.Context) bool {
	var open bool
	ctx.LocalStorage().Get(sidebarStateKey, &open)
	return open
}
