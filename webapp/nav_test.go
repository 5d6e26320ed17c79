package webapp

import (
	"testing"
)

func TestRoutesFollowNavLinks(t *testing.T) {
	if len(Routes) != len(navLinks) {
		t.Fatalf("Expected %d routes, got %d", len(navLinks), len(Routes))
	}
	for i, l := range navLinks {
		if Routes[i] != l.Path {
			t.Errorf("Routes[%d] = %q, want %q", i, Routes[i], l.Path)
		}
	}
}

func TestFindLink(t *testing.T) {
	tests := []struct {
		path  string
		want  string
		found bool
	}{
		{"/", "/", true},
		{"/jobs", "/jobs", true},
		{"/jobs/", "/jobs", true},
		{"/about", "/about", true},
		{"/search", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			l, ok := findLink(tt.path)
			if ok != tt.found || l.Path != tt.want {
				t.Errorf("findLink(%q) = %q, %v; want %q, %v", tt.path, l.Path, ok, tt.want, tt.found)
			}
		})
	}
}

func TestLinkClass(t *testing.T) {
	if got := linkClass("navbar-item", "/jobs", "/jobs/"); got != "navbar-item navbar-item-active" {
		t.Errorf("Unexpected active class %q", got)
	}
	if got := linkClass("sidebar-item", "/", "/jobs"); got != "sidebar-item" {
		t.Errorf("Unexpected inactive class %q", got)
	}
}

func TestCurrentPage(t *testing.T) {
	if _, ok := currentPage("/").(*RotatePage); !ok {
		t.Error("Expected the rotate page at /")
	}
	if _, ok := currentPage("/jobs").(*JobsPage); !ok {
		t.Error("Expected the jobs page at /jobs")
	}
	nf, ok := currentPage("/nope").(*NotFoundPage)
	if !ok || nf.Path != "/nope" {
		t.Errorf("Expected a not found page for /nope, got %#v", nf)
	}
}

func TestNavBarLabels(t *testing.T) {
	if got := versionLabel("v1.2.0", ""); got != "v1.2.0" {
		t.Errorf("versionLabel without date = %q", got)
	}
	if got := versionLabel("v1.2.0", "2026-01-02"); got != "v1.2.0 | 2026-01-02" {
		t.Errorf("versionLabel with date = %q", got)
	}
	if got := runningLabel(1); got != "1 export running" {
		t.Errorf("runningLabel(1) = %q", got)
	}
	if got := runningLabel(3); got != "3 exports running" {
		t.Errorf("runningLabel(3) = %q", got)
	}
}
