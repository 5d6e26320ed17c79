package webapp

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/drummonds/rotatepdf/session"
	"github.com/drummonds/rotatepdf/viewport"
	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// RotatePage is the whole rotate workflow: upload a PDF, click pages to turn them,
// then download the result.
type RotatePage struct {
	app.Compo
	sessionID string
	snapshot  SessionSnapshot
	zoom      int
	uploading   bool
	downloading bool
	uploads     int // bumped per upload so previews of a new file never come from cache
	error       string
	previews    map[string]previewState // by preview URL; missing means still loading
}

type previewState int

const (
	previewLoading previewState = iota
	previewLoaded
	previewFailed
)

// OnMount is called when the component is mounted
func (p *RotatePage) OnMount(ctx app.Context) {
	p.zoom = viewport.ClampZoom(configuredZoom())
	p.previews = make(map[string]previewState)
	p.createSession(ctx)
}

// OnDismount drops the server side session with the page
func (p *RotatePage) OnDismount() {
	if p.sessionID == "" || !app.IsClient {
		return
	}
	options := app.Window().Get("Object").New()
	options.Set("method", http.MethodDelete)
	options.Set("keepalive", true)
	app.Window().Call("fetch", BuildAPIURL(sessionPath(p.sessionID)), options)
}

func (p *RotatePage) createSession(ctx app.Context) {
	fetchAPI(ctx, http.MethodPost, "/api/session", nil, p.applySnapshot)
}

// applySnapshot takes the session state from a session endpoint response
func (p *RotatePage) applySnapshot(ctx app.Context, res apiResponse) {
	p.uploading = false
	if res.status == 0 {
		p.error = "Network error: Could not connect to server"
		return
	}
	if !res.ok() {
		if res.status == http.StatusNotFound {
			// the session expired on the server, start again
			p.sessionID = ""
			p.snapshot = SessionSnapshot{}
			p.createSession(ctx)
		}
		if msg := describeError(res.status, res.body); msg != "" {
			p.error = msg
		}
		p.refresh(ctx)
		return
	}
	var snap SessionSnapshot
	if err := json.Unmarshal([]byte(res.body), &snap); err != nil {
		p.error = "Failed to parse response: " + err.Error()
		return
	}
	p.snapshot = snap
	if snap.ID != "" {
		p.sessionID = snap.ID
	}
	p.error = ""
}

// refresh reloads the session after an error so the page matches the server
func (p *RotatePage) refresh(ctx app.Context) {
	if p.sessionID == "" {
		return
	}
	fetchAPI(ctx, http.MethodGet, sessionPath(p.sessionID), nil, func(ctx app.Context, res apiResponse) {
		var snap SessionSnapshot
		if res.ok() && json.Unmarshal([]byte(res.body), &snap) == nil {
			p.snapshot = snap
		}
	})
}

// Render renders the rotate page
func (p *RotatePage) Render() app.UI {
	return app.Div().
		Class("rotate-page").
		Body(
			app.H2().Text("Rotate PDF pages"),
			app.If(p.error != "", func() app.UI {
				return app.Div().Class("error").Body(app.Text(p.error))
			}),
			p.renderBody(),
		)
}

func (p *RotatePage) renderBody() app.UI {
	switch {
	case p.uploading || p.snapshot.State == session.Loading:
		return app.Div().Class("loading").Body(app.Text("Loading PDF..."))
	case p.snapshot.State == session.Ready:
		return app.Div().Body(
			p.renderToolbar(),
			p.renderPages(),
		)
	default:
		return p.renderUploadPrompt()
	}
}

func (p *RotatePage) renderUploadPrompt() app.UI {
	return app.Div().Class("upload-prompt").Body(
		app.P().Text("Click a page to turn it a quarter clockwise. Nothing changes until you download."),
		app.Label().Class("upload-button").For("pdf-input").Body(
			app.Text("Click to upload or drop PDF here"),
		),
		app.Input().
			ID("pdf-input").
			Type("file").
			Accept(".pdf,application/pdf").
			Disabled(p.sessionID == "").
			OnChange(p.onFileChosen),
	)
}

func (p *RotatePage) renderToolbar() app.UI {
	return app.Div().Class("rotate-toolbar").Body(
		app.Span().Class("document-name").Text(p.snapshot.DisplayName),
		app.Button().
			Class("btn-primary").
			OnClick(p.onRotateAll).
			Body(app.Text("Rotate all")),
		app.Button().
			Class("btn-secondary").
			OnClick(p.onRemove).
			Body(app.Text("Remove PDF")),
		app.Button().
			Class("btn-round").
			Title("Zoom in").
			Disabled(p.zoom >= viewport.MaxZoom).
			OnClick(p.onZoomIn).
			Body(app.Text("+")),
		app.Button().
			Class("btn-round").
			Title("Zoom out").
			Disabled(p.zoom <= viewport.MinZoom).
			OnClick(p.onZoomOut).
			Body(app.Text("−")),
		app.Button().
			Class("btn-primary download-link").
			Disabled(p.downloading).
			OnClick(p.onDownload).
			Text(downloadLabel(p.downloading)),
	)
}

func downloadLabel(downloading bool) string {
	if downloading {
		return "Preparing..."
	}
	return "Download"
}

func (p *RotatePage) renderPages() app.UI {
	tiles := make([]app.UI, 0, p.snapshot.PageCount)
	for i := 0; i < p.snapshot.PageCount; i++ {
		tiles = append(tiles, p.renderPage(i))
	}
	return app.Div().Class("page-grid").Body(tiles...)
}

// previewSrc is the unrotated tile of page index; it only changes with zoom or a new upload
func (p *RotatePage) previewSrc(index int) string {
	return BuildAPIURL(previewPath(p.sessionID, index, p.zoom, p.uploads))
}

// rotateStyle turns a tile in the browser, matching the rotation the export will write
func rotateStyle(rotation int) string {
	return fmt.Sprintf("rotate(%ddeg)", rotation)
}

// renderPage draws one clickable tile with the pending rotation as a CSS transform
func (p *RotatePage) renderPage(index int) app.UI {
	rotation := 0
	if index < len(p.snapshot.Rotations) {
		rotation = p.snapshot.Rotations[index]
	}
	src := p.previewSrc(index)
	state := p.previews[src]

	var preview app.UI
	if state == previewFailed {
		preview = app.Div().Class("page-error").Text("fail to load resource")
	} else {
		imgClass := "page-preview"
		if state == previewLoading {
			imgClass += " page-preview-pending"
		}
		preview = app.Div().Class("page-frame").Body(
			app.If(state == previewLoading, func() app.UI {
				return app.Div().Class("page-loading").Text("Loading...")
			}),
			app.Img().
				Class(imgClass).
				Src(src).
				Alt(fmt.Sprintf("Page %d", index+1)).
				Style("transform", rotateStyle(rotation)).
				On("load", func(ctx app.Context, e app.Event) {
					p.previews[src] = previewLoaded
				}).
				On("error", func(ctx app.Context, e app.Event) {
					p.previews[src] = previewFailed
				}),
		)
	}

	return app.Div().
		Class("page-tile").
		Style("width", fmt.Sprintf("%dpx", p.zoom)).
		Title("Click to rotate").
		OnClick(func(ctx app.Context, e app.Event) {
			p.onRotatePage(ctx, index)
		}).
		Body(
			preview,
			app.Div().Class("page-label").Text(pageLabel(index, rotation)),
		)
}

// pageLabel is the caption under a tile
func pageLabel(index, rotation int) string {
	if rotation == 0 {
		return fmt.Sprintf("%d", index+1)
	}
	return fmt.Sprintf("%d (%d°)", index+1, rotation)
}

// onFileChosen uploads the picked file, replacing whatever was loaded
func (p *RotatePage) onFileChosen(ctx app.Context, e app.Event) {
	files := ctx.JSSrc().Get("files")
	if !files.Truthy() || files.Length() == 0 {
		return
	}
	file := files.Index(0)

	form := app.Window().Get("FormData").New()
	form.Call("append", "file", file, file.Get("name").String())

	p.uploading = true
	p.uploads++
	p.error = ""
	p.previews = make(map[string]previewState)
	fetchAPI(ctx, http.MethodPost, sessionPath(p.sessionID, "document"), form, p.applySnapshot)
	// allow picking the same file again
	ctx.JSSrc().Set("value", "")
}

func (p *RotatePage) onRotatePage(ctx app.Context, index int) {
	fetchAPI(ctx, http.MethodPost, sessionPath(p.sessionID, "pages", fmt.Sprint(index), "rotate"), nil, p.applySnapshot)
}

func (p *RotatePage) onRotateAll(ctx app.Context, e app.Event) {
	fetchAPI(ctx, http.MethodPost, sessionPath(p.sessionID, "rotate-all"), nil, p.applySnapshot)
}

// onDownload fetches the export and saves it only when the server produced a PDF
func (p *RotatePage) onDownload(ctx app.Context, e app.Event) {
	p.downloading = true
	p.error = ""
	name := session.OutputName(p.snapshot.DisplayName)
	downloadFile(ctx, sessionPath(p.sessionID, "export"), name, func(ctx app.Context, res apiResponse) {
		p.downloading = false
		if msg := exportError(res); msg != "" {
			p.error = msg
			p.refresh(ctx)
		}
	})
}

// exportError is the message for a failed download, empty on success
func exportError(res apiResponse) string {
	switch {
	case res.status == 0:
		return "Network error: Could not connect to server"
	case res.ok():
		return ""
	}
	if msg := describeError(res.status, res.body); msg != "" {
		return msg
	}
	return fmt.Sprintf("Download failed (status: %d)", res.status)
}

func (p *RotatePage) onRemove(ctx app.Context, e app.Event) {
	p.previews = make(map[string]previewState)
	fetchAPI(ctx, http.MethodDelete, sessionPath(p.sessionID, "document"), nil, p.applySnapshot)
}

func (p *RotatePage) onZoomIn(ctx app.Context, e app.Event) {
	p.zoom = viewport.ZoomIn(p.zoom)
}

func (p *RotatePage) onZoomOut(ctx app.Context, e app.Event) {
	p.zoom = viewport.ZoomOut(p.zoom)
}
