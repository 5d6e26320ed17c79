package webapp

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/drummonds/rotatepdf/session"
	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// GetAPIBaseURL returns the configured API base URL
// It reads from window.rotatepdfConfig.apiURL if available,
// otherwise falls back to empty string (relative URLs)
func GetAPIBaseURL() string {
	if !app.IsClient {
		return "" // Server-side rendering - use relative URLs
	}

	config := app.Window().Get("rotatepdfConfig")
	if config.Truthy() {
		apiURL := config.Get("apiURL")
		if apiURL.Truthy() {
			url := apiURL.String()
			// Ensure no trailing slash
			if len(url) > 0 && url[len(url)-1] == '/' {
				return url[:len(url)-1]
			}
			return url
		}
	}

	return ""
}

// configuredZoom reads window.rotatepdfConfig.defaultZoomWidth, 0 when unset
func configuredZoom() int {
	if !app.IsClient {
		return 0
	}
	config := app.Window().Get("rotatepdfConfig")
	if !config.Truthy() {
		return 0
	}
	zoom := config.Get("defaultZoomWidth")
	if !zoom.Truthy() {
		return 0
	}
	return zoom.Int()
}

// BuildAPIURL constructs a full API URL from a path
// Example: BuildAPIURL("/api/jobs") -> "http://backend:8000/api/jobs"
// or just "/api/jobs" if using relative URLs
func BuildAPIURL(path string) string {
	baseURL := GetAPIBaseURL()
	if baseURL == "" {
		return path // Relative URL
	}
	return baseURL + path
}

// sessionPath is the API path of one session resource
func sessionPath(sessionID string, parts ...string) string {
	path := "/api/session/" + url.PathEscape(sessionID)
	for _, p := range parts {
		path += "/" + p
	}
	return path
}

// previewPath asks for the unrotated page index at width; the page turns in the browser.
// version changes with every upload so a new file never shows cached tiles.
func previewPath(sessionID string, index, width, version int) string {
	return fmt.Sprintf("%s?width=%d&overlay=false&v=%d", sessionPath(sessionID, "pages", fmt.Sprint(index), "preview"), width, version)
}

// SessionSnapshot is the session state returned by every session endpoint
type SessionSnapshot struct {
	ID          string        `json:"id"`
	State       session.State `json:"state"`
	PageCount   int           `json:"pageCount"`
	Rotations   []int         `json:"rotations"`
	DisplayName string        `json:"displayName"`
}

// APIError is the JSON error body of the API
type APIError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// describeError turns an error response into the line shown above the upload prompt
func describeError(status int, body string) string {
	var apiErr APIError
	if err := json.Unmarshal([]byte(body), &apiErr); err != nil || apiErr.Error == "" {
		return fmt.Sprintf("Request failed (status: %d)", status)
	}
	switch apiErr.Error {
	case "ParseError":
		return "That file could not be read as a PDF. It may be corrupt or encrypted."
	case "IOError":
		return "The file could not be read. Please try again."
	case "TooLarge":
		return "That file is too large to upload."
	case "SerializationError":
		return "The rotated PDF could not be written: " + apiErr.Message
	case "Superseded":
		return ""
	default:
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return apiErr.Error
	}
}

// apiResponse is what fetchAPI hands back: the HTTP status and the raw body text.
// A status of 0 means the request never reached the server.
type apiResponse struct {
	status int
	body   string
}

func (r apiResponse) ok() bool {
	return r.status >= 200 && r.status < 300
}

// fetchAPI runs window.fetch and calls done on the UI goroutine with the result.
// body may be nil or a JS value such as FormData.
func fetchAPI(ctx app.Context, method, path string, body app.Value, done func(ctx app.Context, res apiResponse)) {
	ctx.Async(func() {
		options := app.Window().Get("Object").New()
		options.Set("method", method)
		if body != nil {
			options.Set("body", body)
		}
		res := app.Window().Call("fetch", BuildAPIURL(path), options)

		res.Call("then", app.FuncOf(func(this app.Value, args []app.Value) interface{} {
			if len(args) == 0 {
				return nil
			}
			response := args[0]

			status := response.Get("status").Int()

			response.Call("text").Call("then", app.FuncOf(func(this app.Value, args []app.Value) interface{} {
				text := ""
				if len(args) > 0 {
					text = args[0].String()
				}
				ctx.Dispatch(func(ctx app.Context) {
					done(ctx, apiResponse{status: status, body: text})
				})
				return nil
			}))

			return nil
		})).Call("catch", app.FuncOf(func(this app.Value, args []app.Value) interface{} {
			ctx.Dispatch(func(ctx app.Context) {
				done(ctx, apiResponse{})
			})
			return nil
		}))
	})
}

// downloadFile fetches path and, on success, saves the body as fileName through a
// temporary object URL. Failed responses never reach the disk; done gets their body.
func downloadFile(ctx app.Context, path, fileName string, done func(ctx app.Context, res apiResponse)) {
	ctx.Async(func() {
		finish := func(res apiResponse) {
			ctx.Dispatch(func(ctx app.Context) { done(ctx, res) })
		}

		app.Window().Call("fetch", BuildAPIURL(path)).Call("then", app.FuncOf(func(this app.Value, args []app.Value) interface{} {
			response := args[0]
			status := response.Get("status").Int()
			if !response.Get("ok").Bool() {
				response.Call("text").Call("then", app.FuncOf(func(this app.Value, args []app.Value) interface{} {
					finish(apiResponse{status: status, body: args[0].String()})
					return nil
				}))
				return nil
			}

			response.Call("blob").Call("then", app.FuncOf(func(this app.Value, args []app.Value) interface{} {
				urls := app.Window().Get("URL")
				href := urls.Call("createObjectURL", args[0])
				link := app.Window().Get("document").Call("createElement", "a")
				link.Set("href", href)
				link.Set("download", fileName)
				link.Call("click")
				app.Window().Call("setTimeout", app.FuncOf(func(this app.Value, args []app.Value) interface{} {
					urls.Call("revokeObjectURL", href)
					return nil
				}), 10000)
				finish(apiResponse{status: status})
				return nil
			}))
			return nil
		})).Call("catch", app.FuncOf(func(this app.Value, args []app.Value) interface{} {
			finish(apiResponse{})
			return nil
		}))
	})
}

// Job represents one export job from the ledger
type Job struct {
	ID           string `json:"id"`
	SessionID    string `json:"sessionId"`
	Status       string `json:"status"`
	DisplayName  string `json:"displayName"`
	OutputName   string `json:"outputName,omitempty"`
	PageCount    int    `json:"pageCount"`
	RotatedPages int    `json:"rotatedPages"`
	Bytes        int64  `json:"bytes"`
	Message      string `json:"message"`
	Error        string `json:"error,omitempty"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
	StartedAt    string `json:"startedAt,omitempty"`
	CompletedAt  string `json:"completedAt,omitempty"`
}
