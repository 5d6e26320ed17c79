package webapp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

const (
	jobsPageSize = 50
	jobsPoll     = 2 * time.Second
)

var jobFilters = []string{"all", "running", "completed", "failed"}

// JobsPage lists the export ledger as a table. Pending and running jobs are
// grouped under the "running" filter.
type JobsPage struct {
	app.Compo
	jobs    []Job
	filter  string
	loading bool
	error   string
	paused  bool
	ticker  *time.Ticker
}

func (j *JobsPage) OnMount(ctx app.Context) {
	j.filter = "all"
	j.loadJobs(ctx)

	j.ticker = time.NewTicker(jobsPoll)
	ticker := j.ticker
	ctx.Async(func() {
		for range ticker.C {
			if !j.paused {
				j.loadJobs(ctx)
			}
		}
	})
}

func (j *JobsPage) OnDismount() {
	if j.ticker != nil {
		j.ticker.Stop()
	}
}

func (j *JobsPage) Render() app.UI {
	shown := filterJobs(j.jobs, j.filter)
	return app.Div().Class("jobs-page").Body(
		app.H2().Text("Export Jobs"),
		app.P().Class("jobs-summary").Text(summarizeJobs(j.jobs)),
		app.Div().Class("jobs-controls").Body(
			app.Range(jobFilters).Slice(func(i int) app.UI {
				f := jobFilters[i]
				class := "btn-secondary"
				if f == j.filter || (j.filter == "" && f == "all") {
					class = "btn-primary"
				}
				return app.Button().Class(class).Text(f).OnClick(func(ctx app.Context, e app.Event) {
					j.filter = f
				})
			}),
			app.Button().Class("btn-secondary").Disabled(j.loading).Text("Refresh").OnClick(j.onRefresh),
			app.Label().Class("auto-refresh-label").Body(
				app.Input().Type("checkbox").Checked(!j.paused).OnChange(j.onAutoRefresh),
				app.Text(" Live"),
			),
		),
		j.renderBody(shown),
	)
}

func (j *JobsPage) renderBody(shown []Job) app.UI {
	switch {
	case j.error != "":
		return app.Div().Class("error").Text(j.error)
	case j.loading && len(j.jobs) == 0:
		return app.Div().Class("loading").Text("Loading jobs...")
	case len(j.jobs) == 0:
		return app.Div().Class("info").Text("No exports yet. A job is recorded each time a rotated PDF is downloaded.")
	case len(shown) == 0:
		return app.Div().Class("info").Text("No " + j.filter + " exports.")
	}

	now := time.Now()
	return app.Table().Class("jobs-table").Body(
		app.THead().Body(app.Tr().Body(
			app.Th().Text("Document"),
			app.Th().Text("Status"),
			app.Th().Text("Outcome"),
			app.Th().Text("Started"),
		)),
		app.TBody().Body(
			app.Range(shown).Slice(func(i int) app.UI {
				job := shown[i]
				return app.Tr().Class("job-"+job.Status).Title("ID "+job.ID).Body(
					app.Td().Text(formatJobTitle(&job)),
					app.Td().Body(app.Span().Class("job-status-badge job-status-"+job.Status).Text(job.Status)),
					app.Td().Text(jobOutcome(&job)),
					app.Td().Text(ago(job.CreatedAt, now)),
				)
			}),
		),
	)
}

func (j *JobsPage) onRefresh(ctx app.Context, e app.Event) {
	j.loadJobs(ctx)
}

func (j *JobsPage) onAutoRefresh(ctx app.Context, e app.Event) {
	j.paused = !ctx.JSSrc().Get("checked").Bool()
}

func (j *JobsPage) loadJobs(ctx app.Context) {
	j.loading = true
	path := fmt.Sprintf("/api/jobs?limit=%d", jobsPageSize)
	fetchAPI(ctx, http.MethodGet, path, nil, func(ctx app.Context, res apiResponse) {
		j.loading = false
		j.error = ""
		switch {
		case res.status == 0:
			j.error = "Could not reach the server"
		case !res.ok():
			j.error = fmt.Sprintf("Loading jobs failed with status %d", res.status)
		default:
			var jobs []Job
			if err := json.Unmarshal([]byte(res.body), &jobs); err != nil {
				j.error = "Unreadable job list: " + err.Error()
				return
			}
			j.jobs = jobs
		}
	})
}

func filterJobs(jobs []Job, filter string) []Job {
	if filter == "" || filter == "all" {
		return jobs
	}
	var out []Job
	for _, job := range jobs {
		status := job.Status
		if status == "pending" {
			status = "running"
		}
		if status == filter {
			out = append(out, job)
		}
	}
	return out
}

func summarizeJobs(jobs []Job) string {
	if len(jobs) == 0 {
		return "Every download of a rotated PDF is recorded here when the job ledger is enabled."
	}
	var done, failed int
	var written int64
	for _, job := range jobs {
		switch job.Status {
		case "completed":
			done++
			written += job.Bytes
		case "failed":
			failed++
		}
	}
	return fmt.Sprintf("%d exports, %d failed, %s written", done, failed, formatBytes(written))
}

// formatJobTitle names the source file and, once known, the downloaded file
func formatJobTitle(job *Job) string {
	name := job.DisplayName
	if name == "" {
		name = "(unnamed)"
	}
	if job.OutputName == "" {
		return name
	}
	return name + " → " + job.OutputName
}

func jobOutcome(job *Job) string {
	switch job.Status {
	case "completed":
		return formatOutcome(job)
	case "failed":
		return job.Error
	}
	return job.Message
}

func formatOutcome(job *Job) string {
	return fmt.Sprintf("Rotated %d of %d pages, %s", job.RotatedPages, job.PageCount, formatBytes(job.Bytes))
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// ago renders an RFC 3339 timestamp relative to now; older than a day
// falls back to a date
func ago(stamp string, now time.Time) string {
	t, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		return stamp
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d.Minutes()), "minute") + " ago"
	case d < 24*time.Hour:
		return plural(int(d.Hours()), "hour") + " ago"
	}
	return t.Local().Format("2 Jan 2006 15:04")
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
