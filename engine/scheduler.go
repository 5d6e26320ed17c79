package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// InitializeSchedules starts the housekeeping cron jobs: the idle session sweep and,
// when a ledger is configured, pruning of old export jobs. Stop the returned cron on shutdown.
func (serverHandler *ServerHandler) InitializeSchedules() *cron.Cron {
	interval := serverHandler.ServerConfig.SweepInterval
	if interval <= 0 {
		interval = 5
	}

	c := cron.New()
	var sweepJob cron.Job
	sweepJob = cron.FuncJob(serverHandler.sweepJobFunc)
	sweepJob = cron.NewChain(cron.SkipIfStillRunning(cron.DefaultLogger)).Then(sweepJob) //ensure we don't kick off another if old one is still running
	if _, err := c.AddJob(fmt.Sprintf("@every %dm", interval), sweepJob); err != nil {
		Logger.Error("Unable to schedule session sweep", "error", err)
	}
	Logger.Info("Adding session sweep scheduler", "interval_minutes", interval)

	if serverHandler.DB != nil && serverHandler.ServerConfig.JobRetentionHours > 0 {
		var pruneJob cron.Job
		pruneJob = cron.FuncJob(serverHandler.pruneJobsFunc)
		pruneJob = cron.NewChain(cron.SkipIfStillRunning(cron.DefaultLogger)).Then(pruneJob)
		if _, err := c.AddJob("@every 1h", pruneJob); err != nil {
			Logger.Error("Unable to schedule job pruning", "error", err)
		}
		Logger.Info("Adding export job pruning", "retention_hours", serverHandler.ServerConfig.JobRetentionHours)
	}

	c.Start()
	return c
}

func (serverHandler *ServerHandler) sweepJobFunc() {
	// a panic here must not take the server down
	defer func() {
		if r := recover(); r != nil {
			Logger.Error("Panic recovered in session sweep", "panic", r)
		}
	}()

	idle := time.Duration(serverHandler.ServerConfig.SessionIdleMinutes) * time.Minute
	if idle <= 0 {
		return
	}
	removed := serverHandler.Sessions.Sweep(idle)
	if removed > 0 {
		Logger.Info("Swept idle sessions", "removed", removed, "remaining", serverHandler.Sessions.Len())
	}
}

func (serverHandler *ServerHandler) pruneJobsFunc() {
	defer func() {
		if r := recover(); r != nil {
			Logger.Error("Panic recovered in job pruning", "panic", r)
		}
	}()

	retention := time.Duration(serverHandler.ServerConfig.JobRetentionHours) * time.Hour
	deleted, err := serverHandler.DB.DeleteOldJobs(context.Background(), retention)
	if err != nil {
		Logger.Error("Unable to prune export jobs", "error", err)
		return
	}
	if deleted > 0 {
		Logger.Info("Pruned old export jobs", "deleted", deleted)
	}
}
