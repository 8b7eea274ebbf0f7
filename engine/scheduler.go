package engine

import (
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger

// InitializeSchedules starts all the cron jobs (currently just one)
func (serverHandler *ServerHandler) InitializeSchedules() {
	// Run a purge immediately at startup in a goroutine
	Logger.Info("Running render purge at startup")
	go func() {
		if _, err := serverHandler.purgeOldRenders(); err != nil {
			Logger.Error("Startup render purge failed", "error", err)
		}
	}()

	c := cron.New()
	var purgeJob cron.Job
	purgeJob = cron.FuncJob(func() {
		if _, err := serverHandler.purgeOldRenders(); err != nil {
			Logger.Error("Scheduled render purge failed", "error", err)
		}
	})
	purgeJob = cron.NewChain(cron.SkipIfStillRunning(cron.DefaultLogger)).Then(purgeJob) //ensure we don't kick off another if old one is still running
	if _, err := c.AddJob(serverHandler.ServerConfig.PurgeSchedule, purgeJob); err != nil {
		Logger.Error("Invalid purge schedule, falling back to hourly", "schedule", serverHandler.ServerConfig.PurgeSchedule, "error", err)
		c.AddJob("@hourly", purgeJob)
	}
	Logger.Info("Adding render purge scheduler", "schedule", serverHandler.ServerConfig.PurgeSchedule, "retention_days", serverHandler.ServerConfig.RetentionDays)
	c.Start()
}
