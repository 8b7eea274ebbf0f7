package database

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/drummonds/chartconv/config"
)

const testSpec = `{"mark":"line","encoding":{"x":{"field":"x","type":"quantitative"},"y":{"field":"y","type":"quantitative"}},"data":{"x":[1,2],"y":[3,4]}}`

func testLogger() {
	if Logger == nil {
		Logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}
}

func TestBunSQLiteDatabase(t *testing.T) {
	testLogger()

	db := NewRepository(config.ServerConfig{DatabaseType: "sqlite", DatabasePath: ":memory:"})
	defer db.Close()

	t.Log("Bun SQLite database setup successfully")

	t.Run("Create and retrieve job", func(t *testing.T) {
		job, err := db.CreateJob("svg", []byte(testSpec), HashSpec([]byte(testSpec)))
		if err != nil {
			t.Fatalf("Failed to create job: %v", err)
		}

		if job.ID.String() == "" {
			t.Error("Job ID was not set after create")
		}
		if job.SpecHash != HashSpec([]byte(testSpec)) {
			t.Error("Spec hash was not recorded")
		}

		retrieved, err := db.GetJob(job.ID)
		if err != nil {
			t.Fatalf("Failed to get job: %v", err)
		}
		if retrieved.Format != "svg" {
			t.Errorf("Expected format svg, got %s", retrieved.Format)
		}
		if retrieved.Status != JobStatusPending {
			t.Errorf("Expected status pending, got %s", retrieved.Status)
		}
	})

	t.Run("Job lifecycle", func(t *testing.T) {
		job, err := db.CreateJob("png", []byte(testSpec), HashSpec([]byte(testSpec)))
		if err != nil {
			t.Fatalf("Failed to create job: %v", err)
		}

		err = db.StartJob(job.ID)
		if err != nil {
			t.Fatalf("Failed to start job: %v", err)
		}

		output := []byte("\x89PNG fake output")
		err = db.CompleteJob(job.ID, output, "image/png", 42*time.Millisecond)
		if err != nil {
			t.Fatalf("Failed to complete job: %v", err)
		}

		completed, err := db.GetJob(job.ID)
		if err != nil {
			t.Fatalf("Failed to get completed job: %v", err)
		}
		if completed.Status != JobStatusCompleted {
			t.Errorf("Expected status %s, got %s", JobStatusCompleted, completed.Status)
		}
		if completed.Size != len(output) {
			t.Errorf("Expected size %d, got %d", len(output), completed.Size)
		}
		if completed.ContentType != "image/png" {
			t.Errorf("Expected content type image/png, got %s", completed.ContentType)
		}
		if completed.CompletedAt == nil {
			t.Error("CompletedAt was not set")
		}
	})

	t.Run("Failed job records error", func(t *testing.T) {
		job, err := db.CreateJob("pdf", []byte(testSpec), HashSpec([]byte(testSpec)))
		if err != nil {
			t.Fatalf("Failed to create job: %v", err)
		}

		err = db.FailJob(job.ID, "layout error: field \"missing\" not present")
		if err != nil {
			t.Fatalf("Failed to fail job: %v", err)
		}

		failed, err := db.GetJob(job.ID)
		if err != nil {
			t.Fatalf("Failed to get failed job: %v", err)
		}
		if failed.Status != JobStatusFailed {
			t.Errorf("Expected status %s, got %s", JobStatusFailed, failed.Status)
		}
		if failed.Error == "" {
			t.Error("Error message was not recorded")
		}
	})

	t.Run("Cached output lookup", func(t *testing.T) {
		spec := []byte(`{"mark":"bar","encoding":{"x":{"field":"c","type":"nominal"},"y":{"field":"v","type":"quantitative"}},"data":{"c":["a"],"v":[1]}}`)
		job, err := db.CreateJob("svg", spec, HashSpec(spec))
		if err != nil {
			t.Fatalf("Failed to create job: %v", err)
		}
		err = db.CompleteJob(job.ID, []byte("<svg/>"), "image/svg+xml", time.Millisecond)
		if err != nil {
			t.Fatalf("Failed to complete job: %v", err)
		}

		cached, ok := FetchCachedOutput(HashSpec(spec), "svg", db)
		if !ok {
			t.Fatal("Expected cached output, got none")
		}
		if string(cached.Output) != "<svg/>" {
			t.Errorf("Cached output mismatch: %q", cached.Output)
		}

		// A different format must not hit the cache
		if _, ok := FetchCachedOutput(HashSpec(spec), "png", db); ok {
			t.Error("Cache hit for a format that was never rendered")
		}
	})

	t.Run("Recent and active jobs", func(t *testing.T) {
		recent, err := db.GetRecentJobs(10, 0)
		if err != nil {
			t.Fatalf("Failed to get recent jobs: %v", err)
		}
		if len(recent) == 0 {
			t.Error("Expected recent jobs, got none")
		}

		active, err := db.GetActiveJobs()
		if err != nil {
			t.Fatalf("Failed to get active jobs: %v", err)
		}
		for _, job := range active {
			if job.Status != JobStatusPending && job.Status != JobStatusRunning {
				t.Errorf("Active jobs contained finished job %s with status %s", job.ID, job.Status)
			}
		}
	})

	t.Run("Format stats", func(t *testing.T) {
		stats, err := db.GetFormatStats()
		if err != nil {
			t.Fatalf("Failed to get format stats: %v", err)
		}
		if len(stats) == 0 {
			t.Error("Expected format stats, got none")
		}
		for _, stat := range stats {
			if stat.Count <= 0 {
				t.Errorf("Format %s has non-positive count %d", stat.Format, stat.Count)
			}
		}
	})

	t.Run("Config round trip", func(t *testing.T) {
		serverConfig := config.ServerConfig{
			ListenAddrPort: "8000",
			RenderBackend:  "resvg",
			DefaultScale:   2.0,
			DefaultPPI:     144.0,
			DefaultQuality: 85,
			RetentionDays:  7,
			PurgeSchedule:  "@daily",
		}

		WriteConfigToDB(serverConfig, db)

		stored, err := FetchConfigFromDB(db)
		if err != nil {
			t.Fatalf("Failed to fetch stored config: %v", err)
		}
		if stored.DefaultScale != 2.0 || stored.DefaultPPI != 144.0 {
			t.Errorf("Render defaults not persisted: %+v", stored)
		}
		if stored.RetentionDays != 7 {
			t.Errorf("Expected retention 7, got %d", stored.RetentionDays)
		}

		// Saving again overwrites the single config row
		serverConfig.RetentionDays = 14
		WriteConfigToDB(serverConfig, db)
		stored, err = FetchConfigFromDB(db)
		if err != nil {
			t.Fatalf("Failed to fetch updated config: %v", err)
		}
		if stored.RetentionDays != 14 {
			t.Errorf("Config update not applied, retention is %d", stored.RetentionDays)
		}
	})

	t.Run("Delete old jobs", func(t *testing.T) {
		// Nothing is older than a day in this test database
		count, err := db.DeleteOldJobs(24 * time.Hour)
		if err != nil {
			t.Fatalf("Failed to delete old jobs: %v", err)
		}
		if count != 0 {
			t.Errorf("Expected no deletions, got %d", count)
		}

		// Everything completed is older than zero
		count, err = db.DeleteOldJobs(0)
		if err != nil {
			t.Fatalf("Failed to delete old jobs: %v", err)
		}
		if count == 0 {
			t.Error("Expected completed jobs to be purged")
		}
	})
}
