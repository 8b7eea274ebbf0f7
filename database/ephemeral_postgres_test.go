package database

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/drummonds/chartconv/config"
)

func TestEphemeralPostgresDatabase(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping ephemeral PostgreSQL test in short mode")
	}

	// Setup logger for test
	Logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	t.Log("Testing ephemeral PostgreSQL repository...")

	db := NewRepository(config.ServerConfig{DatabaseType: "ephemeral"})
	defer db.Close()

	t.Log("Ephemeral database setup successfully!")

	job, err := db.CreateJob("pdf", []byte(testSpec), HashSpec([]byte(testSpec)))
	if err != nil {
		t.Fatalf("Failed to create job: %v", err)
	}

	if err := db.StartJob(job.ID); err != nil {
		t.Fatalf("Failed to start job: %v", err)
	}
	if err := db.CompleteJob(job.ID, []byte("%PDF-1.7 fake"), "application/pdf", 10*time.Millisecond); err != nil {
		t.Fatalf("Failed to complete job: %v", err)
	}

	retrieved, err := db.GetJob(job.ID)
	if err != nil {
		t.Fatalf("Failed to retrieve job: %v", err)
	}
	if retrieved.Status != JobStatusCompleted {
		t.Fatalf("Expected status %s, got %s", JobStatusCompleted, retrieved.Status)
	}
	if retrieved.ContentType != "application/pdf" {
		t.Fatalf("Expected content type application/pdf, got %s", retrieved.ContentType)
	}

	// Exercise the cache lookup against postgres too
	cached, ok := FetchCachedOutput(HashSpec([]byte(testSpec)), "pdf", db)
	if !ok {
		t.Fatal("Expected cached render, got none")
	}
	if cached.ID != job.ID {
		t.Fatalf("Cache returned job %s, want %s", cached.ID, job.ID)
	}

	t.Log("Successfully saved and retrieved render job from ephemeral database!")
}
