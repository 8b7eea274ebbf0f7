package database

import (
	"crypto/md5"
	"database/sql"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/drummonds/chartconv/config"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger

// Repository defines database operations
type Repository interface {
	Close() error
	CreateJob(format string, spec []byte, specHash string) (*RenderJob, error)
	StartJob(jobID ulid.ULID) error
	CompleteJob(jobID ulid.ULID, output []byte, contentType string, duration time.Duration) error
	FailJob(jobID ulid.ULID, errorMsg string) error
	GetJob(jobID ulid.ULID) (*RenderJob, error)
	GetJobBySpecHash(specHash string, format string) (*RenderJob, error)
	GetRecentJobs(limit, offset int) ([]RenderJob, error)
	GetActiveJobs() ([]RenderJob, error)
	GetFormatStats() ([]FormatStat, error)
	DeleteOldJobs(olderThan time.Duration) (int, error)
	SaveConfig(serverConfig *config.ServerConfig) error
	GetConfig() (*config.ServerConfig, error)
}

// FetchConfigFromDB pulls the server config from the database
func FetchConfigFromDB(db Repository) (config.ServerConfig, error) {
	serverConfig, err := db.GetConfig()
	if err != nil {
		Logger.Error("Unable to fetch server config from db", "error", err)
		return config.ServerConfig{}, err
	}
	return *serverConfig, nil
}

// WriteConfigToDB writes the serverconfig to the database for later retrieval
func WriteConfigToDB(serverConfig config.ServerConfig, db Repository) {
	err := db.SaveConfig(&serverConfig)
	if err != nil {
		Logger.Error("Unable to write server config to database", "error", err)
	}
}

// FetchJob fetches the requested render job by ULID string
func FetchJob(jobIDSt string, db Repository) (RenderJob, int, error) {
	jobID, err := ulid.Parse(jobIDSt)
	if err != nil {
		return RenderJob{}, http.StatusBadRequest, fmt.Errorf("invalid job id %q: %w", jobIDSt, err)
	}
	foundJob, err := db.GetJob(jobID)
	if err != nil {
		if err == sql.ErrNoRows {
			Logger.Error("Unable to find the requested render job", "error", err)
			return RenderJob{}, http.StatusNotFound, err
		}
		Logger.Error("Database error fetching render job", "error", err)
		return RenderJob{}, http.StatusInternalServerError, err
	}
	return *foundJob, http.StatusOK, nil
}

// FetchCachedOutput looks for a completed job with the same specification
// hash and format, so identical requests can reuse the stored output.
func FetchCachedOutput(specHash string, format string, db Repository) (*RenderJob, bool) {
	job, err := db.GetJobBySpecHash(specHash, format)
	if err != nil || job == nil {
		Logger.Debug("No cached render found", "hash", specHash, "format", format)
		return nil, false
	}
	if job.Status != JobStatusCompleted || len(job.Output) == 0 {
		return nil, false
	}
	return job, true
}

// HashSpec calculates the hash of an incoming specification
func HashSpec(spec []byte) string {
	return fmt.Sprintf("%x", md5.Sum(spec))
}

// CalculateUUID for the incoming render job
func CalculateUUID(time time.Time) (ulid.ULID, error) {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.UnixNano())), 0)
	newULID, err := ulid.New(ulid.Timestamp(time), entropy)
	if err != nil {
		return newULID, err
	}
	return newULID, nil
}
