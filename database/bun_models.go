package database

import (
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/uptrace/bun"
)

// BunRenderJob represents the render_jobs table for Bun ORM
type BunRenderJob struct {
	bun.BaseModel `bun:"table:render_jobs,alias:rj"`

	ID          string     `bun:"id,pk"` // ULID as string
	Format      string     `bun:"format,notnull"`
	Status      string     `bun:"status,default:'pending'"`
	SpecHash    string     `bun:"spec_hash,notnull"`
	Spec        string     `bun:"spec,notnull"`
	Output      []byte     `bun:"output,nullzero"`
	ContentType string     `bun:"content_type,default:''"`
	Size        int        `bun:"size,default:0"`
	DurationMs  int64      `bun:"duration_ms,default:0"`
	Error       string     `bun:"error,nullzero"`
	CreatedAt   time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt   time.Time  `bun:"updated_at,notnull,default:current_timestamp"`
	StartedAt   *time.Time `bun:"started_at,nullzero"`
	CompletedAt *time.Time `bun:"completed_at,nullzero"`
}

// ToRenderJob converts BunRenderJob to RenderJob
func (bj *BunRenderJob) ToRenderJob() (*RenderJob, error) {
	parsedULID, err := ulid.Parse(bj.ID)
	if err != nil {
		return nil, err
	}

	return &RenderJob{
		ID:          parsedULID,
		Format:      bj.Format,
		Status:      JobStatus(bj.Status),
		SpecHash:    bj.SpecHash,
		Spec:        bj.Spec,
		Output:      bj.Output,
		ContentType: bj.ContentType,
		Size:        bj.Size,
		DurationMs:  bj.DurationMs,
		Error:       bj.Error,
		CreatedAt:   bj.CreatedAt,
		UpdatedAt:   bj.UpdatedAt,
		StartedAt:   bj.StartedAt,
		CompletedAt: bj.CompletedAt,
	}, nil
}

// BunServerConfig represents the server_config table for Bun ORM.
// A single row (id 1) holds the effective settings of the last boot.
type BunServerConfig struct {
	bun.BaseModel `bun:"table:server_config,alias:sc"`

	ID              int       `bun:"id,pk"`
	ListenAddrIP    string    `bun:"listen_addr_ip,default:''"`
	ListenAddrPort  string    `bun:"listen_addr_port,notnull,default:'8000'"`
	RenderBackend   string    `bun:"render_backend,notnull,default:'resvg'"`
	ChromePath      string    `bun:"chrome_path,default:''"`
	DefaultScale    float64   `bun:"default_scale,notnull,default:1.0"`
	DefaultPPI      float64   `bun:"default_ppi,notnull,default:72.0"`
	DefaultQuality  int       `bun:"default_quality,notnull,default:90"`
	CDNBase         string    `bun:"cdn_base,default:''"`
	RetentionDays   int       `bun:"retention_days,notnull,default:30"`
	PurgeSchedule   string    `bun:"purge_schedule,notnull,default:'@hourly'"`
	UseReverseProxy bool      `bun:"use_reverse_proxy,notnull,default:false"`
	BaseURL         string    `bun:"base_url,default:''"`
	CreatedAt       time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt       time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// FromRenderJob converts RenderJob to BunRenderJob
func FromRenderJob(job *RenderJob) *BunRenderJob {
	return &BunRenderJob{
		ID:          job.ID.String(),
		Format:      job.Format,
		Status:      string(job.Status),
		SpecHash:    job.SpecHash,
		Spec:        job.Spec,
		Output:      job.Output,
		ContentType: job.ContentType,
		Size:        job.Size,
		DurationMs:  job.DurationMs,
		Error:       job.Error,
		CreatedAt:   job.CreatedAt,
		UpdatedAt:   job.UpdatedAt,
		StartedAt:   job.StartedAt,
		CompletedAt: job.CompletedAt,
	}
}
