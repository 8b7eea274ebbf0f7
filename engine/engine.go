package engine

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/drummonds/chartconv/chartspec"
	"github.com/drummonds/chartconv/convert"
	"github.com/drummonds/chartconv/database"
	"github.com/drummonds/chartconv/render"
	"github.com/drummonds/chartconv/scene"
)

// runRenderJob executes a conversion with job tracking. The job record
// is updated as the conversion progresses so the render history API
// reflects what actually happened.
func (serverHandler *ServerHandler) runRenderJob(job *database.RenderJob, raw []byte, format convert.Format, opts convert.Options) (output []byte, contentType string, err error) {
	// Add panic recovery so one bad specification cannot crash the service
	defer func() {
		if r := recover(); r != nil {
			Logger.Error("Panic recovered in render job", "panic", r, "jobID", job.ID)
			serverHandler.DB.FailJob(job.ID, fmt.Sprintf("Panic: %v", r))
			err = fmt.Errorf("render job panicked: %v", r)
		}
	}()

	if err := serverHandler.DB.StartJob(job.ID); err != nil {
		Logger.Error("Failed to mark render job as running", "jobID", job.ID, "error", err)
	}

	started := time.Now()
	output, err = convert.Convert(raw, format, opts)
	duration := time.Since(started)

	if err != nil {
		Logger.Error("Conversion failed", "jobID", job.ID, "format", format, "error", err)
		if dbErr := serverHandler.DB.FailJob(job.ID, err.Error()); dbErr != nil {
			Logger.Error("Failed to record render failure", "jobID", job.ID, "error", dbErr)
		}
		return nil, "", err
	}

	contentType = contentTypes[format]
	if dbErr := serverHandler.DB.CompleteJob(job.ID, output, contentType, duration); dbErr != nil {
		Logger.Error("Failed to record render completion", "jobID", job.ID, "error", dbErr)
	}

	Logger.Info("Conversion completed", "jobID", job.ID, "format", format, "size", len(output), "duration", duration)
	return output, contentType, nil
}

// renderCacheKey hashes the spec bytes together with every option that
// changes the output, so a cached render is only reused for a request
// that would produce identical bytes
func renderCacheKey(raw []byte, opts convert.Options) string {
	fingerprint := fmt.Sprintf("%s|scale=%g|ppi=%g|quality=%d|target=%s|mode=%s|bundle=%t",
		database.HashSpec(raw), opts.Scale, opts.PPI, opts.Quality, opts.Target, opts.Mode, !opts.NoBundle)
	return database.HashSpec([]byte(fingerprint))
}

// rasterizer picks the SVG rasterization backend from configuration
func (serverHandler *ServerHandler) rasterizer() render.Rasterizer {
	if serverHandler.ServerConfig.RenderBackend == "chrome" && serverHandler.ServerConfig.ChromePath != "" {
		return render.NewChromeRasterizerWithPath(serverHandler.ServerConfig.ChromePath)
	}
	return render.ResvgRasterizer{}
}

// renderErrorResponse maps conversion errors onto HTTP statuses. Bad
// input is the client's fault; encoding failures are ours.
func renderErrorResponse(context echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, convert.ErrUnsupportedFormat):
		status = http.StatusBadRequest
	case errors.Is(err, chartspec.ErrInvalidSpec):
		status = http.StatusBadRequest
	case errors.Is(err, scene.ErrLayout):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, render.ErrEncoding):
		status = http.StatusInternalServerError
	}

	return context.JSON(status, map[string]interface{}{
		"error": err.Error(),
	})
}

// purgeOldRenders deletes finished jobs past the retention window
func (serverHandler *ServerHandler) purgeOldRenders() (int, error) {
	retention := time.Duration(serverHandler.ServerConfig.RetentionDays) * 24 * time.Hour
	count, err := serverHandler.DB.DeleteOldJobs(retention)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		Logger.Info("Purged old render jobs", "count", count, "retention", retention)
	}
	return count, nil
}
