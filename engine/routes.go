package engine

import (
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/drummonds/chartconv/config"
	"github.com/drummonds/chartconv/convert"
	"github.com/drummonds/chartconv/database"
	"github.com/drummonds/chartconv/internal/build"
	"github.com/drummonds/chartconv/render"
)

// ServerHandler will inject the variables needed into routes
type ServerHandler struct {
	DB           database.Repository
	Echo         *echo.Echo
	ServerConfig config.ServerConfig
}

// contentTypes maps output formats to their MIME types
var contentTypes = map[convert.Format]string{
	convert.FormatJSON: "application/json",
	convert.FormatHTML: "text/html; charset=utf-8",
	convert.FormatPNG:  "image/png",
	convert.FormatSVG:  "image/svg+xml",
	convert.FormatPDF:  "application/pdf",
	convert.FormatJPEG: "image/jpeg",
}

// ConvertChart converts a submitted chart specification
// @Summary Convert a chart specification
// @Description Convert a chart specification in the request body to the requested output format
// @Tags Convert
// @Accept json
// @Produce json
// @Param format path string true "Output format (json, html, png, svg, pdf, jpeg)"
// @Param scale query number false "Raster scale multiplier (default: 1.0)"
// @Param ppi query number false "Raster pixel density (default: 72)"
// @Param quality query int false "JPEG quality 0-100 (default: 90)"
// @Param target query string false "Structured-document target: spec or scene"
// @Param mode query string false "HTML mode: vector, raster or hybrid"
// @Param bundle query bool false "Inline all HTML content (default: true)"
// @Success 200 {string} binary "Converted document"
// @Failure 400 {object} map[string]interface{} "Invalid specification or unsupported format"
// @Failure 422 {object} map[string]interface{} "Layout failure"
// @Failure 500 {object} map[string]interface{} "Encoding failure"
// @Router /convert/{format} [post]
func (serverHandler *ServerHandler) ConvertChart(context echo.Context) error {
	format := convert.Format(context.Param("format"))

	raw, err := io.ReadAll(context.Request().Body)
	if err != nil {
		return context.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "Unable to read request body",
		})
	}

	opts := serverHandler.convertOptions(context)
	cacheKey := renderCacheKey(raw, opts)

	// Serve identical requests from the stored output
	if cached, ok := database.FetchCachedOutput(cacheKey, string(format), serverHandler.DB); ok {
		Logger.Debug("Serving cached render", "jobID", cached.ID, "format", format)
		context.Response().Header().Set("X-Render-Job", cached.ID.String())
		context.Response().Header().Set("X-Render-Cache", "hit")
		return context.Blob(http.StatusOK, cached.ContentType, cached.Output)
	}

	job, err := serverHandler.DB.CreateJob(string(format), raw, cacheKey)
	if err != nil {
		Logger.Error("Failed to create render job", "error", err)
		return context.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to create render job",
		})
	}

	output, contentType, err := serverHandler.runRenderJob(job, raw, format, opts)
	if err != nil {
		return renderErrorResponse(context, err)
	}

	context.Response().Header().Set("X-Render-Job", job.ID.String())
	return context.Blob(http.StatusOK, contentType, output)
}

// convertOptions builds conversion options from server defaults plus
// per-request query overrides
func (serverHandler *ServerHandler) convertOptions(context echo.Context) convert.Options {
	opts := convert.Options{
		Scale:    serverHandler.ServerConfig.DefaultScale,
		PPI:      serverHandler.ServerConfig.DefaultPPI,
		Quality:  serverHandler.ServerConfig.DefaultQuality,
		CDNBase:  serverHandler.ServerConfig.CDNBase,
		Renderer: serverHandler.rasterizer(),
	}

	if scaleStr := context.QueryParam("scale"); scaleStr != "" {
		if scale, err := strconv.ParseFloat(scaleStr, 64); err == nil && scale > 0 {
			opts.Scale = scale
		}
	}
	if ppiStr := context.QueryParam("ppi"); ppiStr != "" {
		if ppi, err := strconv.ParseFloat(ppiStr, 64); err == nil && ppi > 0 {
			opts.PPI = ppi
		}
	}
	if qualityStr := context.QueryParam("quality"); qualityStr != "" {
		if quality, err := strconv.Atoi(qualityStr); err == nil {
			opts.Quality = quality
		}
	}
	opts.Target = context.QueryParam("target")
	opts.Mode = context.QueryParam("mode")
	if bundleStr := context.QueryParam("bundle"); bundleStr != "" {
		if bundle, err := strconv.ParseBool(bundleStr); err == nil {
			opts.NoBundle = !bundle
		}
	}

	return opts
}

// ListFormats returns the supported output formats
// @Summary List supported formats
// @Description Retrieve every output format this service can produce
// @Tags Convert
// @Accept json
// @Produce json
// @Success 200 {array} string "Supported formats"
// @Router /formats [get]
func (serverHandler *ServerHandler) ListFormats(context echo.Context) error {
	return context.JSON(http.StatusOK, convert.Formats())
}

// GetRenderJob retrieves a render job by ID
// @Summary Get render job by ID
// @Description Retrieve details of a specific render job by its ID
// @Tags Renders
// @Accept json
// @Produce json
// @Param id path string true "Render job ID (ULID)"
// @Success 200 {object} database.RenderJob "Render job details"
// @Failure 400 {object} map[string]interface{} "Invalid job ID"
// @Failure 404 {object} map[string]interface{} "Job not found"
// @Router /render/{id} [get]
func (serverHandler *ServerHandler) GetRenderJob(context echo.Context) error {
	jobIDStr := context.Param("id")

	job, httpStatus, err := database.FetchJob(jobIDStr, serverHandler.DB)
	if err != nil {
		Logger.Error("GetRenderJob API call failed", "jobID", jobIDStr, "error", err)
		return context.JSON(httpStatus, map[string]interface{}{
			"error": "Render job not found",
		})
	}

	return context.JSON(httpStatus, job)
}

// GetRenderOutput serves the stored output of a completed render job
// @Summary Get render job output
// @Description Serve the converted document produced by a completed render job
// @Tags Renders
// @Accept json
// @Produce octet-stream
// @Param id path string true "Render job ID (ULID)"
// @Success 200 {string} binary "Converted document"
// @Failure 404 {object} map[string]interface{} "Job or output not found"
// @Router /render/{id}/output [get]
func (serverHandler *ServerHandler) GetRenderOutput(context echo.Context) error {
	jobIDStr := context.Param("id")

	job, httpStatus, err := database.FetchJob(jobIDStr, serverHandler.DB)
	if err != nil {
		return context.JSON(httpStatus, map[string]interface{}{
			"error": "Render job not found",
		})
	}
	if job.Status != database.JobStatusCompleted || len(job.Output) == 0 {
		return context.JSON(http.StatusNotFound, map[string]interface{}{
			"error": "Render job has no stored output",
		})
	}

	return context.Blob(http.StatusOK, job.ContentType, job.Output)
}

// GetRenderPreview serves a PNG thumbnail of a completed PDF render
// @Summary Get PDF render preview
// @Description Render the first page of a completed PDF job as a PNG thumbnail
// @Tags Renders
// @Accept json
// @Produce png
// @Param id path string true "Render job ID (ULID)"
// @Param width query int false "Preview width in pixels (default: 320)"
// @Success 200 {string} binary "PNG preview"
// @Failure 404 {object} map[string]interface{} "Job not found or not a PDF"
// @Failure 500 {object} map[string]interface{} "Preview rendering failed"
// @Router /render/{id}/preview [get]
func (serverHandler *ServerHandler) GetRenderPreview(context echo.Context) error {
	jobIDStr := context.Param("id")

	job, httpStatus, err := database.FetchJob(jobIDStr, serverHandler.DB)
	if err != nil {
		return context.JSON(httpStatus, map[string]interface{}{
			"error": "Render job not found",
		})
	}
	if job.Format != string(convert.FormatPDF) || job.Status != database.JobStatusCompleted {
		return context.JSON(http.StatusNotFound, map[string]interface{}{
			"error": "Previews are only available for completed PDF renders",
		})
	}

	width := 320
	if widthStr := context.QueryParam("width"); widthStr != "" {
		if w, err := strconv.Atoi(widthStr); err == nil && w > 0 && w <= 2048 {
			width = w
		}
	}

	preview, err := render.PDFPreview(job.Output, width)
	if err != nil {
		Logger.Error("Failed to render PDF preview", "jobID", jobIDStr, "error", err)
		return context.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Preview rendering failed",
		})
	}

	return context.Blob(http.StatusOK, "image/png", preview)
}

// GetRecentRenders retrieves recent render jobs with pagination
// @Summary Get recent render jobs
// @Description Retrieve a list of recent render jobs with pagination
// @Tags Renders
// @Accept json
// @Produce json
// @Param limit query int false "Number of jobs to return (default: 20)"
// @Param offset query int false "Offset for pagination (default: 0)"
// @Success 200 {array} database.RenderJob "List of render jobs"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /renders [get]
func (serverHandler *ServerHandler) GetRecentRenders(context echo.Context) error {
	limit := 20
	offset := 0

	if limitStr := context.QueryParam("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}
	if offsetStr := context.QueryParam("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	jobs, err := serverHandler.DB.GetRecentJobs(limit, offset)
	if err != nil {
		Logger.Error("Failed to get recent render jobs", "error", err)
		return context.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to retrieve render jobs",
		})
	}

	if jobs == nil {
		jobs = []database.RenderJob{}
	}

	return context.JSON(http.StatusOK, jobs)
}

// GetActiveRenders retrieves all currently running or pending render jobs
// @Summary Get active render jobs
// @Description Retrieve all render jobs that are currently running or pending
// @Tags Renders
// @Accept json
// @Produce json
// @Success 200 {array} database.RenderJob "List of active render jobs"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /renders/active [get]
func (serverHandler *ServerHandler) GetActiveRenders(context echo.Context) error {
	jobs, err := serverHandler.DB.GetActiveJobs()
	if err != nil {
		Logger.Error("Failed to get active render jobs", "error", err)
		return context.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to retrieve active render jobs",
		})
	}

	if jobs == nil {
		jobs = []database.RenderJob{}
	}

	return context.JSON(http.StatusOK, jobs)
}

// GetRenderStats aggregates completed renders per format
// @Summary Get render statistics
// @Description Retrieve the number and total size of completed renders per output format
// @Tags Renders
// @Accept json
// @Produce json
// @Success 200 {array} database.FormatStat "Per-format render statistics"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /renders/stats [get]
func (serverHandler *ServerHandler) GetRenderStats(context echo.Context) error {
	stats, err := serverHandler.DB.GetFormatStats()
	if err != nil {
		Logger.Error("Failed to get render stats", "error", err)
		return context.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to retrieve render statistics",
		})
	}

	if stats == nil {
		stats = []database.FormatStat{}
	}

	return context.JSON(http.StatusOK, stats)
}

// PurgeRenders deletes finished render jobs older than the retention window
// @Summary Purge old render jobs
// @Description Delete completed and failed render jobs older than the configured retention window
// @Tags Renders
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "Number of purged jobs"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /renders/purge [post]
func (serverHandler *ServerHandler) PurgeRenders(context echo.Context) error {
	Logger.Info("Render purge triggered via API")

	count, err := serverHandler.purgeOldRenders()
	if err != nil {
		Logger.Error("Render purge failed", "error", err)
		return context.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error":   "Purge failed",
			"message": err.Error(),
		})
	}

	return context.JSON(http.StatusOK, map[string]interface{}{
		"message": "Render purge completed successfully",
		"purged":  count,
	})
}

// GetAboutInfo returns information about the service configuration
// @Summary Get service information
// @Description Retrieve information about the service configuration, version, and database
// @Tags Admin
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "Service information"
// @Router /about [get]
func (serverHandler *ServerHandler) GetAboutInfo(c echo.Context) error {
	aboutInfo := map[string]interface{}{
		"version":        build.Version,
		"formats":        convert.Formats(),
		"renderBackend":  serverHandler.ServerConfig.RenderBackend,
		"databaseType":   serverHandler.ServerConfig.DatabaseType,
		"databaseHost":   serverHandler.ServerConfig.DatabaseHost,
		"databasePort":   serverHandler.ServerConfig.DatabasePort,
		"databaseName":   serverHandler.ServerConfig.DatabaseDbname,
		"retentionDays":  serverHandler.ServerConfig.RetentionDays,
		"defaultScale":   serverHandler.ServerConfig.DefaultScale,
		"defaultPPI":     serverHandler.ServerConfig.DefaultPPI,
		"defaultQuality": serverHandler.ServerConfig.DefaultQuality,
	}

	return c.JSON(http.StatusOK, aboutInfo)
}
