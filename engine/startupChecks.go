package engine

import (
	"fmt"
	"os"

	"github.com/drummonds/chartconv/config"
	"github.com/drummonds/chartconv/convert"
)

// StartupChecks performs all the checks to make sure everything works
func (serverHandler *ServerHandler) StartupChecks() error {
	if err := rasterBackendChecks(serverHandler.ServerConfig); err != nil {
		return err
	}
	if err := renderSelfCheck(serverHandler); err != nil {
		return err
	}
	return nil
}

func rasterBackendChecks(serverConfig config.ServerConfig) error {
	if serverConfig.RenderBackend != "chrome" {
		Logger.Info("Using in-process resvg rasterizer")
		return nil
	}

	if serverConfig.ChromePath == "" {
		Logger.Warn("Chrome backend configured but no browser was found, raster output will use resvg")
		return nil
	}
	chromeInfo, err := os.Stat(serverConfig.ChromePath)
	if err != nil {
		Logger.Warn("Browser executable not found, raster output will use resvg", "path", serverConfig.ChromePath, "error", err)
		return nil // Don't return error, just continue with the default backend
	}
	if chromeInfo.IsDir() {
		Logger.Warn("Browser path is a directory, not an executable, raster output will use resvg", "path", serverConfig.ChromePath)
		return nil
	}
	Logger.Info("Browser executable found and validated, chrome rasterizer enabled", "path", serverConfig.ChromePath)
	return nil
}

// renderSelfCheck converts a trivial specification so a broken encoder
// stack is caught at startup rather than on the first request
func renderSelfCheck(serverHandler *ServerHandler) error {
	probe := []byte(`{
		"mark": "line",
		"encoding": {
			"x": {"field": "x", "type": "quantitative"},
			"y": {"field": "y", "type": "quantitative"}
		},
		"data": {"x": [0, 1], "y": [0, 1]}
	}`)

	out, err := convert.Convert(probe, convert.FormatSVG, convert.Options{})
	if err != nil {
		Logger.Error("Render self check failed", "error", err)
		return fmt.Errorf("render self check: %w", err)
	}
	Logger.Info("Render self check passed", "bytes", len(out))
	return nil
}
