package config

import (
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger

// ServerConfig contains all of the server settings
type ServerConfig struct {
	ListenAddrIP     string
	ListenAddrPort   string
	DatabaseType     string
	DatabaseHost     string
	DatabasePort     string
	DatabaseUser     string
	DatabasePassword string
	DatabaseDbname   string
	DatabaseSslmode  string
	DatabasePath     string // sqlite file location
	RenderBackend    string // resvg or chrome
	ChromePath       string // resolved browser executable, empty when unavailable
	DefaultScale     float64
	DefaultPPI       float64
	DefaultQuality   int
	CDNBase          string
	RetentionDays    int // completed render jobs older than this are purged
	PurgeSchedule    string
	UseReverseProxy  bool
	BaseURL          string
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return boolVal
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intVal
}

// getEnvFloat gets a float environment variable with a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	floatVal, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return floatVal
}

// SetupServer loads configuration and returns ServerConfig and Logger
func SetupServer() (ServerConfig, *slog.Logger) {
	serverConfigLive := ServerConfig{}

	// Load .env file (silently ignore if doesn't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load("config.env")

	logger := setupLogging()
	Logger = logger

	// Server configuration
	serverConfigLive.ListenAddrPort = getEnv("SERVER_PORT", "8000")
	serverConfigLive.ListenAddrIP = getEnv("SERVER_ADDR", "")

	// Database configuration
	serverConfigLive.DatabaseType = getEnv("DATABASE_TYPE", "sqlite")
	serverConfigLive.DatabaseHost = getEnv("DATABASE_HOST", "localhost")
	serverConfigLive.DatabasePort = getEnv("DATABASE_PORT", "5432")
	serverConfigLive.DatabaseUser = getEnv("DATABASE_USER", "chartconv")
	serverConfigLive.DatabasePassword = getEnv("DATABASE_PASSWORD", "")
	serverConfigLive.DatabaseDbname = getEnv("DATABASE_NAME", "chartconv")
	serverConfigLive.DatabaseSslmode = getEnv("DATABASE_SSLMODE", "")

	databasePath := filepath.ToSlash(getEnv("DATABASE_PATH", "chartconv.db"))
	databasePathAbs, err := filepath.Abs(databasePath)
	if err != nil {
		logger.Error("Failed creating absolute path for database file", "error", err)
	}
	serverConfigLive.DatabasePath = databasePathAbs

	logger.Info("Database configuration loaded", "type", serverConfigLive.DatabaseType)

	// Rendering configuration
	serverConfigLive.DefaultScale = getEnvFloat("RENDER_SCALE", 1.0)
	serverConfigLive.DefaultPPI = getEnvFloat("RENDER_PPI", 72.0)
	serverConfigLive.DefaultQuality = getEnvInt("RENDER_JPEG_QUALITY", 90)
	serverConfigLive.CDNBase = getEnv("RENDER_CDN_BASE", "https://cdn.jsdelivr.net/npm")

	serverConfigLive.RenderBackend = getEnv("RENDER_BACKEND", "resvg")
	if serverConfigLive.RenderBackend == "chrome" {
		chromePath := getEnv("CHROME_PATH", "chromium")
		logger.Info("Checking browser executable path...")
		if resolved, err := exec.LookPath(chromePath); err == nil {
			serverConfigLive.ChromePath = resolved
			logger.Info("Browser found, chrome rasterizer enabled", "path", resolved)
		} else {
			logger.Warn("Browser executable not found, falling back to resvg rasterizer", "path", chromePath, "error", err)
			serverConfigLive.RenderBackend = "resvg"
		}
	}

	// Retention configuration
	serverConfigLive.RetentionDays = getEnvInt("RETENTION_DAYS", 30)
	serverConfigLive.PurgeSchedule = getEnv("PURGE_SCHEDULE", "@hourly")

	// Reverse proxy configuration
	serverConfigLive.UseReverseProxy = getEnvBool("PROXY_ENABLED", false)
	serverConfigLive.BaseURL = getEnv("BASE_URL", "http://localhost:8000")

	if serverConfigLive.UseReverseProxy {
		logger.Info("Using Reverse Proxy", "baseURL", serverConfigLive.BaseURL)
	}

	fmt.Println("\n========================================")
	fmt.Println("   chartconv - Chart Conversion Service")
	fmt.Println("========================================")
	fmt.Printf("Server will start on: %s:%s\n", serverConfigLive.ListenAddrIP, serverConfigLive.ListenAddrPort)
	if serverConfigLive.ListenAddrIP == "" {
		fmt.Println("(Listening on all network interfaces)")
	}
	fmt.Printf("Detailed logs: %s\n", getEnv("LOG_FILE", "chartconv.log"))
	fmt.Println("Initializing...")

	return serverConfigLive, logger
}

// setupLogging configures the application logger
func setupLogging() *slog.Logger {
	logLevel := getEnv("LOG_LEVEL", "debug")
	var level slog.Level

	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelDebug
	}

	handlerOptions := &slog.HandlerOptions{Level: level}

	logOutput := getEnv("LOG_OUTPUT", "file")
	var logWriter io.Writer

	if logOutput == "stdout" {
		logWriter = os.Stdout
	} else {
		logPath, err := filepath.Abs(filepath.ToSlash(getEnv("LOG_FILE", "chartconv.log")))
		if err != nil {
			fmt.Printf("Error creating log file path: %v\n", err)
			logWriter = os.Stdout
		} else {
			logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
			if err != nil {
				fmt.Printf("Failed to open log file: %v\n", err)
				logWriter = os.Stdout
			} else {
				logWriter = logFile
				fmt.Println("Logging to file: ", logPath)
			}
		}
	}

	handler := slog.NewTextHandler(logWriter, handlerOptions)
	return slog.New(handler)
}

// GetPreferredOutboundIP gets preferred outbound IP of this machine
func GetPreferredOutboundIP() (net.IP, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	localAddr := conn.LocalAddr().(*net.UDPAddr)
	return localAddr.IP, nil
}

// checkExecutable verifies that an executable exists at the given path
func checkExecutable(path string, logger *slog.Logger) error {
	_, err := os.Stat(path)
	if err != nil {
		logger.Error("Cannot find executable at location specified", "path", path)
		return err
	}
	logger.Debug("Executable found", "path", path)
	return nil
}
