package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger

// ServerConfig contains all of the server settings
type ServerConfig struct {
	ListenAddrIP       string
	ListenAddrPort     string
	DatabaseType       string
	DatabaseHost       string
	DatabasePort       string
	DatabaseUser       string
	DatabasePassword   string `json:"-"`
	DatabaseDbname     string
	DatabaseSslmode    string
	Renderer           string // pdfium or fitz
	RenderDPI          int
	MaxUploadMB        int
	SessionIdleMinutes int
	SweepInterval      int // minutes between idle session sweeps
	JobRetentionHours  int
	WebDir             string // directory holding app.wasm and wasm_exec.js
	FrontEndConfig
}

// FrontEndConfig stores all of the frontend settings
type FrontEndConfig struct {
	ServerAPIURL     string
	DefaultZoomWidth int
}

// MaxUploadBytes is the upload ceiling in bytes, zero when unlimited
func (c ServerConfig) MaxUploadBytes() int64 {
	if c.MaxUploadMB <= 0 {
		return 0
	}
	return int64(c.MaxUploadMB) << 20
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

// SetupServer loads configuration and returns ServerConfig and Logger
func SetupServer() (ServerConfig, *slog.Logger) {
	serverConfigLive := ServerConfig{}

	// Load .env file (silently ignore if doesn't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load("config.env")

	logger := setupLogging()
	Logger = logger

	serverConfigLive.ListenAddrPort = getEnv("SERVER_PORT", "8000")
	serverConfigLive.ListenAddrIP = getEnv("SERVER_ADDR", "")

	// Export job ledger; the default keeps everything in memory
	serverConfigLive.DatabaseType = getEnv("DATABASE_TYPE", "sqlite")
	serverConfigLive.DatabaseHost = getEnv("DATABASE_HOST", "localhost")
	serverConfigLive.DatabasePort = getEnv("DATABASE_PORT", "5432")
	serverConfigLive.DatabaseUser = getEnv("DATABASE_USER", "rotatepdf")
	serverConfigLive.DatabasePassword = getEnv("DATABASE_PASSWORD", "")
	serverConfigLive.DatabaseDbname = getEnv("DATABASE_NAME", "file::memory:?cache=shared")
	serverConfigLive.DatabaseSslmode = getEnv("DATABASE_SSLMODE", "disable")
	serverConfigLive.JobRetentionHours = getEnvInt("JOB_RETENTION_HOURS", 24)

	logger.Info("Database configuration loaded", "type", serverConfigLive.DatabaseType)

	serverConfigLive.Renderer = getEnv("RENDERER", "pdfium")
	serverConfigLive.RenderDPI = getEnvInt("RENDER_DPI", 72)
	serverConfigLive.MaxUploadMB = getEnvInt("MAX_UPLOAD_MB", 50)
	serverConfigLive.SessionIdleMinutes = getEnvInt("SESSION_IDLE_MINUTES", 30)
	serverConfigLive.SweepInterval = getEnvInt("SWEEP_INTERVAL_MINUTES", 5)
	serverConfigLive.WebDir = filepath.ToSlash(getEnv("WEB_DIR", "web"))

	logger.Info("Document pipeline configured",
		"renderer", serverConfigLive.Renderer,
		"dpi", serverConfigLive.RenderDPI,
		"maxUploadMB", serverConfigLive.MaxUploadMB,
		"sessionIdleMinutes", serverConfigLive.SessionIdleMinutes)

	serverConfigLive.FrontEndConfig = loadFrontEnd("")

	fmt.Println("\n========================================")
	fmt.Println("   rotatepdf - Rotate PDF Pages")
	fmt.Println("========================================")
	fmt.Printf("Server will start on: %s:%s\n", serverConfigLive.ListenAddrIP, serverConfigLive.ListenAddrPort)
	if serverConfigLive.ListenAddrIP == "" {
		fmt.Println("(Listening on all network interfaces)")
	}
	if getEnv("LOG_OUTPUT", "file") != "stdout" {
		fmt.Printf("Detailed logs: %s\n", getEnv("LOG_FILE", "rotatepdf.log"))
	}

	return serverConfigLive, logger
}

// SetupFrontend loads configuration for frontend-only server
func SetupFrontend() (FrontEndConfig, *slog.Logger) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("config.env")
	_ = godotenv.Load("frontend.env")

	logger := setupLogging()
	Logger = logger

	frontendConfig := loadFrontEnd("http://localhost:8000")

	logger.Info("Frontend configuration loaded",
		"apiURL", frontendConfig.ServerAPIURL,
		"defaultZoomWidth", frontendConfig.DefaultZoomWidth)

	return frontendConfig, logger
}

func loadFrontEnd(defaultAPIURL string) FrontEndConfig {
	return FrontEndConfig{
		ServerAPIURL:     getEnv("SERVER_API_URL", defaultAPIURL),
		DefaultZoomWidth: getEnvInt("DEFAULT_ZOOM_WIDTH", 300),
	}
}

// SetupCLI loads the .env files and returns a logger for command line tools. It always
// writes to stderr so stdout stays free for results; verbose forces debug level.
func SetupCLI(verbose bool) *slog.Logger {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("config.env")

	level := parseLevel(getEnv("LOG_LEVEL", "info"))
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	Logger = logger
	return logger
}

func parseLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// setupLogging configures the application logger
func setupLogging() *slog.Logger {
	handlerOptions := &slog.HandlerOptions{Level: parseLevel(getEnv("LOG_LEVEL", "info"))}

	var logWriter io.Writer
	if getEnvBool("LOG_STDOUT", false) || getEnv("LOG_OUTPUT", "file") == "stdout" {
		logWriter = os.Stdout
	} else {
		logPath, err := filepath.Abs(filepath.ToSlash(getEnv("LOG_FILE", "rotatepdf.log")))
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
			}
		}
	}

	handler := slog.NewTextHandler(logWriter, handlerOptions)
	return slog.New(handler)
}
