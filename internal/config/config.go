// Package config loads simulator configuration from a .env file and the
// environment, with built-in defaults for everything.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the simulator.
type Config struct {
	// Data files
	SnapshotPath  string // VFS snapshot document, optional
	ProcessesPath string // process table seed, optional
	HistoryFile   string // shell history persistence
	HistoryMax    int

	// Dial-in users, name -> password. Plaintext on purpose: these are
	// stage props, not credentials.
	Users map[string]string

	// Theatre timing
	CharDelay time.Duration // per-character output delay for slow printing
	TarDelay  time.Duration // per-entry delay for the tar command
	RmDelay   time.Duration // per-file delay for rm

	// Web terminal
	Host      string
	Port      int
	APIKey    string
	JWTSecret string
	LogLevel  string
}

// Load reads configuration from SCOSIM_ENV_FILE (default .env) and the
// environment.
func Load() *Config {
	envFile := os.Getenv("SCOSIM_ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	_ = godotenv.Load(envFile)

	cfg := &Config{
		SnapshotPath:  getEnv("SCOSIM_SNAPSHOT", "snapshot.json"),
		ProcessesPath: getEnv("SCOSIM_PROCESSES", "processes.json"),
		HistoryFile:   getEnv("SCOSIM_HISTORY_FILE", defaultHistoryFile()),
		HistoryMax:    getEnvInt("SCOSIM_HISTORY_MAX", 1000),
		Users:         parseUsers(getEnv("SCOSIM_USERS", "root:uucp56k,admin:admin123,guest:guest")),
		CharDelay:     getEnvDuration("SCOSIM_CHAR_DELAY", 30*time.Millisecond),
		TarDelay:      getEnvDuration("SCOSIM_TAR_DELAY", 20*time.Millisecond),
		RmDelay:       getEnvDuration("SCOSIM_RM_DELAY", 100*time.Millisecond),
		Host:          getEnv("SCOSIM_HOST", "127.0.0.1"),
		Port:          getEnvInt("SCOSIM_PORT", 8023),
		APIKey:        getEnv("SCOSIM_API_KEY", ""),
		JWTSecret:     getEnv("SCOSIM_JWT_SECRET", ""),
		LogLevel:      getEnv("SCOSIM_LOG_LEVEL", "info"),
	}

	if cfg.JWTSecret == "" {
		// fall back to the API key so single-secret setups work
		cfg.JWTSecret = cfg.APIKey
	}
	return cfg
}

// Addr returns the web terminal listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Authenticate checks a dial-in username/password pair.
func (c *Config) Authenticate(user, password string) bool {
	want, ok := c.Users[user]
	return ok && want == password
}

func defaultHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".scosim_history"
	}
	return home + "/.scosim_history"
}

// parseUsers parses "name:password,name:password" pairs. Entries without a
// colon are skipped.
func parseUsers(s string) map[string]string {
	users := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		name, pass, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || name == "" {
			continue
		}
		users[name] = pass
	}
	return users
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
