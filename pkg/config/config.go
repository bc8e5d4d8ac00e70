package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Base endpoints of the hosted backend. Two independent API groups: one
// scoped to auth, one to the todo resource. Not secrets, fixed at build time.
const (
	DefaultAuthAPIBase  = "https://x8ki-letl-twmt.n7.xano.io/api:0EHxHUr7"
	DefaultTodosAPIBase = "https://x8ki-letl-twmt.n7.xano.io/api:kZemCDCA"
)

type Config struct {
	AuthAPIBase  string
	TodosAPIBase string
	StateDir     string
	LogLevel     string
}

func Parse() *Config {
	cfg := Config{
		// Defaults
		AuthAPIBase:  DefaultAuthAPIBase,
		TodosAPIBase: DefaultTodosAPIBase,
		StateDir:     defaultStateDir(),
		LogLevel:     "warn",
	}
	// A local .env is optional; missing file is fine.
	_ = godotenv.Load()
	cfg.updateFromEnv()
	return &cfg
}

func (cfg *Config) updateFromEnv() {
	if addr, ok := os.LookupEnv("TODOCTL_AUTH_API"); ok {
		cfg.AuthAPIBase = addr
	}
	if addr, ok := os.LookupEnv("TODOCTL_TODOS_API"); ok {
		cfg.TodosAPIBase = addr
	}
	if dir, ok := os.LookupEnv("TODOCTL_STATE_DIR"); ok {
		cfg.StateDir = dir
	}
	if lvl, ok := os.LookupEnv("LOG_LEVEL"); ok {
		cfg.LogLevel = lvl
	}
}

func defaultStateDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ".todoctl"
	}
	return filepath.Join(base, "todoctl")
}
