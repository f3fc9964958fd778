package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	DatabasePath  string
	Port          string
	RemoteBaseURL string
	RemoteTimeout time.Duration
	ProbeInterval time.Duration

	ShellCacheDir     string
	ShellManifestPath string
	ShellOriginURL    string
	ShellCachePort    string
}

func ProcessEnvironmentVariables() (*Config, error) {
	// Defaults cover a single-agent laptop setup.
	env := Config{
		DatabasePath:      "field-ledger.db",
		Port:              "9446",
		RemoteBaseURL:     "http://localhost:9900",
		RemoteTimeout:     10 * time.Second,
		ProbeInterval:     15 * time.Second,
		ShellCacheDir:     "shell-cache",
		ShellManifestPath: "shell-manifest.json",
		ShellOriginURL:    "http://localhost:3000",
		ShellCachePort:    "9447",
	}

	if v := os.Getenv("FIELD_LEDGER_DB_PATH"); v != "" {
		env.DatabasePath = v
	}
	if v := os.Getenv("FIELD_LEDGER_PORT"); v != "" {
		env.Port = v
	}
	if v := os.Getenv("REMOTE_BASE_URL"); v != "" {
		env.RemoteBaseURL = v
	}
	if v := os.Getenv("REMOTE_TIMEOUT_SECONDS"); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return nil, err
		}
		env.RemoteTimeout = time.Duration(seconds) * time.Second
	}
	if v := os.Getenv("PROBE_INTERVAL_SECONDS"); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return nil, err
		}
		env.ProbeInterval = time.Duration(seconds) * time.Second
	}
	if v := os.Getenv("SHELL_CACHE_DIR"); v != "" {
		env.ShellCacheDir = v
	}
	if v := os.Getenv("SHELL_MANIFEST_PATH"); v != "" {
		env.ShellManifestPath = v
	}
	if v := os.Getenv("SHELL_ORIGIN_URL"); v != "" {
		env.ShellOriginURL = v
	}
	if v := os.Getenv("SHELL_CACHE_PORT"); v != "" {
		env.ShellCachePort = v
	}

	return &env, nil
}
