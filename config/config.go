// Package config reads runtime settings from the environment and an optional
// .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Defaults used when the environment leaves a setting empty.
const (
	DefaultPort      = ":8081"
	DefaultDataFile  = "final_file.json"
	DefaultWidth     = 960
	DefaultPalette   = "set2"
	DefaultCacheSize = 128
	DefaultBucket    = "galaxy-artifacts"
)

type Config struct {
	Port string
	Env  string
	// DataFile is the stored analysis payload served by the final_file endpoint.
	DataFile string
	// NotebookRoot bounds the notebook paths the analyze endpoint may read.
	NotebookRoot string
	Width        float64
	Palette      string
	CacheSize    int
	Artifact     ArtifactConfig
}

type ArtifactConfig struct {
	Enabled   bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Load reads .env when present, then the environment. Flags parsed by the
// caller are applied on top of the returned value.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key string) string { return strings.TrimSpace(getenv(key)) }

	env := firstNonEmpty(get("APP_ENV"), "local")
	cfg := &Config{
		Port:         normalizePort(firstNonEmpty(get("PORT"), DefaultPort)),
		Env:          env,
		DataFile:     firstNonEmpty(get("GALAXY_DATA_FILE"), DefaultDataFile),
		NotebookRoot: firstNonEmpty(get("GALAXY_NOTEBOOK_ROOT"), "."),
		Width:        DefaultWidth,
		Palette:      firstNonEmpty(get("GALAXY_PALETTE"), DefaultPalette),
		CacheSize:    DefaultCacheSize,
		Artifact:     loadArtifactConfig(get),
	}

	if raw := get("GALAXY_WIDTH"); raw != "" {
		w, err := strconv.ParseFloat(raw, 64)
		if err != nil || w < 0 {
			return nil, fmt.Errorf("invalid GALAXY_WIDTH %q", raw)
		}
		cfg.Width = w
	}
	if raw := get("GALAXY_CACHE_SIZE"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid GALAXY_CACHE_SIZE %q", raw)
		}
		cfg.CacheSize = n
	}
	return cfg, nil
}

func loadArtifactConfig(get func(string) string) ArtifactConfig {
	endpoint := get("GALAXY_ARTIFACT_ENDPOINT")
	return ArtifactConfig{
		Enabled:   endpoint != "",
		Endpoint:  endpoint,
		Region:    firstNonEmpty(get("GALAXY_ARTIFACT_REGION"), "us-east-1"),
		AccessKey: firstNonEmpty(get("GALAXY_ARTIFACT_ACCESS_KEY"), get("MINIO_ROOT_USER")),
		SecretKey: firstNonEmpty(get("GALAXY_ARTIFACT_SECRET_KEY"), get("MINIO_ROOT_PASSWORD")),
		Bucket:    firstNonEmpty(get("GALAXY_ARTIFACT_BUCKET"), DefaultBucket),
		UseSSL:    parseBool(get("GALAXY_ARTIFACT_USE_SSL"), true),
	}
}

func normalizePort(port string) string {
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func parseBool(raw string, fallback bool) bool {
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
