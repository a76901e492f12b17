package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel int `yaml:"log_level"`

	Server  ServerConfig  `yaml:"server"`
	Engine  EngineConfig  `yaml:"engine"`
	Storage StorageConfig `yaml:"storage"`
	Catalog CatalogConfig `yaml:"catalog"`
	Notify  NotifyConfig  `yaml:"notify"`
	Cache   CacheConfig   `yaml:"cache"`
}

type ServerConfig struct {
	Port string `yaml:"port"`

	// MaxUploadBytes caps the size of a source audio upload.
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
}

type EngineConfig struct {
	FFmpegPath  string `yaml:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path"`

	// ScratchDir is the root of the engine's per-call working space.
	ScratchDir string `yaml:"scratch_dir"`
}

type StorageConfig struct {
	// Type of storage: "local" or "gcs"
	Type string `yaml:"type"`

	// Local storage options
	OutputDir string `yaml:"output_dir"`

	// GCS storage options
	Bucket          string `yaml:"bucket"`
	ObjectPrefix    string `yaml:"object_prefix"`
	CredentialsFile string `yaml:"credentials_file"`

	// PublicBaseURL is prepended to object paths when building public URLs.
	PublicBaseURL string `yaml:"public_base_url"`
}

type CatalogConfig struct {
	// BaseURL of the catalog REST API. Empty means an in-memory catalog,
	// which only makes sense for local development.
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

type NotifyConfig struct {
	// WebhookURL receives a summary after each successful submission.
	// Empty disables notifications.
	WebhookURL string `yaml:"webhook_url"`
}

type CacheConfig struct {
	// RevalidateURL is the site's cache invalidation endpoint.
	// Empty disables invalidation calls.
	RevalidateURL string `yaml:"revalidate_url"`
	Secret        string `yaml:"secret"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config *Config

	// Unmarshal the YAML data into the struct
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, err
	}

	// Set defaults if not provided
	if config.Server.Port == "" {
		config.Server.Port = "8080"
	}

	if config.Server.MaxUploadBytes <= 0 {
		config.Server.MaxUploadBytes = 64 << 20
	}

	if config.Engine.FFmpegPath == "" {
		config.Engine.FFmpegPath = "ffmpeg"
	}

	if config.Engine.FFprobePath == "" {
		config.Engine.FFprobePath = "ffprobe"
	}

	if config.Engine.ScratchDir == "" {
		config.Engine.ScratchDir = "scratch"
	}

	if config.Storage.Type == "" {
		config.Storage.Type = "local"
	}

	if config.Storage.OutputDir == "" {
		config.Storage.OutputDir = "output"
	}

	return config, nil
}
